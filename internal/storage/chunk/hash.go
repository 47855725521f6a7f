package chunk

import "crypto/md5"

// HashSize is the width of a part digest.
const HashSize = md5.Size

// Hash computes the MD5 digest S3 records for an uploaded part.
func Hash(data []byte) [HashSize]byte {
	return md5.Sum(data)
}
