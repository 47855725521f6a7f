// Package etag computes the ETag S3 assigns to an object uploaded with a
// given part size.
//
// A single-part object's ETag is the MD5 of its bytes. A multipart object's
// ETag is the MD5 of the concatenated raw part digests, suffixed with
// "-<parts>".
package etag

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strconv"

	"github.com/kk-code-lab/s3etag/internal/storage/chunk"
)

// Size is the width in bytes of a Digest hash.
const Size = chunk.HashSize

// DefaultChunkSize is the part size used when none is given (8 MiB).
const DefaultChunkSize = chunk.DefaultSize

// ErrInvalidChunkSize is returned when the chunk size is not positive.
var ErrInvalidChunkSize = errors.New("etag: chunk size must be positive")

// Digest is the result of hashing an object. The zero value is not a valid
// digest; obtain one from Compute, a Hasher or Parse.
type Digest struct {
	hash  [Size]byte
	parts int
}

// Hash returns the raw digest bytes.
func (d Digest) Hash() [Size]byte {
	return d.hash
}

// Parts returns the part count and whether one is present. Single-part
// digests have none.
func (d Digest) Parts() (int, bool) {
	return d.parts, d.parts > 1
}

// IsMultipart reports whether d was combined from more than one part.
func (d Digest) IsMultipart() bool {
	return d.parts > 1
}

// String renders d as lowercase hex, with "-<parts>" for multipart digests.
func (d Digest) String() string {
	s := hex.EncodeToString(d.hash[:])
	if d.parts > 1 {
		s += "-" + strconv.Itoa(d.parts)
	}
	return s
}

// Matches reports whether expected is exactly the formatted digest.
func (d Digest) Matches(expected string) bool {
	return d.String() == expected
}

// Format returns the canonical ETag text of d.
func Format(d Digest) string {
	return d.String()
}

// Compute returns the ETag digest of data cut into chunkSize parts.
func Compute(data []byte, chunkSize int) (Digest, error) {
	if chunkSize <= 0 {
		return Digest{}, ErrInvalidChunkSize
	}
	if len(data) <= chunkSize {
		return Digest{hash: chunk.Hash(data)}, nil
	}
	parts := (len(data) + chunkSize - 1) / chunkSize
	sums := make([]byte, 0, parts*Size)
	for off := 0; off < len(data); off += chunkSize {
		end := min(off+chunkSize, len(data))
		sum := chunk.Hash(data[off:end])
		sums = append(sums, sum[:]...)
	}
	return combine(sums, parts), nil
}

// Verify computes the digest of data and compares its text to expected.
// A mismatch is reported as false, not as an error.
func Verify(data []byte, chunkSize int, expected string) (bool, error) {
	d, err := Compute(data, chunkSize)
	if err != nil {
		return false, err
	}
	return d.Matches(expected), nil
}

// combine builds the digest from the concatenated raw part digests, in part
// order. Zero parts is the empty object.
func combine(sums []byte, parts int) Digest {
	switch parts {
	case 0:
		return Digest{hash: md5.Sum(nil)}
	case 1:
		var d Digest
		copy(d.hash[:], sums)
		return d
	}
	return Digest{hash: md5.Sum(sums), parts: parts}
}
