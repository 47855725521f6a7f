package etag

import (
	"crypto/md5"
	"hash"
)

// Hasher computes an ETag digest incrementally. It implements hash.Hash;
// Sum yields the raw digest bytes without the part count.
//
// Memory use is independent of the input length: only the in-flight part
// state and the completed part digests are kept.
type Hasher struct {
	chunkSize int
	part      hash.Hash
	partLen   int
	sums      []byte
	parts     int
	written   int64
}

var _ hash.Hash = (*Hasher)(nil)

// NewHasher returns a Hasher cutting parts every chunkSize bytes.
func NewHasher(chunkSize int) (*Hasher, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	return &Hasher{chunkSize: chunkSize, part: md5.New()}, nil
}

// Write feeds p into the current part, closing parts at chunk boundaries.
// It never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)
	h.written += int64(n)
	for len(p) > 0 {
		take := min(h.chunkSize-h.partLen, len(p))
		_, _ = h.part.Write(p[:take])
		h.partLen += take
		p = p[take:]
		if h.partLen == h.chunkSize {
			h.sums = h.part.Sum(h.sums)
			h.parts++
			h.part.Reset()
			h.partLen = 0
		}
	}
	return n, nil
}

// Digest returns the digest of everything written so far. The Hasher state
// is left untouched.
func (h *Hasher) Digest() Digest {
	if h.partLen == 0 {
		return combine(h.sums, h.parts)
	}
	if h.parts == 0 {
		var d Digest
		copy(d.hash[:], h.part.Sum(nil))
		return d
	}
	sums := make([]byte, len(h.sums), len(h.sums)+Size)
	copy(sums, h.sums)
	return combine(h.part.Sum(sums), h.parts+1)
}

// Parts returns the number of parts the written bytes span.
func (h *Hasher) Parts() int {
	if h.partLen > 0 {
		return h.parts + 1
	}
	return h.parts
}

// Written returns the total number of bytes written.
func (h *Hasher) Written() int64 {
	return h.written
}

// ChunkSize returns the configured part size.
func (h *Hasher) ChunkSize() int {
	return h.chunkSize
}

// Sum appends the raw digest bytes to b.
func (h *Hasher) Sum(b []byte) []byte {
	sum := h.Digest().Hash()
	return append(b, sum[:]...)
}

// Reset discards everything written.
func (h *Hasher) Reset() {
	h.part.Reset()
	h.partLen = 0
	h.sums = h.sums[:0]
	h.parts = 0
	h.written = 0
}

// Size returns the digest width.
func (h *Hasher) Size() int {
	return Size
}

// BlockSize returns the underlying MD5 block size.
func (h *Hasher) BlockSize() int {
	return md5.BlockSize
}
