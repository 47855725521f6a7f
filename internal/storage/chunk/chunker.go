package chunk

import (
	"bytes"
	"errors"
	"io"
)

// DefaultSize is the default part size (8 MiB), matching the AWS CLI.
const DefaultSize = 8 << 20

// initialBuffer caps the up-front allocation per chunk; buffers grow as
// data arrives so a large Size costs nothing on short input.
const initialBuffer = 1 << 20

// ErrInvalidSize is returned for a non-positive part size.
var ErrInvalidSize = errors.New("chunk: size must be positive")

// Chunk is a unit produced by the chunker.
type Chunk struct {
	Index int
	Hash  [HashSize]byte
	Data  []byte
}

// FixedSplitter splits streams into fixed-size chunks.
type FixedSplitter struct {
	Size int
	// SkipHash leaves Chunk.Hash zeroed so callers can hash off the read path.
	SkipHash bool
}

// NewFixedSplitter creates a fixed-size splitter.
func NewFixedSplitter(size int) (*FixedSplitter, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return &FixedSplitter{Size: size}, nil
}

// Split streams chunks to the callback; the final chunk may be smaller.
// Empty input produces no chunks.
func (s *FixedSplitter) Split(r io.Reader, fn func(Chunk) error) error {
	if s.Size <= 0 {
		return ErrInvalidSize
	}
	limit := int64(s.Size)
	index := 0
	for {
		var buf bytes.Buffer
		buf.Grow(min(s.Size, initialBuffer))
		n, err := io.CopyN(&buf, r, limit)
		if err != nil && err != io.EOF {
			return err
		}
		if n == 0 {
			return nil
		}
		chunk := Chunk{
			Index: index,
			Data:  buf.Bytes(),
		}
		if !s.SkipHash {
			chunk.Hash = Hash(chunk.Data)
		}
		if err := fn(chunk); err != nil {
			return err
		}
		index++
		if err == io.EOF {
			return nil
		}
	}
}
