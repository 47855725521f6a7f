package etag

import (
	"errors"
	"fmt"
)

// S3 multipart upload limits.
const (
	MinPartSize = 5 << 20
	MaxPartSize = 5 << 30
	MaxParts    = 10000
)

var (
	// ErrPartTooSmall means a non-final part would be under MinPartSize.
	ErrPartTooSmall = errors.New("etag: part size below S3 minimum")
	// ErrPartTooLarge means a part would exceed MaxPartSize.
	ErrPartTooLarge = errors.New("etag: part size above S3 maximum")
	// ErrTooManyParts means the upload would need more than MaxParts parts.
	ErrTooManyParts = errors.New("etag: part count above S3 maximum")
)

// CheckUploadShape reports whether S3 would accept a multipart upload of
// size bytes cut at chunkSize. The last part is exempt from the minimum.
// A non-nil result is advisory; the digest can still be computed.
func CheckUploadShape(size int64, chunkSize int) error {
	if chunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	parts := PartsFor(size, chunkSize)
	if parts > MaxParts {
		return fmt.Errorf("%w: %d parts", ErrTooManyParts, parts)
	}
	if int64(chunkSize) > MaxPartSize && size > MaxPartSize {
		return fmt.Errorf("%w: %d bytes", ErrPartTooLarge, chunkSize)
	}
	if parts > 1 && chunkSize < MinPartSize {
		return fmt.Errorf("%w: %d bytes", ErrPartTooSmall, chunkSize)
	}
	return nil
}
