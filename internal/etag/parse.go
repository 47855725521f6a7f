package etag

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedETag is returned by Parse for text that is not a canonical ETag.
var ErrMalformedETag = errors.New("etag: malformed etag")

// Normalize strips surrounding whitespace and any leading or trailing double
// quotes, the form S3 returns in ETag headers and listings.
func Normalize(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// IsMultipart reports whether s carries a part-count suffix.
func IsMultipart(s string) bool {
	return strings.Contains(Normalize(s), "-")
}

// Parse reads canonical ETag text back into a Digest. Parse(d.String())
// returns d for every digest produced by this package.
func Parse(s string) (Digest, error) {
	hexPart, partsPart, multipart := strings.Cut(s, "-")
	if len(hexPart) != hex.EncodedLen(Size) || strings.ToLower(hexPart) != hexPart {
		return Digest{}, fmt.Errorf("%w: %q", ErrMalformedETag, s)
	}
	raw, err := hex.DecodeString(hexPart)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %q", ErrMalformedETag, s)
	}
	var d Digest
	copy(d.hash[:], raw)
	if !multipart {
		return d, nil
	}
	parts, err := strconv.Atoi(partsPart)
	if err != nil || parts < 2 || strconv.Itoa(parts) != partsPart {
		return Digest{}, fmt.Errorf("%w: %q", ErrMalformedETag, s)
	}
	d.parts = parts
	return d, nil
}

// ChunkSizeFromMiB converts a part size given in megabytes to bytes.
func ChunkSizeFromMiB(mb int) (int, error) {
	if mb <= 0 || mb > math.MaxInt>>20 {
		return 0, fmt.Errorf("%w: %d MiB", ErrInvalidChunkSize, mb)
	}
	return mb << 20, nil
}

// PartsFor returns how many parts an object of size bytes has when cut at
// chunkSize. An empty object is one part.
func PartsFor(size int64, chunkSize int) int {
	if chunkSize <= 0 {
		return 0
	}
	if size <= 0 {
		return 1
	}
	step := int64(chunkSize)
	return int((size + step - 1) / step)
}
