package main

import (
	"context"
	"encoding/hex"
	"io"
	"os"

	"github.com/kk-code-lab/s3etag/internal/storage/chunk"
)

// explainParts hashes each part of the file separately so the layout behind
// a multipart ETag can be compared with an upload's part list.
func explainParts(ctx context.Context, path string, size int64, chunkSize int) ([]partRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	spans := chunk.Spans(size, chunkSize)
	rows := make([]partRow, 0, len(spans))
	buf := make([]byte, min(int64(chunkSize), max(size, 0)))
	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data := buf[:span.Len]
		if _, err := io.ReadFull(io.NewSectionReader(f, span.Offset, span.Len), data); err != nil {
			return nil, err
		}
		sum := chunk.Hash(data)
		rows = append(rows, partRow{
			Part:   i + 1,
			Offset: span.Offset,
			Len:    span.Len,
			MD5:    hex.EncodeToString(sum[:]),
		})
	}
	return rows, nil
}
