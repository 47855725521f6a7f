package etag

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kk-code-lab/s3etag/internal/storage/chunk"
)

const readBufferSize = 1 << 20

// ComputeReader streams r through a Hasher. ctx is checked between reads.
func ComputeReader(ctx context.Context, r io.Reader, chunkSize int) (Digest, error) {
	h, err := NewHasher(chunkSize)
	if err != nil {
		return Digest{}, err
	}
	buf := make([]byte, min(readBufferSize, chunkSize))
	if _, err := io.CopyBuffer(h, ctxReader{ctx: ctx, r: r}, buf); err != nil {
		return Digest{}, err
	}
	return h.Digest(), nil
}

// ComputeParallel hashes parts of r on up to workers goroutines. Part
// digests are combined in part order regardless of completion order.
// workers <= 0 uses GOMAXPROCS. At most workers parts are held in memory
// besides the one being read.
func ComputeParallel(ctx context.Context, r io.Reader, chunkSize, workers int) (Digest, error) {
	if chunkSize <= 0 {
		return Digest{}, ErrInvalidChunkSize
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	splitter := &chunk.FixedSplitter{Size: chunkSize, SkipHash: true}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var (
		mu   sync.Mutex
		sums [][Size]byte
	)
	splitErr := splitter.Split(ctxReader{ctx: gctx, r: r}, func(c chunk.Chunk) error {
		mu.Lock()
		sums = append(sums, [Size]byte{})
		mu.Unlock()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum := chunk.Hash(c.Data)
			mu.Lock()
			sums[c.Index] = sum
			mu.Unlock()
			return nil
		})
		return nil
	})
	waitErr := g.Wait()
	if splitErr != nil {
		return Digest{}, splitErr
	}
	if waitErr != nil {
		return Digest{}, waitErr
	}

	if len(sums) == 1 {
		return Digest{hash: sums[0]}, nil
	}
	concat := make([]byte, 0, len(sums)*Size)
	for i := range sums {
		concat = append(concat, sums[i][:]...)
	}
	return combine(concat, len(sums)), nil
}

// ComputeFile hashes the file at path. workers == 1 streams sequentially;
// anything else hashes parts in parallel.
func ComputeFile(ctx context.Context, path string, chunkSize, workers int) (Digest, error) {
	if chunkSize <= 0 {
		return Digest{}, ErrInvalidChunkSize
	}
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()

	var d Digest
	if workers == 1 {
		d, err = ComputeReader(ctx, f, chunkSize)
	} else {
		d, err = ComputeParallel(ctx, f, chunkSize, workers)
	}
	if err != nil {
		return Digest{}, fmt.Errorf("etag: read %s: %w", path, err)
	}
	return d, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
