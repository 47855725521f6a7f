package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kk-code-lab/s3etag/internal/etag"
	"github.com/kk-code-lab/s3etag/internal/meta"
)

// computeCached hashes path unless store holds an ETag for the same file
// state and chunk size. Cache failures are logged, never fatal.
func computeCached(ctx context.Context, store *meta.Store, path string, info fs.FileInfo, chunkSize, jobs int, logger *slog.Logger) (etag.Digest, bool, error) {
	if store == nil {
		d, err := etag.ComputeFile(ctx, path, chunkSize, jobs)
		return d, false, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	key := meta.Key{
		Path:         abs,
		Size:         info.Size(),
		ModTimeNanos: info.ModTime().UnixNano(),
		ChunkSize:    chunkSize,
	}
	entry, err := store.Lookup(ctx, key)
	switch {
	case err == nil:
		d, perr := etag.Parse(entry.ETag)
		if perr == nil {
			return d, true, nil
		}
		logger.Warn("discarding corrupt cache entry", "file", abs, "err", perr)
	case !errors.Is(err, meta.ErrNotFound):
		logger.Warn("cache lookup failed", "file", abs, "err", err)
	}

	d, err := etag.ComputeFile(ctx, path, chunkSize, jobs)
	if err != nil {
		return etag.Digest{}, false, err
	}
	parts := 1
	if n, ok := d.Parts(); ok {
		parts = n
	}
	if err := store.Put(ctx, meta.Entry{Key: key, ETag: d.String(), Parts: parts}); err != nil {
		logger.Warn("cache write failed", "file", abs, "err", err)
	}
	return d, false, nil
}

func pruneCache(ctx context.Context, store *meta.Store, maxAge time.Duration, logger *slog.Logger) {
	n, err := store.Prune(ctx, store.Now().Add(-maxAge))
	if err != nil {
		logger.Warn("cache prune failed", "err", err)
		return
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		logger.Warn("cache stats failed", "err", err)
		return
	}
	logger.Debug("cache pruned", "removed", n, "entries", stats.Entries, "last_write", stats.LastWrite)
}
