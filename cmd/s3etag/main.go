// s3etag prints the ETag S3 would assign to a file uploaded with a given
// part size, or checks a file against an expected ETag.
//
//	s3etag [-c MiB] [-e ETAG] [-j N] [--cache PATH] [--json] [--explain] FILE
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/kk-code-lab/s3etag/internal/etag"
	"github.com/kk-code-lab/s3etag/internal/meta"
)

var version = "dev"

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := run(ctx, args, stdout, stderr)
	if err == nil {
		return 0
	}
	var coder interface {
		error
		ExitCode() int
		Quiet() bool
	}
	if errors.As(err, &coder) {
		if !coder.Quiet() {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return coder.ExitCode()
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

type options struct {
	chunkMiB  int
	expected  string
	verify    bool
	jobs      int
	cachePath string
	cacheTTL  time.Duration
	jsonOut   bool
	explain   bool
	verbose   bool
	version   bool
	path      string
}

// parseFlags returns nil options without error when -h was given.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("s3etag", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.IntVarP(&opts.chunkMiB, "chunk-size", "c", etag.DefaultChunkSize>>20, "chunk size in MiB")
	flagSet.StringVarP(&opts.expected, "etag", "e", "", "expected ETag to verify against")
	flagSet.IntVarP(&opts.jobs, "jobs", "j", 1, "parallel hashing workers (0 = one per CPU)")
	flagSet.StringVar(&opts.cachePath, "cache", "", "SQLite ETag cache path")
	flagSet.DurationVar(&opts.cacheTTL, "cache-max-age", 0, "prune cache entries older than this (0 keeps all)")
	flagSet.BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	flagSet.BoolVar(&opts.explain, "explain", false, "print per-part offsets and digests")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")
	flagSet.BoolVar(&opts.version, "version", false, "print version and exit")
	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "usage: s3etag [flags] FILE")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, nil
		}
		return nil, usageError("invalid arguments", err)
	}
	if opts.version {
		return &opts, nil
	}
	opts.verify = flagSet.Changed("etag")
	switch rest := flagSet.Args(); {
	case len(rest) == 0:
		return nil, usageError("usage", ErrFileRequired)
	case len(rest) > 1:
		return nil, usageError("usage", ErrTooManyArgs)
	default:
		opts.path = rest[0]
	}
	if opts.jobs < 0 {
		return nil, usageError("invalid --jobs", fmt.Errorf("must be >= 0, got %d", opts.jobs))
	}
	return &opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil || opts == nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(stdout, "s3etag %s\n", version)
		return nil
	}
	logger := newLogger(stderr, opts.verbose)

	chunkSize, err := etag.ChunkSizeFromMiB(opts.chunkMiB)
	if err != nil {
		return usageError("invalid chunk size", err)
	}
	info, err := os.Stat(opts.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return usageError("file not found: "+opts.path, nil)
		}
		return ioError("stat", err)
	}
	if info.IsDir() {
		return usageError(opts.path, ErrIsDirectory)
	}
	if err := etag.CheckUploadShape(info.Size(), chunkSize); err != nil {
		logger.Warn("S3 would reject this upload shape", "file", opts.path, "size", humanize.IBytes(uint64(info.Size())), "chunk_size", humanize.IBytes(uint64(chunkSize)), "err", err)
	}

	var store *meta.Store
	if opts.cachePath != "" {
		store, err = meta.Open(opts.cachePath)
		if err != nil {
			return ioError("open cache", err)
		}
		defer store.Close()
		if opts.cacheTTL > 0 {
			pruneCache(ctx, store, opts.cacheTTL, logger)
		}
	}

	start := time.Now()
	digest, cached, err := computeCached(ctx, store, opts.path, info, chunkSize, opts.jobs, logger)
	if err != nil {
		return ioError("hash", err)
	}
	parts := etag.PartsFor(info.Size(), chunkSize)
	logger.Debug("computed etag",
		"file", opts.path,
		"size", humanize.IBytes(uint64(info.Size())),
		"chunk_size", humanize.IBytes(uint64(chunkSize)),
		"parts", parts,
		"cached", cached,
		"dur_ms", time.Since(start).Milliseconds(),
	)

	res := result{
		File:      opts.path,
		Size:      info.Size(),
		ChunkSize: chunkSize,
		Parts:     parts,
		ETag:      digest.String(),
		Cached:    cached,
	}
	if opts.explain {
		res.Spans, err = explainParts(ctx, opts.path, info.Size(), chunkSize)
		if err != nil {
			return ioError("explain", err)
		}
	}

	var mismatch bool
	if opts.verify {
		expected := etag.Normalize(opts.expected)
		match := digest.Matches(expected)
		res.Expected = &expected
		res.Match = &match
		mismatch = !match
		if mismatch && etag.IsMultipart(expected) != digest.IsMultipart() {
			logger.Debug("part layout differs; try another --chunk-size", "expected", expected, "got", res.ETag)
		}
	}

	if err := printResult(stdout, res, opts); err != nil {
		return err
	}
	if mismatch {
		return &exitCodeError{code: exitMismatch, msg: ErrETagMismatch.Error(), quiet: true}
	}
	return nil
}

func printResult(w io.Writer, res result, opts *options) error {
	if opts.jsonOut {
		return writeJSON(w, res)
	}
	if opts.explain {
		for _, row := range res.Spans {
			fmt.Fprintf(w, "part=%d offset=%d len=%d md5=%s\n", row.Part, row.Offset, row.Len, row.MD5)
		}
	}
	if res.Match != nil {
		if *res.Match {
			_, err := fmt.Fprintln(w, "TRUE")
			return err
		}
		_, err := fmt.Fprintln(w, "FALSE")
		return err
	}
	_, err := fmt.Fprintln(w, res.ETag)
	return err
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
