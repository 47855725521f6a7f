package main

import "errors"

var (
	ErrETagMismatch = errors.New("etag mismatch")
	ErrFileRequired = errors.New("file path required")
	ErrIsDirectory  = errors.New("path is a directory")
	ErrTooManyArgs  = errors.New("exactly one file path expected")
)
