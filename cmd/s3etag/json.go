package main

import (
	"encoding/json"
	"fmt"
	"io"
)

type result struct {
	File      string    `json:"file"`
	Size      int64     `json:"size"`
	ChunkSize int       `json:"chunk_size"`
	Parts     int       `json:"parts"`
	ETag      string    `json:"etag"`
	Cached    bool      `json:"cached"`
	Expected  *string   `json:"expected,omitempty"`
	Match     *bool     `json:"match,omitempty"`
	Spans     []partRow `json:"spans,omitempty"`
}

type partRow struct {
	Part   int    `json:"part"`
	Offset int64  `json:"offset"`
	Len    int64  `json:"len"`
	MD5    string `json:"md5"`
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
