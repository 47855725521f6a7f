package chunk

import (
	"bytes"
	"testing"
)

func FuzzFixedSplitter(f *testing.F) {
	f.Add([]byte("hello"), 3)
	f.Add([]byte("hello"), 0)
	f.Add([]byte{}, 1)
	f.Fuzz(func(t *testing.T, data []byte, size int) {
		if size > 1<<20 {
			size = 1 << 20
		}
		splitter, err := NewFixedSplitter(size)
		if size <= 0 {
			if err == nil {
				t.Fatalf("expected error for size %d", size)
			}
			return
		}
		if err != nil {
			t.Fatalf("NewFixedSplitter: %v", err)
		}
		var (
			lastIndex = -1
			total     int
		)
		err = splitter.Split(bytes.NewReader(data), func(ch Chunk) error {
			if ch.Index <= lastIndex {
				t.Fatalf("chunk index not increasing: %d <= %d", ch.Index, lastIndex)
			}
			if len(ch.Data) > size || len(ch.Data) == 0 {
				t.Fatalf("chunk len=%d size=%d", len(ch.Data), size)
			}
			lastIndex = ch.Index
			total += len(ch.Data)
			return nil
		})
		if err != nil {
			t.Fatalf("Split: %v", err)
		}
		if total != len(data) {
			t.Fatalf("splitter total=%d want=%d", total, len(data))
		}
		if spans := Spans(int64(len(data)), size); len(data) > 0 && len(spans) != lastIndex+1 {
			t.Fatalf("spans=%d chunks=%d", len(spans), lastIndex+1)
		}
	})
}
