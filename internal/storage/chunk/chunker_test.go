package chunk

import (
	"bytes"
	"crypto/md5"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedSplitterBoundaries(t *testing.T) {
	size := 8
	cases := []struct {
		name      string
		inputSize int
		wantCnt   int
	}{
		{name: "empty", inputSize: 0, wantCnt: 0},
		{name: "one", inputSize: 1, wantCnt: 1},
		{name: "size-1", inputSize: size - 1, wantCnt: 1},
		{name: "size", inputSize: size, wantCnt: 1},
		{name: "size+1", inputSize: size + 1, wantCnt: 2},
		{name: "double+tail", inputSize: size*2 + 3, wantCnt: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := make([]byte, tc.inputSize)
			for i := range input {
				input[i] = byte(i % 251)
			}
			var got []Chunk
			splitter, err := NewFixedSplitter(size)
			require.NoError(t, err)
			err = splitter.Split(bytes.NewReader(input), func(c Chunk) error {
				got = append(got, c)
				return nil
			})
			require.NoError(t, err)
			require.Len(t, got, tc.wantCnt)
			var rebuilt []byte
			for i, c := range got {
				require.Equal(t, i, c.Index, "chunk index")
				require.Equal(t, Hash(c.Data), c.Hash, "hash for chunk %d", i)
				if i < len(got)-1 {
					require.Len(t, c.Data, size)
				}
				rebuilt = append(rebuilt, c.Data...)
			}
			if tc.inputSize == 0 {
				require.Empty(t, rebuilt)
				return
			}
			require.Equal(t, input, rebuilt)
		})
	}
}

func TestFixedSplitterLargeSizeShortInput(t *testing.T) {
	splitter, err := NewFixedSplitter(1 << 45)
	require.NoError(t, err)
	var got []Chunk
	err = splitter.Split(bytes.NewReader([]byte("hello")), func(c Chunk) error {
		got = append(got, c)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []byte("hello"), got[0].Data)
	require.Equal(t, Hash([]byte("hello")), got[0].Hash)
}

func TestFixedSplitterRejectsInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := NewFixedSplitter(size)
		require.ErrorIs(t, err, ErrInvalidSize)

		s := &FixedSplitter{Size: size}
		err = s.Split(bytes.NewReader(nil), func(Chunk) error { return nil })
		require.ErrorIs(t, err, ErrInvalidSize)
	}
}

func TestFixedSplitterSkipHash(t *testing.T) {
	splitter, err := NewFixedSplitter(4)
	require.NoError(t, err)
	splitter.SkipHash = true
	err = splitter.Split(bytes.NewReader([]byte("abcdefg")), func(c Chunk) error {
		require.Equal(t, [HashSize]byte{}, c.Hash)
		return nil
	})
	require.NoError(t, err)
}

func TestFixedSplitterCallbackError(t *testing.T) {
	stop := errors.New("stop")
	splitter, err := NewFixedSplitter(2)
	require.NoError(t, err)
	calls := 0
	err = splitter.Split(bytes.NewReader([]byte("abcdef")), func(Chunk) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}

func TestHashIsMD5(t *testing.T) {
	require.Equal(t, md5.Sum([]byte("hello")), Hash([]byte("hello")))
}

func TestSpans(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		size  int
		want  []Span
	}{
		{name: "empty", total: 0, size: 4, want: []Span{{}}},
		{name: "short", total: 3, size: 4, want: []Span{{Offset: 0, Len: 3}}},
		{name: "exact", total: 4, size: 4, want: []Span{{Offset: 0, Len: 4}}},
		{name: "tail", total: 9, size: 4, want: []Span{{0, 4}, {4, 4}, {8, 1}}},
		{name: "bad size", total: 9, size: 0, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Spans(tc.total, tc.size))
		})
	}
}
