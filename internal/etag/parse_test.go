package etag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: `"abc-2"`, want: "abc-2"},
		{in: ` "abc" `, want: "abc"},
		{in: "abc", want: "abc"},
		{in: `"`, want: ""},
		{in: `""`, want: ""},
		{in: `"abc`, want: "abc"},
		{in: "\tabc-3\n", want: "abc-3"},
		{in: `""abc""`, want: "abc"},
		{in: `"abc-2""`, want: "abc-2"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestIsMultipart(t *testing.T) {
	require.True(t, IsMultipart(`"669fdad9e309b552f1e9cf7b489c1f73-2"`))
	require.False(t, IsMultipart("5d41402abc4b2a76b9719d911017c592"))
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{
		"5d41402abc4b2a76b9719d911017c592",
		"669fdad9e309b552f1e9cf7b489c1f73-2",
		"2b26d4c146cf1500e532eed66eba4a36-5",
	} {
		d, err := Parse(s)
		require.NoError(t, err)
		require.Equal(t, s, d.String())
	}

	d, err := Compute(pattern(50), 7)
	require.NoError(t, err)
	parsed, err := Parse(d.String())
	require.NoError(t, err)
	require.Equal(t, d, parsed)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"wrong-value",
		"5D41402ABC4B2A76B9719D911017C592",
		"5d41402abc4b2a76b9719d911017c59",
		"5d41402abc4b2a76b9719d911017c592-",
		"5d41402abc4b2a76b9719d911017c592-0",
		"5d41402abc4b2a76b9719d911017c592-1",
		"5d41402abc4b2a76b9719d911017c592-02",
		"5d41402abc4b2a76b9719d911017c592-x",
		"zz41402abc4b2a76b9719d911017c592",
		`"5d41402abc4b2a76b9719d911017c592"`,
	} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrMalformedETag, "Parse(%q)", s)
	}
}

func TestChunkSizeFromMiB(t *testing.T) {
	size, err := ChunkSizeFromMiB(8)
	require.NoError(t, err)
	require.Equal(t, DefaultChunkSize, size)

	size, err = ChunkSizeFromMiB(1)
	require.NoError(t, err)
	require.Equal(t, 1024*1024, size)

	for _, mb := range []int{0, -1} {
		_, err := ChunkSizeFromMiB(mb)
		require.ErrorIs(t, err, ErrInvalidChunkSize)
	}
}

func TestPartsFor(t *testing.T) {
	require.Equal(t, 1, PartsFor(0, 8))
	require.Equal(t, 1, PartsFor(8, 8))
	require.Equal(t, 2, PartsFor(9, 8))
	require.Equal(t, 2, PartsFor(10*mib, 8*mib))
	require.Equal(t, 0, PartsFor(10, 0))
}

func TestCheckUploadShape(t *testing.T) {
	require.NoError(t, CheckUploadShape(10*mib, 8*mib))
	require.NoError(t, CheckUploadShape(1, 1), "one byte object fits one part")
	require.NoError(t, CheckUploadShape(0, 1))
	require.ErrorIs(t, CheckUploadShape(10*mib, 1*mib), ErrPartTooSmall)
	require.ErrorIs(t, CheckUploadShape(int64(MaxParts+1)*8*mib, 8*mib), ErrTooManyParts)
	require.ErrorIs(t, CheckUploadShape(6<<30, 6<<30), ErrPartTooLarge)
	require.ErrorIs(t, CheckUploadShape(10, 0), ErrInvalidChunkSize)
}
