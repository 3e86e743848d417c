package streaming

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func openFile(path string) (*os.File, error) {
	return os.Open(path)
}

func TestParseRange_Explicit(t *testing.T) {
	r, ok := ParseRange("bytes=0-0", 100)
	require.True(t, ok)
	require.Equal(t, Range{0, 0}, r)
	require.Equal(t, int64(1), r.Length())
}

func TestParseRange_Suffix(t *testing.T) {
	r, ok := ParseRange("bytes=-1", 100)
	require.True(t, ok)
	require.Equal(t, Range{99, 99}, r)
}

func TestParseRange_Open(t *testing.T) {
	r, ok := ParseRange("bytes=99-", 100)
	require.True(t, ok)
	require.Equal(t, Range{99, 99}, r)
}

func TestParseRange_ExplicitMidRange(t *testing.T) {
	r, ok := ParseRange("bytes=1048576-1572863", 2097152)
	require.True(t, ok)
	require.Equal(t, int64(1048576), r.Start)
	require.Equal(t, int64(1572863), r.End)
	require.Equal(t, int64(524288), r.Length())
}

func TestParseRange_InvertedDegrades(t *testing.T) {
	_, ok := ParseRange("bytes=10-5", 100)
	require.False(t, ok)
}

func TestParseRange_MalformedDegrades(t *testing.T) {
	_, ok := ParseRange("not-a-range", 100)
	require.False(t, ok)

	_, ok = ParseRange("bytes=", 100)
	require.False(t, ok)

	_, ok = ParseRange("bytes=abc-def", 100)
	require.False(t, ok)
}

func TestParseRange_ClampsEndBeyondSize(t *testing.T) {
	r, ok := ParseRange("bytes=0-999999", 100)
	require.True(t, ok)
	require.Equal(t, int64(99), r.End)
}

func TestContentType(t *testing.T) {
	require.Equal(t, "audio/wav", ContentType("a.wav"))
	require.Equal(t, "audio/mpeg", ContentType("a.mp3"))
	require.Equal(t, "application/octet-stream", ContentType("a.xyz"))
}

func TestCopyFull_WritesEntireContent(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/f.bin"
	data := bytes.Repeat([]byte{0x42}, 3*chunkSize+17)
	require.NoError(t, writeFile(path, data))

	f, err := openFile(path)
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, CopyFull(&buf, f))
	require.Equal(t, data, buf.Bytes())
}

func TestCopyRange_WritesExactSlice(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/f.bin"
	data := make([]byte, 2097152)
	for i := range data {
		data[i] = byte(i % 256)
	}
	require.NoError(t, writeFile(path, data))

	f, err := openFile(path)
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	r := Range{Start: 1048576, End: 1572863}
	require.NoError(t, CopyRange(&buf, f, r))
	require.Equal(t, data[r.Start:r.End+1], buf.Bytes())
	require.Equal(t, int(r.Length()), buf.Len())
}
