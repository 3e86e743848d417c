package artifacts

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(
		filepath.Join(dir, "uploads"),
		filepath.Join(dir, "transcripts"),
		filepath.Join(dir, "transcripts_edited"),
		filepath.Join(dir, "summaries"),
		filepath.Join(dir, "exports"),
	)
	require.NoError(t, err)
	return s
}

func TestNew_CreatesBucketDirectories(t *testing.T) {
	s := newTestStore(t)
	for _, dir := range []string{s.UploadDir, s.TranscriptDir, s.TranscriptEditedDir, s.SummaryDir, s.ExportDir} {
		require.DirExists(t, dir)
	}
}

func TestBasename(t *testing.T) {
	require.Equal(t, "meeting", Basename("meeting.wav"))
	require.Equal(t, "meeting (Copy)", Basename("meeting (Copy).wav"))
	require.Equal(t, "noext", Basename("noext"))
}

func TestPathConventions(t *testing.T) {
	s := newTestStore(t)
	require.Equal(t, filepath.Join(s.TranscriptDir, "a.json"), s.TranscriptPath("a"))
	require.Equal(t, filepath.Join(s.TranscriptEditedDir, "a.json"), s.TranscriptEditedPath("a"))
	require.Equal(t, filepath.Join(s.SummaryDir, "job-1"), s.SummaryPath("job-1"))
	require.Equal(t, filepath.Join(s.ExportDir, "e1.pdf"), s.ExportPath("e1", "pdf"))
}

func TestWriteFile_RoundTripAndReplace(t *testing.T) {
	s := newTestStore(t)
	path := s.SummaryPath("job-1")

	require.NoError(t, WriteFile(path, []byte("first")))
	require.True(t, Exists(path))

	require.NoError(t, WriteFile(path, []byte("second")))
	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(got))
}

func TestRemove_MissingFileIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, Remove(s.SummaryPath("never-written")))
	require.NoError(t, s.RemoveUpload("never-written.wav"))
}
