package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"meetflow/internal/artifacts"
	"meetflow/internal/models"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	store, err := artifacts.New(
		filepath.Join(dir, "uploads"),
		filepath.Join(dir, "transcripts"),
		filepath.Join(dir, "transcripts_edited"),
		filepath.Join(dir, "summaries"),
		filepath.Join(dir, "exports"),
	)
	require.NoError(t, err)
	return New(store)
}

func writeCanonical(t *testing.T, c *Cache, basename string, segs []models.AttributedSegment) {
	t.Helper()
	payload := `[{"speaker":"SPEAKER_00","text":"hi","start":"0.00","end":"1.00"}]`
	require.NoError(t, os.WriteFile(c.Store.TranscriptPath(basename), []byte(payload), 0o644))
}

func TestGetTranscript_NotFound(t *testing.T) {
	c := newTestCache(t)
	_, err := c.GetTranscript("missing.wav")
	require.Error(t, err)
}

func TestGetTranscript_CanonicalWhenNoEdit(t *testing.T) {
	c := newTestCache(t)
	writeCanonical(t, c, "a", nil)

	got, err := c.GetTranscript("a.wav")
	require.NoError(t, err)
	require.False(t, got.IsEdited)
	require.Len(t, got.Segments, 1)
}

func TestPutEditedTranscript_PrefersEditedOnRead(t *testing.T) {
	c := newTestCache(t)
	writeCanonical(t, c, "a", nil)

	edited := []models.AttributedSegment{{Speaker: "Speaker 1", Text: "hello", Start: "0.00", End: "1.00"}}
	require.NoError(t, c.PutEditedTranscript("job-1", "a.wav", edited))

	got, err := c.GetTranscript("a.wav")
	require.NoError(t, err)
	require.True(t, got.IsEdited)
	require.Equal(t, "Speaker 1", got.Segments[0].Speaker)
}

func TestPutEditedTranscript_InvalidatesSummary(t *testing.T) {
	c := newTestCache(t)
	writeCanonical(t, c, "a", nil)
	require.NoError(t, os.WriteFile(c.Store.SummaryPath("job-1"), []byte("cached summary"), 0o644))

	edited := []models.AttributedSegment{{Speaker: "SPEAKER_00", Text: "x", Start: "0.00", End: "1.00"}}
	require.NoError(t, c.PutEditedTranscript("job-1", "a.wav", edited))

	require.False(t, artifacts.Exists(c.Store.SummaryPath("job-1")))
}

func TestRenameSpeakers_AppliesMappingAndInvalidates(t *testing.T) {
	c := newTestCache(t)
	writeCanonical(t, c, "a", nil)
	require.NoError(t, os.WriteFile(c.Store.SummaryPath("job-1"), []byte("cached"), 0o644))

	err := c.RenameSpeakers("job-1", "a.wav", map[string]string{"SPEAKER_00": "Alice"})
	require.NoError(t, err)

	got, err := c.GetTranscript("a.wav")
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Segments[0].Speaker)
	require.False(t, artifacts.Exists(c.Store.SummaryPath("job-1")))
}

func TestPutEditedTranscript_RejectsMissingFields(t *testing.T) {
	c := newTestCache(t)
	bad := []models.AttributedSegment{{Speaker: "", Text: "x", Start: "0.00", End: "1.00"}}
	err := c.PutEditedTranscript("job-1", "a.wav", bad)
	require.Error(t, err)
}
