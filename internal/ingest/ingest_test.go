package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"meetflow/internal/artifacts"
	"meetflow/internal/database"
	"meetflow/internal/models"
	"meetflow/internal/repository"
)

type fakeTranscoder struct{ calls int }

func (f *fakeTranscoder) ToWAV(ctx context.Context, inputPath, outputPath string) error {
	f.calls++
	return os.WriteFile(outputPath, []byte("RIFF...fakewav"), 0o644)
}

func newTestService(t *testing.T) (*Service, *fakeTranscoder) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.db"), 1, 5)
	require.NoError(t, err)

	store, err := artifacts.New(
		filepath.Join(dir, "uploads"),
		filepath.Join(dir, "transcripts"),
		filepath.Join(dir, "transcripts_edited"),
		filepath.Join(dir, "summaries"),
		filepath.Join(dir, "exports"),
	)
	require.NoError(t, err)

	transcoder := &fakeTranscoder{}
	jobs := repository.NewJobRepository(db)
	return New(jobs, store, transcoder, 100*1024*1024), transcoder
}

func TestCreateJob_WAVUpload_NoTranscode(t *testing.T) {
	svc, transcoder := newTestService(t)

	result, err := svc.CreateJob(context.Background(), "meeting.wav", strings.NewReader("RIFF-fake-wav-bytes"))
	require.NoError(t, err)
	require.False(t, result.Duplicate)
	require.Equal(t, models.StateUploaded, result.Job.WorkflowState)
	require.Equal(t, 0, transcoder.calls)
	require.True(t, strings.HasSuffix(result.Job.FileName, ".wav"))
}

func TestCreateJob_NonWAVUpload_Transcodes(t *testing.T) {
	svc, transcoder := newTestService(t)

	result, err := svc.CreateJob(context.Background(), "meeting.mp3", strings.NewReader("id3-fake-mp3-bytes"))
	require.NoError(t, err)
	require.Equal(t, 1, transcoder.calls)
	require.True(t, strings.HasSuffix(result.Job.FileName, ".wav"))
}

func TestCreateJob_DuplicateBytesReturnSameJob(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateJob(ctx, "a.wav", strings.NewReader("identical-bytes"))
	require.NoError(t, err)

	second, err := svc.CreateJob(ctx, "b.wav", strings.NewReader("identical-bytes"))
	require.NoError(t, err)

	require.True(t, second.Duplicate)
	require.Equal(t, first.Job.ID, second.Job.ID)
}

func TestCreateJob_RejectsDisallowedExtension(t *testing.T) {
	svc, _ := newTestService(t)
	svc.AllowedTypes = []string{".wav", ".mp3"}

	_, err := svc.CreateJob(context.Background(), "notes.txt", strings.NewReader("plain text"))
	require.Error(t, err)

	result, err := svc.CreateJob(context.Background(), "meeting.wav", strings.NewReader("RIFF-allowed"))
	require.NoError(t, err)
	require.False(t, result.Duplicate)
}

func TestCreateJob_OversizeUploadFails(t *testing.T) {
	svc, _ := newTestService(t)
	svc.MaxFileSize = 4

	_, err := svc.CreateJob(context.Background(), "big.wav", strings.NewReader("this-is-too-big"))
	require.Error(t, err)
}
