package retention

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meetflow/internal/artifacts"
	"meetflow/internal/database"
	"meetflow/internal/models"
	"meetflow/internal/repository"
)

func newTestScheduler(t *testing.T, jobRetention, exportRetention time.Duration) (*Scheduler, *repository.JobRepository, *artifacts.Store, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.db"), 1, 4)
	require.NoError(t, err)

	store, err := artifacts.New(
		filepath.Join(dir, "uploads"),
		filepath.Join(dir, "transcripts"),
		filepath.Join(dir, "transcripts_edited"),
		filepath.Join(dir, "summaries"),
		filepath.Join(dir, "exports"),
	)
	require.NoError(t, err)

	jobs := repository.NewJobRepository(db)
	exports := repository.NewExportJobRepository(db)

	return New(jobs, exports, store, time.Hour, jobRetention, exportRetention), jobs, store, dir
}

func TestSweep_DeletesExpiredJobAndArtifacts(t *testing.T) {
	s, jobs, store, _ := newTestScheduler(t, time.Millisecond, time.Hour)
	ctx := context.Background()

	job := &models.Job{FileName: "a.wav", FileHash: "h1", WorkflowState: models.StateCompleted}
	require.NoError(t, jobs.Create(ctx, job))
	require.NoError(t, artifacts.WriteFile(store.UploadPath("a.wav"), []byte("audio")))
	require.NoError(t, artifacts.WriteFile(store.TranscriptPath("a"), []byte("[]")))

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.sweep())

	_, err := jobs.FindByID(ctx, job.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.False(t, artifacts.Exists(store.UploadPath("a.wav")))
	require.False(t, artifacts.Exists(store.TranscriptPath("a")))
}

func TestSweep_DeletesOrphanedNonWAVUpload(t *testing.T) {
	s, _, store, _ := newTestScheduler(t, time.Hour, time.Hour)

	orphanPath := store.UploadPath("leftover.mp3")
	require.NoError(t, artifacts.WriteFile(orphanPath, []byte("x")))
	oldTime := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(orphanPath, oldTime, oldTime))

	require.NoError(t, s.sweep())
	require.False(t, artifacts.Exists(orphanPath))
}

func TestSweep_KeepsRecentOrphanAndWAV(t *testing.T) {
	s, _, store, _ := newTestScheduler(t, time.Hour, time.Hour)

	recentPath := store.UploadPath("recent.mp3")
	require.NoError(t, artifacts.WriteFile(recentPath, []byte("x")))

	wavPath := store.UploadPath("keep.wav")
	require.NoError(t, artifacts.WriteFile(wavPath, []byte("x")))
	oldTime := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(wavPath, oldTime, oldTime))

	require.NoError(t, s.sweep())
	require.True(t, artifacts.Exists(recentPath))
	require.True(t, artifacts.Exists(wavPath))
}

func TestStartStop_StopsPromptly(t *testing.T) {
	s, _, _, _ := newTestScheduler(t, time.Hour, time.Hour)
	s.interval = time.Hour
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return promptly")
	}
}
