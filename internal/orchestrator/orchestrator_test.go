package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"meetflow/internal/artifacts"
	"meetflow/internal/database"
	"meetflow/internal/engines"
	"meetflow/internal/models"
	"meetflow/internal/repository"
	"meetflow/internal/stageexecutor"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *repository.JobRepository, *artifacts.Store) {
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

	jobs := repository.NewJobRepository(db)
	exportsRepo := repository.NewExportJobRepository(db)
	exec := stageexecutor.New(jobs, store, engines.MockASREngine{}, engines.MockDiarizationEngine{}, 1)
	exec.Start()
	t.Cleanup(exec.Stop)

	return New(jobs, exportsRepo, store, exec), jobs, store
}

func TestStartStage_RejectsIllegalTransition(t *testing.T) {
	orch, jobs, _ := newTestOrchestrator(t)
	ctx := context.Background()

	job := &models.Job{FileName: "a.wav", FileHash: "h1", WorkflowState: models.StateUploaded}
	require.NoError(t, jobs.Create(ctx, job))

	_, err := orch.StartStage(ctx, job.ID, stageexecutor.StageAlign)
	require.Error(t, err)

	reloaded, err := jobs.FindByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.StateUploaded, reloaded.WorkflowState)
}

func TestStartStage_AllowsValidTransition(t *testing.T) {
	orch, jobs, _ := newTestOrchestrator(t)
	ctx := context.Background()

	job := &models.Job{FileName: "a.wav", FileHash: "h2", WorkflowState: models.StateUploaded}
	require.NoError(t, jobs.Create(ctx, job))

	next, err := orch.StartStage(ctx, job.ID, stageexecutor.StageTranscribe)
	require.NoError(t, err)
	require.Equal(t, models.StateTranscribing, next)
}

func TestRenameJob_NoOpOnSameName(t *testing.T) {
	orch, jobs, store := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(store.UploadDir, 0o755))
	require.NoError(t, os.WriteFile(store.UploadPath("a.wav"), []byte("x"), 0o644))

	job := &models.Job{FileName: "a.wav", FileHash: "h3", WorkflowState: models.StateUploaded}
	require.NoError(t, jobs.Create(ctx, job))

	got, err := orch.RenameJob(ctx, job.ID, "a.wav")
	require.NoError(t, err)
	require.Equal(t, "a.wav", got.FileName)
}

func TestRenameJob_NoOpOnCopySuffixedName(t *testing.T) {
	orch, jobs, store := newTestOrchestrator(t)
	ctx := context.Background()

	// A collision-suffixed name carries parentheses that sanitize would
	// strip; renaming to the current name must still be a no-op.
	name := "a (Copy).wav"
	require.NoError(t, os.MkdirAll(store.UploadDir, 0o755))
	require.NoError(t, os.WriteFile(store.UploadPath(name), []byte("x"), 0o644))

	job := &models.Job{FileName: name, FileHash: "h5", WorkflowState: models.StateUploaded}
	require.NoError(t, jobs.Create(ctx, job))

	got, err := orch.RenameJob(ctx, job.ID, name)
	require.NoError(t, err)
	require.Equal(t, name, got.FileName)
	require.True(t, artifacts.Exists(store.UploadPath(name)))

	reloaded, err := jobs.FindByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, name, reloaded.FileName)
}

func TestDeleteJob_RemovesArtifactsAndReturnsNotFoundOnSecondCall(t *testing.T) {
	orch, jobs, store := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(store.UploadDir, 0o755))
	require.NoError(t, os.WriteFile(store.UploadPath("a.wav"), []byte("x"), 0o644))

	job := &models.Job{FileName: "a.wav", FileHash: "h4", WorkflowState: models.StateUploaded}
	require.NoError(t, jobs.Create(ctx, job))

	require.NoError(t, orch.DeleteJob(ctx, job.ID))
	require.False(t, artifacts.Exists(store.UploadPath("a.wav")))

	err := orch.DeleteJob(ctx, job.ID)
	require.Error(t, err)
}
