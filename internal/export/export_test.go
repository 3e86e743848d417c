package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meetflow/internal/artifacts"
	"meetflow/internal/cache"
	"meetflow/internal/database"
	"meetflow/internal/llm"
	"meetflow/internal/models"
	"meetflow/internal/repository"
	"meetflow/internal/summary"
)

type stubLLM struct{}

func (stubLLM) ChatCompletion(ctx context.Context, model string, messages []llm.ChatMessage, temperature float64) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{
		Choices: []llm.ChatChoice{{
			Message: llm.ChatMessage{Role: "assistant", Content: "## Summary\n\ngenerated"},
		}},
	}, nil
}

func newTestService(t *testing.T) (*Service, *repository.JobRepository, *repository.ExportJobRepository, string) {
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
	c := cache.New(store)
	sum := summary.New(stubLLM{}, "test-model", store)

	return New(jobs, exports, store, c, sum, 0), jobs, exports, dir
}

func TestCreateAndEnqueue_RejectsNonCompletedJob(t *testing.T) {
	svc, jobs, _, _ := newTestService(t)
	ctx := context.Background()

	job := &models.Job{FileName: "a.wav", FileHash: "h1", WorkflowState: models.StateUploaded}
	require.NoError(t, jobs.Create(ctx, job))

	_, err := svc.CreateAndEnqueue(ctx, job.ID, models.ExportMarkdown)
	require.Error(t, err)
}

func TestCreateAndEnqueue_GeneratesMarkdownExport(t *testing.T) {
	svc, jobs, exports, dir := newTestService(t)
	ctx := context.Background()

	job := &models.Job{FileName: "a.wav", FileHash: "h1", WorkflowState: models.StateCompleted, StatusCode: models.StatusSuccess}
	require.NoError(t, jobs.Create(ctx, job))

	transcriptPath := filepath.Join(dir, "transcripts", "a.json")
	require.NoError(t, artifacts.WriteFile(transcriptPath, []byte(`[{"speaker":"SPEAKER_00","text":"hello there team, let's discuss the roadmap and budget","start":"0.00","end":"2.00"}]`)))

	ej, err := svc.CreateAndEnqueue(ctx, job.ID, models.ExportMarkdown)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, ej.StatusCode)

	require.Eventually(t, func() bool {
		got, err := exports.FindByID(ctx, ej.ID)
		return err == nil && got.StatusCode == models.StatusSuccess
	}, 2*time.Second, 10*time.Millisecond)

	final, err := exports.FindByID(ctx, ej.ID)
	require.NoError(t, err)
	require.True(t, final.Ready())
	require.NotNil(t, final.FilePath)
}
