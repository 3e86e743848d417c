// Package stageexecutor runs the transcribe/diarize/align stages as
// detached background tasks on a bounded worker pool, reporting
// progress checkpoints and writing each stage's terminal state. Tasks
// outlive the request that enqueued them; failures never propagate to
// the HTTP layer, only to the Job's error state.
package stageexecutor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"meetflow/internal/alignment"
	"meetflow/internal/artifacts"
	"meetflow/internal/engines"
	"meetflow/internal/models"
	"meetflow/internal/repository"
	"meetflow/pkg/logger"
)

// Stage identifies one of the three executable stages.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageDiarize    Stage = "diarize"
	StageAlign      Stage = "align"
)

// Task is one unit of queued work.
type Task struct {
	JobID string
	Stage Stage
}

// Executor runs stage tasks on a bounded worker pool, detached from the
// request that enqueued them.
type Executor struct {
	Jobs  *repository.JobRepository
	Store *artifacts.Store

	ASR      engines.ASREngine
	Diarizer engines.DiarizationEngine

	workers int
	queue   chan Task

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New constructs an Executor with workerCount workers. A workerCount
// <= 0 selects a CPU-scaled default, overridable via QUEUE_WORKERS.
func New(jobs *repository.JobRepository, store *artifacts.Store, asr engines.ASREngine, diarizer engines.DiarizationEngine, workerCount int) *Executor {
	if workerCount <= 0 {
		workerCount = optimalWorkerCount()
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, _ := errgroup.WithContext(ctx)

	return &Executor{
		Jobs:     jobs,
		Store:    store,
		ASR:      asr,
		Diarizer: diarizer,
		workers:  workerCount,
		queue:    make(chan Task, 256),
		ctx:      ctx,
		cancel:   cancel,
		group:    group,
	}
}

func optimalWorkerCount() int {
	if v := os.Getenv("QUEUE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	n := runtime.NumCPU()
	switch {
	case n <= 2:
		return 1
	case n <= 4:
		return 2
	default:
		return 4
	}
}

// Start launches the worker pool.
func (e *Executor) Start() {
	for i := 0; i < e.workers; i++ {
		id := i
		e.group.Go(func() error {
			e.worker(id)
			return nil
		})
	}
	logger.Info("stage executor started", "workers", e.workers)
}

// Stop cancels the workers and blocks until they exit. A worker finishes
// the task it is running; tasks still waiting in the queue may be
// dropped.
func (e *Executor) Stop() {
	e.cancel()
	close(e.queue)
	_ = e.group.Wait()
	logger.Info("stage executor stopped")
}

// Enqueue schedules a task for background execution. Non-blocking: if
// the queue is full the call returns an error so the caller (the
// Orchestrator) can surface backpressure rather than stalling the
// request.
func (e *Executor) Enqueue(jobID string, stage Stage) error {
	select {
	case e.queue <- Task{JobID: jobID, Stage: stage}:
		return nil
	case <-e.ctx.Done():
		return fmt.Errorf("stageexecutor: shutting down")
	default:
		return fmt.Errorf("stageexecutor: queue is full")
	}
}

func (e *Executor) worker(id int) {
	for {
		select {
		case task, ok := <-e.queue:
			if !ok {
				return
			}
			e.run(task)
		case <-e.ctx.Done():
			return
		}
	}
}

func (e *Executor) run(task Task) {
	ctx := e.ctx
	logger.Info("stage started", "job_id", task.JobID, "stage", string(task.Stage))

	var err error
	switch task.Stage {
	case StageTranscribe:
		err = e.runTranscribe(ctx, task.JobID)
	case StageDiarize:
		err = e.runDiarize(ctx, task.JobID)
	case StageAlign:
		err = e.runAlign(ctx, task.JobID)
	default:
		err = fmt.Errorf("unknown stage %q", task.Stage)
	}

	if err != nil {
		logger.Error("stage failed", "job_id", task.JobID, "stage", string(task.Stage), "error", err)
		if uerr := e.Jobs.MarkError(ctx, task.JobID, err.Error()); uerr != nil {
			logger.Error("failed to persist stage error", "job_id", task.JobID, "error", uerr)
		}
		return
	}
	logger.Info("stage completed", "job_id", task.JobID, "stage", string(task.Stage))
}

func (e *Executor) runTranscribe(ctx context.Context, jobID string) error {
	job, err := e.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := e.Jobs.UpdateWorkflowState(ctx, jobID, models.StateTranscribing, 0); err != nil {
		return err
	}
	if err := e.Jobs.UpdateProgress(ctx, jobID, 10); err != nil {
		return err
	}

	audioPath := e.Store.UploadPath(job.FileName)
	result, err := e.ASR.Transcribe(ctx, audioPath)
	if err != nil {
		return err
	}
	if err := e.Jobs.UpdateProgress(ctx, jobID, 90); err != nil {
		return err
	}

	segments := make([]models.TranscriptSegment, len(result.Segments))
	for i, s := range result.Segments {
		segments[i] = models.TranscriptSegment{Start: s.Start, End: s.End, Text: s.Text}
	}
	data := &models.TranscriptionData{Text: result.Text, Language: result.Language, Segments: segments}

	return e.Jobs.SetTranscriptionData(ctx, jobID, data)
}

func (e *Executor) runDiarize(ctx context.Context, jobID string) error {
	job, err := e.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := e.Jobs.UpdateWorkflowState(ctx, jobID, models.StateDiarizing, 0); err != nil {
		return err
	}
	if err := e.Jobs.UpdateProgress(ctx, jobID, 10); err != nil {
		return err
	}

	audioPath := e.Store.UploadPath(job.FileName)
	turns, err := e.Diarizer.Diarize(ctx, audioPath)
	if err != nil {
		return err
	}
	if err := e.Jobs.UpdateProgress(ctx, jobID, 90); err != nil {
		return err
	}

	speakerTurns := make([]models.SpeakerTurn, len(turns))
	for i, t := range turns {
		speakerTurns[i] = models.SpeakerTurn{Start: t.Start, End: t.End, SpeakerLabel: t.SpeakerLabel}
	}
	data := &models.DiarizationData{Segments: speakerTurns}

	return e.Jobs.SetDiarizationData(ctx, jobID, data)
}

// alignCheckpoints is the progress sequence reported while the align
// stage loads inputs, merges, and persists.
var alignCheckpoints = []int{10, 30, 50, 80}

func (e *Executor) runAlign(ctx context.Context, jobID string) error {
	job, err := e.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := e.Jobs.UpdateWorkflowState(ctx, jobID, models.StateAligning, 0); err != nil {
		return err
	}
	report := func(i int) error { return e.Jobs.UpdateProgress(ctx, jobID, alignCheckpoints[i]) }
	if err := report(0); err != nil {
		return err
	}

	if job.TranscriptionData == nil || job.DiarizationData == nil {
		return fmt.Errorf("job %s missing transcription or diarization data", jobID)
	}
	if err := report(1); err != nil {
		return err
	}

	attributed := alignment.Align(job.TranscriptionData.Segments, job.DiarizationData.Segments)
	if err := report(2); err != nil {
		return err
	}

	basename := artifacts.Basename(job.FileName)
	path := e.Store.TranscriptPath(basename)
	payload, err := marshalTranscript(attributed)
	if err != nil {
		return err
	}
	if err := report(3); err != nil {
		return err
	}
	if err := artifacts.WriteFile(path, payload); err != nil {
		return err
	}

	if err := e.Jobs.UpdateProgress(ctx, jobID, 100); err != nil {
		return err
	}
	return e.Jobs.CompleteAlignment(ctx, jobID)
}

func marshalTranscript(segments []models.AttributedSegment) ([]byte, error) {
	if segments == nil {
		segments = []models.AttributedSegment{}
	}
	return json.MarshalIndent(segments, "", "  ")
}
