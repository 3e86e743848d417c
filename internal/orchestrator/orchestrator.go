// Package orchestrator is the gatekeeper for stage initiation, rename,
// and delete. It validates requests against the Job state machine and
// enqueues executor tasks, but never itself performs ML work, so it is
// safe to call from request handlers.
package orchestrator

import (
	"context"
	"fmt"
	"os"

	"meetflow/internal/apperr"
	"meetflow/internal/artifacts"
	"meetflow/internal/models"
	"meetflow/internal/pathsafety"
	"meetflow/internal/repository"
	"meetflow/internal/stageexecutor"
)

// preconditions maps each stage to the resting state required before it
// may run.
var preconditions = map[stageexecutor.Stage]models.WorkflowState{
	stageexecutor.StageTranscribe: models.StateUploaded,
	stageexecutor.StageDiarize:    models.StateTranscribed,
	stageexecutor.StageAlign:      models.StateDiarized,
}

// nextState maps each stage to the "-ing" state it transitions into.
var nextState = map[stageexecutor.Stage]models.WorkflowState{
	stageexecutor.StageTranscribe: models.StateTranscribing,
	stageexecutor.StageDiarize:    models.StateDiarizing,
	stageexecutor.StageAlign:      models.StateAligning,
}

// Orchestrator is the Job state-machine gatekeeper.
type Orchestrator struct {
	Jobs     *repository.JobRepository
	Exports  *repository.ExportJobRepository
	Store    *artifacts.Store
	Executor *stageexecutor.Executor
}

// New constructs an Orchestrator.
func New(jobs *repository.JobRepository, exports *repository.ExportJobRepository, store *artifacts.Store, executor *stageexecutor.Executor) *Orchestrator {
	return &Orchestrator{Jobs: jobs, Exports: exports, Store: store, Executor: executor}
}

// StartStage validates the stage's precondition against the Job's
// current state, then enqueues a Stage Executor task and returns the
// in-progress "-ing" state it transitioned into.
func (o *Orchestrator) StartStage(ctx context.Context, jobID string, stage stageexecutor.Stage) (models.WorkflowState, error) {
	job, err := o.Jobs.FindByID(ctx, jobID)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", apperr.NewNotFound("job not found")
		}
		return "", apperr.NewInternal("failed to load job", err)
	}

	required, ok := preconditions[stage]
	if !ok {
		return "", apperr.NewValidation(fmt.Sprintf("unknown stage %q", stage))
	}
	if job.WorkflowState != required {
		return "", apperr.NewValidation(fmt.Sprintf(
			"invalid workflow state transition: %s requires state %q, job is %q",
			stage, required, job.WorkflowState))
	}

	target := nextState[stage]
	if err := o.Jobs.TransitionState(ctx, jobID, required, target); err != nil {
		if err == repository.ErrStaleState {
			return "", apperr.NewConflict("invalid workflow state transition: job state changed")
		}
		return "", apperr.NewInternal("failed to update job state", err)
	}
	if err := o.Executor.Enqueue(jobID, stage); err != nil {
		return "", apperr.NewExternalFailure("failed to enqueue stage", err)
	}
	return target, nil
}

// RenameJob sanitizes new_name, resolves uniqueness, renames the audio
// and transcript artifacts on disk, and updates the Job Store.
func (o *Orchestrator) RenameJob(ctx context.Context, jobID, newName string) (*models.Job, error) {
	job, err := o.Jobs.FindByID(ctx, jobID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperr.NewNotFound("job not found")
		}
		return nil, apperr.NewInternal("failed to load job", err)
	}

	// Compare raw before sanitizing: a stored name can carry characters
	// sanitize would strip (the " (Copy N)" collision suffix), and
	// renaming to the current name must stay a no-op.
	if newName == job.FileName {
		return job, nil
	}

	sanitized := pathsafety.SanitizeFilename(newName)
	if sanitized == job.FileName {
		return job, nil
	}

	unique := pathsafety.UniqueFilename(o.Store.UploadDir, sanitized)

	oldBasename := artifacts.Basename(job.FileName)
	newBasename := artifacts.Basename(unique)

	if err := os.Rename(o.Store.UploadPath(job.FileName), o.Store.UploadPath(unique)); err != nil {
		return nil, apperr.NewInternal("failed to rename audio file", err)
	}

	renameIfExists(o.Store.TranscriptPath(oldBasename), o.Store.TranscriptPath(newBasename))
	renameIfExists(o.Store.TranscriptEditedPath(oldBasename), o.Store.TranscriptEditedPath(newBasename))

	if err := o.Jobs.Rename(ctx, jobID, unique); err != nil {
		return nil, apperr.NewInternal("failed to persist rename", err)
	}

	job.FileName = unique
	return job, nil
}

func renameIfExists(oldPath, newPath string) {
	if artifacts.Exists(oldPath) {
		_ = os.Rename(oldPath, newPath)
	}
}

// DeleteJob removes a Job (cascading its ExportJobs) and best-effort
// deletes every associated artifact.
func (o *Orchestrator) DeleteJob(ctx context.Context, jobID string) error {
	job, err := o.Jobs.FindByID(ctx, jobID)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperr.NewNotFound("job not found")
		}
		return apperr.NewInternal("failed to load job", err)
	}

	basename := artifacts.Basename(job.FileName)
	_ = o.Store.RemoveUpload(job.FileName)
	_ = artifacts.Remove(o.Store.TranscriptPath(basename))
	_ = artifacts.Remove(o.Store.TranscriptEditedPath(basename))
	_ = artifacts.Remove(o.Store.SummaryPath(jobID))

	if exports, err := o.Exports.ListByJob(ctx, jobID); err == nil {
		for _, e := range exports {
			if e.FilePath != nil {
				_ = artifacts.Remove(*e.FilePath)
			}
		}
	}

	if err := o.Jobs.DeleteCascade(ctx, jobID); err != nil {
		return apperr.NewInternal("failed to delete job", err)
	}
	return nil
}
