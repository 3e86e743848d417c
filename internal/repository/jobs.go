package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"meetflow/internal/models"
)

// JobRepository is the persistence surface for Jobs: insert, fetch by
// id, fetch by hash, paginated list, atomic field updates, cascade
// delete, and bulk delete-and-return-deleted-rows for retention.
type JobRepository struct {
	*BaseRepository[models.Job]
	db *gorm.DB
}

// NewJobRepository constructs a JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{BaseRepository: NewBaseRepository[models.Job](db), db: db}
}

// ErrNotFound is returned in lieu of gorm's record-not-found sentinel so
// callers above this layer never need to import gorm directly.
var ErrNotFound = errors.New("record not found")

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// FindByID loads a Job, translating gorm's not-found sentinel.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	job, err := r.BaseRepository.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return job, nil
}

// FindByHash returns the most recent Job uploaded with the given content
// hash, used by Ingest's dedupe contract.
func (r *JobRepository) FindByHash(ctx context.Context, hash string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Where("file_hash = ?", hash).
		Order("created_at desc").
		First(&job).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &job, nil
}

// ErrStaleState is returned by TransitionState when the Job is no
// longer in the expected predecessor state, meaning a concurrent caller
// won the transition.
var ErrStaleState = errors.New("workflow state changed")

// TransitionState advances workflow_state from `from` to `to` in a
// single conditional update, resetting step progress. The WHERE clause
// on the current state is the serialization point that keeps two
// clients from both advancing the same Job past the same edge.
func (r *JobRepository) TransitionState(ctx context.Context, id string, from, to models.WorkflowState) error {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND workflow_state = ?", id, from).
		Updates(map[string]any{
			"workflow_state":        to,
			"current_step_progress": 0,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// UpdateWorkflowState unconditionally sets workflow_state + progress.
func (r *JobRepository) UpdateWorkflowState(ctx context.Context, id string, state models.WorkflowState, progress int) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]any{
			"workflow_state":        state,
			"current_step_progress": progress,
		}).Error
}

// UpdateProgress updates only the step-progress counter.
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Update("current_step_progress", progress).Error
}

// MarkError transitions a Job to the terminal error state.
func (r *JobRepository) MarkError(ctx context.Context, id, message string) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]any{
			"workflow_state": models.StateError,
			"status_code":    models.StatusFailed,
			"error_message":  message,
		}).Error
}

// SetTranscriptionData persists ASR output and advances to `transcribed`.
func (r *JobRepository) SetTranscriptionData(ctx context.Context, id string, data *models.TranscriptionData) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]any{
			"transcription_data":    data,
			"workflow_state":        models.StateTranscribed,
			"current_step_progress": 100,
		}).Error
}

// SetDiarizationData persists speaker-turn output and advances to `diarized`.
func (r *JobRepository) SetDiarizationData(ctx context.Context, id string, data *models.DiarizationData) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]any{
			"diarization_data":      data,
			"workflow_state":        models.StateDiarized,
			"current_step_progress": 100,
		}).Error
}

// CompleteAlignment marks a Job completed after the canonical transcript
// has been written to disk.
func (r *JobRepository) CompleteAlignment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Updates(map[string]any{
			"workflow_state":        models.StateCompleted,
			"status_code":           models.StatusSuccess,
			"current_step_progress": 100,
		}).Error
}

// Rename updates the display file_name (used by Orchestrator.RenameJob).
func (r *JobRepository) Rename(ctx context.Context, id, newName string) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).
		Update("file_name", newName).Error
}

// DeleteCascade removes a Job and every ExportJob owned by it.
func (r *JobRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.ExportJob{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Job{}, "id = ?", id).Error
	})
}

// CleanupOlderThan deletes Jobs created before cutoff and returns the
// deleted rows so the caller can reclaim their artifacts.
func (r *JobRepository) CleanupOlderThan(ctx context.Context, cutoff time.Time) ([]models.Job, error) {
	var expired []models.Job
	if err := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Find(&expired).Error; err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}
	ids := make([]string, len(expired))
	for i, j := range expired {
		ids[i] = j.ID
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id in ?", ids).Delete(&models.ExportJob{}).Error; err != nil {
			return err
		}
		return tx.Where("id in ?", ids).Delete(&models.Job{}).Error
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
