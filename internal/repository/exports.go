package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"meetflow/internal/models"
)

// ExportJobRepository is the parallel Job-Store surface for ExportJobs,
// keyed by a parent-job foreign key.
type ExportJobRepository struct {
	*BaseRepository[models.ExportJob]
	db *gorm.DB
}

// NewExportJobRepository constructs an ExportJobRepository.
func NewExportJobRepository(db *gorm.DB) *ExportJobRepository {
	return &ExportJobRepository{BaseRepository: NewBaseRepository[models.ExportJob](db), db: db}
}

// FindByID loads an ExportJob, translating gorm's not-found sentinel.
func (r *ExportJobRepository) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	e, err := r.BaseRepository.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return e, nil
}

// FindByIDAndJob loads an ExportJob scoped to the given parent job id.
func (r *ExportJobRepository) FindByIDAndJob(ctx context.Context, id, jobID string) (*models.ExportJob, error) {
	var e models.ExportJob
	err := r.db.WithContext(ctx).Where("id = ? AND job_id = ?", id, jobID).First(&e).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &e, nil
}

// ListByJob returns every ExportJob owned by jobID.
func (r *ExportJobRepository) ListByJob(ctx context.Context, jobID string) ([]models.ExportJob, error) {
	var exports []models.ExportJob
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("created_at desc").Find(&exports).Error
	if err != nil {
		return nil, err
	}
	return exports, nil
}

// UpdateProgress atomically updates progress percentage.
func (r *ExportJobRepository) UpdateProgress(ctx context.Context, id string, pct int) error {
	return r.db.WithContext(ctx).Model(&models.ExportJob{}).Where("id = ?", id).
		Update("progress_percentage", pct).Error
}

// Complete marks an ExportJob ready for download.
func (r *ExportJobRepository) Complete(ctx context.Context, id, filePath string) error {
	return r.db.WithContext(ctx).Model(&models.ExportJob{}).Where("id = ?", id).
		Updates(map[string]any{
			"file_path":           filePath,
			"status_code":         models.StatusSuccess,
			"progress_percentage": 100,
		}).Error
}

// MarkError transitions an ExportJob to its terminal failure state.
func (r *ExportJobRepository) MarkError(ctx context.Context, id, message string) error {
	return r.db.WithContext(ctx).Model(&models.ExportJob{}).Where("id = ?", id).
		Updates(map[string]any{
			"status_code":   models.StatusFailed,
			"error_message": message,
		}).Error
}

// CleanupOlderThan deletes ExportJobs created before cutoff and returns
// the deleted rows so the caller can reclaim their files.
func (r *ExportJobRepository) CleanupOlderThan(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	var expired []models.ExportJob
	if err := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Find(&expired).Error; err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}
	ids := make([]string, len(expired))
	for i, e := range expired {
		ids[i] = e.ID
	}
	if err := r.db.WithContext(ctx).Where("id in ?", ids).Delete(&models.ExportJob{}).Error; err != nil {
		return nil, err
	}
	return expired, nil
}
