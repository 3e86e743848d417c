// Package export runs the ExportJob lifecycle: a parallel state machine
// whose background generator renders a completed Job's transcript (and
// summary, for the combined formats) into downloadable bytes.
package export

import (
	"context"
	"fmt"
	"time"

	"meetflow/internal/apperr"
	"meetflow/internal/artifacts"
	"meetflow/internal/cache"
	"meetflow/internal/format"
	"meetflow/internal/models"
	"meetflow/internal/render"
	"meetflow/internal/repository"
	"meetflow/internal/summary"
	"meetflow/pkg/logger"
)

// Service runs the ExportJob lifecycle: synchronous create+validate,
// detached background generation.
type Service struct {
	Jobs                *repository.JobRepository
	Exports             *repository.ExportJobRepository
	Store               *artifacts.Store
	Cache               *cache.Cache
	Summary             *summary.Service
	TimezoneOffsetHours int
}

// New constructs an export Service.
func New(jobs *repository.JobRepository, exports *repository.ExportJobRepository, store *artifacts.Store, c *cache.Cache, s *summary.Service, timezoneOffsetHours int) *Service {
	return &Service{Jobs: jobs, Exports: exports, Store: store, Cache: c, Summary: s, TimezoneOffsetHours: timezoneOffsetHours}
}

// CreateAndEnqueue validates the parent Job is completed, persists a new
// ExportJob at 202, and launches its background generator as a detached
// goroutine (mirroring the Stage Executor's detached-task contract).
func (s *Service) CreateAndEnqueue(ctx context.Context, jobID string, exportType models.ExportType) (*models.ExportJob, error) {
	if !models.ValidExportType(exportType) {
		return nil, apperr.NewValidation(fmt.Sprintf("unknown export type %q", exportType))
	}

	job, err := s.Jobs.FindByID(ctx, jobID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperr.NewNotFound("job not found")
		}
		return nil, apperr.NewInternal("failed to load job", err)
	}
	if job.WorkflowState != models.StateCompleted {
		return nil, apperr.NewValidation("export requires a completed job")
	}

	ej := &models.ExportJob{
		JobID:      jobID,
		ExportType: exportType,
		StatusCode: models.StatusInProgress,
	}
	if err := s.Exports.Create(ctx, ej); err != nil {
		return nil, apperr.NewInternal("failed to persist export job", err)
	}

	go s.generate(ej.ID, jobID, exportType)

	return ej, nil
}

// generate runs detached from the originating request: it never
// propagates errors to an HTTP caller, only to the ExportJob's own
// terminal state.
func (s *Service) generate(exportID, jobID string, exportType models.ExportType) {
	ctx := context.Background()
	logger.Info("export started", "export_id", exportID, "job_id", jobID, "export_type", string(exportType))

	if err := s.Exports.UpdateProgress(ctx, exportID, 10); err != nil {
		logger.Error("export progress update failed", "export_id", exportID, "error", err)
	}

	job, err := s.Jobs.FindByID(ctx, jobID)
	if err != nil {
		s.fail(ctx, exportID, fmt.Errorf("failed to load job: %w", err))
		return
	}

	transcript, err := s.Cache.GetTranscript(job.FileName)
	if err != nil {
		s.fail(ctx, exportID, fmt.Errorf("failed to load transcript: %w", err))
		return
	}
	if err := s.Exports.UpdateProgress(ctx, exportID, 30); err != nil {
		logger.Error("export progress update failed", "export_id", exportID, "error", err)
	}

	var summaryText string
	if exportType.IncludesSummary() {
		summaryText, err = s.resolveSummary(ctx, jobID, transcript.Segments)
		if err != nil {
			s.fail(ctx, exportID, fmt.Errorf("failed to generate summary: %w", err))
			return
		}
	}
	if err := s.Exports.UpdateProgress(ctx, exportID, 50); err != nil {
		logger.Error("export progress update failed", "export_id", exportID, "error", err)
	}

	title := format.ProfessionalFilename(job.FileName, "", false, time.Now(), s.TimezoneOffsetHours)
	var bytesOut []byte
	switch exportType {
	case models.ExportPDF, models.ExportTranscriptPDF:
		bytesOut = render.PDF(title, transcript.Segments, summaryText)
	default:
		bytesOut = render.Markdown(title, transcript.Segments, summaryText)
	}
	if err := s.Exports.UpdateProgress(ctx, exportID, 80); err != nil {
		logger.Error("export progress update failed", "export_id", exportID, "error", err)
	}

	path := s.Store.ExportPath(exportID, exportType.Extension())
	if err := artifacts.WriteFile(path, bytesOut); err != nil {
		s.fail(ctx, exportID, fmt.Errorf("failed to write export artifact: %w", err))
		return
	}

	if err := s.Exports.Complete(ctx, exportID, path); err != nil {
		logger.Error("export completion persist failed", "export_id", exportID, "error", err)
		return
	}
	logger.Info("export completed", "export_id", exportID, "job_id", jobID)
}

func (s *Service) resolveSummary(ctx context.Context, jobID string, segments []models.AttributedSegment) (string, error) {
	if cached, err := s.Summary.GetCachedSummary(jobID); err == nil {
		return cached, nil
	}
	formatted := format.TranscriptForLLM(segments)
	text, err := s.Summary.Summarize(ctx, formatted, "", "")
	if err != nil {
		return "", err
	}
	if err := s.Summary.SaveSummary(jobID, text); err != nil {
		logger.Error("failed to cache summary during export", "job_id", jobID, "error", err)
	}
	return text, nil
}

func (s *Service) fail(ctx context.Context, exportID string, err error) {
	logger.Error("export failed", "export_id", exportID, "error", err)
	if uerr := s.Exports.MarkError(ctx, exportID, err.Error()); uerr != nil {
		logger.Error("failed to persist export error", "export_id", exportID, "error", uerr)
	}
}

// Status looks up an ExportJob scoped to its parent job.
func (s *Service) Status(ctx context.Context, jobID, exportID string) (*models.ExportJob, error) {
	ej, err := s.Exports.FindByIDAndJob(ctx, exportID, jobID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperr.NewNotFound("export job not found")
		}
		return nil, apperr.NewInternal("failed to load export job", err)
	}
	return ej, nil
}

// DownloadFilename derives the human-friendly filename for a completed
// ExportJob's download, from the parent Job's display name.
func (s *Service) DownloadFilename(ctx context.Context, jobID string, ej *models.ExportJob) (string, error) {
	job, err := s.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return "", apperr.NewInternal("failed to load job for filename", err)
	}
	return format.ProfessionalFilename(job.FileName, ej.ExportType.Extension(), true, time.Now(), s.TimezoneOffsetHours), nil
}
