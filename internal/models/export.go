package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExportType enumerates the renderable artifact kinds for an ExportJob.
type ExportType string

const (
	ExportPDF                ExportType = "pdf"
	ExportMarkdown           ExportType = "markdown"
	ExportTranscriptPDF      ExportType = "transcript_pdf"
	ExportTranscriptMarkdown ExportType = "transcript_markdown"
)

// ValidExportType reports whether t is one of the four recognized kinds.
func ValidExportType(t ExportType) bool {
	switch t {
	case ExportPDF, ExportMarkdown, ExportTranscriptPDF, ExportTranscriptMarkdown:
		return true
	default:
		return false
	}
}

// Extension returns the on-disk file extension for an export type.
func (t ExportType) Extension() string {
	switch t {
	case ExportPDF, ExportTranscriptPDF:
		return "pdf"
	default:
		return "md"
	}
}

// IncludesSummary reports whether generating this export type requires a
// summary alongside the transcript.
func (t ExportType) IncludesSummary() bool {
	return t == ExportPDF || t == ExportMarkdown
}

// ExportJob is the independent parallel workflow record that renders a
// downloadable artifact from a completed Job.
type ExportJob struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	JobID              string     `json:"job_id" gorm:"type:varchar(36);index;not null"`
	ExportType         ExportType `json:"export_type" gorm:"type:varchar(30);not null"`
	StatusCode         int        `json:"status_code" gorm:"not null;default:202"`
	ProgressPercentage int        `json:"progress_percentage" gorm:"not null;default:0"`
	FilePath           *string    `json:"file_path,omitempty" gorm:"type:text"`
	ErrorMessage       *string    `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt          time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns a version-4 UUID when the caller hasn't set one.
func (e *ExportJob) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// Ready reports whether the export bytes are available for download.
func (e *ExportJob) Ready() bool {
	return e.StatusCode == StatusSuccess && e.FilePath != nil
}
