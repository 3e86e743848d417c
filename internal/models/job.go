// Package models holds the persisted record types for the job orchestration
// engine: the Job lifecycle record and its derived ExportJob records.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkflowState is the Job lifecycle state. Transitions form a DAG; the
// orchestrator's preconditions and nextState tables declare the edges.
type WorkflowState string

const (
	StateUploaded     WorkflowState = "uploaded"
	StateTranscribing WorkflowState = "transcribing"
	StateTranscribed  WorkflowState = "transcribed"
	StateDiarizing    WorkflowState = "diarizing"
	StateDiarized     WorkflowState = "diarized"
	StateAligning     WorkflowState = "aligning"
	StateCompleted    WorkflowState = "completed"
	StateError        WorkflowState = "error"
)

// Status codes mirror HTTP semantics on the Job resource itself.
const (
	StatusInProgress = 202
	StatusSuccess    = 200
	StatusFailed     = 500
)

// TranscriptSegment is one timestamped span of ASR output.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionData is the structured ASR output persisted at the end of
// the transcribe stage.
type TranscriptionData struct {
	Text     string              `json:"text"`
	Language string              `json:"language,omitempty"`
	Segments []TranscriptSegment `json:"segments"`
}

// SpeakerTurn is one timestamped speaker turn from the diarization engine.
type SpeakerTurn struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	SpeakerLabel string  `json:"speaker"`
}

// DiarizationData is the structured speaker-turn output persisted at the
// end of the diarize stage.
type DiarizationData struct {
	Segments []SpeakerTurn `json:"segments"`
}

// AttributedSegment is one entry of the canonical speaker-attributed
// transcript, as written to disk and returned over the API. Start/End are
// kept as strings ("%.2f") because that is the on-disk artifact format.
type AttributedSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Job represents one uploaded recording's processing lifecycle.
// TranscriptionData is non-nil from `transcribed` onward,
// DiarizationData from `diarized` onward, and ErrorMessage only in the
// error state.
type Job struct {
	ID                  string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FileName            string        `json:"file_name" gorm:"type:text;not null"`
	FileHash            string        `json:"file_hash" gorm:"type:varchar(64);index;not null"`
	WorkflowState       WorkflowState `json:"workflow_state" gorm:"type:varchar(20);not null;default:'uploaded'"`
	StatusCode          int           `json:"status_code" gorm:"not null;default:202"`
	CurrentStepProgress int           `json:"current_step_progress" gorm:"not null;default:0"`
	ErrorMessage        *string       `json:"error_message,omitempty" gorm:"type:text"`

	TranscriptionData *TranscriptionData `json:"transcription_data,omitempty" gorm:"serializer:json"`
	DiarizationData   *DiarizationData   `json:"diarization_data,omitempty" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns a version-4 UUID when the caller hasn't set one.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

// IsTerminal reports whether the job can no longer advance on its own.
func (j *Job) IsTerminal() bool {
	return j.WorkflowState == StateCompleted || j.WorkflowState == StateError
}
