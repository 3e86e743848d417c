package api

import (
	"github.com/gin-gonic/gin"

	"meetflow/internal/apperr"
	"meetflow/internal/models"
)

// respondError translates a tagged apperr.Error (or any other error) to
// its HTTP status and a safe public message. Every handler funnels
// failures through here so status mapping lives in one place.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.StatusCode(err), gin.H{"error": apperr.PublicMessage(err)})
}

// availableActions reports which operations are valid from a Job's
// current workflow_state.
func availableActions(job *models.Job) []string {
	switch job.WorkflowState {
	case models.StateUploaded:
		return []string{"transcribe", "rename", "delete"}
	case models.StateTranscribing, models.StateDiarizing, models.StateAligning:
		return []string{"delete"}
	case models.StateTranscribed:
		return []string{"diarize", "rename", "delete"}
	case models.StateDiarized:
		return []string{"align", "rename", "delete"}
	case models.StateCompleted:
		return []string{"export", "rename", "delete", "edit_transcript", "rename_speakers"}
	case models.StateError:
		return []string{"delete"}
	default:
		return nil
	}
}

// jobResponse is the GET /jobs/{id} and listing payload shape: the Job
// record plus its derived available_actions.
type jobResponse struct {
	*models.Job
	AvailableActions []string `json:"available_actions"`
}

func newJobResponse(job *models.Job) jobResponse {
	return jobResponse{Job: job, AvailableActions: availableActions(job)}
}
