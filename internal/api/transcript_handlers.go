package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetflow/internal/apperr"
	"meetflow/internal/format"
	"meetflow/internal/models"
)

// @Summary Canonical or edited transcript
// @Tags transcripts
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/jobs/{id}/transcripts [get]
func (h *Handler) GetTranscript(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	result, err := h.Cache.GetTranscript(job.FileName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": result.Segments, "is_edited": result.IsEdited})
}

type putTranscriptRequest struct {
	Transcript []models.AttributedSegment `json:"transcript"`
}

// @Summary Write the edited transcript overlay
// @Description Writing invalidates the cached summary
// @Tags transcripts
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Param body body putTranscriptRequest true "edited segments"
// @Success 200 {object} map[string]string
// @Router /api/v1/jobs/{id}/transcripts [patch]
func (h *Handler) PutTranscript(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	var req putTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("transcript must be an array of segments"))
		return
	}
	if err := h.Cache.PutEditedTranscript(job.ID, job.FileName, req.Transcript); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

type speakerMappingRequest struct {
	Mapping map[string]string `json:"mapping" binding:"required"`
}

// @Summary Rename speakers in the transcript
// @Description Renaming invalidates the cached summary
// @Tags transcripts
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Param body body speakerMappingRequest true "old->new label mapping"
// @Success 200 {object} map[string]string
// @Router /api/v1/jobs/{id}/speakers [patch]
func (h *Handler) RenameSpeakers(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	var req speakerMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("mapping is required"))
		return
	}
	if err := h.Cache.RenameSpeakers(job.ID, job.FileName, req.Mapping); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

type identifySpeakersRequest struct {
	Context string `json:"context"`
}

// @Summary LLM-suggested speaker names
// @Tags transcripts
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Param body body identifySpeakersRequest true "optional context"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/jobs/{id}/speaker-identifications [post]
func (h *Handler) IdentifySpeakers(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	var req identifySpeakersRequest
	_ = c.ShouldBindJSON(&req)

	transcript, err := h.Cache.GetTranscript(job.FileName)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Summary.IdentifySpeakers(c.Request.Context(), format.TranscriptForLLM(transcript.Segments), req.Context)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Mapping == nil {
		c.JSON(http.StatusOK, gin.H{"error": result.ParseErr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": result.Mapping})
}
