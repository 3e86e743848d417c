package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetflow/internal/apperr"
	"meetflow/internal/format"
)

// @Summary Cached or freshly generated summary
// @Tags summaries
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} map[string]string
// @Router /api/v1/jobs/{id}/summaries [get]
func (h *Handler) GetSummary(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}

	if cached, err := h.Summary.GetCachedSummary(job.ID); err == nil {
		c.JSON(http.StatusOK, gin.H{"summary": cached})
		return
	}

	text, err := h.generateSummary(c, job.ID, job.FileName, "", "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": text})
}

type regenerateSummaryRequest struct {
	CustomPrompt string `json:"custom_prompt"`
	SystemPrompt string `json:"system_prompt"`
}

// @Summary Force-regenerate the summary
// @Tags summaries
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Param body body regenerateSummaryRequest true "optional prompt overrides"
// @Success 200 {object} map[string]string
// @Router /api/v1/jobs/{id}/summaries [post]
func (h *Handler) RegenerateSummary(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	var req regenerateSummaryRequest
	_ = c.ShouldBindJSON(&req)

	text, err := h.generateSummary(c, job.ID, job.FileName, req.SystemPrompt, req.CustomPrompt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": text})
}

func (h *Handler) generateSummary(c *gin.Context, jobID, fileName, systemPrompt, userPrompt string) (string, error) {
	transcript, err := h.Cache.GetTranscript(fileName)
	if err != nil {
		return "", err
	}
	text, err := h.Summary.Summarize(c.Request.Context(), format.TranscriptForLLM(transcript.Segments), systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	if err := h.Summary.SaveSummary(jobID, text); err != nil {
		return "", err
	}
	return text, nil
}

type overwriteSummaryRequest struct {
	Summary string `json:"summary" binding:"required"`
}

// @Summary Overwrite the cached summary with user-supplied text
// @Tags summaries
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Param body body overwriteSummaryRequest true "replacement text"
// @Success 200 {object} map[string]string
// @Router /api/v1/jobs/{id}/summaries [patch]
func (h *Handler) OverwriteSummary(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	var req overwriteSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("summary text is required"))
		return
	}
	if err := h.Summary.SaveSummary(job.ID, req.Summary); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// @Summary Drop the cached summary
// @Tags summaries
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} map[string]string
// @Router /api/v1/jobs/{id}/summaries [delete]
func (h *Handler) DeleteSummary(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	if err := h.Summary.DeleteSummary(job.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
