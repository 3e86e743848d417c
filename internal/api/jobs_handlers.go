package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meetflow/internal/apperr"
	"meetflow/internal/models"
	"meetflow/internal/repository"
	"meetflow/internal/stageexecutor"
)

// @Summary Upload a recording
// @Description Ingests an audio upload, deduplicating by content hash
// @Tags jobs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio file"
// @Success 202 {object} jobResponse
// @Success 200 {object} jobResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/jobs [post]
func (h *Handler) CreateJob(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperr.NewValidation("audio file is required"))
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, apperr.NewInternal("failed to open upload", err))
		return
	}
	defer f.Close()

	result, err := h.Ingest.CreateJob(c.Request.Context(), header.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusAccepted
	if result.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, newJobResponse(result.Job))
}

// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {array} jobResponse
// @Router /api/v1/jobs [get]
func (h *Handler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	jobs, err := h.Jobs.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, apperr.NewInternal("failed to list jobs", err))
		return
	}

	out := make([]jobResponse, len(jobs))
	for i := range jobs {
		out[i] = newJobResponse(&jobs[i])
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Job status
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} jobResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/jobs/{id} [get]
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, newJobResponse(job))
}

type renameRequest struct {
	FileName string `json:"file_name" binding:"required"`
}

// @Summary Rename a job's audio file
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Param body body renameRequest true "new file_name"
// @Success 200 {object} jobResponse
// @Router /api/v1/jobs/{id} [patch]
func (h *Handler) RenameJob(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("file_name is required"))
		return
	}

	job, err := h.Orchestrator.RenameJob(c.Request.Context(), c.Param("id"), req.FileName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newJobResponse(job))
}

// @Summary Delete a job and its artifacts
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/jobs/{id} [delete]
func (h *Handler) DeleteJob(c *gin.Context) {
	if err := h.Orchestrator.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// @Summary Start the transcribe stage
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/jobs/{id}/transcriptions [post]
func (h *Handler) StartTranscribe(c *gin.Context) {
	h.startStage(c, stageexecutor.StageTranscribe)
}

// @Summary Raw ASR output
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} models.TranscriptionData
// @Router /api/v1/jobs/{id}/transcriptions [get]
func (h *Handler) GetTranscription(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	if job.TranscriptionData == nil {
		respondError(c, apperr.NewNotFound("transcription data not available"))
		return
	}
	c.JSON(http.StatusOK, job.TranscriptionData)
}

// @Summary Start the diarize stage
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 202 {object} map[string]string
// @Router /api/v1/jobs/{id}/diarizations [post]
func (h *Handler) StartDiarize(c *gin.Context) {
	h.startStage(c, stageexecutor.StageDiarize)
}

// @Summary Raw diarization output
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} models.DiarizationData
// @Router /api/v1/jobs/{id}/diarizations [get]
func (h *Handler) GetDiarization(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}
	if job.DiarizationData == nil {
		respondError(c, apperr.NewNotFound("diarization data not available"))
		return
	}
	c.JSON(http.StatusOK, job.DiarizationData)
}

// @Summary Start the align stage
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 202 {object} map[string]string
// @Router /api/v1/jobs/{id}/alignments [post]
func (h *Handler) StartAlign(c *gin.Context) {
	h.startStage(c, stageexecutor.StageAlign)
}

func (h *Handler) startStage(c *gin.Context, stage stageexecutor.Stage) {
	nextState, err := h.Orchestrator.StartStage(c.Request.Context(), c.Param("id"), stage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"workflow_state": string(nextState)})
}

// loadJob fetches the Job for c.Param("id"), writing an error response
// and returning a non-nil err if it cannot be found.
func (h *Handler) loadJob(c *gin.Context) (*models.Job, error) {
	job, err := h.Jobs.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			respondError(c, apperr.NewNotFound("job not found"))
		} else {
			respondError(c, apperr.NewInternal("failed to load job", err))
		}
		return nil, err
	}
	return job, nil
}
