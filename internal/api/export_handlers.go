package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetflow/internal/apperr"
	"meetflow/internal/models"
)

type createExportRequest struct {
	Format string `json:"format" binding:"required"`
}

// @Summary Create an export job
// @Tags exports
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Param body body createExportRequest true "export format"
// @Success 202 {object} models.ExportJob
// @Router /api/v1/jobs/{id}/export-jobs [post]
func (h *Handler) CreateExportJob(c *gin.Context) {
	var req createExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation("format is required"))
		return
	}

	ej, err := h.Export.CreateAndEnqueue(c.Request.Context(), c.Param("id"), models.ExportType(req.Format))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, ej)
}

// @Summary Export job status
// @Tags exports
// @Produce json
// @Param id path string true "Job id"
// @Param eid path string true "Export job id"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/jobs/{id}/export-jobs/{eid} [get]
func (h *Handler) GetExportJob(c *gin.Context) {
	ej, err := h.Export.Status(c.Request.Context(), c.Param("id"), c.Param("eid"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"id":                  ej.ID,
		"job_id":              ej.JobID,
		"export_type":         ej.ExportType,
		"status_code":         ej.StatusCode,
		"progress_percentage": ej.ProgressPercentage,
		"error_message":       ej.ErrorMessage,
	}
	if ej.Ready() {
		resp["download_url"] = "/api/v1/jobs/" + ej.JobID + "/export-jobs/" + ej.ID + "/download"
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Download a completed export
// @Tags exports
// @Param id path string true "Job id"
// @Param eid path string true "Export job id"
// @Success 200 {file} binary
// @Router /api/v1/jobs/{id}/export-jobs/{eid}/download [get]
func (h *Handler) DownloadExportJob(c *gin.Context) {
	jobID := c.Param("id")
	ej, err := h.Export.Status(c.Request.Context(), jobID, c.Param("eid"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ej.Ready() {
		respondError(c, apperr.NewValidation("export is not ready"))
		return
	}

	filename, err := h.Export.DownloadFilename(c.Request.Context(), jobID, ej)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.File(*ej.FilePath)
}
