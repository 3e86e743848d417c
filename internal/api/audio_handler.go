package api

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"meetflow/internal/apperr"
	"meetflow/internal/pathsafety"
	"meetflow/internal/streaming"
)

// @Summary Stream a job's audio, Range-aware
// @Tags audio
// @Param id path string true "Job id"
// @Param Range header string false "byte range"
// @Success 200 {file} binary
// @Success 206 {file} binary
// @Router /api/v1/jobs/{id}/audio [get]
func (h *Handler) GetAudio(c *gin.Context) {
	job, err := h.loadJob(c)
	if err != nil {
		return
	}

	path := h.Store.UploadPath(job.FileName)
	resolved, err := pathsafety.EnsureContained(h.Store.UploadDir, path)
	if err != nil {
		respondError(c, apperr.NewNotFound("audio not found"))
		return
	}

	f, err := os.Open(resolved)
	if err != nil {
		respondError(c, apperr.NewNotFound("audio not found"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondError(c, apperr.NewInternal("failed to stat audio file", err))
		return
	}
	size := info.Size()
	contentType := streaming.ContentType(job.FileName)

	rangeHeader := c.GetHeader("Range")
	if rangeHeader == "" {
		c.Header("Content-Type", contentType)
		c.Header("Accept-Ranges", "bytes")
		c.Header("Content-Length", strconv.FormatInt(size, 10))
		c.Status(http.StatusOK)
		_ = streaming.CopyFull(c.Writer, f)
		return
	}

	r, ok := streaming.ParseRange(rangeHeader, size)
	if !ok {
		c.Header("Content-Type", contentType)
		c.Header("Accept-Ranges", "bytes")
		c.Header("Content-Length", strconv.FormatInt(size, 10))
		c.Status(http.StatusOK)
		_ = streaming.CopyFull(c.Writer, f)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size))
	c.Header("Content-Length", strconv.FormatInt(r.Length(), 10))
	c.Status(http.StatusPartialContent)
	_ = streaming.CopyRange(c.Writer, f, r)
}
