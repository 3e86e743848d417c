// Package api exposes the versioned HTTP surface: gin.New() +
// gin.Recovery() + a custom logging middleware + gzip compression + a
// manual CORS handler, with all resource routes grouped under /api/v1.
package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"meetflow/pkg/logger"
	"meetflow/pkg/middleware"
)

// SetupRoutes builds the gin.Engine serving the full API surface.
func SetupRoutes(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	logger.SetGinOutput()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger())
	router.Use(middleware.CompressionMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", h.HealthCheck)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			uploadRoutes := jobs.Group("")
			uploadRoutes.Use(middleware.NoCompressionMiddleware())
			{
				uploadRoutes.POST("", h.CreateJob)
				uploadRoutes.GET("/:id/audio", h.GetAudio)
			}

			jobs.GET("", h.ListJobs)
			jobs.GET("/:id", h.GetJob)
			jobs.PATCH("/:id", h.RenameJob)
			jobs.DELETE("/:id", h.DeleteJob)

			jobs.POST("/:id/transcriptions", h.StartTranscribe)
			jobs.GET("/:id/transcriptions", h.GetTranscription)

			jobs.POST("/:id/diarizations", h.StartDiarize)
			jobs.GET("/:id/diarizations", h.GetDiarization)

			jobs.POST("/:id/alignments", h.StartAlign)

			jobs.GET("/:id/transcripts", h.GetTranscript)
			jobs.PATCH("/:id/transcripts", h.PutTranscript)

			jobs.GET("/:id/summaries", h.GetSummary)
			jobs.POST("/:id/summaries", h.RegenerateSummary)
			jobs.PATCH("/:id/summaries", h.OverwriteSummary)
			jobs.DELETE("/:id/summaries", h.DeleteSummary)

			jobs.PATCH("/:id/speakers", h.RenameSpeakers)
			jobs.POST("/:id/speaker-identifications", h.IdentifySpeakers)

			jobs.POST("/:id/export-jobs", h.CreateExportJob)
			jobs.GET("/:id/export-jobs/:eid", h.GetExportJob)
			jobs.GET("/:id/export-jobs/:eid/download", h.DownloadExportJob)
		}
	}

	return router
}

// corsMiddleware echoes the request Origin back (this service has no
// auth cookies to protect, so credentialed CORS is unnecessary) and
// short-circuits preflight.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
		} else {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Range, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Range, Accept-Ranges, Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
