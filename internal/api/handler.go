package api

import (
	"gorm.io/gorm"

	"meetflow/internal/artifacts"
	"meetflow/internal/cache"
	"meetflow/internal/config"
	"meetflow/internal/export"
	"meetflow/internal/ingest"
	"meetflow/internal/orchestrator"
	"meetflow/internal/repository"
	"meetflow/internal/summary"
)

// Handler holds every dependency the HTTP layer needs.
type Handler struct {
	Config *config.Config
	DB     *gorm.DB

	Jobs    *repository.JobRepository
	Exports *repository.ExportJobRepository
	Store   *artifacts.Store

	Orchestrator *orchestrator.Orchestrator
	Ingest       *ingest.Service
	Cache        *cache.Cache
	Summary      *summary.Service
	Export       *export.Service
}

// NewHandler constructs a Handler.
func NewHandler(
	cfg *config.Config,
	db *gorm.DB,
	jobs *repository.JobRepository,
	exports *repository.ExportJobRepository,
	store *artifacts.Store,
	orch *orchestrator.Orchestrator,
	ingestSvc *ingest.Service,
	cacheSvc *cache.Cache,
	summarySvc *summary.Service,
	exportSvc *export.Service,
) *Handler {
	return &Handler{
		Config:       cfg,
		DB:           db,
		Jobs:         jobs,
		Exports:      exports,
		Store:        store,
		Orchestrator: orch,
		Ingest:       ingestSvc,
		Cache:        cacheSvc,
		Summary:      summarySvc,
		Export:       exportSvc,
	}
}
