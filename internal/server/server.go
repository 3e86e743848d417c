// Package server wires every component of the job orchestration engine
// into a running HTTP server: config -> logging -> database -> domain
// services -> background workers -> router -> http.Server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"meetflow/internal/api"
	"meetflow/internal/artifacts"
	"meetflow/internal/cache"
	"meetflow/internal/config"
	"meetflow/internal/database"
	"meetflow/internal/engines"
	"meetflow/internal/export"
	"meetflow/internal/ingest"
	"meetflow/internal/llm"
	"meetflow/internal/orchestrator"
	"meetflow/internal/repository"
	"meetflow/internal/retention"
	"meetflow/internal/stageexecutor"
	"meetflow/internal/summary"
	"meetflow/pkg/logger"
)

// Server bundles the HTTP server and the background workers that must
// shut down alongside it.
type Server struct {
	httpServer *http.Server
	executor   *stageexecutor.Executor
	scheduler  *retention.Scheduler
}

// Build constructs every layer of the service from cfg: the database,
// the artifact store, the domain services (ingest, cache, summary,
// export), the background workers (stage executor, retention
// scheduler), and the gin router, returning a Server ready to Run.
func Build(cfg *config.Config) (*Server, error) {
	logger.Startup("database", "Opening database...")
	db, err := database.Open(cfg.DBURL, cfg.DBPoolMin, cfg.DBPoolMax)
	if err != nil {
		return nil, fmt.Errorf("server: open database: %w", err)
	}

	logger.Startup("artifacts", "Preparing artifact directories...")
	store, err := artifacts.New(cfg.UploadDir, cfg.TranscriptDir, cfg.TranscriptEditedDir, cfg.SummaryDir, cfg.ExportDir)
	if err != nil {
		return nil, fmt.Errorf("server: init artifact store: %w", err)
	}
	if err := os.MkdirAll(cfg.LogsDir, 0o755); err != nil {
		return nil, fmt.Errorf("server: init logs dir: %w", err)
	}

	jobs := repository.NewJobRepository(db)
	exports := repository.NewExportJobRepository(db)

	transcoder := engines.NewFFmpegTranscoder("ffmpeg")
	ingestSvc := ingest.New(jobs, store, transcoder, cfg.MaxFileSize)
	ingestSvc.AllowedTypes = cfg.AllowedAudioTypes

	asr, diarizer := buildMLEngines(cfg)

	logger.Startup("workers", "Starting stage executor...")
	executor := stageexecutor.New(jobs, store, asr, diarizer, 0)
	executor.Start()

	orch := orchestrator.New(jobs, exports, store, executor)
	cacheSvc := cache.New(store)

	llmSvc := buildLLMService(cfg)
	summarySvc := summary.New(llmSvc, cfg.LLMModelName, store)
	exportSvc := export.New(jobs, exports, store, cacheSvc, summarySvc, cfg.TimezoneOffset)

	logger.Startup("retention", "Starting retention scheduler...")
	scheduler := retention.New(jobs, exports, store, cfg.RetentionInterval(), cfg.JobRetention(), cfg.ExportRetention())
	scheduler.Start()

	handler := api.NewHandler(cfg, db, jobs, exports, store, orch, ingestSvc, cacheSvc, summarySvc, exportSvc)
	router := api.SetupRoutes(handler)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}

	return &Server{httpServer: httpServer, executor: executor, scheduler: scheduler}, nil
}

// whisperxProjectDir is where the uv-managed WhisperX environment
// lives.
const whisperxProjectDir = "data/envs/WhisperX"

// buildMLEngines constructs the ASR and diarization backends. A
// configured model name selects the WhisperX subprocess engine; an
// empty one falls back to the mock, which keeps the pipeline drivable
// in environments without a Python toolchain.
func buildMLEngines(cfg *config.Config) (engines.ASREngine, engines.DiarizationEngine) {
	var asr engines.ASREngine = engines.MockASREngine{}
	var diarizer engines.DiarizationEngine = engines.MockDiarizationEngine{}

	if cfg.ASRModelName != "" {
		asr = &engines.WhisperXASREngine{
			ProjectDir: whisperxProjectDir,
			Model:      cfg.ASRModelName,
			Device:     cfg.ComputeDevice,
		}
	}
	if cfg.DiarizationModelName != "" {
		diarizer = &engines.WhisperXDiarizationEngine{
			ProjectDir: whisperxProjectDir,
			Model:      cfg.DiarizationModelName,
			Device:     cfg.ComputeDevice,
			HFToken:    cfg.MLCredentialsToken,
		}
	}
	return asr, diarizer
}

// buildLLMService selects the chat-completion backend: an Ollama host
// when no API key is configured, otherwise the OpenAI-compatible
// client.
func buildLLMService(cfg *config.Config) llm.Service {
	if cfg.LLMAPIKey == "" {
		return llm.NewOllamaService(cfg.LLMAPIURL, cfg.LLMTimeout)
	}
	return llm.NewOpenAIService(cfg.LLMAPIKey, cfg.LLMAPIURL, cfg.LLMTimeout)
}

// Run starts the HTTP listener. It blocks until the server stops.
func (s *Server) Run() error {
	logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP listener and every background
// worker, in the reverse order they were started.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.scheduler.Stop()
	s.executor.Stop()
	return err
}
