// Package retention runs the single long-lived periodic sweep of
// orphaned uploads, expired Jobs, and expired ExportJobs. Sweep errors
// are logged and retried after a backoff so one failure never silences
// the scheduler; sleeps are interruptible for prompt shutdown.
package retention

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meetflow/internal/artifacts"
	"meetflow/internal/repository"
	"meetflow/pkg/logger"
)

// retryBackoff is the sleep-before-retry duration after a failed sweep.
const retryBackoff = 10 * time.Minute

// orphanAge is the minimum age of a non-WAV upload before it is
// considered a failed-transcode leftover eligible for deletion.
const orphanAge = time.Hour

// Scheduler runs the periodic retention sweep until Stop is called.
type Scheduler struct {
	Jobs    *repository.JobRepository
	Exports *repository.ExportJobRepository
	Store   *artifacts.Store

	interval        time.Duration
	jobRetention    time.Duration
	exportRetention time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Scheduler. interval/jobRetention/exportRetention come
// from Config.RetentionInterval/JobRetention/ExportRetention.
func New(jobs *repository.JobRepository, exports *repository.ExportJobRepository, store *artifacts.Store, interval, jobRetention, exportRetention time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		Jobs:            jobs,
		Exports:         exports,
		Store:           store,
		interval:        interval,
		jobRetention:    jobRetention,
		exportRetention: exportRetention,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
}

// Start launches the sweep loop in a background goroutine.
func (s *Scheduler) Start() {
	go s.loop()
	logger.Info("retention scheduler started", "interval", s.interval.String())
}

// Stop cancels the loop and blocks until its current sleep/sweep
// returns.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.done
	logger.Info("retention scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		if err := s.sweep(); err != nil {
			logger.Error("retention sweep failed", "error", err)
			if !s.sleep(retryBackoff) {
				return
			}
			continue
		}
		if !s.sleep(s.interval) {
			return
		}
	}
}

// sleep waits for d or cancellation, returning false if the scheduler
// should stop.
func (s *Scheduler) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// sweep runs one full pass: orphaned uploads, expired Jobs, expired
// ExportJobs, in that order.
func (s *Scheduler) sweep() error {
	ctx := s.ctx

	if err := s.sweepOrphanedUploads(); err != nil {
		return err
	}

	expiredJobs, err := s.Jobs.CleanupOlderThan(ctx, time.Now().Add(-s.jobRetention))
	if err != nil {
		return err
	}
	for _, job := range expiredJobs {
		basename := artifacts.Basename(job.FileName)
		_ = s.Store.RemoveUpload(job.FileName)
		_ = artifacts.Remove(s.Store.TranscriptPath(basename))
		_ = artifacts.Remove(s.Store.TranscriptEditedPath(basename))
		_ = artifacts.Remove(s.Store.SummaryPath(job.ID))
		logger.Info("retention: job expired", "job_id", job.ID)
	}

	expiredExports, err := s.Exports.CleanupOlderThan(ctx, time.Now().Add(-s.exportRetention))
	if err != nil {
		return err
	}
	for _, ej := range expiredExports {
		if ej.FilePath != nil {
			_ = artifacts.Remove(*ej.FilePath)
		}
		logger.Info("retention: export expired", "export_id", ej.ID)
	}

	return nil
}

// sweepOrphanedUploads deletes non-WAV files in the upload directory
// older than orphanAge: leftovers from a transcode that crashed or was
// interrupted before the original was cleaned up.
func (s *Scheduler) sweepOrphanedUploads() error {
	entries, err := os.ReadDir(s.Store.UploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-orphanAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.Store.UploadDir, entry.Name())
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Error("retention: failed to remove orphaned upload", "path", path, "error", err)
			}
		}
	}
	return nil
}
