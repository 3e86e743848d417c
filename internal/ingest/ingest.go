// Package ingest turns an upload into a Job: chunked SHA-256 hashing
// with a size cap, filename sanitization, duplicate detection by
// content hash, and format normalization through the transcoder.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"meetflow/internal/apperr"
	"meetflow/internal/artifacts"
	"meetflow/internal/engines"
	"meetflow/internal/models"
	"meetflow/internal/pathsafety"
	"meetflow/internal/repository"
)

// chunkSize is the read unit for the hash-while-writing loop.
const chunkSize = 8192

// Service performs the upload → Job pipeline.
type Service struct {
	Jobs        *repository.JobRepository
	Store       *artifacts.Store
	Transcoder  engines.Transcoder
	MaxFileSize int64

	// AllowedTypes restricts upload extensions when non-empty
	// (lowercase, dot-prefixed). Empty accepts any extension.
	AllowedTypes []string
}

// New constructs an ingest Service.
func New(jobs *repository.JobRepository, store *artifacts.Store, transcoder engines.Transcoder, maxFileSize int64) *Service {
	return &Service{Jobs: jobs, Store: store, Transcoder: transcoder, MaxFileSize: maxFileSize}
}

// Result reports whether CreateJob found or created a Job.
type Result struct {
	Job       *models.Job
	Duplicate bool
}

// CreateJob streams upload, hashing as it goes, and either returns an
// existing Job for a matching hash (discarding the new bytes) or
// persists a new Job after optional format normalization.
func (s *Service) CreateJob(ctx context.Context, filename string, upload io.Reader) (*Result, error) {
	sanitized := pathsafety.SanitizeFilename(filename)
	if !s.typeAllowed(sanitized) {
		return nil, apperr.NewValidation("unsupported audio type")
	}
	uniqueName := pathsafety.UniqueFilename(s.Store.UploadDir, sanitized)
	dstPath := s.Store.UploadPath(uniqueName)

	hash, err := s.streamToDisk(dstPath, upload)
	if err != nil {
		return nil, err
	}

	if existing, err := s.Jobs.FindByHash(ctx, hash); err == nil {
		// Dedupe contract: discard the bytes we just wrote, return the
		// existing Job verbatim.
		_ = os.Remove(dstPath)
		return &Result{Job: existing, Duplicate: true}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NewInternal("failed to query job store", err)
	}

	finalName := uniqueName
	if !strings.EqualFold(filepath.Ext(uniqueName), ".wav") {
		wavName := artifacts.Basename(uniqueName) + ".wav"
		wavName = pathsafety.UniqueFilename(s.Store.UploadDir, wavName)
		wavPath := s.Store.UploadPath(wavName)

		if err := s.Transcoder.ToWAV(ctx, dstPath, wavPath); err != nil {
			_ = os.Remove(dstPath)
			_ = os.Remove(wavPath)
			return nil, apperr.NewExternalFailure("conversion failed", err)
		}
		_ = os.Remove(dstPath)
		finalName = wavName
	}

	job := &models.Job{
		FileName:      finalName,
		FileHash:      hash,
		WorkflowState: models.StateUploaded,
		StatusCode:    models.StatusInProgress,
	}
	if err := s.Jobs.Create(ctx, job); err != nil {
		return nil, apperr.NewInternal("failed to persist job", err)
	}

	return &Result{Job: job, Duplicate: false}, nil
}

func (s *Service) typeAllowed(fileName string) bool {
	if len(s.AllowedTypes) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range s.AllowedTypes {
		if ext == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// streamToDisk copies upload to dstPath in bounded chunks, accumulating
// a SHA-256 digest, and aborts with a PayloadTooLarge error if
// MaxFileSize is exceeded.
func (s *Service) streamToDisk(dstPath string, upload io.Reader) (string, error) {
	f, err := os.Create(dstPath)
	if err != nil {
		return "", apperr.NewInternal("failed to create upload file", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	var total int64

	for {
		n, readErr := upload.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > s.MaxFileSize {
				_ = f.Close()
				_ = os.Remove(dstPath)
				return "", apperr.NewPayloadTooLarge("payload too large")
			}
			if _, err := h.Write(buf[:n]); err != nil {
				return "", apperr.NewInternal("hash accumulation failed", err)
			}
			if _, err := f.Write(buf[:n]); err != nil {
				return "", apperr.NewInternal("failed to write upload chunk", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = os.Remove(dstPath)
			return "", apperr.NewInternal("failed to read upload", readErr)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
