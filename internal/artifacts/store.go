// Package artifacts is the filesystem-backed blob storage layer: one
// directory per artifact class, addressed purely by naming convention
// (no index).
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store holds the five artifact bucket directories.
type Store struct {
	UploadDir           string
	TranscriptDir       string
	TranscriptEditedDir string
	SummaryDir          string
	ExportDir           string
}

// New constructs a Store and ensures every bucket directory exists.
func New(uploadDir, transcriptDir, transcriptEditedDir, summaryDir, exportDir string) (*Store, error) {
	s := &Store{
		UploadDir:           uploadDir,
		TranscriptDir:       transcriptDir,
		TranscriptEditedDir: transcriptEditedDir,
		SummaryDir:          summaryDir,
		ExportDir:           exportDir,
	}
	for _, dir := range []string{uploadDir, transcriptDir, transcriptEditedDir, summaryDir, exportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("artifacts: mkdir %s: %w", dir, err)
		}
	}
	return s, nil
}

// Basename derives the conventional artifact stem from a file name: the
// name without its extension.
func Basename(fileName string) string {
	ext := filepath.Ext(fileName)
	return fileName[:len(fileName)-len(ext)]
}

// UploadPath returns the path an uploaded file with fileName would live
// at.
func (s *Store) UploadPath(fileName string) string {
	return filepath.Join(s.UploadDir, fileName)
}

// TranscriptPath returns the canonical transcript path for basename.
func (s *Store) TranscriptPath(basename string) string {
	return filepath.Join(s.TranscriptDir, basename+".json")
}

// TranscriptEditedPath returns the edited-overlay transcript path.
func (s *Store) TranscriptEditedPath(basename string) string {
	return filepath.Join(s.TranscriptEditedDir, basename+".json")
}

// SummaryPath returns the cached-summary path for a job id.
func (s *Store) SummaryPath(jobID string) string {
	return filepath.Join(s.SummaryDir, jobID)
}

// ExportPath returns the export artifact path for an export id and
// extension.
func (s *Store) ExportPath(exportID, ext string) string {
	return filepath.Join(s.ExportDir, exportID+"."+ext)
}

// WriteFile create-or-replaces path with the given bytes.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a file's contents, returning os.IsNotExist-compatible
// errors untouched so callers can translate to 404.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists reports whether a file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes path; a missing file is not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveUpload is Remove scoped for documentation purposes at call sites.
func (s *Store) RemoveUpload(fileName string) error {
	return Remove(s.UploadPath(fileName))
}
