// Package cache mediates transcript artifacts: reading the
// canonical-or-edited transcript (edited wins), writing the edited
// overlay, and renaming speakers. Any mutation that could change
// summarization input evicts the cached summary.
package cache

import (
	"encoding/json"

	"meetflow/internal/apperr"
	"meetflow/internal/artifacts"
	"meetflow/internal/models"
)

// Cache mediates reads/writes of transcript artifacts; each call names
// the job it acts on.
type Cache struct {
	Store *artifacts.Store
}

// New constructs a Cache.
func New(store *artifacts.Store) *Cache {
	return &Cache{Store: store}
}

// TranscriptResult wraps the resolved transcript with a flag reporting
// whether the edited overlay was served.
type TranscriptResult struct {
	Segments []models.AttributedSegment
	IsEdited bool
}

// GetTranscript resolves basename from fileName and returns the edited
// overlay if present, else the canonical transcript. 404s if neither
// exists.
func (c *Cache) GetTranscript(fileName string) (*TranscriptResult, error) {
	basename := artifacts.Basename(fileName)

	editedPath := c.Store.TranscriptEditedPath(basename)
	if artifacts.Exists(editedPath) {
		segs, err := readTranscript(editedPath)
		if err != nil {
			return nil, apperr.NewInternal("failed to read edited transcript", err)
		}
		return &TranscriptResult{Segments: segs, IsEdited: true}, nil
	}

	canonicalPath := c.Store.TranscriptPath(basename)
	if !artifacts.Exists(canonicalPath) {
		return nil, apperr.NewNotFound("transcript not found")
	}
	segs, err := readTranscript(canonicalPath)
	if err != nil {
		return nil, apperr.NewInternal("failed to read transcript", err)
	}
	return &TranscriptResult{Segments: segs, IsEdited: false}, nil
}

// PutEditedTranscript validates content as an ordered array of the
// segment shape, writes it to the edited path, and invalidates the
// summary cache for jobID.
func (c *Cache) PutEditedTranscript(jobID, fileName string, content []models.AttributedSegment) error {
	if err := validateSegments(content); err != nil {
		return err
	}

	basename := artifacts.Basename(fileName)
	payload, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return apperr.NewInternal("failed to encode transcript", err)
	}
	if err := artifacts.WriteFile(c.Store.TranscriptEditedPath(basename), payload); err != nil {
		return apperr.NewInternal("failed to write edited transcript", err)
	}

	return c.invalidateSummary(jobID)
}

// RenameSpeakers loads the current transcript (preferring edited),
// applies the label substitution, writes the result to the edited path,
// and invalidates the summary cache.
func (c *Cache) RenameSpeakers(jobID, fileName string, mapping map[string]string) error {
	current, err := c.GetTranscript(fileName)
	if err != nil {
		return err
	}

	renamed := make([]models.AttributedSegment, len(current.Segments))
	for i, seg := range current.Segments {
		newLabel := seg.Speaker
		if mapped, ok := mapping[seg.Speaker]; ok {
			newLabel = mapped
		}
		renamed[i] = models.AttributedSegment{
			Speaker: newLabel,
			Text:    seg.Text,
			Start:   seg.Start,
			End:     seg.End,
		}
	}

	return c.PutEditedTranscript(jobID, fileName, renamed)
}

func (c *Cache) invalidateSummary(jobID string) error {
	if err := artifacts.Remove(c.Store.SummaryPath(jobID)); err != nil {
		return apperr.NewInternal("failed to invalidate summary cache", err)
	}
	return nil
}

func readTranscript(path string) ([]models.AttributedSegment, error) {
	raw, err := artifacts.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var segs []models.AttributedSegment
	if err := json.Unmarshal(raw, &segs); err != nil {
		return nil, err
	}
	return segs, nil
}

func validateSegments(segments []models.AttributedSegment) error {
	if segments == nil {
		return apperr.NewValidation("transcript must be an array")
	}
	for _, s := range segments {
		if s.Speaker == "" || s.Start == "" || s.End == "" {
			return apperr.NewValidation("transcript segment missing required field")
		}
	}
	return nil
}
