// Package format holds the small display-formatting helpers: speaker
// display names, the transcript projection fed to the LLM, and
// human-friendly export filenames.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"meetflow/internal/models"
)

var speakerPattern = regexp.MustCompile(`^SPEAKER_(\d+)$`)

// SpeakerDisplayName maps a raw diarization label to its display form:
// SPEAKER_<nn> becomes "Speaker <nn+1>"; any other label (including a
// user-supplied rename) passes through unchanged. This transformation
// is display-only and never persisted.
func SpeakerDisplayName(label string) string {
	m := speakerPattern.FindStringSubmatch(label)
	if m == nil {
		return label
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return label
	}
	return fmt.Sprintf("Speaker %d", n+1)
}

// TranscriptForLLM projects each segment to "<display_speaker>: <text>",
// blank-line-joined, skipping empty-text segments.
func TranscriptForLLM(segments []models.AttributedSegment) string {
	var lines []string
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", SpeakerDisplayName(seg.Speaker), text))
	}
	return strings.Join(lines, "\n\n")
}

var invalidFilenameChars = regexp.MustCompile(`[^a-z0-9 _-]`)
var audioExtPattern = regexp.MustCompile(`(?i)\.(wav|mp3|mp4|m4a|webm|flac|ogg)$`)

// ProfessionalFilename derives a human-friendly export filename from a
// meeting title: strips any audio extension, lowercases, turns
// underscores into hyphens, deletes every other character outside
// [a-z0-9 _-], truncates to 50 characters, and optionally
// appends a date suffix at the given timezone offset (in hours).
func ProfessionalFilename(meetingTitle, fileType string, includeDate bool, at time.Time, timezoneOffsetHours int) string {
	name := audioExtPattern.ReplaceAllString(meetingTitle, "")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		name = "meeting"
	}
	if len(name) > 50 {
		name = strings.TrimSpace(name[:50])
	}

	if includeDate {
		local := at.UTC().Add(time.Duration(timezoneOffsetHours) * time.Hour)
		name = fmt.Sprintf("%s-%s", name, local.Format("2006-01-02"))
	}

	return fmt.Sprintf("%s.%s", name, fileType)
}
