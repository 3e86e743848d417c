// Package alignment merges ASR segments with speaker-turn segments into
// speaker-attributed segments: each segment takes the label of the turn
// it overlaps most, or a sentinel when nothing overlaps.
package alignment

import (
	"fmt"
	"strings"

	"meetflow/internal/models"
)

// SentinelSpeaker is the fixed label assigned when no diarization turn
// overlaps an ASR segment.
const SentinelSpeaker = "SPEAKER_00"

// Align merges time-ordered ASR segments with time-ordered speaker
// turns. For each ASR segment it assigns the speaker label of the turn
// with maximum overlap duration, breaking ties by earliest turn start.
// Output preserves ASR order; speaker turns are a label source only,
// never a reordering source.
func Align(asrSegments []models.TranscriptSegment, speakerTurns []models.SpeakerTurn) []models.AttributedSegment {
	out := make([]models.AttributedSegment, 0, len(asrSegments))
	for _, seg := range asrSegments {
		label := bestSpeaker(seg, speakerTurns)
		out = append(out, models.AttributedSegment{
			Speaker: label,
			Text:    strings.TrimSpace(seg.Text),
			Start:   fmt.Sprintf("%.2f", seg.Start),
			End:     fmt.Sprintf("%.2f", seg.End),
		})
	}
	return out
}

func bestSpeaker(seg models.TranscriptSegment, turns []models.SpeakerTurn) string {
	bestOverlap := 0.0
	bestStart := 0.0
	found := false
	label := SentinelSpeaker

	for _, turn := range turns {
		overlap := overlapDuration(seg.Start, seg.End, turn.Start, turn.End)
		if overlap <= 0 {
			continue
		}
		if !found || overlap > bestOverlap || (overlap == bestOverlap && turn.Start < bestStart) {
			bestOverlap = overlap
			bestStart = turn.Start
			label = turn.SpeakerLabel
			found = true
		}
	}
	return label
}

func overlapDuration(aStart, aEnd, bStart, bEnd float64) float64 {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	overlap := end - start
	if overlap < 0 {
		return 0
	}
	return overlap
}
