package alignment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"meetflow/internal/models"
)

func seg(start, end float64, text string) models.TranscriptSegment {
	return models.TranscriptSegment{Start: start, End: end, Text: text}
}

func turn(start, end float64, label string) models.SpeakerTurn {
	return models.SpeakerTurn{Start: start, End: end, SpeakerLabel: label}
}

func TestAlign_BasicOverlap(t *testing.T) {
	asr := []models.TranscriptSegment{seg(0, 5, "hello there")}
	turns := []models.SpeakerTurn{turn(0, 5, "SPEAKER_01")}

	got := Align(asr, turns)

	assert.Len(t, got, 1)
	assert.Equal(t, "SPEAKER_01", got[0].Speaker)
	assert.Equal(t, "hello there", got[0].Text)
	assert.Equal(t, "0.00", got[0].Start)
	assert.Equal(t, "5.00", got[0].End)
}

func TestAlign_MaxOverlapWins(t *testing.T) {
	asr := []models.TranscriptSegment{seg(0, 10, "x")}
	turns := []models.SpeakerTurn{
		turn(0, 3, "SPEAKER_00"),
		turn(3, 10, "SPEAKER_01"),
	}

	got := Align(asr, turns)

	assert.Equal(t, "SPEAKER_01", got[0].Speaker)
}

func TestAlign_TieBrokenByEarliestStart(t *testing.T) {
	asr := []models.TranscriptSegment{seg(0, 10, "x")}
	turns := []models.SpeakerTurn{
		turn(5, 10, "SPEAKER_LATER"),
		turn(0, 5, "SPEAKER_EARLIER"),
	}

	got := Align(asr, turns)

	assert.Equal(t, "SPEAKER_EARLIER", got[0].Speaker)
}

func TestAlign_NoOverlapUsesSentinel(t *testing.T) {
	asr := []models.TranscriptSegment{seg(100, 110, "x")}
	turns := []models.SpeakerTurn{turn(0, 5, "SPEAKER_01")}

	got := Align(asr, turns)

	assert.Equal(t, SentinelSpeaker, got[0].Speaker)
}

func TestAlign_EmptyDiarizationAllSentinel(t *testing.T) {
	asr := []models.TranscriptSegment{seg(0, 5, "a"), seg(5, 10, "b")}

	got := Align(asr, nil)

	assert.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, SentinelSpeaker, s.Speaker)
	}
}

func TestAlign_SegmentBeforeAnyTurnUsesSentinel(t *testing.T) {
	asr := []models.TranscriptSegment{seg(0, 1, "early")}
	turns := []models.SpeakerTurn{turn(10, 20, "SPEAKER_01")}

	got := Align(asr, turns)

	assert.Equal(t, SentinelSpeaker, got[0].Speaker)
}

func TestAlign_PreservesASROrder(t *testing.T) {
	asr := []models.TranscriptSegment{
		seg(10, 15, "second-in-time"),
		seg(0, 5, "first-in-time"),
	}
	turns := []models.SpeakerTurn{
		turn(0, 5, "SPEAKER_00"),
		turn(10, 15, "SPEAKER_01"),
	}

	got := Align(asr, turns)

	assert.Equal(t, "second-in-time", got[0].Text)
	assert.Equal(t, "first-in-time", got[1].Text)
}

func TestAlign_TrimsText(t *testing.T) {
	asr := []models.TranscriptSegment{seg(0, 1, "  padded  ")}

	got := Align(asr, nil)

	assert.Equal(t, "padded", got[0].Text)
}
