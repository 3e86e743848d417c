package engines

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleResult = `{
  "language": "en",
  "segments": [
    {"start": 0.0, "end": 2.5, "text": " hello there", "speaker": "SPEAKER_00"},
    {"start": 2.5, "end": 4.0, "text": " how are you", "speaker": "SPEAKER_00"},
    {"start": 4.0, "end": 7.0, "text": " doing fine", "speaker": "SPEAKER_01"},
    {"start": 7.0, "end": 8.0, "text": " "}
  ]
}`

func TestParseWhisperXTranscription(t *testing.T) {
	got, err := parseWhisperXTranscription([]byte(sampleResult))
	require.NoError(t, err)

	require.Equal(t, "en", got.Language)
	require.Len(t, got.Segments, 4)
	require.Equal(t, 0.0, got.Segments[0].Start)
	require.Equal(t, 2.5, got.Segments[0].End)
	require.Equal(t, "hello there how are you doing fine", got.Text)
}

func TestParseWhisperXTurns_MergesConsecutiveSameSpeaker(t *testing.T) {
	turns, err := parseWhisperXTurns([]byte(sampleResult))
	require.NoError(t, err)

	require.Len(t, turns, 2)
	require.Equal(t, "SPEAKER_00", turns[0].SpeakerLabel)
	require.Equal(t, 0.0, turns[0].Start)
	require.Equal(t, 4.0, turns[0].End)
	require.Equal(t, "SPEAKER_01", turns[1].SpeakerLabel)
}

func TestParseWhisperXTurns_SkipsUnlabeledSegments(t *testing.T) {
	turns, err := parseWhisperXTurns([]byte(`{"segments":[{"start":0,"end":1,"text":"x"}]}`))
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestParseWhisperXTranscription_Malformed(t *testing.T) {
	_, err := parseWhisperXTranscription([]byte("not json"))
	require.Error(t, err)
}
