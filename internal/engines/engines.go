// Package engines defines the contracts for the external ML
// collaborators: ASR, diarization, and audio transcoding. The
// interfaces are declared in this file; the package also ships an
// ffmpeg transcoder, WhisperX subprocess engines, and mock engines, and
// the service treats every backend as opaque.
package engines

import "context"

// TranscriptSegmentResult is one timestamped ASR output span.
type TranscriptSegmentResult struct {
	Start float64
	End   float64
	Text  string
}

// TranscriptionResult is the full ASR output for one audio file.
type TranscriptionResult struct {
	Text     string
	Language string
	Segments []TranscriptSegmentResult
}

// ASREngine produces timestamped text segments from audio.
type ASREngine interface {
	Transcribe(ctx context.Context, audioPath string) (*TranscriptionResult, error)
}

// SpeakerTurnResult is one timestamped speaker turn.
type SpeakerTurnResult struct {
	Start        float64
	End          float64
	SpeakerLabel string
}

// DiarizationEngine partitions audio into speaker turns.
type DiarizationEngine interface {
	Diarize(ctx context.Context, audioPath string) ([]SpeakerTurnResult, error)
}

// Transcoder normalizes any input audio format to 16 kHz mono WAV.
type Transcoder interface {
	// ToWAV converts inputPath to a 16 kHz mono WAV at outputPath.
	ToWAV(ctx context.Context, inputPath, outputPath string) error
}
