package engines

import "context"

// MockASREngine is a deterministic stand-in for a real ASR backend,
// useful for local development and tests.
type MockASREngine struct{}

func (MockASREngine) Transcribe(ctx context.Context, audioPath string) (*TranscriptionResult, error) {
	return &TranscriptionResult{
		Text:     "",
		Language: "en",
		Segments: nil,
	}, nil
}

// MockDiarizationEngine is a deterministic stand-in for a real
// diarization backend.
type MockDiarizationEngine struct{}

func (MockDiarizationEngine) Diarize(ctx context.Context, audioPath string) ([]SpeakerTurnResult, error) {
	return nil, nil
}
