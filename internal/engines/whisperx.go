package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// whisperxResult is the JSON document the WhisperX CLI writes to its
// output directory: ordered segments plus the detected language.
type whisperxResult struct {
	Segments []whisperxSegment `json:"segments"`
	Language string            `json:"language"`
}

type whisperxSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// WhisperXASREngine runs transcription through the WhisperX CLI inside
// a uv-managed Python project. Inference is serialized behind a mutex
// since the underlying pipeline is not re-entrant.
type WhisperXASREngine struct {
	ProjectDir string
	Model      string
	Device     string

	mu sync.Mutex
}

func (e *WhisperXASREngine) Transcribe(ctx context.Context, audioPath string) (*TranscriptionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	raw, err := runWhisperX(ctx, e.ProjectDir, audioPath, e.Model, e.Device, nil)
	if err != nil {
		return nil, err
	}
	return parseWhisperXTranscription(raw)
}

// WhisperXDiarizationEngine runs the same CLI with diarization enabled
// and reduces the speaker-labeled segments to speaker turns.
type WhisperXDiarizationEngine struct {
	ProjectDir string
	Model      string
	Device     string
	HFToken    string

	mu sync.Mutex
}

func (e *WhisperXDiarizationEngine) Diarize(ctx context.Context, audioPath string) ([]SpeakerTurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	extra := []string{"--diarize"}
	if e.Model != "" {
		extra = append(extra, "--diarize_model", e.Model)
	}
	if e.HFToken != "" {
		extra = append(extra, "--hf_token", e.HFToken)
	}
	raw, err := runWhisperX(ctx, e.ProjectDir, audioPath, "", e.Device, extra)
	if err != nil {
		return nil, err
	}
	return parseWhisperXTurns(raw)
}

// runWhisperX invokes `uv run python -m whisperx` against audioPath
// with a temporary output directory and returns the raw result JSON.
func runWhisperX(ctx context.Context, projectDir, audioPath, model, device string, extraArgs []string) ([]byte, error) {
	outputDir, err := os.MkdirTemp("", "whisperx-*")
	if err != nil {
		return nil, fmt.Errorf("engines: create output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	args := []string{
		"run", "--native-tls", "--project", projectDir, "python", "-m", "whisperx",
		audioPath,
		"--output_dir", outputDir,
		"--output_format", "json",
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	if device != "" {
		args = append(args, "--device", device)
	}
	args = append(args, extraArgs...)

	cmd := exec.CommandContext(ctx, "uv", args...)
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("engines: whisperx failed: %w (%s)", err, truncateOutput(output))
	}

	resultPath := filepath.Join(outputDir, resultBasename(audioPath)+".json")
	raw, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, fmt.Errorf("engines: read whisperx result: %w", err)
	}
	return raw, nil
}

func resultBasename(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func truncateOutput(out []byte) string {
	const max = 500
	s := string(out)
	if len(s) > max {
		return s[len(s)-max:]
	}
	return s
}

func parseWhisperXTranscription(raw []byte) (*TranscriptionResult, error) {
	var result whisperxResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("engines: parse whisperx result: %w", err)
	}

	segments := make([]TranscriptSegmentResult, 0, len(result.Segments))
	var texts []string
	for _, s := range result.Segments {
		segments = append(segments, TranscriptSegmentResult{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
		if t := strings.TrimSpace(s.Text); t != "" {
			texts = append(texts, t)
		}
	}

	return &TranscriptionResult{
		Text:     strings.Join(texts, " "),
		Language: result.Language,
		Segments: segments,
	}, nil
}

// parseWhisperXTurns reduces speaker-labeled segments to turns, merging
// a segment into the previous turn when it carries the same label and
// starts at or before that turn's end; a same-label segment after a gap
// starts a new turn. Unlabeled segments are
// skipped; they carry no speaker information.
func parseWhisperXTurns(raw []byte) ([]SpeakerTurnResult, error) {
	var result whisperxResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("engines: parse whisperx result: %w", err)
	}

	var turns []SpeakerTurnResult
	for _, s := range result.Segments {
		if s.Speaker == "" {
			continue
		}
		if n := len(turns); n > 0 && turns[n-1].SpeakerLabel == s.Speaker && s.Start <= turns[n-1].End {
			if s.End > turns[n-1].End {
				turns[n-1].End = s.End
			}
			continue
		}
		turns = append(turns, SpeakerTurnResult{
			Start:        s.Start,
			End:          s.End,
			SpeakerLabel: s.Speaker,
		})
	}

	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Start < turns[j].Start })
	return turns, nil
}
