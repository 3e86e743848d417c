package engines

import (
	"context"
	"fmt"
	"os/exec"
)

// FFmpegTranscoder shells out to the ffmpeg binary to normalize audio
// to 16 kHz mono WAV.
type FFmpegTranscoder struct {
	BinaryPath string
}

// NewFFmpegTranscoder constructs a transcoder using the given ffmpeg
// binary path ("ffmpeg" resolved via PATH if empty).
func NewFFmpegTranscoder(binaryPath string) *FFmpegTranscoder {
	if binaryPath == "" {
		binaryPath = "ffmpeg"
	}
	return &FFmpegTranscoder{BinaryPath: binaryPath}
}

// ToWAV converts inputPath to a 16 kHz mono PCM WAV at outputPath.
func (t *FFmpegTranscoder) ToWAV(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, t.BinaryPath,
		"-y",
		"-i", inputPath,
		"-ar", "16000",
		"-ac", "1",
		"-sample_fmt", "s16",
		outputPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("engines: ffmpeg transcode failed: %w (%s)", err, out)
	}
	return nil
}
