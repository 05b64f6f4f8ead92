package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/zeattacker/lucid-go/pkg/visual"
)

// TranscriptionConfig controls speech-to-text via the external whisper CLI.
type TranscriptionConfig struct {
	// BinaryName of the whisper executable (whisper-cli from whisper.cpp)
	BinaryName string `yaml:"binary_name"`
	// ModelPath to the ggml model file
	ModelPath string `yaml:"model_path"`
	// Language hint; empty lets the model detect
	Language string `yaml:"language"`
}

// DefaultTranscriptionConfig returns the standard transcription setup.
func DefaultTranscriptionConfig() TranscriptionConfig {
	home, _ := os.UserHomeDir()
	return TranscriptionConfig{
		BinaryName: "whisper-cli",
		ModelPath:  filepath.Join(home, ".lucid", "models", "ggml-base.en.bin"),
		Language:   "en",
	}
}

// TranscriptionResult is the timestamped transcript of a video's audio.
type TranscriptionResult struct {
	Segments []visual.TranscriptSegment `json:"segments"`
	Language string                     `json:"language"`
	Text     string                     `json:"text"`
}

// whisper-cli -oj output shape
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"` // ms
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// TranscribeVideo extracts the audio track and runs the external whisper
// model over it. Inputs with no audio stream return ErrNoAudioStream so the
// pipeline can treat them as "no transcript" instead of failing.
func TranscribeVideo(ctx context.Context, path string, cfg TranscriptionConfig) (*TranscriptionResult, error) {
	meta, err := GetVideoMetadata(ctx, path)
	if err != nil {
		return nil, err
	}
	if !meta.HasAudio {
		return nil, fmt.Errorf("%w: %s", ErrNoAudioStream, path)
	}

	whisper, err := exec.LookPath(cfg.BinaryName)
	if err != nil {
		return nil, ErrWhisperNotFound
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model %s", ErrWhisperNotFound, cfg.ModelPath)
	}

	wavPath, err := extractAudio(ctx, path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(wavPath)

	outBase := wavPath // whisper appends .json
	args := []string{
		"-m", cfg.ModelPath,
		"-f", wavPath,
		"-oj",
		"-of", outBase,
	}
	if cfg.Language != "" {
		args = append(args, "-l", cfg.Language)
	}

	cmd := exec.CommandContext(ctx, whisper, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	jsonPath := outBase + ".json"
	defer os.Remove(jsonPath)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}

	result := &TranscriptionResult{Language: out.Result.Language}
	for _, seg := range out.Transcription {
		result.Segments = append(result.Segments, visual.TranscriptSegment{
			StartSec: float64(seg.Offsets.From) / 1000.0,
			EndSec:   float64(seg.Offsets.To) / 1000.0,
			Text:     seg.Text,
		})
		result.Text += seg.Text
	}

	return result, nil
}

// extractAudio demuxes the audio track to 16kHz mono WAV, whisper's input
// format.
func extractAudio(ctx context.Context, path string) (string, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", ErrFFmpegNotFound
	}

	tmp, err := os.CreateTemp("", "lucid-audio-*.wav")
	if err != nil {
		return "", fmt.Errorf("create audio temp: %w", err)
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-i", path,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		tmp.Name(),
	)
	if err := cmd.Run(); err != nil {
		os.Remove(tmp.Name())
		if ctx.Err() != nil {
			return "", ErrCancelled
		}
		return "", &FFmpegError{Message: "audio extraction failed", ExitCode: -1}
	}

	return tmp.Name(), nil
}
