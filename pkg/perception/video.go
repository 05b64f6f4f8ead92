package perception

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// VideoMetadata describes a media file as reported by ffprobe.
type VideoMetadata struct {
	DurationSec float64 `json:"duration_sec"`
	FPS         float64 `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	HasAudio    bool    `json:"has_audio"`
	Codec       string  `json:"codec"`
}

// VideoConfig controls frame extraction.
type VideoConfig struct {
	// IntervalSec between extracted frames
	IntervalSec float64 `yaml:"interval_sec"`
	// MaxFrames caps extraction
	MaxFrames int `yaml:"max_frames"`
	// OutputDir for frame images; empty uses a temp dir
	OutputDir string `yaml:"output_dir"`
}

// DefaultVideoConfig returns the standard extraction parameterization.
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{IntervalSec: 2.0, MaxFrames: 120}
}

// ExtractedFrame is one frame pulled from a video.
type ExtractedFrame struct {
	Index        int     `json:"index"`
	TimestampSec float64 `json:"timestamp_sec"`
	Path         string  `json:"path"`
	IsKeyframe   bool    `json:"is_keyframe"`
}

// ffprobe output shapes
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// GetVideoMetadata probes a media file. ffprobe JSON parse failures are
// fatal; files with no video stream return ErrNoVideoStream.
func GetVideoMetadata(ctx context.Context, path string) (*VideoMetadata, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, path)
	}
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, ErrFFprobeNotFound
	}

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidVideo, path)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	meta := &VideoMetadata{}
	meta.DurationSec, _ = strconv.ParseFloat(probe.Format.Duration, 64)

	foundVideo := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			foundVideo = true
			meta.Width = s.Width
			meta.Height = s.Height
			meta.Codec = s.CodecName
			meta.FPS = parseFrameRate(s.AvgFrameRate)
		case "audio":
			meta.HasAudio = true
		}
	}
	if !foundVideo {
		return nil, fmt.Errorf("%w: %s", ErrNoVideoStream, path)
	}

	return meta, nil
}

// parseFrameRate parses ffprobe's "num/den" rational frame rate.
func parseFrameRate(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) != 2 {
		v, _ := strconv.ParseFloat(rate, 64)
		return v
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

// ExtractFrames pulls frames from a video at the configured interval using
// the ffmpeg CLI. ffmpeg is preferred over linked libraries: no build
// dependencies, consistent behavior, every format ffmpeg supports.
func ExtractFrames(ctx context.Context, path string, cfg VideoConfig) ([]ExtractedFrame, error) {
	meta, err := GetVideoMetadata(ctx, path)
	if err != nil {
		return nil, err
	}
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, ErrFFmpegNotFound
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir, err = os.MkdirTemp("", "lucid-frames-"+uuid.NewString()[:8]+"-*")
		if err != nil {
			return nil, fmt.Errorf("create frame dir: %w", err)
		}
	}

	interval := cfg.IntervalSec
	if interval <= 0 {
		interval = 2.0
	}
	pattern := filepath.Join(outputDir, "frame-%06d.jpg")

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-i", path,
		"-vf", fmt.Sprintf("fps=1/%g", interval),
		"-q:v", "2",
		"-y",
		pattern,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, &FFmpegError{Message: lastLine(stderr.String()), ExitCode: exitCode}
	}

	entries, err := filepath.Glob(filepath.Join(outputDir, "frame-*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}

	// Keyframe cadence: the first frame of each scene-length stride. Without
	// demuxer flags every extracted frame is an I-frame candidate, so mark
	// frames that land on whole multiples of the estimated GOP stride
	// (10s divided by the extraction interval).
	keyStride := keyframeStride(meta.FPS, interval)

	frames := make([]ExtractedFrame, 0, len(entries))
	for i, p := range entries {
		if cfg.MaxFrames > 0 && i >= cfg.MaxFrames {
			break
		}
		frames = append(frames, ExtractedFrame{
			Index:        i,
			TimestampSec: float64(i) * interval,
			Path:         p,
			IsKeyframe:   keyStride > 0 && i%keyStride == 0,
		})
	}

	return frames, nil
}

// keyframeStride estimates how many extracted frames sit between encoder
// keyframes (GOP ≈ 10s for typical content).
func keyframeStride(fps, intervalSec float64) int {
	if intervalSec <= 0 {
		return 0
	}
	stride := int(10.0 / intervalSec)
	if stride < 1 {
		stride = 1
	}
	return stride
}

// lastLine returns the final non-empty line of command output, the part
// ffmpeg puts its actual error on.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
