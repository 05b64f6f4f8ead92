package perception

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeattacker/lucid-go/internal/logging"
	"github.com/zeattacker/lucid-go/internal/profiling"
	"github.com/zeattacker/lucid-go/pkg/visual"
)

// PipelineConfig bundles the stage configurations for one processing run.
type PipelineConfig struct {
	Video         VideoConfig         `yaml:"video"`
	Scene         SceneConfig         `yaml:"scene"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	// SkipTranscription runs a frames-only pipeline
	SkipTranscription bool `yaml:"skip_transcription"`
}

// DefaultPipelineConfig returns the standard pipeline parameterization.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Video:         DefaultVideoConfig(),
		Scene:         DefaultSceneConfig(),
		Transcription: DefaultTranscriptionConfig(),
	}
}

// ProcessingStats annotates a pipeline run.
type ProcessingStats struct {
	JobID            string  `json:"job_id"`
	FrameCount       int     `json:"frame_count"`
	SceneChangeCount int     `json:"scene_change_count"`
	SegmentCount     int     `json:"segment_count"`
	ExtractionMs     float64 `json:"extraction_ms"`
	TranscriptionMs  float64 `json:"transcription_ms"`
	TotalMs          float64 `json:"total_ms"`
}

// PipelineResult is the combined output of one video processed for
// visual-memory ingestion.
type PipelineResult struct {
	Metadata *VideoMetadata `json:"metadata"`
	// Frames annotated with keyframe/scene-change flags, ready for
	// visual.SelectFramesForDescription
	Frames []visual.FrameCandidate `json:"frames"`
	// Transcript is nil when the input has no audio
	Transcript *TranscriptionResult `json:"transcript,omitempty"`
	// NoAudio marks inputs whose missing audio stream was treated as a soft
	// condition rather than a failure
	NoAudio bool            `json:"no_audio"`
	Stats   ProcessingStats `json:"stats"`
}

// ProcessVideo runs the full ingestion pipeline. Frame extraction + scene
// detection and transcription are independent work items, so they run
// concurrently and fan in over a channel. A missing audio stream is soft:
// the result carries a NoAudio flag and a nil transcript while still
// emitting frames. Every other collaborator error surfaces to the caller.
func ProcessVideo(ctx context.Context, path string, cfg PipelineConfig) (*PipelineResult, error) {
	jobID := uuid.NewString()
	start := time.Now()
	timer := profiling.NewTimer(jobID)
	defer timer.Flush()

	stopMeta := timer.Stage(profiling.StageMetadata)
	meta, err := GetVideoMetadata(ctx, path)
	stopMeta()
	if err != nil {
		return nil, err
	}

	type frameWork struct {
		frames []visual.FrameCandidate
		err    error
	}
	type transcriptWork struct {
		transcript *TranscriptionResult
		err        error
	}

	frameCh := make(chan frameWork, 1)
	transcriptCh := make(chan transcriptWork, 1)

	go func() {
		stop := timer.Stage(profiling.StageFrames)
		extracted, err := ExtractFrames(ctx, path, cfg.Video)
		if err != nil {
			stop()
			frameCh <- frameWork{err: err}
			return
		}
		candidates, err := DetectSceneChanges(extracted, cfg.Scene)
		stop()
		frameCh <- frameWork{frames: candidates, err: err}
	}()

	go func() {
		if cfg.SkipTranscription || !meta.HasAudio {
			transcriptCh <- transcriptWork{}
			return
		}
		stop := timer.Stage(profiling.StageTranscribe)
		result, err := TranscribeVideo(ctx, path, cfg.Transcription)
		stop()
		transcriptCh <- transcriptWork{transcript: result, err: err}
	}()

	fw := <-frameCh
	tw := <-transcriptCh

	if fw.err != nil {
		return nil, fmt.Errorf("frame pipeline: %w", fw.err)
	}

	result := &PipelineResult{
		Metadata: meta,
		Frames:   fw.frames,
		NoAudio:  !meta.HasAudio,
	}

	if tw.err != nil {
		if !IsNoAudio(tw.err) {
			return nil, fmt.Errorf("transcription pipeline: %w", tw.err)
		}
		result.NoAudio = true
	} else {
		result.Transcript = tw.transcript
	}

	sceneChanges := 0
	for _, f := range result.Frames {
		if f.IsSceneChange {
			sceneChanges++
		}
	}
	segmentCount := 0
	if result.Transcript != nil {
		segmentCount = len(result.Transcript.Segments)
	}

	result.Stats = ProcessingStats{
		JobID:            jobID,
		FrameCount:       len(result.Frames),
		SceneChangeCount: sceneChanges,
		SegmentCount:     segmentCount,
		ExtractionMs:     timer.DurationMs(profiling.StageFrames),
		TranscriptionMs:  timer.DurationMs(profiling.StageTranscribe),
		TotalMs:          float64(time.Since(start).Milliseconds()),
	}

	logging.Debug(logging.Perception, "job=%s frames=%d scenes=%d segments=%d no_audio=%v",
		jobID, result.Stats.FrameCount, result.Stats.SceneChangeCount, result.Stats.SegmentCount, result.NoAudio)

	return result, nil
}
