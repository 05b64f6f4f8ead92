// Package perception is the optional video-ingestion collaborator: frame
// extraction and metadata via the ffmpeg CLI, scene-change detection via
// perceptual hashing, and transcription via an external speech model. Its
// only interface with the retrieval core is the FrameCandidate and
// TranscriptSegment values it feeds into visual-memory scoring.
package perception

import (
	"errors"
	"fmt"
)

// Recoverable collaborator errors. Missing audio is deliberately distinct:
// the pipeline treats it as "no transcript", not a hard failure.
var (
	ErrFFmpegNotFound  = errors.New("perception: ffmpeg not found in PATH")
	ErrFFprobeNotFound = errors.New("perception: ffprobe not found in PATH")
	ErrWhisperNotFound = errors.New("perception: whisper binary not found in PATH")
	ErrVideoNotFound   = errors.New("perception: video file not found")
	ErrInvalidVideo    = errors.New("perception: invalid or unsupported video")
	ErrNoVideoStream   = errors.New("perception: no video stream")
	ErrNoAudioStream   = errors.New("perception: no audio stream")
	ErrCancelled       = errors.New("perception: operation cancelled")
)

// FFmpegError carries the message and exit code of a failed ffmpeg run.
type FFmpegError struct {
	Message  string
	ExitCode int
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("perception: ffmpeg failed (exit %d): %s", e.ExitCode, e.Message)
}

// TimeoutError reports an operation that exceeded its deadline.
type TimeoutError struct {
	Seconds float64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("perception: operation timed out after %.0fs", e.Seconds)
}

// IsNoAudio reports whether an error means the input has no audio stream.
func IsNoAudio(err error) bool {
	return errors.Is(err, ErrNoAudioStream)
}

// IsMissingDependency reports whether an error is a missing external tool.
func IsMissingDependency(err error) bool {
	return errors.Is(err, ErrFFmpegNotFound) ||
		errors.Is(err, ErrFFprobeNotFound) ||
		errors.Is(err, ErrWhisperNotFound)
}

// IsRecoverable reports whether the operation may succeed on retry.
func IsRecoverable(err error) bool {
	var timeout *TimeoutError
	return errors.Is(err, ErrCancelled) || errors.As(err, &timeout)
}
