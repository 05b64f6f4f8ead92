package visual

import "sort"

// ConsolidationState is the lifecycle stage of a visual memory's
// consolidation window.
type ConsolidationState string

const (
	ConsolidationFresh           ConsolidationState = "fresh"
	ConsolidationConsolidating   ConsolidationState = "consolidating"
	ConsolidationConsolidated    ConsolidationState = "consolidated"
	ConsolidationReconsolidating ConsolidationState = "reconsolidating"
)

// DefaultConsolidationWindowMs is how long a capture stays in its
// consolidation window (24h).
const DefaultConsolidationWindowMs = 24 * 3600 * 1000.0

// ConsolidationWindow tracks one memory's consolidation lifecycle:
// Fresh → Consolidating (on capture) → Consolidated (on window close) →
// Reconsolidating (on reactivation with surprise) → Consolidated.
type ConsolidationWindow struct {
	State      ConsolidationState `json:"state" yaml:"state"`
	StartMs    float64            `json:"start_ms" yaml:"start_ms"`
	DurationMs float64            `json:"duration_ms" yaml:"duration_ms"`
}

// NewConsolidationWindow returns a fresh window with the default duration.
func NewConsolidationWindow() ConsolidationWindow {
	return ConsolidationWindow{State: ConsolidationFresh, DurationMs: DefaultConsolidationWindowMs}
}

// BeginCapture opens the window: Fresh → Consolidating. A no-op from any
// other state.
func (w *ConsolidationWindow) BeginCapture(nowMs float64) {
	if w.State != ConsolidationFresh {
		return
	}
	w.State = ConsolidationConsolidating
	w.StartMs = nowMs
}

// Progress reports how far through the window the memory is, linear in wall
// time, clamped to [0, 1]. Consolidated memories report 1; fresh ones 0.
func (w *ConsolidationWindow) Progress(nowMs float64) float64 {
	switch w.State {
	case ConsolidationFresh:
		return 0
	case ConsolidationConsolidated:
		return 1
	}
	if w.DurationMs <= 0 {
		return 1
	}
	p := (nowMs - w.StartMs) / w.DurationMs
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Close completes the window: Consolidating or Reconsolidating →
// Consolidated. A no-op from Fresh.
func (w *ConsolidationWindow) Close() {
	if w.State == ConsolidationConsolidating || w.State == ConsolidationReconsolidating {
		w.State = ConsolidationConsolidated
	}
}

// Reactivate reopens a consolidated memory when the host signals surprise:
// Consolidated → Reconsolidating, restarting the window clock.
func (w *ConsolidationWindow) Reactivate(nowMs float64, surprised bool) {
	if !surprised || w.State != ConsolidationConsolidated {
		return
	}
	w.State = ConsolidationReconsolidating
	w.StartMs = nowMs
}

// FrameCandidate is one extracted frame under consideration for description.
type FrameCandidate struct {
	Index         int     `json:"index" yaml:"index"`
	TimestampSec  float64 `json:"timestamp_sec" yaml:"timestamp_sec"`
	IsKeyframe    bool    `json:"is_keyframe" yaml:"is_keyframe"`
	IsSceneChange bool    `json:"is_scene_change" yaml:"is_scene_change"`
	QualityScore  float64 `json:"quality_score" yaml:"quality_score"`
}

// TranscriptSegment is a timestamped span of transcribed speech.
type TranscriptSegment struct {
	StartSec float64 `json:"start_sec" yaml:"start_sec"`
	EndSec   float64 `json:"end_sec" yaml:"end_sec"`
	Text     string  `json:"text" yaml:"text"`
}

// Frame scoring weights
const (
	keyframeBonus    = 0.3
	sceneChangeBonus = 0.5
	transcriptBonus  = 0.2
)

// SelectFramesForDescription picks up to maxFrames representative frames:
// scored by quality plus keyframe, scene-change, and transcript-alignment
// bonuses; first and last frames are always included when there is room; a
// minimum index gap of N/(2·maxFrames) prevents temporal clustering. Output
// indices are in chronological order.
func SelectFramesForDescription(frames []FrameCandidate, transcript []TranscriptSegment, maxFrames int) []int {
	n := len(frames)
	if n == 0 || maxFrames <= 0 {
		return nil
	}
	if n <= maxFrames {
		selected := make([]int, n)
		for i := range selected {
			selected[i] = i
		}
		return selected
	}

	scores := make([]float64, n)
	for i, f := range frames {
		score := f.QualityScore
		if f.IsKeyframe {
			score += keyframeBonus
		}
		if f.IsSceneChange {
			score += sceneChangeBonus
		}
		if inTranscript(f.TimestampSec, transcript) {
			score += transcriptBonus
		}
		scores[i] = score
	}

	minGap := n / (2 * maxFrames)
	if minGap < 1 {
		minGap = 1
	}

	chosen := make(map[int]bool)

	// Anchor the episode boundaries first
	chosen[0] = true
	if maxFrames > 1 {
		chosen[n-1] = true
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		if scores[order[i]] != scores[order[j]] {
			return scores[order[i]] > scores[order[j]]
		}
		return order[i] < order[j]
	})

	for _, idx := range order {
		if len(chosen) >= maxFrames {
			break
		}
		if chosen[idx] {
			continue
		}
		tooClose := false
		for c := range chosen {
			if abs(idx-c) < minGap {
				tooClose = true
				break
			}
		}
		if !tooClose {
			chosen[idx] = true
		}
	}

	selected := make([]int, 0, len(chosen))
	for idx := range chosen {
		selected = append(selected, idx)
	}
	sort.Ints(selected)
	return selected
}

func inTranscript(timestampSec float64, transcript []TranscriptSegment) bool {
	for _, seg := range transcript {
		if timestampSec >= seg.StartSec && timestampSec <= seg.EndSec {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
