package perception

import (
	"fmt"
	"image/jpeg"
	"os"

	"github.com/corona10/goimagehash"

	"github.com/zeattacker/lucid-go/pkg/visual"
)

// SceneConfig controls perceptual-hash scene detection.
type SceneConfig struct {
	// HammingThreshold: consecutive frames whose pHash distance exceeds this
	// mark a scene change
	HammingThreshold int `yaml:"hamming_threshold"`
	// MinQuality is the QualityScore given to every candidate; image quality
	// itself is not measured
	MinQuality float64 `yaml:"min_quality"`
}

// DefaultSceneConfig returns the standard detection parameterization.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{HammingThreshold: 12, MinQuality: 0.5}
}

// DetectSceneChanges compares consecutive frames by perceptual hash and
// returns frame candidates for visual-memory scoring. Perceptual hashes are
// robust to re-encoding, scaling, and compression, so only genuine content
// changes cross the Hamming threshold. Frames whose image cannot be read are
// carried through unscored rather than dropped.
func DetectSceneChanges(frames []ExtractedFrame, cfg SceneConfig) ([]visual.FrameCandidate, error) {
	candidates := make([]visual.FrameCandidate, 0, len(frames))

	var prevHash *goimagehash.ImageHash
	for _, frame := range frames {
		candidate := visual.FrameCandidate{
			Index:        frame.Index,
			TimestampSec: frame.TimestampSec,
			IsKeyframe:   frame.IsKeyframe,
			QualityScore: cfg.MinQuality,
		}

		hash, err := hashFrame(frame.Path)
		if err == nil {
			if prevHash != nil {
				distance, derr := prevHash.Distance(hash)
				if derr == nil && distance > cfg.HammingThreshold {
					candidate.IsSceneChange = true
				}
			}
			prevHash = hash
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// hashFrame computes the pHash of a frame image on disk.
func hashFrame(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	return goimagehash.PerceptionHash(img)
}
