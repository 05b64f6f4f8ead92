package retrieval

import "github.com/zeattacker/lucid-go/pkg/activation"

// ComputeSurprise measures the normalized prediction error between an
// expected and an actually-retrieved embedding. Stronger and older memories
// need more semantic drift to register as surprising (trace dominance), so
// the threshold is adjusted before normalizing.
//
// Returns 0 (no surprise) to 1 (max surprise).
func ComputeSurprise(expected, actual []float64, memoryAgeDays, memoryStrength, baseThreshold float64) float64 {
	semanticSurprise := 1.0 - activation.CosineSimilarity(expected, actual)

	adjustedThreshold := baseThreshold + memoryAgeDays*0.01 + memoryStrength*0.2
	if adjustedThreshold <= 0 {
		return 1.0
	}

	surprise := semanticSurprise / adjustedThreshold
	if surprise > 1.0 {
		return 1.0
	}
	return surprise
}

// TriggersLability reports whether a surprise value opens the
// reconsolidation window.
func TriggersLability(surprise, threshold float64) bool {
	return surprise > threshold
}
