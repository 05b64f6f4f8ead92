package activation

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity computes similarity between two embeddings (-1 to 1).
// Length mismatch or a zero-norm vector yields 0, never NaN.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	dot := floats.Dot(a, b)
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (normA * normB)
}

// CosineSimilarityBatch computes similarity between a probe and every memory
// embedding. The probe norm is computed once; each memory's dot product and
// squared norm are folded in a single pass. This is the retrieval hot path:
// no allocation beyond the result slice, one branch per memory.
func CosineSimilarityBatch(probe []float64, memories [][]float64) []float64 {
	result := make([]float64, len(memories))

	var probeNormSq float64
	for _, v := range probe {
		probeNormSq += v * v
	}
	if probeNormSq == 0 || len(probe) == 0 {
		return result
	}
	probeNorm := math.Sqrt(probeNormSq)

	for i, mem := range memories {
		if len(mem) != len(probe) {
			continue // defensive short-circuit, result stays 0
		}
		var dot, normSq float64
		for j, v := range mem {
			dot += probe[j] * v
			normSq += v * v
		}
		if normSq == 0 {
			continue
		}
		result[i] = dot / (probeNorm * math.Sqrt(normSq))
	}

	return result
}
