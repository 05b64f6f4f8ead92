// Package activation implements the mathematics of remembering.
//
// Three components combine to determine what surfaces:
//  1. Base-level activation (recency/frequency): B(m) = ln[Σ(t_k)^(-d)]
//  2. Probe-trace similarity (relevance): A(i) = S(i)³
//  3. Spreading activation (association): A_j = Σ(W_i/n_i) × S_ij
//
// The cubed similarity function (MINERVA 2) ensures weakly matching traces
// contribute minimally while strong matches dominate.
package activation

import "math"

// Activation parameters (ACT-R defaults)
const (
	// DefaultDecayRate is d in the forgetting equation (0.5 for human-like decay)
	DefaultDecayRate = 0.5
	// DefaultActivationThreshold is τ, the retrieval threshold
	DefaultActivationThreshold = 0.3
	// DefaultNoiseParameter is s, the noise/temperature parameter
	DefaultNoiseParameter = 0.1
	// DefaultLatencyFactor is F, the latency scaling factor
	DefaultLatencyFactor = 1.0

	// MinAgeMs floors each access age so the power term cannot explode when
	// current time equals an access time
	MinAgeMs = 1000.0

	// BaseLevelFloor is what a never-accessed (-Inf) base level clamps to
	// before entering the recency boost
	BaseLevelFloor = -10.0
)

// Config holds parameters for activation calculations.
type Config struct {
	// DecayRate is d in the forgetting equation
	DecayRate float64 `yaml:"decay_rate"`
	// ActivationThreshold is τ, the retrieval threshold
	ActivationThreshold float64 `yaml:"activation_threshold"`
	// NoiseParameter is s, the noise/temperature parameter
	NoiseParameter float64 `yaml:"noise_parameter"`
	// LatencyFactor is F, the latency scaling factor
	LatencyFactor float64 `yaml:"latency_factor"`
}

// DefaultConfig returns the standard ACT-R parameterization.
func DefaultConfig() Config {
	return Config{
		DecayRate:           DefaultDecayRate,
		ActivationThreshold: DefaultActivationThreshold,
		NoiseParameter:      DefaultNoiseParameter,
		LatencyFactor:       DefaultLatencyFactor,
	}
}

// Breakdown holds the activation components for a single memory.
type Breakdown struct {
	// ProbeActivation is the cubed probe-trace similarity
	ProbeActivation float64 `json:"probe_activation"`
	// BaseLevel is ln[Σ(t_k)^(-d)] from the access history
	BaseLevel float64 `json:"base_level"`
	// Spreading is activation received through the association graph
	Spreading float64 `json:"spreading"`
	// EmotionalWeight is the raw emotional salience (0-1)
	EmotionalWeight float64 `json:"emotional_weight"`
	// Total is the combined activation
	Total float64 `json:"total"`
}

// ComputeBaseLevel computes ACT-R base-level activation from an access
// history: B(m) = ln[Σ max(1s, t_now - t_k)^(-d)], ages in seconds.
// An empty history returns -Inf ("never accessed").
func ComputeBaseLevel(accessTimesMs []float64, currentTimeMs, decay float64) float64 {
	if len(accessTimesMs) == 0 {
		return math.Inf(-1)
	}

	var sum float64
	for _, t := range accessTimesMs {
		ageMs := currentTimeMs - t
		if ageMs < MinAgeMs {
			ageMs = MinAgeMs
		}
		sum += math.Pow(ageMs/1000.0, -decay)
	}

	return math.Log(sum)
}

// NonlinearActivation applies MINERVA 2's cubic function: A(i) = S(i)³.
// Cubing suppresses weak matches while preserving the sign of negative
// similarities.
func NonlinearActivation(similarity float64) float64 {
	return similarity * similarity * similarity
}

// NonlinearActivationBatch cubes a slice of similarities.
func NonlinearActivationBatch(similarities []float64) []float64 {
	result := make([]float64, len(similarities))
	for i, s := range similarities {
		result[i] = s * s * s
	}
	return result
}

// RetrievalProbability computes P(retrieval) = 1 / (1 + e^((τ - A) / s))
// using the numerically stable form: the exponent is branched on sign so
// activations far above or below threshold cannot overflow.
func RetrievalProbability(act, threshold, noise float64) float64 {
	if noise <= 0 {
		// Degenerate noise: step function at the threshold
		if act >= threshold {
			return 1.0
		}
		return 0.0
	}

	x := (act - threshold) / noise
	if x >= 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1.0 + e)
}

// EstimateRetrievalLatency estimates retrieval time in ms: T = F·e^(-A).
func EstimateRetrievalLatency(act float64, cfg Config) float64 {
	return cfg.LatencyFactor * math.Exp(-act) * 1000.0
}

// EmotionalMultiplier maps an emotional weight in [0,1] to a multiplier in
// [0.5, 1.5] centered on neutral (0.5).
func EmotionalMultiplier(emotional float64) float64 {
	return 1.0 + (emotional - 0.5)
}

// RecencyBoost normalizes a base-level activation from the working range
// [-10, 0] onto [0, 1], clamping at both ends. Non-finite base levels
// (empty history) are treated as the floor.
func RecencyBoost(baseLevel float64) float64 {
	if !isFinite(baseLevel) {
		baseLevel = BaseLevelFloor
	}
	boost := (baseLevel - BaseLevelFloor) / -BaseLevelFloor
	if boost < 0 {
		return 0
	}
	if boost > 1 {
		return 1
	}
	return boost
}

// Combine merges the activation components multiplicatively: similarity is
// primary, recency is a boost, not an override. A very recent but
// semantically irrelevant item cannot outrank an older strong match.
//
//	total = probe · (1 + (e - 0.5)) · (1 + recency) + spreading
func Combine(baseLevel, probeActivation, spreading, emotional float64) Breakdown {
	clamped := baseLevel
	if !isFinite(clamped) {
		clamped = BaseLevelFloor
	}

	total := probeActivation*EmotionalMultiplier(emotional)*(1.0+RecencyBoost(baseLevel)) + spreading

	return Breakdown{
		ProbeActivation: probeActivation,
		BaseLevel:       clamped,
		Spreading:       spreading,
		EmotionalWeight: emotional,
		Total:           total,
	}
}

// CombineAdditive is the alternative combiner in which recency enters as an
// additive term rather than a multiplier. Recency is still subordinate to
// similarity (half weight). Selected via retrieval.Config.AdditiveCombine.
//
//	total = (probe + 0.5·recency) · (1 + (e - 0.5)) + spreading
func CombineAdditive(baseLevel, probeActivation, spreading, emotional float64) Breakdown {
	clamped := baseLevel
	if !isFinite(clamped) {
		clamped = BaseLevelFloor
	}

	total := (probeActivation+0.5*RecencyBoost(baseLevel))*EmotionalMultiplier(emotional) + spreading

	return Breakdown{
		ProbeActivation: probeActivation,
		BaseLevel:       clamped,
		Spreading:       spreading,
		EmotionalWeight: emotional,
		Total:           total,
	}
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
