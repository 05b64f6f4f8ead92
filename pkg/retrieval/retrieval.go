// Package retrieval composes the activation primitives and the spreading
// engine into the full memory retrieval pipeline:
//
//  1. Batch probe-trace similarity
//  2. Working-memory boost on similarity, then MINERVA 2 cubing
//  3. Base-level activation from access history
//  4. Spreading through the association graph from top seeds
//  5. Combine, filter by retrieval probability, rank
//
// All inputs are caller-owned parallel arrays; outputs are freshly allocated.
// The pipeline is pure and safe to call concurrently with disjoint inputs.
package retrieval

import (
	"sort"

	"github.com/zeattacker/lucid-go/pkg/activation"
	"github.com/zeattacker/lucid-go/pkg/spreading"
)

// Pipeline constants
const (
	// MaxSeeds caps how many top-activated traces seed spreading
	MaxSeeds = 5
	// SeedSimilarityThreshold is the minimum cubed similarity for a trace to
	// seed spreading, preventing spreading from pure recency
	SeedSimilarityThreshold = 0.1
)

// Config controls the retrieval pipeline.
type Config struct {
	// DecayRate is the ACT-R exponent when a per-trace override is absent
	DecayRate float64 `yaml:"decay_rate"`
	// ActivationThreshold is τ, the logistic center
	ActivationThreshold float64 `yaml:"activation_threshold"`
	// NoiseParameter is s, the logistic spread
	NoiseParameter float64 `yaml:"noise_parameter"`
	// SpreadingDepth is the BFS depth cap
	SpreadingDepth int `yaml:"spreading_depth"`
	// SpreadingDecay is γ, the per-hop multiplier
	SpreadingDecay float64 `yaml:"spreading_decay"`
	// MinProbability filters candidates below this retrieval probability
	MinProbability float64 `yaml:"min_probability"`
	// MaxResults truncates the ranked output. Zero means zero results, not
	// "unlimited": callers wanting every candidate pass len(memories)
	MaxResults int `yaml:"max_results"`
	// Bidirectional spreads along backward edges too
	Bidirectional bool `yaml:"bidirectional"`
	// AdditiveCombine selects the additive recency combiner instead of the
	// default multiplicative one
	AdditiveCombine bool `yaml:"additive_combine"`
	// LatencyFactor is F in the retrieval latency estimate
	LatencyFactor float64 `yaml:"latency_factor"`
}

// DefaultConfig returns the standard retrieval parameterization.
func DefaultConfig() Config {
	return Config{
		DecayRate:           0.5,
		ActivationThreshold: 0.3,
		NoiseParameter:      0.1,
		SpreadingDepth:      3,
		SpreadingDecay:      0.7,
		MinProbability:      0.1,
		MaxResults:          10,
		Bidirectional:       true,
		LatencyFactor:       1.0,
	}
}

// Input holds the memory corpus and probe for one retrieval call. All
// per-memory slices are parallel; optional channels may be short, in which
// case missing indices take neutral defaults (WM boost 1.0, emotion 0.5,
// decay Config.DecayRate).
type Input struct {
	// ProbeEmbedding is the query vector
	ProbeEmbedding []float64
	// MemoryEmbeddings holds all trace vectors
	MemoryEmbeddings [][]float64
	// AccessHistoriesMs holds access timestamps (ms) per memory
	AccessHistoriesMs [][]float64
	// EmotionalWeights holds per-memory emotional salience (0-1)
	EmotionalWeights []float64
	// DecayRates holds per-memory decay overrides
	DecayRates []float64
	// WorkingMemoryBoosts holds per-memory WM multipliers (1.0 = no boost),
	// applied to similarity before cubing
	WorkingMemoryBoosts []float64
	// Associations holds the graph edges for spreading
	Associations []spreading.Association
	// CurrentTimeMs is the retrieval time
	CurrentTimeMs float64
}

// Candidate is a ranked retrieval result with its activation breakdown.
type Candidate struct {
	// Index of the memory in the input arrays
	Index int `json:"index"`
	// BaseLevel activation from access history (clamped when never accessed)
	BaseLevel float64 `json:"base_level"`
	// ProbeActivation is the cubed post-boost similarity
	ProbeActivation float64 `json:"probe_activation"`
	// Spreading is the node's activation after the spreading pass; for a
	// seed trace it includes the seed's own initial activation
	Spreading float64 `json:"spreading"`
	// EmotionalWeight factor (0-1)
	EmotionalWeight float64 `json:"emotional_weight"`
	// TotalActivation is the combined total, the sort key
	TotalActivation float64 `json:"total_activation"`
	// Probability of retrieval (0-1)
	Probability float64 `json:"probability"`
	// LatencyMs is the estimated retrieval latency
	LatencyMs float64 `json:"latency_ms"`
}

// Retrieve runs the full pipeline and returns candidates ranked by total
// activation descending, index ascending on ties.
func Retrieve(input Input, cfg Config) []Candidate {
	n := len(input.MemoryEmbeddings)
	if n == 0 {
		return nil
	}

	// 1. Probe-trace similarities, batched
	similarities := activation.CosineSimilarityBatch(input.ProbeEmbedding, input.MemoryEmbeddings)

	// 2. WM boost on the similarity signal before cubing, capped at 1 to
	// stay in valid similarity range
	boosted := make([]float64, n)
	for i, sim := range similarities {
		boost := 1.0
		if i < len(input.WorkingMemoryBoosts) {
			boost = input.WorkingMemoryBoosts[i]
		}
		s := sim * boost
		if s > 1.0 {
			s = 1.0
		}
		boosted[i] = s
	}

	// 3. MINERVA 2 cubing
	probeActivations := activation.NonlinearActivationBatch(boosted)

	// 4. Base-level per trace with its own decay rate
	baseLevels := make([]float64, n)
	for i := 0; i < n; i++ {
		decay := cfg.DecayRate
		if i < len(input.DecayRates) {
			decay = input.DecayRates[i]
		}
		var history []float64
		if i < len(input.AccessHistoriesMs) {
			history = input.AccessHistoriesMs[i]
		}
		baseLevels[i] = activation.ComputeBaseLevel(history, input.CurrentTimeMs, decay)
	}

	// 5. Initial activation: similarity primary, emotion and recency
	// modulatory
	initial := make([]float64, n)
	for i := 0; i < n; i++ {
		emotional := emotionalAt(input.EmotionalWeights, i)
		initial[i] = probeActivations[i] *
			activation.EmotionalMultiplier(emotional) *
			(1.0 + activation.RecencyBoost(baseLevels[i]))
	}

	// 6. Seeds: top 5 by initial activation among traces whose cubed
	// similarity clears the floor (pure recency cannot seed spreading)
	type seed struct {
		idx int
		act float64
	}
	var seeds []seed
	for i, a := range initial {
		if probeActivations[i] > SeedSimilarityThreshold {
			seeds = append(seeds, seed{i, a})
		}
	}
	sort.Slice(seeds, func(i, j int) bool {
		if seeds[i].act != seeds[j].act {
			return seeds[i].act > seeds[j].act
		}
		return seeds[i].idx < seeds[j].idx
	})
	if len(seeds) > MaxSeeds {
		seeds = seeds[:MaxSeeds]
	}

	// 7. Spread through the association graph
	var spreadResult spreading.Result
	if len(seeds) > 0 && cfg.SpreadingDepth > 0 {
		seedIndices := make([]int, len(seeds))
		seedActs := make([]float64, len(seeds))
		for i, s := range seeds {
			seedIndices[i] = s.idx
			seedActs[i] = s.act
		}
		spreadCfg := spreading.Config{
			DecayPerHop:       cfg.SpreadingDecay,
			MinimumActivation: spreading.DefaultMinimumActivation,
			MaxNodes:          spreading.DefaultMaxNodes,
			Bidirectional:     cfg.Bidirectional,
		}
		spreadResult = spreading.Spread(n, input.Associations, seedIndices, seedActs, spreadCfg, cfg.SpreadingDepth)
	} else {
		spreadResult = spreading.Result{Activations: make([]float64, n)}
	}

	// 8. Combine, compute probability, filter
	actCfg := activation.Config{
		DecayRate:           cfg.DecayRate,
		ActivationThreshold: cfg.ActivationThreshold,
		NoiseParameter:      cfg.NoiseParameter,
		LatencyFactor:       cfg.LatencyFactor,
	}
	combine := activation.Combine
	if cfg.AdditiveCombine {
		combine = activation.CombineAdditive
	}

	candidates := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		emotional := emotionalAt(input.EmotionalWeights, i)
		breakdown := combine(baseLevels[i], probeActivations[i], spreadResult.Activations[i], emotional)

		probability := activation.RetrievalProbability(breakdown.Total, cfg.ActivationThreshold, cfg.NoiseParameter)
		if probability < cfg.MinProbability {
			continue
		}

		candidates = append(candidates, Candidate{
			Index:           i,
			BaseLevel:       breakdown.BaseLevel,
			ProbeActivation: breakdown.ProbeActivation,
			Spreading:       breakdown.Spreading,
			EmotionalWeight: breakdown.EmotionalWeight,
			TotalActivation: breakdown.Total,
			Probability:     probability,
			LatencyMs:       activation.EstimateRetrievalLatency(breakdown.Total, actCfg),
		})
	}

	// 9. Rank and truncate, deterministically
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].TotalActivation != candidates[j].TotalActivation {
			return candidates[i].TotalActivation > candidates[j].TotalActivation
		}
		return candidates[i].Index < candidates[j].Index
	})
	if len(candidates) > cfg.MaxResults {
		candidates = candidates[:cfg.MaxResults]
	}

	return candidates
}

// RetrieveBySimilarity is the lightweight similarity-only path: no activation
// math, just the top-k most similar memory indices.
func RetrieveBySimilarity(probe []float64, memories [][]float64, topK int) []int {
	similarities := activation.CosineSimilarityBatch(probe, memories)

	indexed := make([]int, len(similarities))
	for i := range indexed {
		indexed[i] = i
	}
	sort.Slice(indexed, func(i, j int) bool {
		si, sj := similarities[indexed[i]], similarities[indexed[j]]
		if si != sj {
			return si > sj
		}
		return indexed[i] < indexed[j]
	})

	if topK > len(indexed) {
		topK = len(indexed)
	}
	return indexed[:topK]
}

func emotionalAt(weights []float64, i int) float64 {
	if i < len(weights) {
		return weights[i]
	}
	return 0.5
}
