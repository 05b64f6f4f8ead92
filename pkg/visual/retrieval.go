// Package visual implements the visual memory subsystem: a retrieval variant
// with significance and emotional-overhang boosts, pruning candidacy, tag
// strength scoring, the consolidation-window state machine, and
// representative frame selection.
//
// Visual memories reuse the same activation kernels as verbal ones; the
// difference is domain-specific modulation. Emotional content preferentially
// preserves visual gist, so high-arousal memories get an extra retrieval
// boost on top of the standard emotional multiplier.
package visual

import (
	"sort"

	"github.com/zeattacker/lucid-go/pkg/activation"
	"github.com/zeattacker/lucid-go/pkg/retrieval"
	"github.com/zeattacker/lucid-go/pkg/spreading"
)

// Visual retrieval defaults
const (
	// DefaultSignificanceBoost scales the additive significance bonus
	DefaultSignificanceBoost = 0.3
	// DefaultEmotionalBoost scales the overhang bonus for high-arousal memories
	DefaultEmotionalBoost = 0.2
	// EmotionalOverhangThreshold: only memories above this emotional weight
	// receive the overhang boost
	EmotionalOverhangThreshold = 0.7
)

// RetrievalConfig extends the general pipeline with visual modulators.
type RetrievalConfig struct {
	Retrieval retrieval.Config `yaml:"retrieval"`
	// SignificanceBoost scales the per-memory significance bonus
	SignificanceBoost float64 `yaml:"significance_boost"`
	// EmotionalBoost scales the overhang bonus
	EmotionalBoost float64 `yaml:"emotional_boost"`
	// EmotionalThreshold gates the overhang bonus
	EmotionalThreshold float64 `yaml:"emotional_threshold"`
}

// DefaultRetrievalConfig returns the standard visual parameterization.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		Retrieval:          retrieval.DefaultConfig(),
		SignificanceBoost:  DefaultSignificanceBoost,
		EmotionalBoost:     DefaultEmotionalBoost,
		EmotionalThreshold: EmotionalOverhangThreshold,
	}
}

// RetrievalInput is the general input plus per-memory significance scores.
type RetrievalInput struct {
	ProbeEmbedding      []float64
	MemoryEmbeddings    [][]float64
	AccessHistoriesMs   [][]float64
	EmotionalWeights    []float64
	DecayRates          []float64
	WorkingMemoryBoosts []float64
	// Significances holds per-memory significance (0-1); short arrays
	// default missing indices to 0
	Significances []float64
	Associations  []spreading.Association
	CurrentTimeMs float64
}

// Candidate is a visual retrieval result; Significance carries the input
// score through to the caller.
type Candidate struct {
	retrieval.Candidate
	Significance float64 `json:"significance"`
}

// Retrieve runs the general pipeline, then applies the additive significance
// and emotional-overhang boosts to each total before the logistic, so the
// probability stays a function of a single scalar. The boosts deliberately
// bypass the emotional multiplier.
func Retrieve(input RetrievalInput, cfg RetrievalConfig) []Candidate {
	n := len(input.MemoryEmbeddings)
	if n == 0 {
		return nil
	}

	// Run the standard pipeline over every candidate so boosts can reorder
	// before the probability floor and truncation apply
	base := retrieval.Retrieve(retrieval.Input{
		ProbeEmbedding:      input.ProbeEmbedding,
		MemoryEmbeddings:    input.MemoryEmbeddings,
		AccessHistoriesMs:   input.AccessHistoriesMs,
		EmotionalWeights:    input.EmotionalWeights,
		DecayRates:          input.DecayRates,
		WorkingMemoryBoosts: input.WorkingMemoryBoosts,
		Associations:        input.Associations,
		CurrentTimeMs:       input.CurrentTimeMs,
	}, unfiltered(cfg.Retrieval, n))

	candidates := make([]Candidate, 0, len(base))
	for _, c := range base {
		significance := 0.0
		if c.Index < len(input.Significances) {
			significance = input.Significances[c.Index]
		}

		total := c.TotalActivation + cfg.SignificanceBoost*significance
		if c.EmotionalWeight > cfg.EmotionalThreshold {
			total += cfg.EmotionalBoost * (c.EmotionalWeight - cfg.EmotionalThreshold)
		}

		probability := activation.RetrievalProbability(total, cfg.Retrieval.ActivationThreshold, cfg.Retrieval.NoiseParameter)
		if probability < cfg.Retrieval.MinProbability {
			continue
		}

		c.TotalActivation = total
		c.Probability = probability
		candidates = append(candidates, Candidate{Candidate: c, Significance: significance})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].TotalActivation != candidates[j].TotalActivation {
			return candidates[i].TotalActivation > candidates[j].TotalActivation
		}
		return candidates[i].Index < candidates[j].Index
	})
	if len(candidates) > cfg.Retrieval.MaxResults {
		candidates = candidates[:cfg.Retrieval.MaxResults]
	}

	return candidates
}

// unfiltered widens the inner pipeline so the visual boosts see every
// candidate; filtering and truncation happen after boosting. The inner cap
// is the corpus size, the explicit "all candidates" value MaxResults expects.
func unfiltered(cfg retrieval.Config, numMemories int) retrieval.Config {
	cfg.MinProbability = 0
	cfg.MaxResults = numMemories
	return cfg
}
