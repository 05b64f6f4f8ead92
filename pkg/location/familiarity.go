// Package location implements spatial memory: intuitions about locations
// (files, places) that build through repeated exposure and fade when unused.
//
// Familiarity follows a Hebbian asymptote of access count, decays with a
// sticky floor so well-known places never feel entirely foreign, and binds
// the activity performed at each access (reading, writing, debugging) so
// co-accessed locations form typed associations for the spreading engine.
package location

import (
	"math"

	"github.com/zeattacker/lucid-go/pkg/spreading"
)

// Familiarity defaults
const (
	// DefaultFamiliarityK is the asymptote rate: f(n) = 1 - 1/(1 + k·n)
	DefaultFamiliarityK = 0.1
	// DefaultWellKnownThreshold marks a location as well known
	DefaultWellKnownThreshold = 0.7
	// DefaultStaleThresholdDays: no decay until this many days idle
	DefaultStaleThresholdDays = 14.0
	// DefaultMaxDecayRate is the per-invocation decay for unfamiliar places
	DefaultMaxDecayRate = 0.1
	// DefaultFamiliarityDampening: familiarity itself slows decay
	DefaultFamiliarityDampening = 0.5
	// DefaultBaseFloor is the absolute familiarity floor
	DefaultBaseFloor = 0.05
	// DefaultStickyBonus raises the floor for places that were well known
	DefaultStickyBonus = 0.2

	msPerDay = 86_400_000.0
)

// Config parameterizes familiarity growth and decay.
type Config struct {
	FamiliarityK         float64 `yaml:"familiarity_k"`
	WellKnownThreshold   float64 `yaml:"well_known_threshold"`
	StaleThresholdDays   float64 `yaml:"stale_threshold_days"`
	MaxDecayRate         float64 `yaml:"max_decay_rate"`
	FamiliarityDampening float64 `yaml:"familiarity_dampening"`
	BaseFloor            float64 `yaml:"base_floor"`
	StickyBonus          float64 `yaml:"sticky_bonus"`
}

// DefaultConfig returns the standard spatial-memory parameterization.
func DefaultConfig() Config {
	return Config{
		FamiliarityK:         DefaultFamiliarityK,
		WellKnownThreshold:   DefaultWellKnownThreshold,
		StaleThresholdDays:   DefaultStaleThresholdDays,
		MaxDecayRate:         DefaultMaxDecayRate,
		FamiliarityDampening: DefaultFamiliarityDampening,
		BaseFloor:            DefaultBaseFloor,
		StickyBonus:          DefaultStickyBonus,
	}
}

// Intuition is the host-owned familiarity record for one location.
type Intuition struct {
	// Familiarity in [0, 1]
	Familiarity float64 `json:"familiarity" yaml:"familiarity"`
	// AccessCount of visits
	AccessCount int `json:"access_count" yaml:"access_count"`
	// LastAccessMs is the most recent visit
	LastAccessMs float64 `json:"last_access_ms" yaml:"last_access_ms"`
	// Pinned locations never decay
	Pinned bool `json:"pinned" yaml:"pinned"`
}

// ComputeFamiliarity maps an access count onto the asymptotic curve
// f(n) = 1 - 1/(1 + k·n). The first access lands near 0.091 with the
// default k.
func ComputeFamiliarity(accessCount int, k float64) float64 {
	if accessCount <= 0 {
		return 0
	}
	return 1.0 - 1.0/(1.0+k*float64(accessCount))
}

// InitialFamiliarity is the familiarity after a single access with defaults.
func InitialFamiliarity() float64 {
	return ComputeFamiliarity(1, DefaultFamiliarityK)
}

// IsWellKnown reports whether familiarity has crossed the well-known line.
func IsWellKnown(familiarity float64, cfg Config) bool {
	return familiarity >= cfg.WellKnownThreshold
}

// ComputeDecayedFamiliarity applies one decay step to a familiarity value.
// Pinned locations never decay; neither do locations visited within the
// stale threshold. Otherwise decay runs at max_decay·(1 - f·dampening),
// floored by base_floor plus a sticky bonus proportional to how far past
// 0.5 familiarity had climbed. Invalid timestamps (non-finite or negative)
// leave familiarity unchanged.
func ComputeDecayedFamiliarity(familiarity, lastAccessMs, nowMs float64, pinned bool, cfg Config) float64 {
	if pinned {
		return familiarity
	}
	if math.IsNaN(lastAccessMs) || math.IsInf(lastAccessMs, 0) || lastAccessMs < 0 {
		return familiarity
	}

	daysSince := (nowMs - lastAccessMs) / msPerDay
	if daysSince < cfg.StaleThresholdDays {
		return familiarity
	}

	rate := cfg.MaxDecayRate * (1.0 - familiarity*cfg.FamiliarityDampening)
	decayed := familiarity * (1.0 - rate)

	floor := cfg.BaseFloor
	if familiarity > 0.5 {
		floor += cfg.StickyBonus * (familiarity - 0.5)
	}
	if decayed < floor {
		return floor
	}
	return decayed
}

// ComputeBatchDecay applies one decay step to every intuition, returning the
// new familiarity values without mutating the inputs.
func ComputeBatchDecay(intuitions []Intuition, nowMs float64, cfg Config) []float64 {
	result := make([]float64, len(intuitions))
	for i, in := range intuitions {
		result[i] = ComputeDecayedFamiliarity(in.Familiarity, in.LastAccessMs, nowMs, in.Pinned, cfg)
	}
	return result
}

// SpreadLocationActivation runs the spreading engine over location
// associations, seeding from the given location indices with their
// familiarity values as seed mass.
func SpreadLocationActivation(numLocations int, associations []Association, seedIndices []int, seedFamiliarities []float64, spreadCfg spreading.Config, depth int) spreading.Result {
	edges := make([]spreading.Association, len(associations))
	for i, a := range associations {
		edges[i] = a.ToSpreadingAssociation()
	}
	return spreading.Spread(numLocations, edges, seedIndices, seedFamiliarities, spreadCfg, depth)
}

// AssociatedLocations returns the location indices reached by spreading from
// a single seed, strongest first, excluding the seed itself.
func AssociatedLocations(numLocations int, associations []Association, seed int, spreadCfg spreading.Config, depth int) []int {
	result := SpreadLocationActivation(numLocations, associations, []int{seed}, []float64{1.0}, spreadCfg, depth)
	top := spreading.TopActivated(result.Activations, numLocations)
	out := make([]int, 0, len(top))
	for _, idx := range top {
		if idx != seed {
			out = append(out, idx)
		}
	}
	return out
}
