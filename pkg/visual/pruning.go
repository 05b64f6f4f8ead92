package visual

import (
	"math"
	"sort"
)

// Pruning defaults
const (
	// DefaultPruningThreshold: memories below this significance are
	// low-significance candidates once aging
	DefaultPruningThreshold = 0.3
	// DefaultStaleDays: memories unaccessed this long are stale
	DefaultStaleDays = 90.0
	// DefaultAgingDays: a memory counts as aging after this many days
	DefaultAgingDays = 14.0

	msPerDay = 86_400_000.0
)

// PruningReason classifies why a memory is a pruning candidate.
type PruningReason string

const (
	ReasonLowSignificance PruningReason = "low_significance"
	ReasonStale           PruningReason = "stale"
	ReasonDuplicate       PruningReason = "duplicate"
	ReasonLowQuality      PruningReason = "low_quality"
)

// MemoryMeta is the per-memory metadata pruning operates on.
type MemoryMeta struct {
	Index        int     `json:"index" yaml:"index"`
	Significance float64 `json:"significance" yaml:"significance"`
	Pinned       bool    `json:"pinned" yaml:"pinned"`
	IsKeyframe   bool    `json:"is_keyframe" yaml:"is_keyframe"`
	LastAccessMs float64 `json:"last_access_ms" yaml:"last_access_ms"`
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`
}

// PruningConfig controls pruning candidacy.
type PruningConfig struct {
	// PruningThreshold is the significance floor
	PruningThreshold float64 `yaml:"pruning_threshold"`
	// StaleDays is the days-since-access after which a memory is stale
	StaleDays float64 `yaml:"stale_days"`
	// AgingDays is when low-significance pruning starts to apply
	AgingDays float64 `yaml:"aging_days"`
	// PreserveKeyframes exempts keyframes from pruning
	PreserveKeyframes bool `yaml:"preserve_keyframes"`
}

// DefaultPruningConfig returns the standard pruning parameterization.
func DefaultPruningConfig() PruningConfig {
	return PruningConfig{
		PruningThreshold:  DefaultPruningThreshold,
		StaleDays:         DefaultStaleDays,
		AgingDays:         DefaultAgingDays,
		PreserveKeyframes: true,
	}
}

// PruningCandidate is a memory proposed for pruning with its score; higher
// scores prune first.
type PruningCandidate struct {
	Index  int           `json:"index"`
	Reason PruningReason `json:"reason"`
	Score  float64       `json:"score"`
}

// classify returns the pruning candidacy of one memory, or nil. Pinned
// memories and (when configured) keyframes are never candidates.
func classify(m MemoryMeta, nowMs float64, cfg PruningConfig) *PruningCandidate {
	if m.Pinned {
		return nil
	}
	if m.IsKeyframe && cfg.PreserveKeyframes {
		return nil
	}

	days := (nowMs - m.LastAccessMs) / msPerDay
	if math.IsNaN(days) || days < 0 {
		days = 0
	}

	if cfg.StaleDays > 0 && days > cfg.StaleDays {
		return &PruningCandidate{
			Index:  m.Index,
			Reason: ReasonStale,
			Score:  (days / cfg.StaleDays) * (1.0 - m.Significance),
		}
	}

	if m.Significance < cfg.PruningThreshold && days > cfg.AgingDays {
		ageFactor := 1.0
		if cfg.StaleDays > 0 {
			ageFactor = math.Min(days/cfg.StaleDays, 1.0)
		}
		return &PruningCandidate{
			Index:  m.Index,
			Reason: ReasonLowSignificance,
			Score:  (cfg.PruningThreshold - m.Significance) * ageFactor,
		}
	}

	return nil
}

// ComputePruningCandidates classifies every memory and returns candidates
// sorted by score descending, index ascending on ties.
func ComputePruningCandidates(memories []MemoryMeta, nowMs float64, cfg PruningConfig) []PruningCandidate {
	var candidates []PruningCandidate
	for _, m := range memories {
		if c := classify(m, nowMs, cfg); c != nil {
			candidates = append(candidates, *c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Index < candidates[j].Index
	})

	return candidates
}

// ShouldPrune reports whether a single memory is a pruning candidate.
func ShouldPrune(m MemoryMeta, nowMs float64, cfg PruningConfig) bool {
	return classify(m, nowMs, cfg) != nil
}

// Tagging defaults
const (
	// DefaultTagThreshold: significance above this contributes to tag strength
	DefaultTagThreshold = 0.5
	// tagAccessK is the asymptote rate for the access-count term
	tagAccessK = 0.1
)

// Asymptote is the saturating curve 1 - 1/(1 + k·n) shared by tag strength
// and spatial familiarity.
func Asymptote(n float64, k float64) float64 {
	if n <= 0 {
		return 0
	}
	return 1.0 - 1.0/(1.0+k*n)
}

// ComputeTagStrength scores an automatic tag:
//
//	strength = base + 0.3·asymp(accesses) + 0.5·max(0, significance - θ)
//
// clamped to 1.
func ComputeTagStrength(baseConfidence float64, accessCount int, significance, tagThreshold float64) float64 {
	strength := baseConfidence + 0.3*Asymptote(float64(accessCount), tagAccessK)
	if significance > tagThreshold {
		strength += 0.5 * (significance - tagThreshold)
	}
	if strength > 1.0 {
		return 1.0
	}
	return strength
}

// ShouldTag reports whether a memory is significant enough to auto-tag.
func ShouldTag(significance, tagThreshold float64) bool {
	return significance >= tagThreshold
}
