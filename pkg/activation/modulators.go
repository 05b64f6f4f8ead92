package activation

import "math"

// Working memory boost parameters
const (
	// DefaultWMMaxBoost is the maximum multiplier added on top of 1.0
	DefaultWMMaxBoost = 1.0
	// DefaultWMTauMs is the decay time constant of the boost (~4s, the
	// timescale of prefrontal maintenance)
	DefaultWMTauMs = 4000.0
)

// WorkingMemoryConfig parameterizes the short-timescale retrieval boost for
// recently foregrounded items.
type WorkingMemoryConfig struct {
	// MaxBoost is added on top of the neutral multiplier 1.0
	MaxBoost float64 `yaml:"max_boost"`
	// TauMs is the exponential decay constant in milliseconds
	TauMs float64 `yaml:"tau_ms"`
}

// DefaultWorkingMemoryConfig returns the standard WM parameterization.
func DefaultWorkingMemoryConfig() WorkingMemoryConfig {
	return WorkingMemoryConfig{MaxBoost: DefaultWMMaxBoost, TauMs: DefaultWMTauMs}
}

// ComputeWorkingMemoryBoost returns the similarity multiplier for an item
// foregrounded ageMs ago: b = 1 + max_boost·e^(-age/τ). Negative age (clock
// skew) collapses to 1.0 rather than amplifying.
func ComputeWorkingMemoryBoost(ageMs float64, cfg WorkingMemoryConfig) float64 {
	if ageMs < 0 || cfg.TauMs <= 0 {
		return 1.0
	}
	return 1.0 + cfg.MaxBoost*math.Exp(-ageMs/cfg.TauMs)
}

// ComputeWorkingMemoryBoostBatch computes boosts for a slice of ages.
func ComputeWorkingMemoryBoostBatch(agesMs []float64, cfg WorkingMemoryConfig) []float64 {
	result := make([]float64, len(agesMs))
	for i, age := range agesMs {
		result[i] = ComputeWorkingMemoryBoost(age, cfg)
	}
	return result
}

// Session-aware decay buckets. More recent sessions decay slower; the rate is
// monotone non-decreasing in the recency bucket.
const (
	sessionDecayFresh   = 0.3  // < 30 minutes
	sessionDecayRecent  = 0.4  // < 2 hours
	sessionDecayToday   = 0.45 // < 24 hours
	sessionDecayDefault = 0.5  // otherwise, and for future timestamps
)

// ComputeSessionDecayRate maps hours-since-last-access onto a bucketed decay
// rate in [0.3, 0.5]. Future timestamps (negative hours) fall back to 0.5.
func ComputeSessionDecayRate(hoursSinceAccess float64) float64 {
	switch {
	case hoursSinceAccess < 0:
		return sessionDecayDefault
	case hoursSinceAccess < 0.5:
		return sessionDecayFresh
	case hoursSinceAccess < 2:
		return sessionDecayRecent
	case hoursSinceAccess < 24:
		return sessionDecayToday
	default:
		return sessionDecayDefault
	}
}

// ComputeSessionDecayRateBatch computes session decay rates for a slice of
// last-access timestamps against a current time.
func ComputeSessionDecayRateBatch(lastAccessMs []float64, currentTimeMs float64) []float64 {
	result := make([]float64, len(lastAccessMs))
	for i, t := range lastAccessMs {
		result[i] = ComputeSessionDecayRate((currentTimeMs - t) / (1000 * 3600))
	}
	return result
}

// InstanceNoiseConfig parameterizes encoding strength and the per-trace
// retrieval noise derived from it.
type InstanceNoiseConfig struct {
	// BaseNoise is the noise for a neutrally encoded trace
	BaseNoise float64 `yaml:"base_noise"`
	// BaseStrength is the encoding floor every trace starts from
	BaseStrength float64 `yaml:"base_strength"`
	// AttentionWeight scales the attention contribution
	AttentionWeight float64 `yaml:"attention_weight"`
	// EmotionalWeight scales the emotional contribution
	EmotionalWeight float64 `yaml:"emotional_weight"`
	// RehearsalWeight scales the saturating rehearsal contribution
	RehearsalWeight float64 `yaml:"rehearsal_weight"`
	// MaxRehearsals is where the rehearsal term saturates
	MaxRehearsals int `yaml:"max_rehearsals"`
}

// DefaultInstanceNoiseConfig returns the standard encoding parameterization.
func DefaultInstanceNoiseConfig() InstanceNoiseConfig {
	return InstanceNoiseConfig{
		BaseNoise:       0.1,
		BaseStrength:    0.3,
		AttentionWeight: 0.3,
		EmotionalWeight: 0.2,
		RehearsalWeight: 0.2,
		MaxRehearsals:   10,
	}
}

// ComputeEncodingStrength combines attention, emotional weight, and a
// saturating rehearsal count into an encoding strength in [0, 1].
func ComputeEncodingStrength(attention, emotional float64, rehearsals int, cfg InstanceNoiseConfig) float64 {
	maxR := cfg.MaxRehearsals
	if maxR <= 0 {
		maxR = 1
	}
	r := rehearsals
	if r > maxR {
		r = maxR
	}
	if r < 0 {
		r = 0
	}

	strength := cfg.BaseStrength +
		cfg.AttentionWeight*attention +
		cfg.EmotionalWeight*emotional +
		cfg.RehearsalWeight*(float64(r)/float64(maxR))

	if strength < 0 {
		return 0
	}
	if strength > 1 {
		return 1
	}
	return strength
}

// ComputeInstanceNoise derives the per-trace sigmoid spread from encoding
// strength: noise = base·(2 - strength). Stronger encoding narrows the
// retrieval-probability sigmoid.
func ComputeInstanceNoise(strength float64, cfg InstanceNoiseConfig) float64 {
	return cfg.BaseNoise * (2.0 - strength)
}
