package activation

import "math"

// AssociationState selects the decay time constant governing an association's
// strength. Transitions are driven by the host in response to
// prediction-error zone classifications.
type AssociationState string

const (
	StateFresh           AssociationState = "fresh"
	StateConsolidating   AssociationState = "consolidating"
	StateConsolidated    AssociationState = "consolidated"
	StateReconsolidating AssociationState = "reconsolidating"
)

// AssociationDecayConfig holds the per-state decay time constants (in days)
// plus reinforcement and pruning parameters.
type AssociationDecayConfig struct {
	TauFreshDays           float64 `yaml:"tau_fresh_days"`
	TauConsolidatingDays   float64 `yaml:"tau_consolidating_days"`
	TauConsolidatedDays    float64 `yaml:"tau_consolidated_days"`
	TauReconsolidatingDays float64 `yaml:"tau_reconsolidating_days"`
	// ReinforcementBoost is added on each co-activation, capped at 1
	ReinforcementBoost float64 `yaml:"reinforcement_boost"`
	// PruneThreshold: an edge below this strength is a pruning candidate
	PruneThreshold float64 `yaml:"prune_threshold"`
}

// DefaultAssociationDecayConfig returns the standard consolidation ladder:
// fresh ≈ 1h, consolidating ≈ 1d, consolidated ≈ 30d, reconsolidating ≈ 7d.
func DefaultAssociationDecayConfig() AssociationDecayConfig {
	return AssociationDecayConfig{
		TauFreshDays:           1.0 / 24.0,
		TauConsolidatingDays:   1.0,
		TauConsolidatedDays:    30.0,
		TauReconsolidatingDays: 7.0,
		ReinforcementBoost:     0.1,
		PruneThreshold:         0.05,
	}
}

// GetDecayTau returns the decay time constant in days for a state. Unknown
// states decay like fresh associations.
func GetDecayTau(state AssociationState, cfg AssociationDecayConfig) float64 {
	switch state {
	case StateConsolidating:
		return cfg.TauConsolidatingDays
	case StateConsolidated:
		return cfg.TauConsolidatedDays
	case StateReconsolidating:
		return cfg.TauReconsolidatingDays
	default:
		return cfg.TauFreshDays
	}
}

// ComputeAssociationDecay returns the decayed strength after elapsedDays:
// strength(t) = strength_0 · e^(-t/τ_state).
func ComputeAssociationDecay(initial, elapsedDays float64, state AssociationState, cfg AssociationDecayConfig) float64 {
	if elapsedDays <= 0 {
		return initial
	}
	tau := GetDecayTau(state, cfg)
	if tau <= 0 {
		return 0
	}
	return initial * math.Exp(-elapsedDays/tau)
}

// ReinforceAssociation adds the fixed reinforcement boost, capped at 1.
func ReinforceAssociation(current float64, cfg AssociationDecayConfig) float64 {
	reinforced := current + cfg.ReinforcementBoost
	if reinforced > 1.0 {
		return 1.0
	}
	return reinforced
}

// ShouldPruneAssociation reports whether an edge has decayed below the prune
// threshold.
func ShouldPruneAssociation(strength float64, cfg AssociationDecayConfig) bool {
	return strength < cfg.PruneThreshold
}

// Reconsolidation zone defaults
const (
	// ThetaLow: below this prediction error, just reinforce
	ThetaLow = 0.10
	// ThetaHigh: above this prediction error, encode a new trace
	ThetaHigh = 0.55
	// BetaRecon is the steepness of the dual sigmoid
	BetaRecon = 10.0
	// MinZoneGap is the smallest allowed distance between effective thresholds
	MinZoneGap = 0.05
)

// PEZone labels the prediction-error zone a retrieval mismatch falls in.
type PEZone string

const (
	// ZoneReinforce: small error, the trace matched well enough to strengthen
	ZoneReinforce PEZone = "reinforce"
	// ZoneReconsolidate: moderate error, the trace becomes labile and updates
	ZoneReconsolidate PEZone = "reconsolidate"
	// ZoneNewTrace: large error, encode a separate trace
	ZoneNewTrace PEZone = "new_trace"
)

// ReconsolidationConfig parameterizes the zone calculus and how the
// boundaries shift with age and use.
type ReconsolidationConfig struct {
	ThetaLow  float64 `yaml:"theta_low"`
	ThetaHigh float64 `yaml:"theta_high"`
	Beta      float64 `yaml:"beta"`
	// AgeShiftPerDay raises θ_low with days since access (older memories
	// tolerate more drift before going labile)
	AgeShiftPerDay float64 `yaml:"age_shift_per_day"`
	MaxAgeShift    float64 `yaml:"max_age_shift"`
	// UseShiftPerAccess lowers θ_high with access count (well-used memories
	// split into new traces sooner)
	UseShiftPerAccess float64 `yaml:"use_shift_per_access"`
	MaxUseShift       float64 `yaml:"max_use_shift"`
}

// DefaultReconsolidationConfig returns the standard zone parameterization.
func DefaultReconsolidationConfig() ReconsolidationConfig {
	return ReconsolidationConfig{
		ThetaLow:          ThetaLow,
		ThetaHigh:         ThetaHigh,
		Beta:              BetaRecon,
		AgeShiftPerDay:    0.005,
		MaxAgeShift:       0.15,
		UseShiftPerAccess: 0.01,
		MaxUseShift:       0.20,
	}
}

// ReconsolidationProbability computes the dual-sigmoid probability that a
// prediction error opens the reconsolidation window:
//
//	P(|δ|) = σ(β(|δ| - θ_low)) · (1 - σ(β(|δ| - θ_high)))
//
// It peaks between the thresholds and falls off on both sides.
func ReconsolidationProbability(predictionError, thetaLow, thetaHigh, beta float64) float64 {
	lower := stableSigmoid(beta * (predictionError - thetaLow))
	upper := stableSigmoid(beta * (predictionError - thetaHigh))
	return lower * (1.0 - upper)
}

// ComputeEffectiveThresholds shifts the zone boundaries with age and use:
// θ_low rises with dormancy, θ_high falls with access count, and a minimum
// gap between them is always preserved.
func ComputeEffectiveThresholds(cfg ReconsolidationConfig, accessCount int, daysSinceAccess float64) (lowEff, highEff float64) {
	ageShift := daysSinceAccess * cfg.AgeShiftPerDay
	if ageShift < 0 {
		ageShift = 0
	}
	if ageShift > cfg.MaxAgeShift {
		ageShift = cfg.MaxAgeShift
	}

	useShift := float64(accessCount) * cfg.UseShiftPerAccess
	if useShift < 0 {
		useShift = 0
	}
	if useShift > cfg.MaxUseShift {
		useShift = cfg.MaxUseShift
	}

	lowEff = cfg.ThetaLow + ageShift
	highEff = cfg.ThetaHigh - useShift

	if highEff < lowEff+MinZoneGap {
		highEff = lowEff + MinZoneGap
	}

	return lowEff, highEff
}

// ClassifyPEZone maps an absolute prediction error onto its zone given
// effective thresholds.
func ClassifyPEZone(predictionError, lowEff, highEff float64) PEZone {
	switch {
	case predictionError < lowEff:
		return ZoneReinforce
	case predictionError < highEff:
		return ZoneReconsolidate
	default:
		return ZoneNewTrace
	}
}

// stableSigmoid evaluates 1/(1+e^(-x)) without overflow for large |x|.
func stableSigmoid(x float64) float64 {
	if x >= 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1.0 + e)
}
