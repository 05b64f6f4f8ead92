package location

import "github.com/zeattacker/lucid-go/pkg/spreading"

// Co-access association multipliers. Shared task context creates the
// strongest links; shared activity alone is weaker; plain temporal proximity
// is the baseline.
const (
	multSameTaskSameActivity = 5.0
	multSameTaskDiffActivity = 3.0
	multDiffTaskSameActivity = 2.0
	multBaseline             = 1.0

	// associationBackwardFactor attenuates the reverse direction when
	// feeding the spreading engine
	associationBackwardFactor = 0.7
)

// Association is a typed link between two co-accessed locations.
type Association struct {
	// Source location index
	Source int `json:"source" yaml:"source"`
	// Target location index
	Target int `json:"target" yaml:"target"`
	// Strength in [0, 1]
	Strength float64 `json:"strength" yaml:"strength"`
	// SameTask: both accesses belonged to one task
	SameTask bool `json:"same_task" yaml:"same_task"`
	// SameActivity: both accesses were the same kind of work
	SameActivity bool `json:"same_activity" yaml:"same_activity"`
}

// associationMultiplier picks the 2×2 context multiplier.
func associationMultiplier(sameTask, sameActivity bool) float64 {
	switch {
	case sameTask && sameActivity:
		return multSameTaskSameActivity
	case sameTask:
		return multSameTaskDiffActivity
	case sameActivity:
		return multDiffTaskSameActivity
	default:
		return multBaseline
	}
}

// ComputeAssociationStrength maps a co-access count onto the familiarity
// asymptote with an effective count scaled by the shared-context multiplier.
func ComputeAssociationStrength(coAccesses int, sameTask, sameActivity bool, cfg Config) float64 {
	if coAccesses <= 0 {
		return 0
	}
	effective := float64(coAccesses) * associationMultiplier(sameTask, sameActivity)
	return 1.0 - 1.0/(1.0+cfg.FamiliarityK*effective)
}

// ToSpreadingAssociation converts a location association into a graph edge
// for the spreading engine; the backward direction carries 0.7 of the
// forward strength.
func (a Association) ToSpreadingAssociation() spreading.Association {
	return spreading.Association{
		Source:           a.Source,
		Target:           a.Target,
		ForwardStrength:  a.Strength,
		BackwardStrength: a.Strength * associationBackwardFactor,
	}
}
