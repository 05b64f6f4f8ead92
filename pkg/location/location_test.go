package location

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeattacker/lucid-go/pkg/spreading"
)

func TestFamiliarityCurve(t *testing.T) {
	assert.Equal(t, 0.0, ComputeFamiliarity(0, DefaultFamiliarityK))
	assert.InDelta(t, 1.0/11.0, ComputeFamiliarity(1, DefaultFamiliarityK), 1e-9,
		"first access lands near 0.091")
	assert.InDelta(t, 1.0/11.0, InitialFamiliarity(), 1e-9)

	// Monotone, asymptotic to 1
	prev := 0.0
	for n := 1; n <= 1000; n *= 10 {
		f := ComputeFamiliarity(n, DefaultFamiliarityK)
		assert.Greater(t, f, prev)
		assert.Less(t, f, 1.0)
		prev = f
	}
}

func TestIsWellKnown(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, IsWellKnown(0.69, cfg))
	assert.True(t, IsWellKnown(0.7, cfg))

	// ~23 accesses cross the well-known line with default k
	assert.True(t, IsWellKnown(ComputeFamiliarity(24, cfg.FamiliarityK), cfg))
}

func TestDecayPinnedImmune(t *testing.T) {
	cfg := DefaultConfig()
	f := ComputeDecayedFamiliarity(0.9, 0, 1000*msPerDay, true, cfg)
	assert.Equal(t, 0.9, f, "pinned locations never decay")
}

func TestDecayFreshUnchanged(t *testing.T) {
	cfg := DefaultConfig()
	now := 100 * msPerDay
	recent := now - (cfg.StaleThresholdDays-1)*msPerDay
	assert.Equal(t, 0.6, ComputeDecayedFamiliarity(0.6, recent, now, false, cfg))
}

func TestDecayAppliesAfterStaleThreshold(t *testing.T) {
	cfg := DefaultConfig()
	now := 100 * msPerDay
	stale := now - (cfg.StaleThresholdDays+1)*msPerDay

	decayed := ComputeDecayedFamiliarity(0.6, stale, now, false, cfg)
	assert.Less(t, decayed, 0.6)

	// Familiarity dampens its own decay: a well-known location loses
	// proportionally less
	dropLow := 0.2 - ComputeDecayedFamiliarity(0.2, stale, now, false, cfg)
	dropHigh := 0.9 - ComputeDecayedFamiliarity(0.9, stale, now, false, cfg)
	assert.Greater(t, dropLow/0.2, dropHigh/0.9)
}

func TestDecayStickyFloor(t *testing.T) {
	now := 10_000 * msPerDay

	// An aggressive config makes the floor bind in a single step: a location
	// past 0.5 is caught above the base floor, one below falls to the base
	harsh := DefaultConfig()
	harsh.MaxDecayRate = 1.0
	harsh.FamiliarityDampening = 0
	harsh.StickyBonus = 1.0

	f := ComputeDecayedFamiliarity(0.6, 0, now, false, harsh)
	assert.InDelta(t, harsh.BaseFloor+harsh.StickyBonus*(0.6-0.5), f, 1e-9)

	f = ComputeDecayedFamiliarity(0.4, 0, now, false, harsh)
	assert.InDelta(t, harsh.BaseFloor, f, 1e-9)

	// Under the default config, repeated decay never drops below the base
	// floor no matter how long a location sits idle
	cfg := DefaultConfig()
	f = 0.9
	for i := 0; i < 1000; i++ {
		f = ComputeDecayedFamiliarity(f, 0, now, false, cfg)
	}
	assert.GreaterOrEqual(t, f, cfg.BaseFloor)
}

func TestDecayInvalidTimestamps(t *testing.T) {
	cfg := DefaultConfig()
	now := 100 * msPerDay
	assert.Equal(t, 0.5, ComputeDecayedFamiliarity(0.5, math.NaN(), now, false, cfg))
	assert.Equal(t, 0.5, ComputeDecayedFamiliarity(0.5, math.Inf(1), now, false, cfg))
	assert.Equal(t, 0.5, ComputeDecayedFamiliarity(0.5, -100, now, false, cfg))
}

func TestComputeBatchDecay(t *testing.T) {
	cfg := DefaultConfig()
	now := 100 * msPerDay

	intuitions := []Intuition{
		{Familiarity: 0.8, LastAccessMs: 0, Pinned: true},
		{Familiarity: 0.8, LastAccessMs: 0},
		{Familiarity: 0.8, LastAccessMs: now - 1000},
	}

	result := ComputeBatchDecay(intuitions, now, cfg)
	require.Len(t, result, 3)
	assert.Equal(t, 0.8, result[0], "pinned")
	assert.Less(t, result[1], 0.8, "stale decays")
	assert.Equal(t, 0.8, result[2], "recent unchanged")

	// Inputs are never mutated
	assert.Equal(t, 0.8, intuitions[1].Familiarity)
}

func TestInferActivityPrecedence(t *testing.T) {
	// Explicit beats everything
	inf := InferActivityType(ActivityRefactoring, "debugging a crash", "write_file")
	assert.Equal(t, ActivityRefactoring, inf.Type)
	assert.Equal(t, SourceExplicit, inf.Source)
	assert.Equal(t, 1.0, inf.Confidence)

	// Keyword beats tool hint
	inf = InferActivityType("", "debugging a crash in the parser", "write_file")
	assert.Equal(t, ActivityDebugging, inf.Type)
	assert.Equal(t, SourceKeyword, inf.Source)
	assert.Equal(t, 0.9, inf.Confidence)

	// Tool hint is the fallback
	inf = InferActivityType("", "", "write_file")
	assert.Equal(t, ActivityWriting, inf.Type)
	assert.Equal(t, SourceTool, inf.Source)
	assert.Equal(t, 0.5, inf.Confidence)

	// Nothing matches
	inf = InferActivityType("", "zzz qqq", "mystery")
	assert.Equal(t, ActivityUnknown, inf.Type)
	assert.Equal(t, SourceDefault, inf.Source)
}

func TestInferActivityKeywordsCaseInsensitive(t *testing.T) {
	inf := InferActivityType("", "Reviewing the diff before merge", "")
	assert.Equal(t, ActivityReviewing, inf.Type)

	inf = InferActivityType("", "REFACTOR the session manager", "")
	assert.Equal(t, ActivityRefactoring, inf.Type)
}

func TestInferActivityExplicitUnknownFallsThrough(t *testing.T) {
	inf := InferActivityType(ActivityUnknown, "reading the onboarding doc", "")
	assert.Equal(t, ActivityReading, inf.Type)
	assert.Equal(t, SourceKeyword, inf.Source)
}

func TestAssociationStrengthMultiplierTable(t *testing.T) {
	cfg := DefaultConfig()

	both := ComputeAssociationStrength(3, true, true, cfg)
	taskOnly := ComputeAssociationStrength(3, true, false, cfg)
	activityOnly := ComputeAssociationStrength(3, false, true, cfg)
	neither := ComputeAssociationStrength(3, false, false, cfg)

	assert.Greater(t, both, taskOnly)
	assert.Greater(t, taskOnly, activityOnly)
	assert.Greater(t, activityOnly, neither)

	// Multiplier 5 on 3 co-accesses → asymptote at effective n=15
	assert.InDelta(t, 1.0-1.0/(1.0+0.1*15.0), both, 1e-9)
	assert.Equal(t, 0.0, ComputeAssociationStrength(0, true, true, cfg))
}

func TestToSpreadingAssociation(t *testing.T) {
	a := Association{Source: 2, Target: 5, Strength: 0.8}
	edge := a.ToSpreadingAssociation()

	assert.Equal(t, spreading.Association{
		Source:           2,
		Target:           5,
		ForwardStrength:  0.8,
		BackwardStrength: 0.8 * 0.7,
	}, edge)
}

func TestSpreadLocationActivation(t *testing.T) {
	assocs := []Association{
		{Source: 0, Target: 1, Strength: 0.9},
		{Source: 1, Target: 2, Strength: 0.8},
	}

	cfg := spreading.DefaultConfig()
	result := SpreadLocationActivation(3, assocs, []int{0}, []float64{0.9}, cfg, 2)
	require.Len(t, result.Activations, 3)
	assert.Greater(t, result.Activations[1], result.Activations[2])
	assert.Greater(t, result.Activations[2], 0.0)

	related := AssociatedLocations(3, assocs, 0, cfg, 2)
	assert.Equal(t, []int{1, 2}, related)
}
