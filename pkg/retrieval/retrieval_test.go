package retrieval

import (
	"math"
	"testing"

	"github.com/zeattacker/lucid-go/pkg/spreading"
)

// testInput builds a retrieval input with neutral emotion, default decay,
// and identical recent access for every memory
func testInput(t *testing.T, probe []float64, memories [][]float64, nowMs float64) Input {
	t.Helper()

	n := len(memories)
	histories := make([][]float64, n)
	emotions := make([]float64, n)
	decays := make([]float64, n)
	boosts := make([]float64, n)
	for i := 0; i < n; i++ {
		histories[i] = []float64{nowMs - 1000}
		emotions[i] = 0.5
		decays[i] = 0.5
		boosts[i] = 1.0
	}

	return Input{
		ProbeEmbedding:      probe,
		MemoryEmbeddings:    memories,
		AccessHistoriesMs:   histories,
		EmotionalWeights:    emotions,
		DecayRates:          decays,
		WorkingMemoryBoosts: boosts,
		CurrentTimeMs:       nowMs,
	}
}

func noFilterConfig() Config {
	cfg := DefaultConfig()
	cfg.SpreadingDepth = 0
	cfg.MinProbability = 0
	return cfg
}

// TestIdentityProbe verifies the identical memory ranks first and probe
// activations order by similarity
func TestIdentityProbe(t *testing.T) {
	now := 1_000_000.0
	input := testInput(t,
		[]float64{1, 0, 0},
		[][]float64{
			{1, 0, 0},
			{0.5, 0.5, 0},
			{0, 1, 0},
		}, now)

	results := Retrieve(input, noFilterConfig())
	if len(results) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(results))
	}
	if results[0].Index != 0 {
		t.Errorf("expected identical memory first, got index %d", results[0].Index)
	}

	byIndex := make(map[int]Candidate)
	for _, c := range results {
		byIndex[c.Index] = c
	}
	if !(byIndex[0].ProbeActivation > byIndex[1].ProbeActivation &&
		byIndex[1].ProbeActivation > byIndex[2].ProbeActivation) {
		t.Errorf("probe activations not ordered: %v > %v > %v",
			byIndex[0].ProbeActivation, byIndex[1].ProbeActivation, byIndex[2].ProbeActivation)
	}
}

// TestRecencyCannotRescueIrrelevance verifies a day-old exact match beats a
// second-old orthogonal memory
func TestRecencyCannotRescueIrrelevance(t *testing.T) {
	now := 100_000_000_000.0
	input := testInput(t,
		[]float64{1, 0, 0},
		[][]float64{
			{1, 0, 0}, // A: relevant, accessed 1 day ago
			{0, 1, 0}, // B: irrelevant, accessed 1 second ago
		}, now)
	input.AccessHistoriesMs[0] = []float64{now - 86_400_000}
	input.AccessHistoriesMs[1] = []float64{now - 1000}

	results := Retrieve(input, noFilterConfig())
	if len(results) == 0 || results[0].Index != 0 {
		t.Fatalf("expected relevant memory to rank first, got %+v", results)
	}
}

// TestSpreadingLightsUpTwoHopNeighbor follows a chain 0↔2↔3→4 from a
// probe that only matches memory 0
func TestSpreadingLightsUpTwoHopNeighbor(t *testing.T) {
	now := 1_000_000.0
	memories := [][]float64{
		{1, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
		{0, 0.7, 0.7},
		{0, 0.2, 0.9},
	}
	input := testInput(t, []float64{1, 0, 0}, memories, now)
	input.Associations = []spreading.Association{
		{Source: 0, Target: 2, ForwardStrength: 0.8, BackwardStrength: 0.8},
		{Source: 2, Target: 3, ForwardStrength: 0.7, BackwardStrength: 0.7},
		{Source: 3, Target: 4, ForwardStrength: 0.6, BackwardStrength: 0},
	}

	// Without spreading, the associated memories get nothing
	flat := Retrieve(input, noFilterConfig())
	for _, c := range flat {
		if c.Spreading != 0 {
			t.Errorf("memory %d has spreading %v with depth 0", c.Index, c.Spreading)
		}
	}

	cfg := DefaultConfig()
	cfg.MinProbability = 0
	results := Retrieve(input, cfg)

	spread := make(map[int]float64)
	for _, c := range results {
		spread[c.Index] = c.Spreading
	}
	if !(spread[3] > spread[4] && spread[4] > 0) {
		t.Errorf("expected spreading[3] > spreading[4] > 0, got %v and %v", spread[3], spread[4])
	}
}

// TestWorkingMemoryBoostReordersNearTies verifies WM boost breaks a
// similarity tie and the cap keeps boosted similarity valid
func TestWorkingMemoryBoostReordersNearTies(t *testing.T) {
	now := 1_000_000.0
	input := testInput(t,
		[]float64{1, 0, 0},
		[][]float64{
			{0.7, 0.7, 0}, // sim ≈ 0.707
			{0.7, 0.7, 0},
		}, now)
	input.WorkingMemoryBoosts = []float64{1.0, 2.0}

	results := Retrieve(input, noFilterConfig())
	if len(results) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(results))
	}
	if results[0].Index != 1 {
		t.Errorf("expected WM-boosted memory first, got index %d", results[0].Index)
	}
	if results[0].ProbeActivation <= results[1].ProbeActivation {
		t.Errorf("boosted probe activation %v not greater than %v",
			results[0].ProbeActivation, results[1].ProbeActivation)
	}
	if results[0].ProbeActivation > 1.0 {
		t.Errorf("cap failed: probe activation %v exceeds 1", results[0].ProbeActivation)
	}
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	input := Input{ProbeEmbedding: []float64{1, 0, 0}, CurrentTimeMs: 1000}
	if results := Retrieve(input, DefaultConfig()); results != nil {
		t.Errorf("expected nil for empty corpus, got %v", results)
	}
}

func TestRetrieveShortOptionalArrays(t *testing.T) {
	now := 1_000_000.0
	input := testInput(t, []float64{1, 0}, [][]float64{{1, 0}, {0.9, 0.1}}, now)
	// Drop the optional channels entirely: missing indices take defaults
	input.EmotionalWeights = nil
	input.DecayRates = nil
	input.WorkingMemoryBoosts = nil

	results := Retrieve(input, noFilterConfig())
	if len(results) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(results))
	}
	for _, c := range results {
		if c.EmotionalWeight != 0.5 {
			t.Errorf("expected neutral default emotion, got %v", c.EmotionalWeight)
		}
	}
}

func TestRetrieveMinProbabilityFilters(t *testing.T) {
	now := 1_000_000.0
	input := testInput(t,
		[]float64{1, 0, 0},
		[][]float64{
			{1, 0, 0},
			{0, 1, 0}, // orthogonal: total ≈ 0, probability ≈ 0
		}, now)

	cfg := DefaultConfig()
	cfg.SpreadingDepth = 0
	cfg.MinProbability = 0.5

	results := Retrieve(input, cfg)
	for _, c := range results {
		if c.Index == 1 {
			t.Errorf("orthogonal memory survived the probability filter: %+v", c)
		}
		if c.Probability < 0.5 {
			t.Errorf("candidate below filter floor: %+v", c)
		}
	}
}

func TestRetrieveMaxResultsTruncates(t *testing.T) {
	now := 1_000_000.0
	memories := make([][]float64, 20)
	for i := range memories {
		memories[i] = []float64{1, float64(i) * 0.01}
	}
	input := testInput(t, []float64{1, 0}, memories, now)

	cfg := noFilterConfig()
	cfg.MaxResults = 5
	if results := Retrieve(input, cfg); len(results) != 5 {
		t.Errorf("expected 5 results, got %d", len(results))
	}

	// Zero is a real cap, not "unlimited"
	cfg.MaxResults = 0
	if results := Retrieve(input, cfg); len(results) != 0 {
		t.Errorf("MaxResults=0 should return nothing, got %d", len(results))
	}
}

func TestRetrieveDeterministicTieBreak(t *testing.T) {
	now := 1_000_000.0
	input := testInput(t,
		[]float64{1, 0},
		[][]float64{{1, 0}, {1, 0}, {1, 0}}, now)

	for run := 0; run < 10; run++ {
		results := Retrieve(input, noFilterConfig())
		for i, c := range results {
			if c.Index != i {
				t.Fatalf("run %d: tie not broken by index: %+v", run, results)
			}
		}
	}
}

func TestRetrieveNeverAccessedMemory(t *testing.T) {
	now := 1_000_000.0
	input := testInput(t, []float64{1, 0}, [][]float64{{1, 0}}, now)
	input.AccessHistoriesMs[0] = nil // never accessed

	results := Retrieve(input, noFilterConfig())
	if len(results) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(results))
	}
	if results[0].BaseLevel != -10 {
		t.Errorf("expected clamped base level -10, got %v", results[0].BaseLevel)
	}
	if math.IsNaN(results[0].TotalActivation) {
		t.Error("total activation is NaN for never-accessed memory")
	}
}

func TestRetrieveAdditiveCombineSwitch(t *testing.T) {
	now := 1_000_000.0
	input := testInput(t, []float64{1, 0}, [][]float64{{1, 0}, {0.8, 0.6}}, now)

	cfg := noFilterConfig()
	cfg.AdditiveCombine = true
	results := Retrieve(input, cfg)
	if len(results) != 2 || results[0].Index != 0 {
		t.Fatalf("additive combine changed the similarity ordering: %+v", results)
	}

	// The two combiners must actually differ
	multiplicative := Retrieve(input, noFilterConfig())
	if results[0].TotalActivation == multiplicative[0].TotalActivation {
		t.Error("additive and multiplicative combiners produced identical totals")
	}
}

func TestRetrieveBySimilarity(t *testing.T) {
	probe := []float64{1, 0, 0}
	memories := [][]float64{
		{0, 1, 0},
		{1, 0, 0},
		{0.9, 0.1, 0},
	}

	top := RetrieveBySimilarity(probe, memories, 2)
	if len(top) != 2 || top[0] != 1 || top[1] != 2 {
		t.Errorf("expected [1 2], got %v", top)
	}
}

func TestComputeSurprise(t *testing.T) {
	a := []float64{1, 0, 0}
	b := []float64{0, 1, 0}

	if s := ComputeSurprise(a, a, 1.0, 0.5, 0.5); s >= 0.1 {
		t.Errorf("identical embeddings should barely surprise, got %v", s)
	}
	if s := ComputeSurprise(a, b, 1.0, 0.5, 0.5); s <= 0.5 {
		t.Errorf("orthogonal embeddings should surprise, got %v", s)
	}

	// Stronger, older memories need more drift to surprise
	weak := ComputeSurprise(a, b, 0, 0, 0.5)
	fortified := ComputeSurprise(a, b, 100, 1.0, 0.5)
	if fortified >= weak {
		t.Errorf("trace dominance failed: %v >= %v", fortified, weak)
	}
}

func TestTriggersLability(t *testing.T) {
	if !TriggersLability(0.8, 0.5) {
		t.Error("high surprise should trigger lability")
	}
	if TriggersLability(0.3, 0.5) {
		t.Error("low surprise should not trigger lability")
	}
}
