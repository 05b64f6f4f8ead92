package spreading

import (
	"math"
	"sort"
)

// Temporal spreading defaults for episodic chains
const (
	// DefaultDistanceDecayRate controls how fast link strength falls with
	// intra-episode distance
	DefaultDistanceDecayRate = 0.3
	// DefaultBackwardStrengthFactor scales backward relative to forward
	DefaultBackwardStrengthFactor = 0.5
	// DefaultEpisodeBoost amplifies emissions within an episode
	DefaultEpisodeBoost = 1.2
	// DefaultContextPersistence scales how much episodic context carries
	DefaultContextPersistence = 0.8
	// DefaultMaxTemporalDistance caps chain length
	DefaultMaxTemporalDistance = 5
)

// TemporalConfig controls episodic edge synthesis.
type TemporalConfig struct {
	// DistanceDecayRate is the exponential rate of strength decay with
	// intra-episode distance
	DistanceDecayRate float64 `yaml:"distance_decay_rate"`
	// BackwardStrengthFactor scales backward strength relative to forward
	BackwardStrengthFactor float64 `yaml:"backward_strength_factor"`
	// EpisodeBoost multiplies emitted activation within the episode
	EpisodeBoost float64 `yaml:"episode_boost"`
	// ContextPersistence scales emissions to model lingering context
	ContextPersistence float64 `yaml:"context_persistence"`
	// MaxTemporalDistance caps how far along the chain links are synthesized
	MaxTemporalDistance int `yaml:"max_temporal_distance"`
}

// DefaultTemporalConfig returns the standard episodic parameterization.
func DefaultTemporalConfig() TemporalConfig {
	return TemporalConfig{
		DistanceDecayRate:      DefaultDistanceDecayRate,
		BackwardStrengthFactor: DefaultBackwardStrengthFactor,
		EpisodeBoost:           DefaultEpisodeBoost,
		ContextPersistence:     DefaultContextPersistence,
		MaxTemporalDistance:    DefaultMaxTemporalDistance,
	}
}

// TemporalDirection reports which side of the anchor a neighbor lies on.
type TemporalDirection string

const (
	DirectionBefore TemporalDirection = "before"
	DirectionAfter  TemporalDirection = "after"
)

// TemporalLink is a synthesized episodic edge between two memories.
type TemporalLink struct {
	From      int               `json:"from"`
	To        int               `json:"to"`
	Distance  int               `json:"distance"`
	Strength  float64           `json:"strength"`
	Direction TemporalDirection `json:"direction"`
}

// TemporalResult is the outcome of temporal spreading around an anchor.
type TemporalResult struct {
	// Activations holds the final per-node activation (length N)
	Activations []float64 `json:"activations"`
	// Neighbors lists episode members reached from the anchor with their
	// side of the anchor
	Neighbors []TemporalLink `json:"neighbors"`
}

// ComputeTemporalLinkStrength returns the forward strength of a link spanning
// the given intra-episode distance: e^(-rate·distance).
func ComputeTemporalLinkStrength(distance int, cfg TemporalConfig) float64 {
	if distance <= 0 {
		return 1.0
	}
	return math.Exp(-cfg.DistanceDecayRate * float64(distance))
}

// CreateEpisodeLinks synthesizes a chain of associations from an ordered
// episode of memory indices. Forward strength decays exponentially with
// distance; backward is a fixed fraction of forward. When the same (source,
// target) pair appears at multiple distances, the strongest link wins.
func CreateEpisodeLinks(episode []int, cfg TemporalConfig) []Association {
	maxDist := cfg.MaxTemporalDistance
	if maxDist <= 0 {
		maxDist = 1
	}

	type pair struct{ src, tgt int }
	best := make(map[pair]float64)
	var order []pair

	for i := 0; i < len(episode); i++ {
		for dist := 1; dist <= maxDist && i+dist < len(episode); dist++ {
			src, tgt := episode[i], episode[i+dist]
			if src == tgt {
				continue
			}
			strength := ComputeTemporalLinkStrength(dist, cfg)
			key := pair{src, tgt}
			if prev, ok := best[key]; ok {
				if strength > prev {
					best[key] = strength
				}
				continue
			}
			best[key] = strength
			order = append(order, key)
		}
	}

	links := make([]Association, 0, len(order))
	for _, key := range order {
		forward := best[key]
		links = append(links, Association{
			Source:           key.src,
			Target:           key.tgt,
			ForwardStrength:  forward,
			BackwardStrength: cfg.BackwardStrengthFactor * forward,
		})
	}
	return links
}

// FindTemporalNeighbors lists the episode members within MaxTemporalDistance
// of the anchor position, annotated with distance, strength, and side.
// anchorPos indexes into the episode slice, not the memory space.
func FindTemporalNeighbors(episode []int, anchorPos int, cfg TemporalConfig) []TemporalLink {
	if anchorPos < 0 || anchorPos >= len(episode) {
		return nil
	}
	maxDist := cfg.MaxTemporalDistance
	if maxDist <= 0 {
		maxDist = 1
	}

	anchor := episode[anchorPos]
	var neighbors []TemporalLink

	for dist := 1; dist <= maxDist; dist++ {
		if p := anchorPos - dist; p >= 0 {
			neighbors = append(neighbors, TemporalLink{
				From:      anchor,
				To:        episode[p],
				Distance:  dist,
				Strength:  ComputeTemporalLinkStrength(dist, cfg),
				Direction: DirectionBefore,
			})
		}
		if p := anchorPos + dist; p < len(episode) {
			neighbors = append(neighbors, TemporalLink{
				From:      anchor,
				To:        episode[p],
				Distance:  dist,
				Strength:  ComputeTemporalLinkStrength(dist, cfg),
				Direction: DirectionAfter,
			})
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	return neighbors
}

// SpreadTemporal seeds the spreading engine from an anchor within an episode,
// using synthesized chain edges. The anchor emission is scaled by the episode
// boost and context persistence before spreading.
func SpreadTemporal(numNodes int, episode []int, anchorPos int, anchorActivation float64, cfg TemporalConfig, spreadCfg Config, depth int) TemporalResult {
	if anchorPos < 0 || anchorPos >= len(episode) {
		return TemporalResult{Activations: make([]float64, numNodes)}
	}

	links := CreateEpisodeLinks(episode, cfg)
	seed := episode[anchorPos]
	emission := anchorActivation * cfg.EpisodeBoost * cfg.ContextPersistence

	result := Spread(numNodes, links, []int{seed}, []float64{emission}, spreadCfg, depth)

	var neighbors []TemporalLink
	for _, link := range FindTemporalNeighbors(episode, anchorPos, cfg) {
		if link.To >= 0 && link.To < numNodes && result.Activations[link.To] > 0 {
			neighbors = append(neighbors, link)
		}
	}

	return TemporalResult{Activations: result.Activations, Neighbors: neighbors}
}

// SpreadTemporalMulti runs temporal spreading from several anchors and sums
// the activation fields. Neighbor lists are concatenated in anchor order.
func SpreadTemporalMulti(numNodes int, episode []int, anchorPositions []int, anchorActivations []float64, cfg TemporalConfig, spreadCfg Config, depth int) TemporalResult {
	combined := TemporalResult{Activations: make([]float64, numNodes)}

	for i, pos := range anchorPositions {
		act := 1.0
		if i < len(anchorActivations) {
			act = anchorActivations[i]
		}
		r := SpreadTemporal(numNodes, episode, pos, act, cfg, spreadCfg, depth)
		for j, a := range r.Activations {
			combined.Activations[j] += a
		}
		combined.Neighbors = append(combined.Neighbors, r.Neighbors...)
	}

	return combined
}
