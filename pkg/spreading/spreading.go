// Package spreading implements activation diffusion through the association
// graph. Memories don't exist in isolation: activating one spreads activation
// to connected memories,
//
//	A_j = Σ(W_i / n_i) × S_ij
//
// where W_i is the source strength, n_i its fan-out, and S_ij the associative
// strength of the edge.
package spreading

import "sort"

// Spreading parameters
const (
	// DefaultDecayPerHop is γ, the per-hop attenuation
	DefaultDecayPerHop = 0.7
	// DefaultMinimumActivation is ε; nodes below it do not propagate
	DefaultMinimumActivation = 0.01
	// DefaultMaxNodes caps total visited nodes on dense graphs
	DefaultMaxNodes = 1000
	// BackwardAttenuation models directional asymmetry of backward edges
	BackwardAttenuation = 0.7
)

// Association is a directed weighted edge in the memory graph.
type Association struct {
	// Source node index
	Source int `json:"source" yaml:"source"`
	// Target node index
	Target int `json:"target" yaml:"target"`
	// ForwardStrength is the source → target weight (0-1)
	ForwardStrength float64 `json:"forward_strength" yaml:"forward_strength"`
	// BackwardStrength is the target → source weight (0-1)
	BackwardStrength float64 `json:"backward_strength" yaml:"backward_strength"`
}

// Config controls a spreading pass.
type Config struct {
	// DecayPerHop is how much activation decays per hop (0-1)
	DecayPerHop float64 `yaml:"decay_per_hop"`
	// MinimumActivation is the floor below which a node stops propagating
	MinimumActivation float64 `yaml:"minimum_activation"`
	// MaxNodes caps the total visited count
	MaxNodes int `yaml:"max_nodes"`
	// Bidirectional also spreads along backward edges (attenuated)
	Bidirectional bool `yaml:"bidirectional"`
}

// DefaultConfig returns the standard spreading parameterization.
func DefaultConfig() Config {
	return Config{
		DecayPerHop:       DefaultDecayPerHop,
		MinimumActivation: DefaultMinimumActivation,
		MaxNodes:          DefaultMaxNodes,
		Bidirectional:     true,
	}
}

// Result holds the outcome of a spreading pass.
type Result struct {
	// Activations holds the final per-node activation (length N)
	Activations []float64 `json:"activations"`
	// VisitedByDepth lists the nodes first reached at each BFS level
	// (diagnostics/testing only)
	VisitedByDepth [][]int `json:"visited_by_depth"`
}

type edge struct {
	target int
	weight float64
}

// buildAdjacency constructs forward and backward adjacency lists from the
// caller's edge list. Out-of-range indices are skipped silently; adjacency is
// rebuilt per call so the API stays stateless.
func buildAdjacency(associations []Association, numNodes int) (forward, backward [][]edge) {
	forward = make([][]edge, numNodes)
	backward = make([][]edge, numNodes)

	for _, a := range associations {
		if a.Source < 0 || a.Source >= numNodes || a.Target < 0 || a.Target >= numNodes {
			continue
		}
		forward[a.Source] = append(forward[a.Source], edge{a.Target, a.ForwardStrength})
		backward[a.Target] = append(backward[a.Target], edge{a.Source, a.BackwardStrength})
	}

	return forward, backward
}

// Spread performs spreading activation from seed nodes. Activation spreads
// outward layer by layer, decaying per hop and splitting across fan-out.
// Spreading is synchronous per depth: contributions at depth d are computed
// from the snapshot at depth d-1 and committed in one step, so same-depth
// siblings never observe each other. Contributions accumulate in a dense
// length-N slice to keep iteration order, and therefore output, deterministic.
//
// Out-of-range seed or edge indices are skipped; empty seeds return zeros.
func Spread(numNodes int, associations []Association, seedIndices []int, seedActivations []float64, cfg Config, depth int) Result {
	forwardAdj, backwardAdj := buildAdjacency(associations, numNodes)

	activations := make([]float64, numNodes)
	visited := make([]bool, numNodes)

	frontier := make([]int, 0, len(seedIndices))
	for i, idx := range seedIndices {
		if idx < 0 || idx >= numNodes {
			continue
		}
		act := 1.0
		if i < len(seedActivations) {
			act = seedActivations[i]
		}
		activations[idx] = act
		if !visited[idx] {
			visited[idx] = true
			frontier = append(frontier, idx)
		}
	}

	visitedByDepth := [][]int{append([]int(nil), frontier...)}
	totalVisited := len(frontier)

	// Dense accumulator for this layer's contributions; touched tracks which
	// slots are dirty so reset stays O(frontier fan-out)
	contrib := make([]float64, numNodes)
	var touched []int

	for d := 0; d < depth; d++ {
		if totalVisited >= cfg.MaxNodes {
			break
		}

		var nextFrontier []int
		touched = touched[:0]

		for _, src := range frontier {
			srcAct := activations[src]
			if srcAct < cfg.MinimumActivation {
				continue
			}

			// Forward spreading, fan-normalized: (W_i / n_i) × S_ij × γ
			fwd := forwardAdj[src]
			fan := float64(len(fwd))
			if fan < 1 {
				fan = 1
			}
			for _, e := range fwd {
				if totalVisited >= cfg.MaxNodes {
					break
				}
				if contrib[e.target] == 0 {
					touched = append(touched, e.target)
				}
				contrib[e.target] += (srcAct / fan) * e.weight * cfg.DecayPerHop

				if !visited[e.target] {
					visited[e.target] = true
					nextFrontier = append(nextFrontier, e.target)
					totalVisited++
				}
			}

			if cfg.Bidirectional {
				bwd := backwardAdj[src]
				backFan := float64(len(bwd))
				if backFan < 1 {
					backFan = 1
				}
				for _, e := range bwd {
					if totalVisited >= cfg.MaxNodes {
						break
					}
					if contrib[e.target] == 0 {
						touched = append(touched, e.target)
					}
					contrib[e.target] += (srcAct / backFan) * e.weight * cfg.DecayPerHop * BackwardAttenuation

					if !visited[e.target] {
						visited[e.target] = true
						nextFrontier = append(nextFrontier, e.target)
						totalVisited++
					}
				}
			}
		}

		// A layer that discovers no new nodes ends the pass before its
		// contributions commit; spreading only deposits along a live frontier
		if len(nextFrontier) == 0 {
			break
		}

		// Commit this layer in one step
		for _, idx := range touched {
			activations[idx] += contrib[idx]
			contrib[idx] = 0
		}

		visitedByDepth = append(visitedByDepth, nextFrontier)
		frontier = nextFrontier
	}

	return Result{Activations: activations, VisitedByDepth: visitedByDepth}
}

// TopActivated returns the indices of the top-k activated nodes, highest
// first, ties broken by index.
func TopActivated(activations []float64, topK int) []int {
	type scored struct {
		idx int
		act float64
	}
	candidates := make([]scored, 0, len(activations))
	for i, a := range activations {
		if a > 0 {
			candidates = append(candidates, scored{i, a})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].act != candidates[j].act {
			return candidates[i].act > candidates[j].act
		}
		return candidates[i].idx < candidates[j].idx
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	result := make([]int, topK)
	for i := 0; i < topK; i++ {
		result[i] = candidates[i].idx
	}
	return result
}
