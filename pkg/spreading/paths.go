package spreading

import (
	"gonum.org/v1/gonum/floats"
)

// ShortestPath finds the shortest path between two nodes using BFS over
// forward edges. Returns the node sequence including both endpoints, or an
// empty slice when no path exists or an index is out of range.
func ShortestPath(numNodes int, associations []Association, source, target int) []int {
	if source < 0 || source >= numNodes || target < 0 || target >= numNodes {
		return nil
	}
	if source == target {
		return []int{source}
	}

	forwardAdj, _ := buildAdjacency(associations, numNodes)

	visited := make([]bool, numNodes)
	parent := make([]int, numNodes)
	for i := range parent {
		parent[i] = -1
	}

	queue := []int{source}
	visited[source] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range forwardAdj[current] {
			if visited[e.target] {
				continue
			}
			visited[e.target] = true
			parent[e.target] = current
			queue = append(queue, e.target)

			if e.target == target {
				var path []int
				for node := target; node != -1; node = parent[node] {
					path = append(path, node)
				}
				// Reverse in place
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
		}
	}

	return nil
}

// PageRank computes node importance over the forward graph for diagnostics.
// Dangling nodes distribute their rank mass to all nodes. Iteration stops at
// the requested count or earlier once ranks stop moving.
func PageRank(numNodes int, associations []Association, damping float64, iterations int) []float64 {
	if numNodes == 0 {
		return nil
	}

	forwardAdj, _ := buildAdjacency(associations, numNodes)

	n := float64(numNodes)
	ranks := make([]float64, numNodes)
	for i := range ranks {
		ranks[i] = 1.0 / n
	}
	newRanks := make([]float64, numNodes)

	const convergence = 1e-10

	for iter := 0; iter < iterations; iter++ {
		for i := range newRanks {
			newRanks[i] = (1.0 - damping) / n
		}

		for i, edges := range forwardAdj {
			if len(edges) == 0 {
				// Dangling node: distribute to all
				contribution := damping * ranks[i] / n
				for j := range newRanks {
					newRanks[j] += contribution
				}
				continue
			}
			contribution := damping * ranks[i] / float64(len(edges))
			for _, e := range edges {
				newRanks[e.target] += contribution
			}
		}

		converged := floats.Distance(ranks, newRanks, 1) < convergence
		ranks, newRanks = newRanks, ranks
		if converged {
			break
		}
	}

	return ranks
}
