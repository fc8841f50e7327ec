package mssc

import "math"

// bfEdge is one directed edge of the small bipartite residual graph W-FLOW
// builds between unassigned points and candidate clusters, used only for
// shortest-path filtering. Hand-rolled because negative edge weights (the
// "left-going" flow-reversal edges) rule out reusing the Dijkstra-based
// min-cost-flow solver's library for this part.
type bfEdge struct {
	from, to string
	weight   float64
}

// bellmanFordExcluding computes the shortest path from source to target over
// edges, treating excludeNode as entirely absent (skips any edge touching
// it) and excludeOutOf as a sink whose outgoing edges are never relaxed
// (lets the path land there but never pass through). This implements the
// two exclusion rules the filter needs: skip the row for the point the scan
// started at, and never re-enter its current destination cluster.
//
// Runs at most maxPasses relaxation rounds, stopping early the first round
// that produces no update, since a fixed point can only get cheaper to
// detect this way, never wrong.
func bellmanFordExcluding(nodes []string, edges []bfEdge, source, target, excludeNode, excludeOutOf string, maxPasses int) (float64, bool) {
	dist := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		dist[n] = math.Inf(1)
	}
	dist[source] = 0

	if maxPasses < 1 {
		maxPasses = 1
	}

	for pass := 0; pass < maxPasses; pass++ {
		updated := false
		for _, e := range edges {
			if e.from == excludeNode || e.to == excludeNode {
				continue
			}
			if e.from == excludeOutOf {
				continue
			}
			if dist[e.from] == math.Inf(1) {
				continue
			}
			cand := dist[e.from] + e.weight
			if cand < dist[e.to] {
				dist[e.to] = cand
				updated = true
			}
		}
		if !updated {
			break
		}
	}

	d := dist[target]
	if d == math.Inf(1) {
		return 0, false
	}
	return d, true
}
