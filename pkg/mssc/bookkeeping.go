package mssc

import "sort"

// Sums holds the shared dissimilarity-sum bookkeeping computed fresh at the
// start of every propagate call by W-GEN, W-CARD, and W-FLOW.
type Sums struct {
	S1 []float64 // S1[c]: intra-cluster WCSD of fixed points in cluster c

	// S2[u][c] = sum_{j in P[c]} D[u][j] for u in U, filled for every cluster
	// c whether or not c is still in dom(x_u); entries outside the domain are
	// not set to +Inf, so callers check the domain themselves.
	// Indexed by point id (length N), not by position in U.
	S2 [][]float64

	// S3[u] is the prefix-sum vector of half-distances from u to the other
	// points of U, ascending: S3[u][m] = sum of the m smallest values of
	// D[u][w]/2 over w in U \ {u}. S3[u][0] = 0. Indexed by point id.
	S3 [][]float64
}

// ComputeSums builds S1/S2/S3 for the given partition. l is the prefix-sum
// length to build: pass pt.Q for W-GEN, pt.MaxNbAdd() for W-CARD/W-FLOW.
func ComputeSums(inst *Instance, pt *Partition, l int) *Sums {
	N, K := inst.N, inst.K
	sums := &Sums{
		S1: make([]float64, K),
		S2: make([][]float64, N),
		S3: make([][]float64, N),
	}

	for c := 0; c < K; c++ {
		members := pt.P[c]
		var tot float64
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				tot += inst.D[members[a]][members[b]]
			}
		}
		sums.S1[c] = tot
	}

	for _, u := range pt.U {
		row := make([]float64, K)
		for c := 0; c < K; c++ {
			row[c] = 0
			for _, j := range pt.P[c] {
				row[c] += inst.D[u][j]
			}
		}
		sums.S2[u] = row
	}

	if l < 0 {
		l = 0
	}
	for _, u := range pt.U {
		half := make([]float64, 0, len(pt.U)-1)
		for _, w := range pt.U {
			if w == u {
				continue
			}
			half = append(half, inst.D[u][w]/2)
		}
		sort.Float64s(half)
		length := l
		if length > len(half) {
			length = len(half)
		}
		prefix := make([]float64, length+1)
		for m := 0; m < length; m++ {
			prefix[m+1] = prefix[m] + half[m]
		}
		sums.S3[u] = prefix
	}

	return sums
}

// S2Of returns s2[u][c] whether or not c is still a candidate for u (an
// empty P[c] reads as 0); filtering by dom(x_u) happens at the call sites,
// not here.
func (sums *Sums) S2Of(u, c int) float64 {
	return sums.S2[u][c]
}

// S3Of returns s3[u][m], clamping m to the available prefix length (the
// caller never requests m beyond the bookkeeping's L, but clamp defensively
// since L differs between W-GEN and W-CARD/W-FLOW).
func (sums *Sums) S3Of(u, m int) float64 {
	p := sums.S3[u]
	if m < 0 {
		m = 0
	}
	if m >= len(p) {
		m = len(p) - 1
	}
	return p[m]
}
