package mssc

import (
	"math"

	"github.com/halvard-cp/msscfd/pkg/engine"
)

// InitialMode selects how the search strategy proposes branches before an
// incumbent solution has been found.
type InitialMode int

const (
	InitialNone InitialMode = iota
	InitialGreedy
	InitialMemberships
)

// MainSearchMode selects the branching rule once an incumbent exists (or
// immediately, if InitialNone). MAX_MIN_VAR is the only mode the algorithm
// specifies; the type exists so SearchConfig mirrors the external interface
// contract's enumerated option set.
type MainSearchMode int

const (
	MainMaxMinVar MainSearchMode = iota
)

// TieMode selects one of the five heuristics used to pick (i*, c*) when the
// main search's best Δ-objective is zero across the board and an empty
// cluster remains.
type TieMode int

const (
	TieNone TieMode = iota
	TieUnboundFarthestTotalSS
	TieFixedFarthestDist
	TieFixedMaxMin
	TieFarthestFromBiggestCenter
	TieMaxMinFromAllCenters
)

// tieState carries the one piece of cross-call memory the search strategy
// needs: the previous tie-break choice, consulted by TieNone's "fall through
// with (i*, j*) = previous choice" rule. It is closure-local, not trailed —
// losing it on backtrack only means TieNone's fallback re-derives a fresh
// first candidate, never an unsound branch.
type tieState struct {
	lastI, lastC int
	has          bool
}

// deltaObjectiveScaled computes the integer-scaled Δ-objective of assigning
// point p to cluster c, reusing the S1/S2 bookkeeping already built for the
// current partition.
func deltaObjectiveScaled(sums *Sums, pt *Partition, p, c int) float64 {
	sizeC := pt.SizeCluster[c]
	if sizeC == 0 {
		return 0
	}
	before := sums.S1[c] / float64(sizeC)
	after := (sums.S1[c] + sums.S2Of(p, c)) / float64(sizeC+1)
	return math.Trunc((after - before) * deltaScale)
}

// NewBranchGoal builds the engine.BranchGoal implementing the search
// strategy's full state machine: initial-solution mode until an incumbent
// exists, then MAX_MIN_VAR, falling through to tie-breaking whenever the
// best Δ-objective is zero and an empty cluster remains.
func NewBranchGoal(store *Store, cfg *SearchConfig) engine.BranchGoal {
	inst := store.Inst
	state := &tieState{}

	return func(fd *engine.FDStore) (int, int, bool) {
		pt := BuildPartition(store)
		if pt.Q == 0 {
			return 0, 0, false
		}

		solFound := !math.IsInf(fd.ObjectiveMax(), 1)
		if !solFound && cfg.InitialSolution != InitialNone {
			if i, c, ok := initialSolutionChoice(inst, store, pt, cfg); ok {
				return store.Vars[i].ID, ClusterValue(c), true
			}
		}

		sums := ComputeSums(inst, pt, 0)
		bestI, bestC, bestDelta, ok := mainSearchChoice(store, pt, sums)
		if !ok {
			return 0, 0, false
		}

		if bestDelta == 0 && hasEmptyCluster(pt) {
			if i, c, ok := tieBreakChoice(inst, store, pt, cfg, state); ok {
				return store.Vars[i].ID, ClusterValue(c), true
			}
		}

		return store.Vars[bestI].ID, ClusterValue(bestC), true
	}
}

func hasEmptyCluster(pt *Partition) bool {
	for _, sz := range pt.SizeCluster {
		if sz == 0 {
			return true
		}
	}
	return false
}

func initialSolutionChoice(inst *Instance, store *Store, pt *Partition, cfg *SearchConfig) (int, int, bool) {
	switch cfg.InitialSolution {
	case InitialGreedy:
		minSize := -1
		for _, u := range pt.U {
			sz := store.Vars[u].Count()
			if minSize == -1 || sz < minSize {
				minSize = sz
			}
		}
		sums := ComputeSums(inst, pt, 0)
		bestI, bestC := -1, -1
		bestDelta := math.Inf(1)
		for _, u := range pt.U {
			if store.Vars[u].Count() != minSize {
				continue
			}
			for _, c := range store.DomainClusters(u) {
				d := deltaObjectiveScaled(sums, pt, u, c)
				if d < bestDelta {
					bestDelta, bestI, bestC = d, u, c
				}
			}
		}
		if bestI == -1 {
			return 0, 0, false
		}
		return bestI, bestC, true

	case InitialMemberships:
		if inst.Memberships == nil {
			return 0, 0, false
		}
		i := pt.U[0]
		return i, inst.Memberships[i], true
	}
	return 0, 0, false
}

func mainSearchChoice(store *Store, pt *Partition, sums *Sums) (int, int, float64, bool) {
	bestI, bestC := -1, -1
	bestDelta := math.Inf(-1)
	for _, i := range pt.U {
		localBest := math.Inf(1)
		localC := -1
		for _, c := range store.DomainClusters(i) {
			d := deltaObjectiveScaled(sums, pt, i, c)
			if d < localBest {
				localBest, localC = d, c
			}
		}
		if localC == -1 {
			continue
		}
		if localBest > bestDelta {
			bestDelta, bestI, bestC = localBest, i, localC
		}
	}
	if bestI == -1 {
		return 0, 0, 0, false
	}
	return bestI, bestC, bestDelta, true
}

// tieBreakChoice picks the lowest unoccupied cluster c* and, via the
// configured heuristic, the unfixed observation i* to send there.
func tieBreakChoice(inst *Instance, store *Store, pt *Partition, cfg *SearchConfig, state *tieState) (int, int, bool) {
	cStar := -1
	for c := 0; c < inst.K; c++ {
		if pt.SizeCluster[c] == 0 {
			cStar = c
			break
		}
	}
	if cStar == -1 {
		return 0, 0, false
	}

	var candidates []int
	for _, u := range pt.U {
		if store.InDomain(u, cStar) {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return 0, 0, false
	}

	var iStar int
	switch cfg.TieHandling {
	case TieUnboundFarthestTotalSS:
		iStar = argmaxFloat(candidates, func(i int) float64 {
			var tot float64
			for _, j := range pt.U {
				if j != i {
					tot += inst.D[i][j]
				}
			}
			return math.Trunc(tot * totalSScale)
		})

	case TieFixedFarthestDist:
		iStar = argmaxFloat(candidates, func(i int) float64 {
			best := 0.0
			for _, members := range pt.P {
				for _, j := range members {
					if inst.D[i][j] > best {
						best = inst.D[i][j]
					}
				}
			}
			return best
		})

	case TieFixedMaxMin:
		iStar = argmaxFloat(candidates, func(i int) float64 {
			best := math.Inf(1)
			any := false
			for _, members := range pt.P {
				if len(members) == 0 {
					continue
				}
				m := math.Inf(1)
				for _, j := range members {
					if inst.D[i][j] < m {
						m = inst.D[i][j]
					}
				}
				if m < best {
					best = m
				}
				any = true
			}
			if !any {
				return 0
			}
			return best
		})

	case TieFarthestFromBiggestCenter:
		biggest := -1
		for c, sz := range pt.SizeCluster {
			if sz > 0 && (biggest == -1 || sz > pt.SizeCluster[biggest]) {
				biggest = c
			}
		}
		if biggest == -1 {
			iStar = candidates[0]
		} else {
			ctr := centroid(inst, pt.P[biggest])
			iStar = argmaxFloat(candidates, func(i int) float64 {
				return squaredDist(inst.Coords[i], ctr)
			})
		}

	case TieMaxMinFromAllCenters:
		var centroids [][]float64
		for _, members := range pt.P {
			if len(members) > 0 {
				centroids = append(centroids, centroid(inst, members))
			}
		}
		if len(centroids) == 0 {
			iStar = candidates[0]
		} else {
			iStar = argmaxFloat(candidates, func(i int) float64 {
				best := math.Inf(1)
				for _, ctr := range centroids {
					d := squaredDist(inst.Coords[i], ctr)
					if d < best {
						best = d
					}
				}
				return best
			})
		}

	case TieNone:
		if state.has && containsInt(candidates, state.lastI) {
			iStar = state.lastI
		} else {
			iStar = candidates[0]
		}

	default:
		iStar = candidates[0]
	}

	state.lastI, state.lastC, state.has = iStar, cStar, true
	return iStar, cStar, true
}

func argmaxFloat(candidates []int, f func(int) float64) int {
	best := candidates[0]
	bestVal := f(best)
	for _, c := range candidates[1:] {
		v := f(c)
		if v > bestVal {
			bestVal, best = v, c
		}
	}
	return best
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
