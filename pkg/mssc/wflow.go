package mssc

import (
	"github.com/halvard-cp/msscfd/pkg/engine"
)

// WFlow is the strongest WCSS lower bound: formulates the remaining
// assignment as a transportation problem, solves it via SolveMCF, then uses
// Bellman-Ford over the induced bipartite residual graph to filter values
// the min-cost flow's own optimality already prices out.
//
// Reusing the previous MCF solution across propagations (only re-solving
// once destination/hasFlow/varWasFixed actually change) depends on
// reversible per-constraint scratch that survives backtracking. The host
// engine only exposes reversible domains and a reversible objective bound,
// not a general reversible-scalar trail, so there is no sound place to cache
// that scratch across an Undo without risking a stale read. WFlow therefore
// re-solves the MCF on every propagate call; this is a documented
// performance simplification, not a correctness gap (the recomputed
// solution is always freshly valid).
type WFlow struct {
	inst  *Instance
	store *Store
}

// NewWFlow posts the min-cost-flow WCSS lower-bound constraint over store.
// store.Inst.Target must be non-nil.
func NewWFlow(store *Store) *WFlow {
	return &WFlow{inst: store.Inst, store: store}
}

func (c *WFlow) Variables() []*engine.FDVar { return c.store.Vars }

func (c *WFlow) Propagate(fd *engine.FDStore) (bool, error) {
	pt, changed, done, err := saturateClusters(c.store, fd)
	if done || err != nil {
		return changed, err
	}

	K := c.inst.K
	if pt.Q == 0 {
		sums := ComputeSums(c.inst, pt, 0)
		var lbGlobal float64
		for cl := 0; cl < K; cl++ {
			if c.inst.Target[cl] > 0 {
				lbGlobal += sums.S1[cl] / float64(c.inst.Target[cl])
			}
		}
		return changed, fd.SetObjectiveMinLocked(lbGlobal - epsFlow)
	}

	sums := ComputeSums(c.inst, pt, pt.MaxNbAdd())
	res, err := SolveMCF(c.inst, c.store, pt, sums)
	if err != nil {
		return changed, err
	}

	var lbGlobal float64
	for cl := 0; cl < K; cl++ {
		if c.inst.Target[cl] > 0 {
			lbGlobal += sums.S1[cl] / float64(c.inst.Target[cl])
		}
	}
	lbGlobal += res.TotalCost

	if err := fd.SetObjectiveMinLocked(lbGlobal - epsFlow); err != nil {
		return changed, err
	}

	destOf := make(map[int]int, len(pt.U))
	for _, u := range pt.U {
		for cl := 0; cl < K; cl++ {
			if res.Flow[[2]int{u, cl}] {
				destOf[u] = cl
				break
			}
		}
	}

	nodes := make([]string, 0, len(pt.U)+K)
	for _, u := range pt.U {
		nodes = append(nodes, uNode(u))
	}
	for cl := 0; cl < K; cl++ {
		if pt.NbAdd[cl] > 0 {
			nodes = append(nodes, cNode(cl))
		}
	}

	var edges []bfEdge
	for _, u := range pt.U {
		for cl := 0; cl < K; cl++ {
			if pt.NbAdd[cl] <= 0 || !c.store.InDomain(u, cl) {
				continue
			}
			w := weightUC(c.inst, sums, pt, u, cl)
			if res.Flow[[2]int{u, cl}] {
				edges = append(edges, bfEdge{from: cNode(cl), to: uNode(u), weight: -w})
			} else {
				edges = append(edges, bfEdge{from: uNode(u), to: cNode(cl), weight: w})
			}
		}
	}

	maxPasses := pt.Q + K - 2

	for cl := 0; cl < K; cl++ {
		if pt.NbAdd[cl] <= 0 {
			continue
		}
		for _, i := range pt.U {
			if !c.store.InDomain(i, cl) || res.Flow[[2]int{i, cl}] {
				continue
			}
			c0 := destOf[i]
			wIC := weightUC(c.inst, sums, pt, i, cl)
			wIC0 := weightUC(c.inst, sums, pt, i, c0)
			deltaDirect := wIC - wIC0

			dist, reachable := bellmanFordExcluding(nodes, edges, cNode(cl), cNode(c0), uNode(i), cNode(c0), maxPasses)
			if !reachable {
				ch, rerr := fd.RemoveLocked(c.store.Vars[i], ClusterValue(cl))
				changed = changed || ch
				if rerr != nil {
					return changed, rerr
				}
				continue
			}

			delta := deltaDirect + dist
			if lbGlobal+delta > fd.ObjectiveMaxLocked() {
				ch, rerr := fd.RemoveLocked(c.store.Vars[i], ClusterValue(cl))
				changed = changed || ch
				if rerr != nil {
					return changed, rerr
				}
			}
		}
	}

	return changed, nil
}

func weightUC(inst *Instance, sums *Sums, pt *Partition, u, c int) float64 {
	return (sums.S2Of(u, c) + sums.S3Of(u, pt.NbAdd[c]-1)) / float64(inst.Target[c])
}

func (c *WFlow) IsSatisfied() bool { return true }
