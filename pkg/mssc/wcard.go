package mssc

import (
	"math"

	"github.com/halvard-cp/msscfd/pkg/engine"
)

// WCard is the cardinality-aware WCSS lower bound: exploits fixed target
// cardinalities to skip the W-GEN DP entirely, at the cost of requiring
// Instance.Target to be set.
type WCard struct {
	inst  *Instance
	store *Store
}

// NewWCard posts the cardinality-aware WCSS lower-bound constraint over
// store. store.Inst.Target must be non-nil.
func NewWCard(store *Store) *WCard {
	return &WCard{inst: store.Inst, store: store}
}

func (c *WCard) Variables() []*engine.FDVar { return c.store.Vars }

func (c *WCard) Propagate(fd *engine.FDStore) (bool, error) {
	pt, changed, done, err := saturateClusters(c.store, fd)
	if done || err != nil {
		return changed, err
	}

	K := c.inst.K
	sums := ComputeSums(c.inst, pt, pt.MaxNbAdd())
	sched0 := make([]float64, K) // lb_sched[c][0]
	sched1 := make([]float64, K) // lb_sched[c][1]

	for cl := 0; cl < K; cl++ {
		na := pt.NbAdd[cl]
		if na <= 0 {
			if pt.SizeCluster[cl] > 0 {
				sched0[cl] = sums.S1[cl] / float64(pt.SizeCluster[cl])
			}
			sched1[cl] = sched0[cl]
			continue
		}
		var vals []float64
		for _, u := range pt.U {
			if !c.store.InDomain(u, cl) {
				continue
			}
			vals = append(vals, sums.S2Of(u, cl)+sums.S3Of(u, na-1))
		}
		sortFloats(vals)
		sched0[cl] = (sums.S1[cl] + sumKSmallest(vals, na)) / float64(pt.SizeCluster[cl]+na)
		// SizeCluster[cl]+na-1 is 0 exactly when this cluster is still empty and
		// has a target of 1 (na==1): sched1 would then divide 0/0. It is only ever
		// used below multiplied by that same zero denominator, so any finite value
		// is safe; leave it at 0 rather than let a NaN silently defeat the filter.
		if den := pt.SizeCluster[cl] + na - 1; den > 0 {
			sched1[cl] = (sums.S1[cl] + sumKSmallest(vals, na-1)) / float64(den)
		}
	}

	var lbGlobal float64
	for cl := 0; cl < K; cl++ {
		lbGlobal += sched0[cl]
	}
	if err := fd.SetObjectiveMinLocked(lbGlobal - epsCard); err != nil {
		return changed, err
	}

	for cl := 0; cl < K; cl++ {
		na := pt.NbAdd[cl]
		if na <= 0 {
			continue
		}
		lbExcept := lbGlobal - sched0[cl]
		denom := float64(pt.SizeCluster[cl] + na)
		for _, i := range pt.U {
			if !c.store.InDomain(i, cl) {
				continue
			}
			lbPrime := (float64(pt.SizeCluster[cl]+na-1)*sched1[cl] + sums.S2Of(i, cl) + sums.S3Of(i, na-1)) / denom
			vPrime := lbExcept + lbPrime
			if vPrime >= fd.ObjectiveMaxLocked() {
				ch, err := fd.RemoveLocked(c.store.Vars[i], ClusterValue(cl))
				changed = changed || ch
				if err != nil {
					return changed, err
				}
			}
		}
	}

	return changed, nil
}

// saturateClusters runs the preliminary domain tightening shared by W-CARD
// and W-FLOW: the q=N special case (binds point 0 to cluster 0 to
// cooperate with value-precedence symmetry breaking), followed by repeatedly
// removing any cluster with nb_add[c] = 0 from every unassigned domain until
// a fixed point, since a removal may bind further variables and shrink U.
// done is true when the caller should return immediately (special case
// triggered, or a cluster went over its target).
func saturateClusters(store *Store, fd *engine.FDStore) (pt *Partition, changed bool, done bool, err error) {
	pt = BuildPartition(store)
	if pt.P_ == 0 {
		ch, aerr := fd.AssignLocked(store.Vars[0], ClusterValue(0))
		return pt, ch, true, aerr
	}

	for {
		for _, na := range pt.NbAdd {
			if na < 0 {
				return pt, changed, true, engine.ErrInconsistent
			}
		}
		round := false
		for cl, na := range pt.NbAdd {
			if na != 0 {
				continue
			}
			for _, u := range pt.U {
				if store.InDomain(u, cl) {
					ch, rerr := fd.RemoveLocked(store.Vars[u], ClusterValue(cl))
					if ch {
						round = true
						changed = true
					}
					if rerr != nil {
						return pt, changed, true, rerr
					}
				}
			}
		}
		if !round {
			return pt, changed, false, nil
		}
		pt = BuildPartition(store)
	}
}

func sumKSmallest(sortedVals []float64, k int) float64 {
	if k <= 0 {
		return 0
	}
	if k > len(sortedVals) {
		return math.Inf(1)
	}
	var sum float64
	for i := 0; i < k; i++ {
		sum += sortedVals[i]
	}
	return sum
}

func (c *WCard) IsSatisfied() bool { return true }
