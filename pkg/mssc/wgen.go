package mssc

import (
	"math"

	"github.com/halvard-cp/msscfd/pkg/engine"
)

// WGen is the general WCSS lower bound: a dynamic-programming bound over
// cluster schedules that ignores cardinality targets entirely, usable even
// when target cardinalities are unknown.
type WGen struct {
	inst  *Instance
	store *Store
}

// NewWGen posts the general WCSS lower-bound constraint over store.
func NewWGen(store *Store) *WGen {
	return &WGen{inst: store.Inst, store: store}
}

func (c *WGen) Variables() []*engine.FDVar { return c.store.Vars }

func (c *WGen) Propagate(fd *engine.FDStore) (bool, error) {
	pt := BuildPartition(c.store)
	K := c.inst.K
	q := pt.Q

	if q == 0 {
		// Open question resolution: explicit early return rather than relying
		// on the DP's loops degenerating to zero trips.
		sums := ComputeSums(c.inst, pt, 0)
		var lb float64
		for cc := 0; cc < K; cc++ {
			if pt.SizeCluster[cc] > 0 {
				lb += sums.S1[cc] / float64(pt.SizeCluster[cc])
			}
		}
		return false, c.tighten(fd, lb)
	}

	sums := ComputeSums(c.inst, pt, q)
	lbSched := c.buildSchedules(pt, sums, q)
	F := dpSchedule(K, q, lbSched)

	if err := c.tighten(fd, F[K-1][q]); err != nil {
		return false, err
	}

	changed := false
	for cl := 0; cl < K; cl++ {
		lbExcept := make([]float64, q) // lbExcept[m], m in [0,q-1]
		for m := 0; m < q; m++ {
			best := math.Inf(-1)
			for j := m; j <= q; j++ {
				v := F[K-1][j] - lbSched[cl][j-m]
				if v > best {
					best = v
				}
			}
			lbExcept[m] = best
		}

		for _, i := range pt.U {
			if !c.store.InDomain(i, cl) {
				continue
			}
			best := math.Inf(1)
			for m := 0; m < q; m++ {
				denom := float64(pt.SizeCluster[cl] + m + 1)
				lbPrime := (float64(pt.SizeCluster[cl]+m)*lbSched[cl][m] + sums.S2Of(i, cl) + sums.S3Of(i, m)) / denom
				v := lbExcept[q-1-m] + lbPrime
				if v < best {
					best = v
				}
			}
			if best >= fd.ObjectiveMaxLocked() {
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

// buildSchedules computes lb_sched[c][m] for m in [0,q]: m=0 is the plain
// average of fixed points; m>=1 selects the m smallest values of
// s2[u][c]+s3[u][m-1] over unassigned candidates u with c still in dom(x_u).
// +Inf marks an m that cannot be realized (fewer than m eligible candidates
// remain for cluster c).
func (c *WGen) buildSchedules(pt *Partition, sums *Sums, q int) [][]float64 {
	K := c.inst.K
	lbSched := make([][]float64, K)
	for cl := 0; cl < K; cl++ {
		sched := make([]float64, q+1)
		if pt.SizeCluster[cl] > 0 {
			sched[0] = sums.S1[cl] / float64(pt.SizeCluster[cl])
		} else {
			sched[0] = 0
		}
		for m := 1; m <= q; m++ {
			var vals []float64
			for _, u := range pt.U {
				if !c.store.InDomain(u, cl) {
					continue
				}
				vals = append(vals, sums.S2Of(u, cl)+sums.S3Of(u, m-1))
			}
			if len(vals) < m {
				sched[m] = math.Inf(1)
				continue
			}
			sortFloats(vals)
			var sum float64
			for k := 0; k < m; k++ {
				sum += vals[k]
			}
			sched[m] = (sums.S1[cl] + sum) / float64(pt.SizeCluster[cl]+m)
		}
		lbSched[cl] = sched
	}
	return lbSched
}

// dpSchedule computes F[c][m] = min over splits m = m0+...+mc of the sum of
// per-cluster schedules.
func dpSchedule(K, q int, lbSched [][]float64) [][]float64 {
	F := make([][]float64, K)
	F[0] = append([]float64(nil), lbSched[0]...)
	for cl := 1; cl < K; cl++ {
		row := make([]float64, q+1)
		for m := 0; m <= q; m++ {
			best := math.Inf(1)
			for i := 0; i <= m; i++ {
				v := F[cl-1][i] + lbSched[cl][m-i]
				if v < best {
					best = v
				}
			}
			row[m] = best
		}
		F[cl] = row
	}
	return F
}

func (c *WGen) tighten(fd *engine.FDStore, lb float64) error {
	return fd.SetObjectiveMinLocked(lb - epsGen)
}

func (c *WGen) IsSatisfied() bool { return true }
