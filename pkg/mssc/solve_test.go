package mssc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solveWithEveryVariant runs inst under all three WCSS lower-bound
// constraints and asserts they agree on the optimal objective: all three
// only prune search differently, never the reachable optimum.
func solveWithEveryVariant(t *testing.T, inst *Instance, wantV float64) {
	t.Helper()
	for _, variant := range []WCSSVariant{VariantWGen, VariantWCard, VariantWFlow} {
		res, err := Solve(context.Background(), inst,
			WithVariant(variant),
			WithTieHandling(TieNone),
			WithInitialSolution(InitialGreedy),
		)
		require.NoError(t, err)
		require.True(t, res.Optimal)
		assert.InDelta(t, wantV, res.V, 1e-6, "variant %d", variant)
		assert.Len(t, res.Assignment, inst.N)
	}
}

// TestSolveScenario1 is seed scenario 1: N=4, K=2, target=(2,2), optimal
// partition {0,1}/{2,3}, V = 1/2 + 1/2 = 1.
func TestSolveScenario1(t *testing.T) {
	inst := &Instance{
		N:      4,
		K:      2,
		Target: []int{2, 2},
		D: [][]float64{
			{0, 1, 9, 9},
			{1, 0, 9, 9},
			{9, 9, 0, 1},
			{9, 9, 1, 0},
		},
	}
	require.NoError(t, inst.Validate())
	solveWithEveryVariant(t, inst, 1.0)
}

// TestSolveScenario3 is seed scenario 3: N=5, K=2, target=(3,2), collinear
// 1-D points at 0,1,2,10,11. Optimal partition {0,1,2}/{10,11},
// V = ((0-1)^2+(0-2)^2+(1-2)^2)/3 + (10-11)^2/2 = 2 + 0.5 = 2.5.
func TestSolveScenario3(t *testing.T) {
	x := []float64{0, 1, 2, 10, 11}
	n := len(x)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			diff := x[i] - x[j]
			d[i][j] = diff * diff
		}
	}
	inst := &Instance{
		N:      n,
		K:      2,
		Target: []int{3, 2},
		D:      d,
	}
	require.NoError(t, inst.Validate())
	solveWithEveryVariant(t, inst, 2.5)
}

// TestSolveScenario2 mirrors seed scenario 2's structure (three well
// separated pair-clusters, target=(2,2,2), verifying W-FLOW's bound is
// tight on clean symmetric inputs) with an explicit dissimilarity matrix:
// three close "twin" pairs (0,1), (2,3), (4,5) at squared distance 4, every
// other pair at squared distance 400. The unique optimum groups each twin
// pair together, V = 3 * (4/2) = 6.
func TestSolveScenario2(t *testing.T) {
	twins := [3][2]int{{0, 1}, {2, 3}, {4, 5}}
	pairOf := make(map[int]int, 6)
	for _, p := range twins {
		pairOf[p[0]] = p[1]
		pairOf[p[1]] = p[0]
	}
	d := make([][]float64, 6)
	for i := range d {
		d[i] = make([]float64, 6)
		for j := range d[i] {
			if i == j {
				continue
			}
			if pairOf[i] == j {
				d[i][j] = 4
			} else {
				d[i][j] = 400
			}
		}
	}
	inst := &Instance{N: 6, K: 3, Target: []int{2, 2, 2}, D: d}
	require.NoError(t, inst.Validate())

	solveWithEveryVariant(t, inst, 6.0)
}
