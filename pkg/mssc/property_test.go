package mssc

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteForceOptimalV enumerates every assignment in {0,...,K-1}^N, keeping
// only those matching target cardinalities exactly, and returns the minimum
// WCSS. Only ever called on small instances (N<=8) in tests.
func bruteForceOptimalV(inst *Instance) float64 {
	n, k := inst.N, inst.K
	assignment := make([]int, n)
	best := -1.0

	var rec func(pos int)
	rec = func(pos int) {
		if pos == n {
			sizes := make([]int, k)
			for _, c := range assignment {
				sizes[c]++
			}
			if inst.Target != nil {
				for c := 0; c < k; c++ {
					if sizes[c] != inst.Target[c] {
						return
					}
				}
			}
			members := make([][]int, k)
			for i, c := range assignment {
				members[c] = append(members[c], i)
			}
			var v float64
			for c := 0; c < k; c++ {
				sz := len(members[c])
				if sz == 0 {
					continue
				}
				var s float64
				for a := 0; a < sz; a++ {
					for b := a + 1; b < sz; b++ {
						s += inst.D[members[c][a]][members[c][b]]
					}
				}
				v += s / float64(sz)
			}
			if best < 0 || v < best {
				best = v
			}
			return
		}
		for c := 0; c < k; c++ {
			assignment[pos] = c
			rec(pos + 1)
		}
	}
	rec(0)
	return best
}

func randomInstance(rng *rand.Rand, n, k int) *Instance {
	sizes := make([]int, k)
	remaining := n
	for c := 0; c < k-1; c++ {
		maxTake := remaining - (k - 1 - c)
		take := 1 + rng.Intn(maxTake)
		sizes[c] = take
		remaining -= take
	}
	sizes[k-1] = remaining

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := rng.Float64() * 10
			d[i][j] = v
			d[j][i] = v
		}
	}
	return &Instance{N: n, K: k, D: d, Target: sizes}
}

// TestSolverMatchesBruteForce checks the solver against brute-force
// enumeration on random small instances, bounded to N<=8, K<=3 so
// brute-force K^N enumeration stays well inside a test timeout. Uses a fixed
// seed so the test is deterministic across runs.
func TestSolverMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(20260806))
	for trial := 0; trial < 15; trial++ {
		n := 4 + rng.Intn(5) // 4..8
		k := 2 + rng.Intn(2) // 2..3
		if k > n {
			k = n
		}
		inst := randomInstance(rng, n, k)
		require.NoError(t, inst.Validate())

		want := bruteForceOptimalV(inst)

		res, err := Solve(context.Background(), inst,
			WithVariant(VariantWFlow),
			WithTieHandling(TieNone),
			WithInitialSolution(InitialGreedy),
		)
		require.NoError(t, err)
		require.True(t, res.Optimal)
		assert.InDelta(t, want, res.V, 1e-6, "trial %d: n=%d k=%d", trial, n, k)
	}
}
