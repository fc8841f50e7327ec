package mssc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// TestTieBreakFarthestFromBiggestCenter is seed scenario 5: after fixing 3
// points to cluster 0 (centroid mu0) with cluster 1 still empty, the tie
// break must send the unfixed point farthest (squared) from mu0 to cluster 1.
func TestTieBreakFarthestFromBiggestCenter(t *testing.T) {
	inst := &Instance{
		N:      5,
		K:      2,
		S:      1,
		D:      zeroMatrix(5),
		Coords: [][]float64{{0}, {1}, {2}, {10}, {3}},
	}
	require.NoError(t, inst.Validate())

	store := NewStore(inst)
	require.NoError(t, store.AssignCluster(0, 0))
	require.NoError(t, store.AssignCluster(1, 0))
	require.NoError(t, store.AssignCluster(2, 0))

	pt := BuildPartition(store)
	cfg := &SearchConfig{TieHandling: TieFarthestFromBiggestCenter}
	state := &tieState{}

	i, c, ok := tieBreakChoice(inst, store, pt, cfg, state)
	require.True(t, ok)
	assert.Equal(t, 1, c)
	assert.Equal(t, 3, i)
}

func TestTieBreakNoneFallsBackToPreviousChoice(t *testing.T) {
	inst := &Instance{N: 3, K: 2, D: zeroMatrix(3)}
	require.NoError(t, inst.Validate())
	store := NewStore(inst)
	pt := BuildPartition(store)
	cfg := &SearchConfig{TieHandling: TieNone}
	state := &tieState{lastI: 1, lastC: 1, has: true}

	i, c, ok := tieBreakChoice(inst, store, pt, cfg, state)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, 0, c) // cluster 0 is the lowest unoccupied cluster, not lastC
}

func TestHasEmptyCluster(t *testing.T) {
	pt := &Partition{SizeCluster: []int{2, 0, 1}}
	assert.True(t, hasEmptyCluster(pt))
	pt.SizeCluster[1] = 3
	assert.False(t, hasEmptyCluster(pt))
}
