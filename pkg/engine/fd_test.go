package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFDStoreAssignAndUndo(t *testing.T) {
	fd := NewFDStoreWithDomain(3)
	vars := fd.MakeFDVars(1)
	v := vars[0]

	mark := fd.Snapshot()
	require.NoError(t, fd.Assign(v, 2))
	assert.True(t, v.IsSingleton())
	assert.Equal(t, 2, v.SingletonValue())

	fd.Undo(mark)
	assert.False(t, v.IsSingleton())
	assert.Equal(t, 3, v.Count())
}

func TestFDStoreRemoveToEmptyDomainFails(t *testing.T) {
	fd := NewFDStoreWithDomain(1)
	vars := fd.MakeFDVars(1)
	v := vars[0]

	err := fd.Remove(v, 1)
	assert.ErrorIs(t, err, ErrDomainEmpty)
}

func TestFDStoreObjectiveTrail(t *testing.T) {
	fd := NewFDStoreWithDomain(2)
	assert.Equal(t, 0.0, fd.ObjectiveMin())
	assert.True(t, math.IsInf(fd.ObjectiveMax(), 1))

	fd.RecordIncumbent(5)
	assert.Equal(t, 5.0, fd.ObjectiveMax())
	fd.RecordIncumbent(3)
	assert.Equal(t, 3.0, fd.ObjectiveMax())
	// A worse incumbent must never widen the bound.
	fd.RecordIncumbent(10)
	assert.Equal(t, 3.0, fd.ObjectiveMax())
}

func TestSolverMonitorRecordsSearch(t *testing.T) {
	fd := NewFDStoreWithDomain(2)
	vars := fd.MakeFDVars(2)
	mon := NewSolverMonitor()
	fd.SetMonitor(mon)
	assert.Same(t, mon, fd.Monitor())

	goal := func(s *FDStore) (int, int, bool) {
		for _, v := range vars {
			if !v.IsSingleton() {
				return v.ID, 1, true
			}
		}
		return 0, 0, false
	}
	objective := func(s *FDStore) (float64, bool) {
		for _, v := range vars {
			if !v.IsSingleton() {
				return 0, false
			}
		}
		return 0, true
	}

	_, _, err := fd.Minimize(context.Background(), goal, objective)
	require.NoError(t, err)

	stats := mon.GetStats()
	require.NotNil(t, stats)
	assert.GreaterOrEqual(t, stats.NodesExplored, 1)
}
