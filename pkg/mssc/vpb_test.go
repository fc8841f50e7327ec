package mssc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard-cp/msscfd/pkg/engine"
)

// TestVPBNoPrematurePruning: with every domain still full, posting
// precedence(0,1) and precedence(1,2) removes only the values that could
// never come first: cluster 1 and 2 from x0, cluster 2 from x1. x2 keeps
// its full domain.
func TestVPBNoPrematurePruning(t *testing.T) {
	fd := engine.NewFDStoreWithDomain(3)
	vars := fd.MakeFDVars(3)

	require.NoError(t, fd.AddCustomConstraint(NewVPB(vars, 0, 1)))
	require.NoError(t, fd.AddCustomConstraint(NewVPB(vars, 1, 2)))

	assert.True(t, vars[0].IsSingleton())
	assert.Equal(t, ClusterValue(0), vars[0].SingletonValue())
	assert.Equal(t, 2, vars[1].Count())
	assert.False(t, vars[1].Has(ClusterValue(2)))
	assert.Equal(t, 3, vars[2].Count())
}

// TestVPBFixedPoint exercises the standalone VPB scenario: N=3, domains all
// {0,1,2}, precedence(0,1) and precedence(1,2) posted. Once x1 is fixed to
// cluster 1, alpha (the first index that can still hold cluster 0) has no
// later candidate before the first fixed occurrence of cluster 1, so x0
// must be cluster 0 (posting the constraints already narrowed it to that).
func TestVPBFixedPoint(t *testing.T) {
	fd := engine.NewFDStoreWithDomain(3)
	vars := fd.MakeFDVars(3)

	require.NoError(t, fd.AddCustomConstraint(NewVPB(vars, 0, 1)))
	require.NoError(t, fd.AddCustomConstraint(NewVPB(vars, 1, 2)))

	require.NoError(t, fd.Assign(vars[1], ClusterValue(1)))

	assert.True(t, vars[0].IsSingleton())
	assert.Equal(t, ClusterValue(0), vars[0].SingletonValue())
}

// TestVPBRejectsOutOfOrderFix: once cluster 1 is removed from every domain
// (it can never be placed), precedence(1,2) forbids cluster 2 from ever
// being placed either, so every variable collapses to cluster 0. Assigning
// one of them to cluster 2 afterward must fail.
func TestVPBRejectsOutOfOrderFix(t *testing.T) {
	fd := engine.NewFDStoreWithDomain(3)
	vars := fd.MakeFDVars(3)
	require.NoError(t, fd.AddCustomConstraint(NewVPB(vars, 1, 2)))

	for _, v := range vars {
		require.NoError(t, fd.Remove(v, ClusterValue(1)))
	}
	for _, v := range vars {
		assert.True(t, v.IsSingleton())
		assert.Equal(t, ClusterValue(0), v.SingletonValue())
	}
	err := fd.Assign(vars[0], ClusterValue(2))
	assert.ErrorIs(t, err, engine.ErrInconsistent)
}

func TestVPBIsSatisfied(t *testing.T) {
	fd := engine.NewFDStoreWithDomain(2)
	vars := fd.MakeFDVars(2)
	c := NewVPB(vars, 0, 1)
	assert.True(t, c.IsSatisfied())

	require.NoError(t, fd.Assign(vars[1], ClusterValue(1)))
	require.NoError(t, fd.Assign(vars[0], ClusterValue(0)))
	assert.True(t, c.IsSatisfied())
}
