package mssc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenario1() *Instance {
	return &Instance{
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
}

func TestInstanceValidate(t *testing.T) {
	inst := scenario1()
	require.NoError(t, inst.Validate())
}

func TestInstanceValidateRejectsAsymmetricD(t *testing.T) {
	inst := scenario1()
	inst.D[0][1] = 5
	assert.ErrorIs(t, inst.Validate(), ErrAsymmetricD)
}

func TestInstanceValidateRejectsNonzeroDiagonal(t *testing.T) {
	inst := scenario1()
	inst.D[0][0] = 1
	assert.ErrorIs(t, inst.Validate(), ErrNonzeroDiagonal)
}

func TestInstanceValidateRejectsNegativeD(t *testing.T) {
	inst := scenario1()
	inst.D[0][1] = -1
	inst.D[1][0] = -1
	assert.ErrorIs(t, inst.Validate(), ErrNegativeD)
}

func TestInstanceValidateRejectsBadCardinalitySum(t *testing.T) {
	inst := scenario1()
	inst.Target = []int{2, 3}
	assert.ErrorIs(t, inst.Validate(), ErrCardinalitySum)
}

func TestInstanceValidateRejectsNonPositiveCardinality(t *testing.T) {
	inst := scenario1()
	inst.Target = []int{4, 0}
	assert.ErrorIs(t, inst.Validate(), ErrCardinalityNonPos)
}

func TestInstanceValidateRejectsBadMembership(t *testing.T) {
	inst := scenario1()
	inst.Memberships = []int{0, 1, 2, 0}
	assert.ErrorIs(t, inst.Validate(), ErrBadMembership)
}

func TestInstanceValidateRejectsBadK(t *testing.T) {
	inst := scenario1()
	inst.K = 0
	assert.ErrorIs(t, inst.Validate(), ErrTooFewClusters)
}

func TestLoadInstanceMissingFile(t *testing.T) {
	_, err := LoadInstance("testdata/does-not-exist.yaml")
	require.Error(t, err)
}
