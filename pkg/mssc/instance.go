package mssc

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Instance is the immutable problem bundle consumed by a solve: observation
// count N, cluster count K, an optional feature count S for centroid-based
// tie-breaking, the dissimilarity matrix D, and the optional target
// cardinalities and initial membership vector that the cardinality-aware
// constraints and search modes need.
//
// An Instance never changes after Validate succeeds; every constraint and
// the search strategy treat it as read-only.
type Instance struct {
	Name     string
	Metadata map[string]string
	Seed     int64

	N int
	K int
	S int

	D      [][]float64
	Coords [][]float64 // N x S, optional
	Target []int       // K-vector, optional (required by W-CARD/W-FLOW)
	Memberships []int  // N-vector, optional (required by MEMBERSHIPS_AS_INDICATED)
}

// Validate checks every invariant in the data model: D is square, symmetric,
// zero-diagonal and nonnegative; K is in [1,N]; target (if present) sums to N
// with strictly positive entries; memberships (if present) are in range.
// Returns a wrapped sentinel error naming the violated invariant; never
// panics, matching the "invariant violation -> caller error" failure
// taxonomy.
func (inst *Instance) Validate() error {
	if inst.N <= 0 {
		return fmt.Errorf("%w: N must be positive, got %d", ErrInvalidInstance, inst.N)
	}
	if inst.K < 1 || inst.K > inst.N {
		return fmt.Errorf("%w: K=%d not in [1,%d]", ErrTooFewClusters, inst.K, inst.N)
	}
	if len(inst.D) != inst.N {
		return fmt.Errorf("%w: D has %d rows, want %d", ErrInvalidInstance, len(inst.D), inst.N)
	}
	for i, row := range inst.D {
		if len(row) != inst.N {
			return fmt.Errorf("%w: D row %d has %d entries, want %d", ErrInvalidInstance, i, len(row), inst.N)
		}
	}
	for i := 0; i < inst.N; i++ {
		if inst.D[i][i] != 0 {
			return fmt.Errorf("%w: D[%d][%d]=%v", ErrNonzeroDiagonal, i, i, inst.D[i][i])
		}
		for j := i + 1; j < inst.N; j++ {
			if inst.D[i][j] < 0 || inst.D[j][i] < 0 {
				return fmt.Errorf("%w: D[%d][%d]", ErrNegativeD, i, j)
			}
			if !almostEqual(inst.D[i][j], inst.D[j][i]) {
				return fmt.Errorf("%w: D[%d][%d]=%v != D[%d][%d]=%v", ErrAsymmetricD, i, j, inst.D[i][j], j, i, inst.D[j][i])
			}
		}
	}

	if inst.Target != nil {
		if len(inst.Target) != inst.K {
			return fmt.Errorf("%w: target has %d entries, want %d", ErrInvalidInstance, len(inst.Target), inst.K)
		}
		sum := 0
		for c, t := range inst.Target {
			if t <= 0 {
				return fmt.Errorf("%w: target[%d]=%d", ErrCardinalityNonPos, c, t)
			}
			sum += t
		}
		if sum != inst.N {
			return fmt.Errorf("%w: sum=%d, N=%d", ErrCardinalitySum, sum, inst.N)
		}
	}

	if inst.Memberships != nil {
		if len(inst.Memberships) != inst.N {
			return fmt.Errorf("%w: memberships has %d entries, want %d", ErrInvalidInstance, len(inst.Memberships), inst.N)
		}
		for i, m := range inst.Memberships {
			if m < 0 || m >= inst.K {
				return fmt.Errorf("%w: memberships[%d]=%d", ErrBadMembership, i, m)
			}
		}
	}

	if inst.Coords != nil && len(inst.Coords) != inst.N {
		return fmt.Errorf("%w: coords has %d rows, want %d", ErrInvalidInstance, len(inst.Coords), inst.N)
	}

	return nil
}

// LoadInstance reads and validates an Instance from a YAML file at path. The
// file layout mirrors the struct field names (lower-cased): name, metadata,
// seed, n, k, s, d, coords, target, memberships.
func LoadInstance(path string) (*Instance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mssc: reading instance file: %w", err)
	}
	var inst Instance
	if err := yaml.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("mssc: parsing instance file: %w", err)
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return &inst, nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
