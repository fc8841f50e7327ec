package mssc

import "github.com/halvard-cp/msscfd/pkg/engine"

// VPB is the value-precedence binary constraint (Law & Lee 2004): the first
// index i with x_i in {s,t} must satisfy x_i = s. Posted once per ordered
// pair of cluster labels that symmetry breaking wants to fix relative to
// each other (typically a chain s=0 precedes t=1 precedes t=2, ...).
//
// The host engine (pkg/engine) exposes reversible domains and a reversible
// objective bound, but no general-purpose reversible integer scalar, so the
// three pointers alpha/beta/gamma described by the algorithm are not trailed
// independently: they are recomputed from the live domains at the top of
// every Propagate call. This keeps the constraint sound and GAC-preserving
// at the cost of the O(N) recomputation the paper's incremental pointers
// avoid; documented as a deliberate simplification, not an oversight.
type VPB struct {
	vars []*engine.FDVar
	s, t int // 0-indexed cluster labels, s must precede t
}

// NewVPB posts a value-precedence constraint over vars for the ordered pair
// (s, t); both must be distinct cluster labels in [0,K).
func NewVPB(vars []*engine.FDVar, s, t int) *VPB {
	return &VPB{vars: vars, s: s, t: t}
}

func (c *VPB) Variables() []*engine.FDVar { return c.vars }

// Propagate recomputes alpha/beta/gamma and enforces value-precedence: no
// index up to and including alpha may hold t, and if the next index after
// alpha that can still hold s lies beyond the first index fixed to t, alpha
// is forced to s.
func (c *VPB) Propagate(store *engine.FDStore) (bool, error) {
	sv, tv := ClusterValue(c.s), ClusterValue(c.t)
	changed := false

	alpha := -1
	for i, v := range c.vars {
		if v.Has(sv) {
			alpha = i
			break
		}
	}

	if alpha == -1 {
		// s can never be placed anywhere: t must never be placed either, since
		// any occurrence of t would then be the first {s,t} hit without s.
		for _, v := range c.vars {
			if v.IsSingleton() && v.SingletonValue() == tv {
				return changed, engine.ErrInconsistent
			}
			if v.Has(tv) {
				ch, err := store.RemoveLocked(v, tv)
				changed = changed || ch
				if err != nil {
					return changed, err
				}
			}
		}
		return changed, nil
	}

	// No index up to and including alpha may hold t: t there would become the
	// first {s,t} occurrence without s ever having appeared.
	for i := 0; i <= alpha; i++ {
		v := c.vars[i]
		if v.Has(tv) {
			ch, err := store.RemoveLocked(v, tv)
			changed = changed || ch
			if err != nil {
				return changed, err
			}
		}
	}

	beta := len(c.vars)
	for i := alpha + 1; i < len(c.vars); i++ {
		if c.vars[i].Has(sv) {
			beta = i
			break
		}
	}

	gamma := len(c.vars)
	for i := 0; i < len(c.vars); i++ {
		v := c.vars[i]
		if v.IsSingleton() && v.SingletonValue() == tv {
			gamma = i
			break
		}
	}

	// If no later index can still carry s before the first (fixed) occurrence
	// of t, alpha itself must be s. With no t fixed anywhere (gamma == N),
	// nothing is forced: leaving both s and t unused is still allowed.
	if beta > gamma {
		v := c.vars[alpha]
		if !v.IsSingleton() {
			ch, err := store.AssignLocked(v, sv)
			changed = changed || ch
			if err != nil {
				return changed, err
			}
		} else if v.SingletonValue() != sv {
			return changed, engine.ErrInconsistent
		}
	}

	return changed, nil
}

// IsSatisfied reports whether the precedence already holds given the current
// (possibly partial) assignment: either s or t has not yet appeared, or s
// appears no later than t.
func (c *VPB) IsSatisfied() bool {
	sv, tv := ClusterValue(c.s), ClusterValue(c.t)
	firstS, firstT := -1, -1
	for i, v := range c.vars {
		if !v.IsSingleton() {
			continue
		}
		val := v.SingletonValue()
		if val == sv && firstS == -1 {
			firstS = i
		}
		if val == tv && firstT == -1 {
			firstT = i
		}
	}
	if firstT == -1 {
		return true
	}
	return firstS != -1 && firstS <= firstT
}
