package engine

import (
	"context"
	"errors"
	"time"
)

// OptimizeOption configures FDStore.Minimize behavior.
type OptimizeOption func(*optConfig)

type optConfig struct {
	timeLimit time.Duration
	nodeLimit int
}

// WithTimeLimit sets a hard time limit for the optimization. When reached, the
// best incumbent found so far is returned together with context.DeadlineExceeded.
func WithTimeLimit(d time.Duration) OptimizeOption {
	return func(c *optConfig) { c.timeLimit = d }
}

// WithNodeLimit limits the number of leaf nodes explored. When reached, the best
// incumbent is returned together with ErrSearchLimitReached.
func WithNodeLimit(n int) OptimizeOption {
	return func(c *optConfig) { c.nodeLimit = n }
}

// ErrSearchLimitReached indicates an optimization run terminated due to a configured
// search limit (e.g. node limit). The returned incumbent is valid but optimality may
// not be proven.
var ErrSearchLimitReached = errors.New("search limit reached")

// BranchGoal selects the next branching decision at a search node. It returns the
// variable id to branch on and the value to try first; ok is false once every
// variable is bound (the goal has nothing left to do, the node is a leaf).
//
// This mirrors the search strategy's binary-branching contract: the engine always
// tries value first, then the complementary "!= value" branch on backtrack.
type BranchGoal func(s *FDStore) (varID, value int, ok bool)

// Objective lets the caller report the true objective value of a complete
// assignment; this is intentionally decoupled from the reversible ObjectiveMin
// bound so that a constraint's cost-based lower bound and the search driver's
// incumbent tracking stay independent, matching the documented split between
// V.min (propagated, reversible) and V.max (incumbent, monotonic).
type Objective func(s *FDStore) (value float64, ok bool)

// Minimize runs iterative depth-first branch-and-bound over store using goal to pick
// branching decisions and objective to score complete assignments. It returns the best
// assignment found (variable id -> value, in store order) and its objective value.
//
// The search is non-recursive and stack based: each frame tries goal's value first,
// then the complementary "!= value" branch on backtrack, bounded by the store's
// reversible objective bound rather than a fixed variable-ordering heuristic.
func (s *FDStore) Minimize(ctx context.Context, goal BranchGoal, objective Objective, opts ...OptimizeOption) (map[int]int, float64, error) {
	cfg := &optConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeLimit)
		defer cancel()
	}

	mon := s.Monitor()
	if mon != nil {
		mon.CaptureInitialDomains(s)
		defer func() {
			mon.CaptureFinalDomains(s)
			mon.FinishSearch()
		}()
	}

	var bestSol map[int]int
	bestVal := 0.0
	haveIncumbent := false
	nodes := 0

	undo := func(mark Mark) {
		s.Undo(mark)
		if mon != nil {
			mon.RecordBacktrack()
		}
	}

	// phase 0: about to try "= value"; phase 1: left tried, about to try "!= value";
	// phase 2: right tried, about to pop. needUndo defers the Undo(mark) that covers a
	// descended child subtree until control returns to this frame.
	type frame struct {
		mark     Mark
		varID    int
		value    int
		phase    int
		needUndo bool
	}
	var stack []frame

	descend := func() (int, int, bool) {
		return goal(s)
	}

	leaf := func() {
		if val, ok := objective(s); ok {
			if !haveIncumbent || val < bestVal {
				bestVal = val
				haveIncumbent = true
				bestSol = s.currentAssignment()
				s.RecordIncumbent(bestVal)
				if mon != nil {
					mon.RecordSolution()
				}
			}
		}
		nodes++
		if mon != nil {
			mon.RecordNode()
			mon.RecordDepth(len(stack))
		}
	}

	push := func() bool {
		varID, value, ok := descend()
		if !ok {
			return false
		}
		stack = append(stack, frame{mark: s.Snapshot(), varID: varID, value: value})
		return true
	}

	if !push() {
		// Already a complete assignment at the root.
		leaf()
		if !haveIncumbent {
			return nil, 0, nil
		}
		return bestSol, bestVal, nil
	}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			if haveIncumbent {
				return bestSol, bestVal, ctx.Err()
			}
			return nil, 0, ctx.Err()
		default:
		}

		// Index, not pointer: push() may append and reallocate the backing
		// array, which would otherwise leave a stale pointer behind.
		i := len(stack) - 1
		mark := stack[i].mark
		varID := stack[i].varID
		value := stack[i].value

		switch stack[i].phase {
		case 0:
			v := s.idToVar[varID]
			if mon != nil {
				mon.StartPropagation()
			}
			err := s.Assign(v, value)
			if mon != nil {
				mon.EndPropagation()
				sz1, sz2 := s.trailAndQueueSize()
				mon.RecordTrailSize(sz1)
				mon.RecordQueueSize(sz2)
			}
			if err == nil {
				if push() {
					stack[i].needUndo = true
					stack[i].phase = 1
					continue
				}
				leaf()
				if cfg.nodeLimit > 0 && nodes >= cfg.nodeLimit {
					undo(mark)
					return bestSol, bestVal, ErrSearchLimitReached
				}
			}
			undo(mark)
			stack[i].phase = 1

		case 1:
			if stack[i].needUndo {
				undo(mark)
				stack[i].needUndo = false
			}
			v := s.idToVar[varID]
			if mon != nil {
				mon.StartPropagation()
			}
			err := s.Remove(v, value)
			if mon != nil {
				mon.EndPropagation()
				sz1, sz2 := s.trailAndQueueSize()
				mon.RecordTrailSize(sz1)
				mon.RecordQueueSize(sz2)
			}
			if err == nil {
				if push() {
					stack[i].needUndo = true
					stack[i].phase = 2
					continue
				}
				leaf()
				if cfg.nodeLimit > 0 && nodes >= cfg.nodeLimit {
					undo(mark)
					return bestSol, bestVal, ErrSearchLimitReached
				}
			}
			undo(mark)
			stack[i].phase = 2

		case 2:
			if stack[i].needUndo {
				undo(mark)
				stack[i].needUndo = false
			}
			stack = stack[:i]
		}
	}

	if !haveIncumbent {
		return nil, 0, nil
	}
	return bestSol, bestVal, nil
}

// currentAssignment snapshots the singleton value of every variable that is
// currently bound. Variables left unbound (should not happen at a true leaf) are
// simply omitted.
func (s *FDStore) currentAssignment() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sol := make(map[int]int, len(s.vars))
	for _, v := range s.vars {
		if v.domain.IsSingleton() {
			sol[v.ID] = v.domain.SingletonValue()
		}
	}
	return sol
}
