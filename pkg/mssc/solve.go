package mssc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/halvard-cp/msscfd/pkg/engine"
)

// Result is everything a caller of Solve gets back: the optimal assignment
// (point id -> cluster label, 0-indexed), the optimal WCSS, and the host
// engine's search statistics for observability.
type Result struct {
	RunID      string
	Assignment map[int]int
	V          float64
	Stats      *engine.SolverStats
	Optimal    bool // false when a configured time/node limit cut the search short
}

// Solve wires an Instance and SearchConfig into one branch-and-bound run:
// posts the value-precedence chain, the chosen WCSS lower-bound constraint,
// and the search strategy's branching goal, then drives the engine's
// Minimize to completion or to a configured limit.
func Solve(ctx context.Context, inst *Instance, opts ...SolveOption) (*Result, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	cfg := DefaultSearchConfig()
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if err := cfg.validate(inst); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID, "n", inst.N, "k", inst.K)
	logger.Info("solve starting", "variant", cfg.Variant)

	store := NewStore(inst)

	for c := 0; c < inst.K-1; c++ {
		if err := store.FD.AddCustomConstraint(NewVPB(store.Vars, c, c+1)); err != nil {
			return nil, fmt.Errorf("mssc: posting value-precedence constraint: %w", err)
		}
	}

	var wcss engine.CustomConstraint
	switch cfg.Variant {
	case VariantWGen:
		wcss = NewWGen(store)
	case VariantWCard:
		wcss = NewWCard(store)
	case VariantWFlow:
		wcss = NewWFlow(store)
	}
	if err := store.FD.AddCustomConstraint(wcss); err != nil {
		return nil, fmt.Errorf("mssc: posting WCSS lower-bound constraint: %w", err)
	}

	monitor := engine.NewSolverMonitor()
	store.FD.SetMonitor(monitor)

	goal := NewBranchGoal(store, cfg)
	objective := trueObjective(inst, store)

	var engineOpts []engine.OptimizeOption
	if cfg.TimeLimit > 0 {
		engineOpts = append(engineOpts, engine.WithTimeLimit(cfg.TimeLimit))
	}
	if cfg.NodeLimit > 0 {
		engineOpts = append(engineOpts, engine.WithNodeLimit(cfg.NodeLimit))
	}

	assignmentByVarID, v, err := store.FD.Minimize(ctx, goal, objective, engineOpts...)
	optimal := true
	if err != nil {
		if err == engine.ErrSearchLimitReached || err == context.DeadlineExceeded {
			optimal = false
		} else {
			logger.Error("solve failed", "error", err)
			return nil, err
		}
	}

	assignment := make(map[int]int, inst.N)
	for i, v := range store.Vars {
		if val, ok := assignmentByVarID[v.ID]; ok {
			assignment[i] = ValueCluster(val)
		}
	}

	stats := monitor.GetStats()
	logger.Info("solve finished", "v", v, "optimal", optimal, "nodes", stats.NodesExplored)
	return &Result{RunID: runID, Assignment: assignment, V: v, Stats: stats, Optimal: optimal}, nil
}

// trueObjective recomputes WCSS from scratch from a complete assignment,
// independent of the reversible lower bound any constraint has tightened.
func trueObjective(inst *Instance, store *Store) engine.Objective {
	return func(fd *engine.FDStore) (float64, bool) {
		members := make([][]int, inst.K)
		for i := 0; i < inst.N; i++ {
			if !store.IsFixed(i) {
				return 0, false
			}
			c := store.FixedCluster(i)
			members[c] = append(members[c], i)
		}
		var v float64
		for c := 0; c < inst.K; c++ {
			sz := len(members[c])
			if sz == 0 {
				continue
			}
			var s1 float64
			for a := 0; a < sz; a++ {
				for b := a + 1; b < sz; b++ {
					s1 += inst.D[members[c][a]][members[c][b]]
				}
			}
			v += s1 / float64(sz)
		}
		return v, true
	}
}
