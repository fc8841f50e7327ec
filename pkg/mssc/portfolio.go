package mssc

import (
	"context"
	"log/slog"
	"sync"

	"github.com/halvard-cp/msscfd/internal/parallel"
)

// PortfolioConfig is one member of a parallel portfolio search: the same
// Instance solved under a distinct SearchConfig, most usefully varying
// TieHandling so different runs break early plateaus differently.
type PortfolioConfig struct {
	Name string
	Opts []SolveOption
}

// SolvePortfolio runs len(configs) independent solves concurrently, each
// with its own engine.FDStore and no shared mutable state beyond the
// read-only Instance — every worker gets its own independent copy of all
// reversible state — and returns the result with the lowest V. Ties break
// on submission order.
func SolvePortfolio(ctx context.Context, inst *Instance, configs []PortfolioConfig) (*Result, error) {
	pool := parallel.NewWorkerPool(len(configs))
	defer pool.Shutdown()
	slog.Default().Debug("portfolio search started", "members", len(configs), "workers", pool.Workers())

	results := make([]*Result, len(configs))
	errs := make([]error, len(configs))
	var wg sync.WaitGroup
	wg.Add(len(configs))

	for idx, pc := range configs {
		idx, pc := idx, pc
		task := func() {
			defer wg.Done()
			res, err := Solve(ctx, inst, pc.Opts...)
			results[idx] = res
			errs[idx] = err
		}
		if err := pool.Submit(ctx, task); err != nil {
			wg.Done()
			errs[idx] = err
		}
	}
	wg.Wait()

	var best *Result
	var firstErr error
	for i, res := range results {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		if res == nil {
			continue
		}
		if best == nil || res.V < best.V {
			best = res
		}
	}
	if best == nil {
		return nil, firstErr
	}
	return best, nil
}
