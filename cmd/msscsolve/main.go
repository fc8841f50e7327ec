// Command msscsolve loads a cardinality-constrained MSSC instance and runs
// the exact propagation-and-search kernel against it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/halvard-cp/msscfd/pkg/mssc"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	instancePath string
	configPath   string
	variant      string
	initial      string
	tie          string
	timeLimit    time.Duration
	nodeLimit    int
	verbose      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "msscsolve --instance <file>",
		Short: "Solve a cardinality-constrained minimum sum-of-squares clustering instance",
		Long: `msscsolve loads an Instance from a YAML file and runs the exact
branch-and-bound solver, printing the optimal assignment, objective value,
and search statistics.

Example:
  msscsolve --instance instance.yaml --variant wflow`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.instancePath, "instance", "", "path to the instance YAML file (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to a search configuration YAML file")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "WCSS lower bound: wgen|wcard|wflow (overrides --config)")
	cmd.Flags().StringVar(&opts.initial, "initial", "", "initial-solution mode: none|greedy|memberships (overrides --config)")
	cmd.Flags().StringVar(&opts.tie, "tie", "", "tie-break heuristic (overrides --config)")
	cmd.Flags().DurationVar(&opts.timeLimit, "time-limit", 0, "search time limit, 0 for unbounded")
	cmd.Flags().IntVar(&opts.nodeLimit, "node-limit", 0, "search node limit, 0 for unbounded")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug-level logging")
	_ = cmd.MarkFlagRequired("instance")

	return cmd
}

func runSolve(cmd *cobra.Command, opts *rootOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	inst, err := mssc.LoadInstance(opts.instancePath)
	if err != nil {
		return fmt.Errorf("loading instance: %w", err)
	}

	cfg := mssc.DefaultSearchConfig()
	if opts.configPath != "" {
		cfg, err = mssc.LoadSearchConfig(opts.configPath)
		if err != nil {
			return fmt.Errorf("loading search config: %w", err)
		}
	}

	solveOpts, err := applyOverrides(cfg, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := mssc.Solve(ctx, inst, solveOpts...)
	if err != nil {
		return fmt.Errorf("solving: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", result.RunID)
	fmt.Fprintf(out, "optimal: %v\n", result.Optimal)
	fmt.Fprintf(out, "V: %.6f\n", result.V)
	for i := 0; i < inst.N; i++ {
		c, ok := result.Assignment[i]
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  x[%d] = %d\n", i, c)
	}
	if result.Stats != nil {
		fmt.Fprintln(out, result.Stats.String())
	}
	return nil
}

// applyOverrides folds --variant/--initial/--tie/--time-limit/--node-limit
// flags on top of whatever config was loaded from --config, returning
// SolveOptions the caller layers on top of mssc.DefaultSearchConfig.
func applyOverrides(cfg *mssc.SearchConfig, opts *rootOptions) ([]mssc.SolveOption, error) {
	solveOpts := []mssc.SolveOption{
		mssc.WithVariant(cfg.Variant),
		mssc.WithInitialSolution(cfg.InitialSolution),
		mssc.WithTieHandling(cfg.TieHandling),
	}
	if cfg.TimeLimit > 0 {
		solveOpts = append(solveOpts, mssc.WithSearchTimeLimit(cfg.TimeLimit))
	}
	if cfg.NodeLimit > 0 {
		solveOpts = append(solveOpts, mssc.WithSearchNodeLimit(cfg.NodeLimit))
	}

	if opts.variant != "" {
		v, err := parseVariant(opts.variant)
		if err != nil {
			return nil, err
		}
		solveOpts = append(solveOpts, mssc.WithVariant(v))
	}
	if opts.initial != "" {
		m, err := parseInitialMode(opts.initial)
		if err != nil {
			return nil, err
		}
		solveOpts = append(solveOpts, mssc.WithInitialSolution(m))
	}
	if opts.tie != "" {
		t, err := parseTieMode(opts.tie)
		if err != nil {
			return nil, err
		}
		solveOpts = append(solveOpts, mssc.WithTieHandling(t))
	}
	if opts.timeLimit > 0 {
		solveOpts = append(solveOpts, mssc.WithSearchTimeLimit(opts.timeLimit))
	}
	if opts.nodeLimit > 0 {
		solveOpts = append(solveOpts, mssc.WithSearchNodeLimit(opts.nodeLimit))
	}
	return solveOpts, nil
}

func parseVariant(s string) (mssc.WCSSVariant, error) {
	switch s {
	case "wgen":
		return mssc.VariantWGen, nil
	case "wcard":
		return mssc.VariantWCard, nil
	case "wflow":
		return mssc.VariantWFlow, nil
	}
	return 0, fmt.Errorf("unknown --variant %q: want wgen|wcard|wflow", s)
}

func parseInitialMode(s string) (mssc.InitialMode, error) {
	switch s {
	case "none":
		return mssc.InitialNone, nil
	case "greedy":
		return mssc.InitialGreedy, nil
	case "memberships":
		return mssc.InitialMemberships, nil
	}
	return 0, fmt.Errorf("unknown --initial %q: want none|greedy|memberships", s)
}

func parseTieMode(s string) (mssc.TieMode, error) {
	switch s {
	case "none":
		return mssc.TieNone, nil
	case "unbound-farthest-total-ss":
		return mssc.TieUnboundFarthestTotalSS, nil
	case "fixed-farthest-dist":
		return mssc.TieFixedFarthestDist, nil
	case "fixed-max-min":
		return mssc.TieFixedMaxMin, nil
	case "farthest-from-biggest-center":
		return mssc.TieFarthestFromBiggestCenter, nil
	case "max-min-from-all-centers":
		return mssc.TieMaxMinFromAllCenters, nil
	}
	return 0, fmt.Errorf("unknown --tie %q", s)
}
