package mssc

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WCSSVariant selects which of the three WCSS lower-bound constraints a
// solve posts.
type WCSSVariant int

const (
	VariantWGen WCSSVariant = iota
	VariantWCard
	VariantWFlow
)

// SearchConfig collects every recognized search configuration option: which
// WCSS bound to post, the three branching-strategy modes, plus engine-level
// search limits.
type SearchConfig struct {
	Variant         WCSSVariant    `yaml:"variant"`
	InitialSolution InitialMode    `yaml:"initialSolution"`
	MainSearch      MainSearchMode `yaml:"mainSearch"`
	TieHandling     TieMode        `yaml:"tieHandling"`

	TimeLimit time.Duration `yaml:"timeLimit"`
	NodeLimit int           `yaml:"nodeLimit"`
}

// DefaultSearchConfig mirrors the strongest practical configuration: the
// min-cost-flow bound, a greedy initial solution, and the tie-breaker that
// needs only coordinates most instances already carry.
func DefaultSearchConfig() *SearchConfig {
	return &SearchConfig{
		Variant:         VariantWFlow,
		InitialSolution: InitialGreedy,
		MainSearch:      MainMaxMinVar,
		TieHandling:     TieFarthestFromBiggestCenter,
	}
}

// SolveOption customizes a SearchConfig, following the engine's own
// functional-option convention (OptimizeOption).
type SolveOption func(*SearchConfig)

func WithVariant(v WCSSVariant) SolveOption {
	return func(c *SearchConfig) { c.Variant = v }
}

func WithInitialSolution(m InitialMode) SolveOption {
	return func(c *SearchConfig) { c.InitialSolution = m }
}

func WithTieHandling(m TieMode) SolveOption {
	return func(c *SearchConfig) { c.TieHandling = m }
}

func WithSearchTimeLimit(d time.Duration) SolveOption {
	return func(c *SearchConfig) { c.TimeLimit = d }
}

func WithSearchNodeLimit(n int) SolveOption {
	return func(c *SearchConfig) { c.NodeLimit = n }
}

// LoadSearchConfig reads a SearchConfig from a YAML file, starting from
// DefaultSearchConfig so an omitted field keeps its default rather than
// zeroing out.
func LoadSearchConfig(path string) (*SearchConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mssc: reading search config file: %w", err)
	}
	cfg := DefaultSearchConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("mssc: parsing search config file: %w", err)
	}
	return cfg, nil
}

func (cfg *SearchConfig) validate(inst *Instance) error {
	switch cfg.Variant {
	case VariantWCard, VariantWFlow:
		if inst.Target == nil {
			return fmt.Errorf("%w: variant requires Instance.Target", ErrInvalidInstance)
		}
	}
	switch cfg.InitialSolution {
	case InitialNone, InitialGreedy:
	case InitialMemberships:
		if inst.Memberships == nil {
			return fmt.Errorf("%w: MEMBERSHIPS_AS_INDICATED requires Instance.Memberships", ErrUnknownInitialMode)
		}
	default:
		return ErrUnknownInitialMode
	}
	switch cfg.TieHandling {
	case TieNone, TieUnboundFarthestTotalSS, TieFixedFarthestDist, TieFixedMaxMin:
	case TieFarthestFromBiggestCenter, TieMaxMinFromAllCenters:
		if inst.Coords == nil {
			return fmt.Errorf("%w: centroid-based tie-break requires Instance.Coords", ErrUnknownTieMode)
		}
	default:
		return ErrUnknownTieMode
	}
	return nil
}
