package mssc

import "errors"

// Sentinel errors returned by instance validation, constraint construction,
// and the min-cost-flow solver. Propagation failures inside a constraint are
// reported with the engine's own errors (engine.ErrInconsistent,
// engine.ErrDomainEmpty) or, from W-FLOW, ErrMCFInfeasible or an error from
// the graph library.
var (
	ErrInvalidInstance    = errors.New("mssc: invalid problem instance")
	ErrCardinalitySum     = errors.New("mssc: target cardinalities do not sum to N")
	ErrCardinalityNonPos  = errors.New("mssc: target cardinality must be positive")
	ErrAsymmetricD        = errors.New("mssc: dissimilarity matrix is not symmetric")
	ErrNonzeroDiagonal    = errors.New("mssc: dissimilarity matrix has a nonzero diagonal entry")
	ErrNegativeD          = errors.New("mssc: dissimilarity matrix has a negative entry")
	ErrTooFewClusters     = errors.New("mssc: K must be at least 1 and at most N")
	ErrBadMembership      = errors.New("mssc: initial membership value out of range")
	ErrMCFInfeasible      = errors.New("mssc: min-cost flow model is infeasible")
	ErrNoArcIntoCluster   = errors.New("mssc: no admissible arc into a required cluster")
	ErrUnknownInitialMode = errors.New("mssc: unknown initial solution mode")
	ErrUnknownTieMode     = errors.New("mssc: unknown tie-break mode")
)
