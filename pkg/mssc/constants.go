package mssc

// Numerical guards against floating-point underestimation of a lower bound
// relative to the current incumbent. Always subtracted from a tightened
// lower bound, never added: they can only make pruning more conservative.
const (
	epsGen  = 5e-5 // W-GEN, W-CARD
	epsCard = 5e-5
	epsFlow = 5e-3 // W-FLOW accumulates more rounding through the MCF solve
)

// Integer scaling factors keeping Δ-objective and total-sum-of-squares
// comparisons inside the search strategy exact, avoiding floating-point
// equality pitfalls when detecting ties.
const (
	deltaScale  = 1000
	totalSScale = 100
)
