package engine

// fd_monitor.go: instrumentation for the branch-and-bound search driven by
// Minimize (optimize.go) against the cardinality-constrained MSSC kernel's
// custom constraints (VPB, W-GEN, W-CARD, W-FLOW).

import (
	"fmt"
	"sync"
	"time"
)

// SolverStats holds statistics collected over one Minimize run: how much of
// the search tree was explored, how much time propagation cost, and how far
// the custom constraints pruned the initial domains.
type SolverStats struct {
	// Search statistics
	NodesExplored  int           // Leaf assignments visited
	Backtracks     int           // Undo(mark) calls performed
	SolutionsFound int           // Improving incumbents recorded
	SearchTime     time.Duration // Wall-clock time for the whole Minimize call
	MaxDepth       int           // Deepest branch-and-bound stack reached

	// Propagation statistics
	PropagationCount int           // Assign/Remove calls that triggered propagateLocked
	PropagationTime  time.Duration // Time spent inside those calls
	ConstraintsAdded int           // CustomConstraint registrations recorded

	// Domain statistics
	InitialDomains   []BitSet // Domain snapshot before the first branching decision
	FinalDomains     []BitSet // Domain snapshot once the search loop exits
	DomainReductions []int    // Per-variable domain size reduction, initial minus final

	// Memory statistics
	PeakTrailSize int // Largest observed length of the undo trail
	PeakQueueSize int // Largest observed length of the pending-variable queue
}

// SolverMonitor accumulates SolverStats for a single Minimize invocation. It
// is attached to an FDStore via SetMonitor before search begins.
type SolverMonitor struct {
	mu        sync.Mutex
	stats     *SolverStats
	startTime time.Time
	propStart time.Time
}

// NewSolverMonitor creates an empty monitor with its clock started. Attach it
// to a store with SetMonitor before calling Minimize.
func NewSolverMonitor() *SolverMonitor {
	return &SolverMonitor{
		stats: &SolverStats{
			InitialDomains:   make([]BitSet, 0),
			FinalDomains:     make([]BitSet, 0),
			DomainReductions: make([]int, 0),
		},
		startTime: time.Now(),
	}
}

// GetStats returns a copy of the statistics accumulated so far. Safe to call
// while a search is still running, e.g. from a progress reporter.
func (m *SolverMonitor) GetStats() *SolverStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := *m.stats
	return &stats
}

// StartPropagation marks the beginning of a propagation operation
func (m *SolverMonitor) StartPropagation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.propStart = time.Now()
}

// EndPropagation marks the end of a propagation operation
func (m *SolverMonitor) EndPropagation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.propStart.IsZero() {
		m.stats.PropagationTime += time.Since(m.propStart)
		m.stats.PropagationCount++
		m.propStart = time.Time{}
	}
}

// RecordBacktrack records a backtrack operation
func (m *SolverMonitor) RecordBacktrack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Backtracks++
}

// RecordNode records exploring a search node
func (m *SolverMonitor) RecordNode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.NodesExplored++
}

// RecordSolution records finding a solution
func (m *SolverMonitor) RecordSolution() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SolutionsFound++
}

// RecordDepth records the current search depth
func (m *SolverMonitor) RecordDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.stats.MaxDepth {
		m.stats.MaxDepth = depth
	}
}

// RecordConstraint records adding a constraint
func (m *SolverMonitor) RecordConstraint() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.ConstraintsAdded++
}

// RecordTrailSize records the current trail size
func (m *SolverMonitor) RecordTrailSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size > m.stats.PeakTrailSize {
		m.stats.PeakTrailSize = size
	}
}

// RecordQueueSize records the current queue size
func (m *SolverMonitor) RecordQueueSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size > m.stats.PeakQueueSize {
		m.stats.PeakQueueSize = size
	}
}

// CaptureInitialDomains captures the initial domain state
func (m *SolverMonitor) CaptureInitialDomains(store *FDStore) {
	store.mu.Lock()
	defer store.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.InitialDomains = make([]BitSet, len(store.vars))
	for i, v := range store.vars {
		m.stats.InitialDomains[i] = v.domain.Clone()
	}
}

// CaptureFinalDomains captures the final domain state and computes reductions
func (m *SolverMonitor) CaptureFinalDomains(store *FDStore) {
	store.mu.Lock()
	defer store.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.FinalDomains = make([]BitSet, len(store.vars))
	m.stats.DomainReductions = make([]int, len(store.vars))

	for i, v := range store.vars {
		m.stats.FinalDomains[i] = v.domain.Clone()
		if i < len(m.stats.InitialDomains) {
			initialSize := m.stats.InitialDomains[i].Count()
			finalSize := m.stats.FinalDomains[i].Count()
			m.stats.DomainReductions[i] = initialSize - finalSize
		}
	}
}

// FinishSearch marks the end of the search process
func (m *SolverMonitor) FinishSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SearchTime = time.Since(m.startTime)
}

// String returns a formatted string representation of the statistics
func (s *SolverStats) String() string {
	return fmt.Sprintf(
		"Solver Statistics:\n"+
			"  Search: %d nodes, %d backtracks, %d solutions, %v time, max depth %d\n"+
			"  Propagation: %d ops, %v time, %d constraints\n"+
			"  Memory: peak trail %d, peak queue %d\n"+
			"  Domains: %d variables, avg reduction %.1f",
		s.NodesExplored, s.Backtracks, s.SolutionsFound, s.SearchTime, s.MaxDepth,
		s.PropagationCount, s.PropagationTime, s.ConstraintsAdded,
		s.PeakTrailSize, s.PeakQueueSize,
		len(s.DomainReductions), s.averageReduction(),
	)
}

// averageReduction computes the average domain size reduction
func (s *SolverStats) averageReduction() float64 {
	if len(s.DomainReductions) == 0 {
		return 0
	}
	total := 0
	for _, r := range s.DomainReductions {
		total += r
	}
	return float64(total) / float64(len(s.DomainReductions))
}
