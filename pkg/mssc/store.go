package mssc

import (
	"github.com/halvard-cp/msscfd/pkg/engine"
)

// Store wires an Instance to a host engine.FDStore: one assignment variable
// per observation, domain {1,...,K} mapped onto cluster labels {0,...,K-1}
// by subtracting one (the engine's BitSet domains are 1-indexed).
type Store struct {
	Inst *Instance
	FD   *engine.FDStore
	Vars []*engine.FDVar // Vars[i] is the assignment variable for point i
}

// NewStore allocates a fresh engine store sized for inst and posts no
// constraints; callers add VPB / one WCSS bound / search afterward.
func NewStore(inst *Instance) *Store {
	fd := engine.NewFDStoreWithDomain(inst.K)
	vars := fd.MakeFDVars(inst.N)
	return &Store{Inst: inst, FD: fd, Vars: vars}
}

// ClusterValue converts a cluster label (0-indexed) to the engine's
// 1-indexed domain value.
func ClusterValue(c int) int { return c + 1 }

// ValueCluster converts an engine domain value back to a 0-indexed cluster label.
func ValueCluster(v int) int { return v - 1 }

// AssignCluster binds point i to cluster c through the engine's reversible API.
func (s *Store) AssignCluster(i, c int) error {
	return s.FD.Assign(s.Vars[i], ClusterValue(c))
}

// RemoveCluster removes cluster c from point i's domain.
func (s *Store) RemoveCluster(i, c int) error {
	return s.FD.Remove(s.Vars[i], ClusterValue(c))
}

// IsFixed reports whether point i's cluster is currently determined.
func (s *Store) IsFixed(i int) bool {
	return s.Vars[i].IsSingleton()
}

// FixedCluster returns point i's bound cluster label; callers must check
// IsFixed first.
func (s *Store) FixedCluster(i int) int {
	return ValueCluster(s.Vars[i].SingletonValue())
}

// InDomain reports whether cluster c is still a candidate for point i.
func (s *Store) InDomain(i, c int) bool {
	return s.Vars[i].Has(ClusterValue(c))
}

// DomainClusters returns the clusters still reachable from point i, ascending.
func (s *Store) DomainClusters(i int) []int {
	var out []int
	s.Vars[i].IterateValues(func(v int) { out = append(out, ValueCluster(v)) })
	return out
}

// Partition is the cluster partition derived from the current domains,
// rebuilt at the start of every propagate call.
type Partition struct {
	P           [][]int // P[c] = fixed indices bound to cluster c
	U           []int   // unassigned indices, insertion order
	SizeCluster []int   // |P[c]|
	NbAdd       []int   // target[c] - SizeCluster[c]; only meaningful when Target != nil
	Q           int     // len(U)
	P_          int     // sum of SizeCluster (named P_ to avoid clashing with field P)
}

// BuildPartition rebuilds the cluster partition from the store's current
// variable domains. Non-reversible scratch: fully recomputed, never trailed.
func BuildPartition(s *Store) *Partition {
	K := s.Inst.K
	pt := &Partition{
		P:           make([][]int, K),
		SizeCluster: make([]int, K),
	}
	for i := 0; i < s.Inst.N; i++ {
		if s.IsFixed(i) {
			c := s.FixedCluster(i)
			pt.P[c] = append(pt.P[c], i)
			pt.SizeCluster[c]++
			pt.P_++
		} else {
			pt.U = append(pt.U, i)
		}
	}
	pt.Q = len(pt.U)
	if s.Inst.Target != nil {
		pt.NbAdd = make([]int, K)
		for c := 0; c < K; c++ {
			pt.NbAdd[c] = s.Inst.Target[c] - pt.SizeCluster[c]
		}
	}
	return pt
}

// MaxNbAdd returns max_c nb_add[c], used as the prefix-sum length L for the
// cardinality-aware bookkeeping variants (W-CARD, W-FLOW).
func (pt *Partition) MaxNbAdd() int {
	m := 0
	for _, v := range pt.NbAdd {
		if v > m {
			m = v
		}
	}
	return m
}
