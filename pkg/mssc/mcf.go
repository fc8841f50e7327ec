package mssc

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"
)

// mcfScale converts the real-valued arc costs of the W-FLOW transportation
// network into the non-negative int64 weights lvlath's Dijkstra requires;
// the resulting rounding error is bounded well inside epsFlow.
const mcfScale = 1_000_000.0

type arcKind int

const (
	arcSource arcKind = iota // S -> u
	arcMatch                 // u -> c
	arcSink                  // c -> T
)

// mcfArc is one directed arc of the real (non-residual) transportation
// network built for W-FLOW: source -> unassigned point -> candidate cluster
// -> sink.
type mcfArc struct {
	from, to    string
	cap, flow   int
	cost        float64
	scaledCost  int64
	kind        arcKind
	u, c        int
}

// MCFResult is what W-FLOW needs back from a solved min-cost flow: the total
// objective contribution of the u->c arcs, and which (u,c) pairs carry flow.
type MCFResult struct {
	TotalCost float64
	Flow      map[[2]int]bool
}

func uNode(i int) string { return fmt.Sprintf("u%d", i) }
func cNode(c int) string { return fmt.Sprintf("c%d", c) }

// SolveMCF builds the transportation network for the remaining assignment
// from the current partition and bookkeeping, and solves it via successive
// shortest paths: one Dijkstra call per unit of flow, driven over Johnson-reduced
// non-negative edge weights so that the negative-cost reverse residual arcs
// created after the first augmentation never reach lvlath's Dijkstra, which
// rejects negative weights outright.
func SolveMCF(inst *Instance, store *Store, pt *Partition, sums *Sums) (*MCFResult, error) {
	res := &MCFResult{Flow: make(map[[2]int]bool)}
	if pt.Q == 0 {
		return res, nil
	}

	var arcs []*mcfArc
	for _, u := range pt.U {
		arcs = append(arcs, &mcfArc{from: "S", to: uNode(u), cap: 1, kind: arcSource, u: u})
	}
	for cl := 0; cl < inst.K; cl++ {
		if pt.NbAdd[cl] > 0 {
			arcs = append(arcs, &mcfArc{from: cNode(cl), to: "T", cap: pt.NbAdd[cl], kind: arcSink, c: cl})
		}
	}
	for _, u := range pt.U {
		for cl := 0; cl < inst.K; cl++ {
			if pt.NbAdd[cl] <= 0 || !store.InDomain(u, cl) {
				continue
			}
			w := (sums.S2Of(u, cl) + sums.S3Of(u, pt.NbAdd[cl]-1)) / float64(inst.Target[cl])
			arcs = append(arcs, &mcfArc{
				from: uNode(u), to: cNode(cl), cap: 1,
				cost: w, scaledCost: int64(math.Round(w * mcfScale)),
				kind: arcMatch, u: u, c: cl,
			})
		}
	}

	pot := make(map[string]int64)
	for round := 0; round < pt.Q; round++ {
		dist, prev, edgeOf, err := mcfRound(arcs, pot)
		if err != nil {
			return nil, err
		}
		d, ok := dist["T"]
		if !ok || d == math.MaxInt64 {
			return nil, ErrMCFInfeasible
		}
		for node, dv := range dist {
			if dv != math.MaxInt64 {
				pot[node] += dv
			}
		}
		augmentMCF(prev, edgeOf)
	}

	for _, a := range arcs {
		if a.kind == arcMatch && a.flow == 1 {
			res.Flow[[2]int{a.u, a.c}] = true
			res.TotalCost += a.cost
		}
	}
	return res, nil
}

type residualEdge struct {
	arc      *mcfArc
	forward  bool // true: from->to is the arc's own direction; false: reverse
}

// mcfRound builds the residual graph implied by arcs' current flow, using
// Johnson-reduced costs (always non-negative) derived from pot, and runs a
// single Dijkstra call from S.
func mcfRound(arcs []*mcfArc, pot map[string]int64) (map[string]int64, map[string]string, map[[2]string]residualEdge, error) {
	g := core.NewGraph(core.WithDirected(true), core.WithWeighted())
	edgeOf := make(map[[2]string]residualEdge)

	ensureVertex := func(id string) {
		if !g.HasVertex(id) {
			_ = g.AddVertex(id)
		}
	}
	ensureVertex("S")
	ensureVertex("T")

	addResidual := func(from, to string, scaledCost int64, a *mcfArc, forward bool) error {
		ensureVertex(from)
		ensureVertex(to)
		rc := scaledCost + pot[from] - pot[to]
		if rc < 0 {
			rc = 0 // Johnson invariant guarantees this in theory; clamp defensively.
		}
		if _, err := g.AddEdge(from, to, rc); err != nil {
			return err
		}
		edgeOf[[2]string{from, to}] = residualEdge{arc: a, forward: forward}
		return nil
	}

	for _, a := range arcs {
		if a.cap-a.flow > 0 {
			if err := addResidual(a.from, a.to, a.scaledCost, a, true); err != nil {
				return nil, nil, nil, err
			}
		}
		if a.flow > 0 {
			if err := addResidual(a.to, a.from, -a.scaledCost, a, false); err != nil {
				return nil, nil, nil, err
			}
		}
	}

	dist, prev, err := dijkstra.Dijkstra(g, dijkstra.Source("S"), dijkstra.WithReturnPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mssc: mcf round dijkstra: %w", err)
	}
	return dist, prev, edgeOf, nil
}

// augmentMCF walks the shortest path found from S to T and pushes one unit
// of flow along it, incrementing forward arcs and decrementing (rerouting)
// backward ones.
func augmentMCF(prev map[string]string, edgeOf map[[2]string]residualEdge) {
	var path []string
	node := "T"
	path = append(path, node)
	for node != "S" {
		p, ok := prev[node]
		if !ok || p == "" {
			return
		}
		node = p
		path = append(path, node)
	}
	for i := len(path) - 1; i > 0; i-- {
		from, to := path[i], path[i-1]
		re := edgeOf[[2]string{from, to}]
		if re.forward {
			re.arc.flow++
		} else {
			re.arc.flow--
		}
	}
}
