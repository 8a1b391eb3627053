// Package topology analyses the neighbor graph of a simulator with gonum:
// connectivity, hop distances, and whether the TRA routing tables a run
// converged to are the expected reverse shortest paths.
package topology

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/trasdn/netsim/sim"
)

// Graph is the undirected hop graph of a set of neighbor relations. Every
// edge weighs 1, so shortest paths minimize hop count.
type Graph struct {
	g   *simple.WeightedUndirectedGraph
	ids []sim.NodeID

	// cached shortest path trees, keyed by root
	trees map[sim.NodeID]path.Shortest
}

// FromAdjacency builds the graph of adj. A one-way relation is enough to
// produce an edge.
func FromAdjacency(adj map[sim.NodeID][]sim.NodeID) *Graph {
	g := &Graph{
		g:     simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		trees: make(map[sim.NodeID]path.Shortest),
	}
	for id := range adj {
		g.ids = append(g.ids, id)
		g.g.AddNode(simple.Node(int64(id)))
	}
	slices.Sort(g.ids)
	for _, id := range g.ids {
		for _, nb := range adj[id] {
			if nb == id || g.g.Node(int64(nb)) == nil {
				continue
			}
			g.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(int64(id)), T: simple.Node(int64(nb)), W: 1})
		}
	}
	return g
}

// Nodes returns the node ids in ascending order.
func (g *Graph) Nodes() []sim.NodeID {
	return slices.Clone(g.ids)
}

// Components returns the connected components, each sorted, ordered by
// their smallest id.
func (g *Graph) Components() [][]sim.NodeID {
	var out [][]sim.NodeID
	for _, cc := range topo.ConnectedComponents(g.g) {
		ids := make([]sim.NodeID, 0, len(cc))
		for _, n := range cc {
			ids = append(ids, sim.NodeID(n.ID()))
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []sim.NodeID) int {
		return int(int64(a[0]) - int64(b[0]))
	})
	return out
}

// Connected reports whether every node reaches every other node.
func (g *Graph) Connected() bool {
	return len(g.ids) == 0 || len(topo.ConnectedComponents(g.g)) == 1
}

func (g *Graph) tree(from sim.NodeID) path.Shortest {
	t, ok := g.trees[from]
	if !ok {
		t = path.DijkstraFrom(simple.Node(int64(from)), g.g)
		g.trees[from] = t
	}
	return t
}

// Hops returns the hop distance between two nodes, and false when either
// is unknown or they are not connected.
func (g *Graph) Hops(from, to sim.NodeID) (int, bool) {
	if g.g.Node(int64(from)) == nil || g.g.Node(int64(to)) == nil {
		return 0, false
	}
	w := g.tree(from).WeightTo(int64(to))
	if math.IsInf(w, 1) {
		return 0, false
	}
	return int(w), true
}

// HopDistances returns the hop distance from from to every reachable node.
func (g *Graph) HopDistances(from sim.NodeID) map[sim.NodeID]int {
	out := make(map[sim.NodeID]int)
	for _, id := range g.ids {
		if d, ok := g.Hops(from, id); ok {
			out[id] = d
		}
	}
	return out
}

// Path returns a shortest path from from to to, both included.
func (g *Graph) Path(from, to sim.NodeID) []sim.NodeID {
	if g.g.Node(int64(from)) == nil || g.g.Node(int64(to)) == nil {
		return nil
	}
	nodes, _ := g.tree(from).To(int64(to))
	out := make([]sim.NodeID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, sim.NodeID(n.ID()))
	}
	return out
}

// Violation is a routing entry that is not the expected reverse shortest
// path.
type Violation struct {
	Node   sim.NodeID
	Origin sim.NodeID
	Hop    sim.NodeID
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("node %d, origin %d, hop %d: %s", v.Node, v.Origin, v.Hop, v.Reason)
}

// VerifyReversePaths checks the TRA routing tables of simulator after a
// flood has settled. Only TRA switches are considered, since they are the
// only nodes that count hops. For every origin a switch knows, the stored
// hop must be the lowest-id neighbor one hop closer to the origin, and the
// stored metric must equal the hop distance. Origins a switch can reach but
// never learned are reported too.
func VerifyReversePaths(simulator *sim.Simulator, origins []sim.NodeID) []Violation {
	adj := make(map[sim.NodeID][]sim.NodeID)
	switches := make(map[sim.NodeID]*sim.TRASwitch)
	for _, id := range simulator.NodeIDs() {
		if sw, ok := simulator.Node(id).(*sim.TRASwitch); ok {
			switches[id] = sw
		}
	}
	for id, sw := range switches {
		for _, nb := range sw.Neighbors() {
			if _, ok := switches[nb]; ok {
				adj[id] = append(adj[id], nb)
			}
		}
		if _, ok := adj[id]; !ok {
			adj[id] = nil
		}
	}
	g := FromAdjacency(adj)

	var out []Violation
	for _, id := range g.Nodes() {
		sw := switches[id]
		table := sw.RoutingTable()
		for _, origin := range origins {
			if _, ok := switches[origin]; !ok {
				continue
			}
			dist, reachable := g.Hops(origin, id)
			hop, learned := table[origin]
			switch {
			case !reachable && learned:
				out = append(out, Violation{id, origin, hop, "route to an unreachable origin"})
				continue
			case !reachable:
				continue
			case !learned:
				out = append(out, Violation{id, origin, 0, "origin never learned"})
				continue
			}
			if m, _ := sw.Metric(origin); int(m) != dist {
				out = append(out, Violation{id, origin, hop, fmt.Sprintf("metric %d, distance %d", m, dist)})
			}
			want := expectedHop(g, sw, origin, dist)
			if hop != want {
				out = append(out, Violation{id, origin, hop, fmt.Sprintf("expected hop %d", want)})
			}
		}
	}
	return out
}

func expectedHop(g *Graph, sw *sim.TRASwitch, origin sim.NodeID, dist int) sim.NodeID {
	if dist == 0 {
		return origin
	}
	for _, nb := range sw.Neighbors() {
		if d, ok := g.Hops(origin, nb); ok && d == dist-1 {
			return nb
		}
	}
	return sim.Broadcast
}
