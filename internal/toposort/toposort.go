// Package toposort orders a set of named nodes along their dependency
// edges, for use by kernel/classify.go to walk concept names in
// subsumption order when building a taxonomy.
//
// Adapted from internal/core/toposort's GraphBuilder/AddEdge/EnsureNode/
// Build/Sort vocabulary and its "lexicographic tie-break among ready
// nodes" rule, but simplified where the two problems diverge: CUE's
// toposort produces one literal total order of struct fields and so must
// resolve every cycle by picking a single entry point and accepting
// broken edges (chooseCycle/chooseCycleEntryNode's whole machinery).
// Here a cycle means mutually subsuming (equivalent) concepts, which have
// no real order between them at all — so cycles are collapsed into one
// multi-name level via Tarjan's SCC algorithm first, and the condensation
// (always a DAG) is sorted with plain Kahn's algorithm. No edge is ever
// "broken": every edge in the original graph is respected by some level
// boundary.
package toposort

import "sort"

// NodeUnsorted mirrors the teacher's sentinel for "not yet assigned a
// position"; kept for parity even though this package exposes levels
// rather than per-node positions.
const NodeUnsorted = -1

// Node is one named vertex plus its direct edges, added via
// GraphBuilder.AddEdge; Outgoing points toward nodes that this one is
// subsumed by (its direct super-concepts in the classification use case).
type Node struct {
	Name     string
	Outgoing []*Node
	Incoming []*Node
}

// GraphBuilder accumulates nodes and edges before a single Build call
// produces an immutable Graph, mirroring internal/core/toposort's
// two-phase build-then-sort API.
type GraphBuilder struct {
	nodes map[string]*Node
	order []string
	edges map[[2]string]bool
}

// NewGraphBuilder creates an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		nodes: map[string]*Node{},
		edges: map[[2]string]bool{},
	}
}

// EnsureNode returns the node for name, creating it (with no edges yet) if
// this is the first reference — needed for names with no edges at all,
// e.g. a concept with neither sub- nor super-concepts besides Top/Bottom.
func (b *GraphBuilder) EnsureNode(name string) *Node {
	n, ok := b.nodes[name]
	if !ok {
		n = &Node{Name: name}
		b.nodes[name] = n
		b.order = append(b.order, name)
	}
	return n
}

// AddEdge records that from is directly subsumed by to (from -> to);
// idempotent, like the teacher's AddEdge.
func (b *GraphBuilder) AddEdge(from, to string) {
	key := [2]string{from, to}
	if b.edges[key] {
		return
	}
	b.edges[key] = true
	fromNode := b.EnsureNode(from)
	toNode := b.EnsureNode(to)
	fromNode.Outgoing = append(fromNode.Outgoing, toNode)
	toNode.Incoming = append(toNode.Incoming, fromNode)
}

// Graph is a built, immutable node set ready for Levels.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// Build finalizes the graph.
func (b *GraphBuilder) Build() *Graph {
	return &Graph{nodes: b.nodes, order: b.order}
}

// Levels partitions every node into dependency levels: level 0 contains
// every node with no outgoing edges (the most general concepts, e.g. Top
// itself), level 1 every node whose outgoing edges all land in level 0,
// and so on. Nodes that are mutually reachable (an equivalence cycle) share
// the same level and are listed together, sorted lexicographically for a
// deterministic result.
func (g *Graph) Levels() [][]string {
	comps, compOf := tarjanSCC(g)
	condIn, outdeg := condense(g, comps, compOf)

	var levels [][]string
	ready := readyZero(outdeg)
	for len(ready) > 0 {
		sort.Ints(ready)
		var next []int
		var names []string
		for _, c := range ready {
			names = append(names, comps[c]...)
		}
		sort.Strings(names)
		levels = append(levels, names)

		for _, c := range ready {
			for _, p := range condIn[c] {
				outdeg[p]--
				if outdeg[p] == 0 {
					next = append(next, p)
				}
			}
		}
		ready = next
	}
	return levels
}

// Sort returns every node name in a single topological order: earlier
// names never depend on (are never subsumed-from) later ones. Nodes
// within the same equivalence class are adjacent and lexicographically
// ordered.
func (g *Graph) Sort() []string {
	var flat []string
	for _, level := range g.Levels() {
		flat = append(flat, level...)
	}
	return flat
}

func readyZero(outdeg []int) []int {
	var r []int
	for c, d := range outdeg {
		if d == 0 {
			r = append(r, c)
		}
	}
	return r
}

// tarjanSCC groups g's nodes into strongly connected components,
// returning each component's member names and a name->component-index
// map. Standard Tarjan, iterative over g.order for determinism of
// traversal start points (the SCCs themselves are unordered here; Levels
// imposes the real order afterward).
func tarjanSCC(g *Graph) (comps [][]string, compOf map[string]int) {
	index := 0
	indexOf := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	compOf = map[string]int{}

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indexOf[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.nodes[v].Outgoing {
			if _, seen := indexOf[w.Name]; !seen {
				strongconnect(w.Name)
				if lowlink[w.Name] < lowlink[v] {
					lowlink[v] = lowlink[w.Name]
				}
			} else if onStack[w.Name] {
				if indexOf[w.Name] < lowlink[v] {
					lowlink[v] = indexOf[w.Name]
				}
			}
		}

		if lowlink[v] == indexOf[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			compOf[v] = len(comps)
			for _, w := range comp {
				compOf[w] = len(comps)
			}
			comps = append(comps, comp)
		}
	}

	for _, v := range g.order {
		if _, seen := indexOf[v]; !seen {
			strongconnect(v)
		}
	}
	return comps, compOf
}

// condense builds the DAG over component indices (the graph's
// condensation, always acyclic): condIn[c] lists c's distinct direct
// predecessors and outdeg[c] counts c's distinct direct successors, the
// shape Levels needs to process sinks (outdeg 0, the most general
// concepts) first and work outward via Kahn's algorithm on the reversed
// edges. An edge within a single component (the cycle just collapsed) is
// dropped; every cross-component edge becomes one condensation edge,
// deduplicated.
func condense(g *Graph, comps [][]string, compOf map[string]int) (condIn [][]int, outdeg []int) {
	condIn = make([][]int, len(comps))
	outdeg = make([]int, len(comps))
	seen := map[[2]int]bool{}
	for _, comp := range comps {
		for _, name := range comp {
			from := compOf[name]
			for _, w := range g.nodes[name].Outgoing {
				to := compOf[w.Name]
				if to == from {
					continue
				}
				if seen[[2]int{from, to}] {
					continue
				}
				seen[[2]int{from, to}] = true
				outdeg[from]++
				condIn[to] = append(condIn[to], from)
			}
		}
	}
	return condIn, outdeg
}
