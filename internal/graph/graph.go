package graph

import (
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/depset"
	"github.com/dtsarkov/shiq/internal/restore"
	"github.com/dtsarkov/shiq/internal/roles"
)

// Graph is the completion graph: an append-only node/arc arena plus a
// restore.Stack recording every mutation, so RollbackTo can undo a
// branch's worth of expansion in one call without ever rebuilding the
// arena. Node and arc creation are themselves undone by truncating the
// arena slices — safe because restore unwinding is strictly LIFO, so by
// the time a given creation's restorer runs, everything created after it
// has already been undone.
type Graph struct {
	nodes []*Node
	arcs  []*Arc

	Restore *restore.Stack
	// Level is the current branching depth (§4.4's dependency-set levels);
	// the tableau engine increments it on entering a choice point and
	// tags every fact/arc created at that depth with depset.Singleton(Level).
	Level depset.Level
}

// New creates an empty completion graph.
func New() *Graph {
	return &Graph{Restore: restore.New()}
}

// NewNode appends a fresh, unlabelled node to the arena, reversibly.
func (g *Graph) NewNode(nominal bool) *Node {
	n := &Node{ID: len(g.nodes), Label: NewLabel(), CreatedAt: int(g.Level), Nominal: nominal}
	g.nodes = append(g.nodes, n)
	g.Restore.Push(restore.Func(func() {
		g.nodes = g.nodes[:n.ID]
	}))
	return n
}

// Nodes returns every node ever created, including merged-away ones —
// blocking's ancestor scans need to see the full history.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NewSuccessor creates a fresh node reachable from parentArc.To — the ∃/≥
// rules' "generate a new R-successor" step (§4.3) — and records the edge
// it was created through so blocking can walk ancestors via Node.Parent.
func (g *Graph) NewSuccessor(parentArc *Arc, nominal bool) *Node {
	n := g.NewNode(nominal)
	n.Parent = parentArc
	return n
}

// AddArc creates a role edge from->to and its inverse to->from, reversibly.
func (g *Graph) AddArc(from, to *Node, r *roles.Role, dep depset.Set) *Arc {
	fwd := &Arc{From: from, To: to, Role: r, Dep: dep}
	bwd := &Arc{From: to, To: from, Role: r.Inverse(), Dep: dep}
	fwd.Inverse = bwd
	bwd.Inverse = fwd

	from.Out = append(from.Out, fwd)
	to.Out = append(to.Out, bwd)
	g.arcs = append(g.arcs, fwd, bwd)

	fromLen, toLen := len(from.Out)-1, len(to.Out)-1
	g.Restore.Push(restore.Func(func() {
		from.Out = from.Out[:fromLen]
		to.Out = to.Out[:toLen]
	}))
	return fwd
}

// AddFact asserts bp on n's label with dependency set dep, reversibly.
// Reports whether this was a fresh assertion (false if bp was already
// present, possibly with its dep set widened). Every successful assertion
// calls SetAffected on n (§4.2 "addConcept(node, bp, depSet) ... Triggers
// setAffected(node)").
func (g *Graph) AddFact(n *Node, bp dag.BP, dep depset.Set) bool {
	if n.Label.Has(bp) {
		n.Label.Add(bp, dep) // widen dep set if needed; not itself undone,
		// since a wider dep set is always at least as safe to keep as the
		// narrower one it replaced.
		return false
	}
	n.Label.Add(bp, dep)
	g.Restore.Push(restore.Func(func() {
		n.Label.Remove(bp)
	}))
	g.SetAffected(n)
	return true
}

// SetAffected marks n and every descendant reachable through non-inverse
// arcs as affected (§4.2: "Nominal and p-blocked nodes are skipped"),
// reversibly: a restore hook un-marks exactly the nodes this call marked,
// since a node may already have been affected for an unrelated reason and
// must not lose that status on a partial rollback.
func (g *Graph) SetAffected(n *Node) {
	var walk func(*Node)
	walk = func(x *Node) {
		if x.Nominal || x.PBlocked() || x.Affected {
			return
		}
		x.Affected = true
		g.Restore.Push(restore.Func(func() {
			x.Affected = false
		}))
		var up *Arc
		if x.Parent != nil {
			up = x.Parent.Inverse
		}
		for _, a := range x.Out {
			if a != up {
				walk(a.To)
			}
		}
	}
	walk(n)
}

// removeArc splices a out of *list by identity; used by MergeInto to
// redirect edges.
func removeArc(list *[]*Arc, a *Arc) int {
	for i, x := range *list {
		if x == a {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return i
		}
	}
	return -1
}

func insertArc(list *[]*Arc, i int, a *Arc) {
	if i < 0 || i > len(*list) {
		*list = append(*list, a)
		return
	}
	*list = append(*list, nil)
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = a
}

// MergeInto folds src into dst (the LE/NN-merge rule, §4.3): dst's label
// gains every fact from src's (with dep widened by dep, the merge's own
// justification), and every edge that pointed at src is redirected to
// point at dst instead. src is marked Merged but stays in the arena: its
// ancestor chain is still consulted by blocking. src's own outgoing arcs
// are moved over to dst.Out, so src is left with no Out arcs.
func (g *Graph) MergeInto(src, dst *Node, dep depset.Set) {
	src.Label.Facts(func(bp dag.BP, d depset.Set) {
		g.AddFact(dst, bp, depset.Union(d, dep))
	})

	// For each neighbour-owned arc pointing at src (fromNeighbour), retarget
	// it to dst; for src's own matching record of that edge (srcSide, owned
	// by src.Out), move it over to dst.Out so dst now owns the outgoing
	// half of the relationship too.
	for _, srcSide := range append([]*Arc(nil), src.Out...) {
		fromNeighbour := srcSide.Inverse

		oldTo := fromNeighbour.To
		fromNeighbour.To = dst

		idx := removeArc(&src.Out, srcSide)
		oldFrom := srcSide.From
		srcSide.From = dst
		dst.Out = append(dst.Out, srcSide)

		g.Restore.Push(restore.Func(func() {
			removeArc(&dst.Out, srcSide)
			srcSide.From = oldFrom
			insertArc(&src.Out, idx, srcSide)
			fromNeighbour.To = oldTo
		}))
	}

	prevMerged, prevDep := src.Merged, src.PDep
	src.Merged = dst
	src.PDep = dep
	g.Restore.Push(restore.Func(func() {
		src.Merged = prevMerged
		src.PDep = prevDep
	}))
}

// AddDistinct asserts that a and b denote distinct individuals, reversibly
// and symmetrically (§3 "per-node inequality-relation set"), the bookkeeping
// the −LE (≥) generating rule uses to keep freshly created successors
// pairwise distinct. A no-op if the pair is already recorded, or if a and b
// are the same node.
func (g *Graph) AddDistinct(a, b *Node, dep depset.Set) {
	if a == b {
		return
	}
	if _, ok := a.Distinct[b]; ok {
		return
	}
	if a.Distinct == nil {
		a.Distinct = map[*Node]depset.Set{}
	}
	if b.Distinct == nil {
		b.Distinct = map[*Node]depset.Set{}
	}
	a.Distinct[b] = dep
	b.Distinct[a] = dep
	g.Restore.Push(restore.Func(func() {
		delete(a.Distinct, b)
		delete(b.Distinct, a)
	}))
}

// AreDistinct reports whether a and b have been asserted distinct.
func (g *Graph) AreDistinct(a, b *Node) bool {
	_, ok := a.Distinct[b]
	return ok
}
