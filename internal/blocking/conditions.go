package blocking

import (
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/graph"
	"github.com/dtsarkov/shiq/internal/roles"
)

// isParentArcLabelled reports whether the edge from w to its logical
// parent (w.Parent.Inverse, the single predecessor arc every blockable
// non-root node has per §8's invariant) is labelled by r or one of its
// sub-roles — Kernel/dlCompletionTree.h's isParentArcLabelled, specialised
// to our single-parent-arc completion graph (no loop through beginp/endp).
func isParentArcLabelled(w *graph.Node, r *roles.Role) bool {
	if w.Parent == nil {
		return false
	}
	return w.Parent.Inverse.Role.SubsumedBy(r)
}

// countNeighboursLabelled counts x's successor arcs (every Out arc except
// the single one leading back to x's own parent) whose role is subsumed
// by r and whose endpoint's label contains c — the `for (*q) : p->begins()
// ... isNeighbour(S) && getArcEnd()->isLabelledBy(C)` loops in B3/B4.
func countNeighboursLabelled(x *graph.Node, r *roles.Role, c dag.BP) int {
	var up *graph.Arc
	if x.Parent != nil {
		up = x.Parent.Inverse
	}
	n := 0
	for _, a := range x.Out {
		if a == up {
			continue
		}
		if a.RoleSatisfies(r) && a.To.Label.Has(c) {
			n++
		}
	}
	return n
}

// B1 checks label(w) ⊆ label(w') (§4.4, SH's only condition).
func (e *Engine) B1(w, wPrime *graph.Node) bool {
	e.Stats.Tries[0]++
	if w.Label.Subset(wPrime.Label) {
		return true
	}
	e.Stats.Fails[0]++
	return false
}

// B2 checks, for one positive (∀S.C) vertex found in w''s label at
// automaton state st, that if the v↔w edge admits a transition from st,
// the resulting requirement (C if the target state is final, else the
// automaton-state-tagged marker for the target state — looked up by the
// same contiguous-slot arithmetic Store.buildForall used to materialise it)
// already holds at v = w.Parent.From (Kernel/Blocking.cpp's two B2
// overloads, unified since our automaton states are always directly
// addressable DAG slots rather than an offset range).
func (e *Engine) B2(w, wPrime *graph.Node, bp dag.BP, v *dag.Vertex) bool {
	e.Stats.Tries[1]++
	if w.Parent == nil {
		return true
	}
	parent := w.Parent.From
	edgeRole := w.Parent.Role // the v->w forward role
	to, final, ok := v.Role.Automaton().Applicable(v.State, edgeRole)
	if !ok {
		return true
	}
	required := v.Child
	if !final {
		required = bp + dag.BP(to-v.State)
	}
	if parent.Label.Has(required) {
		return true
	}
	e.Stats.Fails[1]++
	return false
}

// B3 checks, for one positive (≤ n S.C) vertex found in w''s label, the
// three-way disjunction of Kernel/Blocking.cpp's B3.
func (e *Engine) B3(w, wPrime *graph.Node, n int, S *roles.Role, C dag.BP) bool {
	e.Stats.Tries[2]++
	if !isParentArcLabelled(w, S) {
		return true
	}
	v := w.Parent.From
	if v.Label.Has(dag.Inverse(C)) {
		return true
	}
	if !v.Label.Has(C) {
		e.Stats.Fails[2]++
		return false
	}
	m := countNeighboursLabelled(wPrime, S, C)
	if m < n {
		return true
	}
	e.Stats.Fails[2]++
	return false
}

// B4 checks, for one (≥ m T.E) requirement found in w''s label (positive
// LE read through its negation, or a negative ∀ read as ∃ with m=1), that
// either w directly witnesses it via v, or w' already has m T-successors
// labelled E (Kernel/Blocking.cpp's B4).
func (e *Engine) B4(w, wPrime *graph.Node, m int, T *roles.Role, E dag.BP) bool {
	e.Stats.Tries[3]++
	if m == 1 && isParentArcLabelled(w, T) {
		if w.Parent.From.Label.Has(E) {
			return true
		}
	}
	if countNeighboursLabelled(wPrime, T, E) >= m {
		return true
	}
	e.Stats.Fails[3]++
	return false
}

// B5 checks one positive (≤ n T.E) found in w''s label: either w is not an
// inv(T)-successor of v, or ¬E ∈ label(v) (Kernel/Blocking.cpp's B5).
func (e *Engine) B5(w *graph.Node, T *roles.Role, E dag.BP) bool {
	e.Stats.Tries[4]++
	if !isParentArcLabelled(w, T) {
		return true
	}
	if w.Parent.From.Label.Has(dag.Inverse(E)) {
		return true
	}
	e.Stats.Fails[4]++
	return false
}

// B6 checks one negative (≥ m U.F) found in v = w.Parent.From's label:
// either w is not a U-successor of v, or ¬F ∈ label(w) (Kernel/
// Blocking.cpp's B6).
func (e *Engine) B6(w *graph.Node, U *roles.Role, F dag.BP) bool {
	e.Stats.Tries[5]++
	if w.Parent == nil || !w.Parent.Role.SubsumedBy(U) {
		return true
	}
	if w.Label.Has(dag.Inverse(F)) {
		return true
	}
	e.Stats.Fails[5]++
	return false
}
