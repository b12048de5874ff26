package tableau

import (
	"sort"

	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/datatype"
	"github.com/dtsarkov/shiq/internal/depset"
	"github.com/dtsarkov/shiq/internal/graph"
	"github.com/dtsarkov/shiq/internal/roles"
)

// applyRule dispatches (bp, v.Tag) to the rule named in §4.3 step 4.
func (e *Engine) applyRule(node *graph.Node, bp dag.BP, dep depset.Set) {
	v := e.Store.At(bp)
	switch v.Tag {
	case dag.TagAnd:
		if bp.IsPositive() {
			e.applyAnd(node, v, dep)
		} else {
			e.applyOr(node, v, dep)
		}
	case dag.TagForall:
		if bp.IsPositive() {
			e.applyForallPos(node, bp, v, dep)
		} else {
			e.applyExists(node, v, dep)
		}
	case dag.TagLE:
		if bp.IsPositive() {
			e.applyLE(node, v, dep)
		} else {
			e.applyGE(node, v, dep)
		}
	case dag.TagIrr:
		e.applyIrr(node, v, dep)
	case dag.TagNConcept, dag.TagPConcept, dag.TagNSingleton, dag.TagPSingleton:
		e.applyConcept(node, bp, v, dep)
		if bp.IsPositive() && (v.Tag == dag.TagNSingleton || v.Tag == dag.TagPSingleton) {
			e.applySingleton(node, bp, dep)
		}
	case dag.TagDataType, dag.TagDataValue, dag.TagDataExpr:
		e.applyDataType(node, dep)
	}
}

// applyAnd is +AND: add every conjunct to node's label (§4.3 "for each
// child c, add (node, c, depSet) to the label. Each addition reschedules").
func (e *Engine) applyAnd(node *graph.Node, v *dag.Vertex, dep depset.Set) {
	for _, c := range v.Children {
		e.addFact(node, c, dep)
	}
}

// applyOr is −AND (disjunction read through negation, ¬(C⊓D) ≡ ¬C∨¬D):
// opens a branch over the conjuncts, asserting the negation of one at a
// time, in source order (§5 "Disjunct selection in −AND: source order of
// children").
func (e *Engine) applyOr(node *graph.Node, v *dag.Vertex, dep depset.Set) {
	children := v.Children
	e.beginBranch(len(children), func(level depset.Level, idx int) {
		e.addFact(node, dag.Inverse(children[idx]), dep.With(level))
	})
}

// applyForallPos is +FORALL(k,R,C): for every R'-neighbour reachable by a
// transition the role automaton admits from state k, apply C when the
// target state is accepting, and keep propagating the restriction itself
// when the target state still has outgoing transitions — both can apply
// at once for a transitive sub-role's self-loop, which is what lets a
// transitive ∀ keep reaching further successors (§8 scenario 5) rather
// than stopping after one hop the way the spec's literal "if final ...
// else ..." phrasing reads for a single-state automaton.
//
// Neighbours include the edge back to node's logical parent: +FORALL is
// defined over R'-neighbours, not R'-successors, so a ∀inv(R).C sitting on
// a child constrains the parent across exactly that edge (the "I" in
// SHIQ). auto.Applicable, not the caller, decides whether the parent edge
// qualifies.
func (e *Engine) applyForallPos(node *graph.Node, bp dag.BP, v *dag.Vertex, dep depset.Set) {
	auto := v.Role.Automaton()
	for _, a := range node.Out {
		if a.IBlocked() {
			continue
		}
		e.applyForallToArc(auto, a, bp, v, dep)
	}
}

// applyForallToArc applies one +FORALL(k,R,C) step across a single arc, the
// shared body between applyForallPos's full neighbour sweep and
// addSuccessor's catch-up for a successor created after the ∀ already fired
// on its parent (§4.2 addEdge "inherit the endpoints' applicable universal
// restrictions").
func (e *Engine) applyForallToArc(auto *roles.Automaton, a *graph.Arc, bp dag.BP, v *dag.Vertex, dep depset.Set) {
	to, final, ok := auto.Applicable(v.State, a.Role)
	if !ok {
		return
	}
	if final {
		e.addFact(a.To, v.Child, dep)
	}
	if len(auto.Transitions(to)) > 0 {
		next := bp + dag.BP(to-v.State)
		e.addFact(a.To, next, dep)
	}
}

// applyExists is −FORALL read as ∃R.C (§4.3 "if no witness with C exists
// among existing R-successors ... create a new R-successor and add
// (child, C)"). Only fires at automaton state 0: a propagated FORALL at a
// later state is a ∀-chain continuation, not an existential of its own.
func (e *Engine) applyExists(node *graph.Node, v *dag.Vertex, dep depset.Set) {
	if v.State != 0 {
		return
	}
	filler := dag.Inverse(v.Child)
	var up *graph.Arc
	if node.Parent != nil {
		up = node.Parent.Inverse
	}
	for _, a := range node.Out {
		if a == up {
			continue
		}
		if a.RoleSatisfies(v.Role) && a.To.Label.Has(filler) {
			return
		}
	}
	child := e.addSuccessor(node, v.Role, filler, dep, false)
	e.addFact(child, filler, dep)
}

// neighboursLabelled lists x's R-neighbours (every Out arc but the one
// leading back to x's own parent) whose endpoint's label contains c,
// ascending by id — the same walk countNeighboursLabelled does for
// blocking, but returning the nodes themselves rather than just a count,
// since +LE/−LE need to pick among them.
func neighboursLabelled(x *graph.Node, r *roles.Role, c dag.BP) []*graph.Node {
	var up *graph.Arc
	if x.Parent != nil {
		up = x.Parent.Inverse
	}
	var out []*graph.Node
	for _, a := range x.Out {
		if a == up {
			continue
		}
		if a.RoleSatisfies(r) && a.To.Label.Has(c) {
			out = append(out, a.To)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// applyLE is +LE(n,R,C), the merge rule (§4.3 "count R-neighbours labelled
// with C. If the count exceeds n, pick two neighbours (lowest-id first)
// and merge them; record the choice point for backtracking"). Candidate
// pairs already known pairwise distinct (via a −LE rule elsewhere) are
// never proposed, since merging them would assert individual equality
// against an established inequality — itself unsound, not merely another
// alternative to retry. If every pair is excluded this way while the count
// still exceeds n, no merge can ever bring the count down, so this is a
// direct clash rather than an exhausted branch.
func (e *Engine) applyLE(node *graph.Node, v *dag.Vertex, dep depset.Set) {
	neighbours := neighboursLabelled(node, v.Role, v.Child)
	if len(neighbours) <= v.N {
		return
	}

	type pair struct{ keep, purge *graph.Node }
	var pairs []pair
	for i := 0; i < len(neighbours); i++ {
		for j := i + 1; j < len(neighbours); j++ {
			a, b := neighbours[i], neighbours[j]
			if e.Graph.AreDistinct(a, b) {
				continue
			}
			pairs = append(pairs, pair{keep: a, purge: b})
		}
	}

	if len(pairs) == 0 {
		d := dep
		for _, n := range neighbours {
			d = depset.Union(d, n.Label.Dep(v.Child))
		}
		e.setClash(d)
		return
	}

	e.beginBranch(len(pairs), func(level depset.Level, idx int) {
		p := pairs[idx]
		merged := dep.With(level)
		e.Graph.MergeInto(p.purge, p.keep, merged)
		e.checkClash(p.keep)
		e.reschedule(p.keep)
	})
}

// applyGE is −LE read as (≥ m R.C), m = n+1 (§4.3 "ensure m distinct
// R-successors labelled with C exist; create fresh ones as needed and add
// their pairwise inequality").
func (e *Engine) applyGE(node *graph.Node, v *dag.Vertex, dep depset.Set) {
	m := v.N + 1
	existing := neighboursLabelled(node, v.Role, v.Child)
	if len(existing) >= m {
		return
	}
	fresh := make([]*graph.Node, 0, m-len(existing))
	for i := len(existing); i < m; i++ {
		child := e.addSuccessor(node, v.Role, v.Child, dep, false)
		e.addFact(child, v.Child, dep)
		fresh = append(fresh, child)
	}

	all := append(append([]*graph.Node(nil), existing...), fresh...)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			e.Graph.AddDistinct(all[i], all[j], dep)
		}
	}
}

// applyConcept is +CONCEPT/−CONCEPT (§4.3): a defined concept's body is an
// iff, so both polarities unfold. A primitive (told) concept's body is
// only a necessary condition (C ⊑ body), so only the positive occurrence
// unfolds forward; unfolding the negative occurrence would assert the
// unsound converse ¬body ⟹ ¬C.
func (e *Engine) applyConcept(node *graph.Node, bp dag.BP, v *dag.Vertex, dep depset.Set) {
	body := v.Children[0]
	if bp.IsPositive() {
		e.addFact(node, body, dep)
		return
	}
	if v.Tag == dag.TagPConcept || v.Tag == dag.TagPSingleton {
		e.addFact(node, dag.Inverse(body), dep)
	}
}

// applySingleton is +SINGLETON(o) (§4.3 "mark node nominal ... merge with
// the unique nominal node for o, creating it if absent"). The DAG already
// gives every named individual a single, identity-keyed bipolar pointer
// (internal/dag's directAdd, never canonicalised structurally), so bp
// itself is o's registry key — no separate nominal-level bookkeeping is
// needed to recognise "the same o" across completion-graph nodes.
func (e *Engine) applySingleton(node *graph.Node, bp dag.BP, dep depset.Set) {
	node.Nominal = true
	target, ok := e.nominals[bp]
	if !ok {
		e.nominals[bp] = node
		return
	}
	target = e.resolve(target)
	node = e.resolve(node)
	if target == node {
		return
	}
	e.Graph.MergeInto(node, target, dep)
	e.checkClash(target)
	e.reschedule(target)
}

// applyIrr is IRR(R) (§4.3 "check that node has no reflexive R loop.
// Otherwise clash").
func (e *Engine) applyIrr(node *graph.Node, v *dag.Vertex, dep depset.Set) {
	for _, a := range node.Out {
		if a.To == node && a.RoleSatisfies(v.Role) {
			e.setClash(depset.Union(dep, a.Dep))
			return
		}
	}
}

// applyDataType is the datatype oracle check (C8, §1 "black-box datatype
// reasoner"). A data role has no completion-graph node of its own to carry
// a successor's facts, so DATAVALUE/DATAEXPR constraints on a data-role
// filler are asserted directly on the host node's own label; every one of
// them already asserted of node, positive or negative, is exactly the
// constraint set datatype.Oracle needs to see. Calling this on every
// DATATYPE/DATAVALUE/DATAEXPR addition is redundant but harmless: Consistent
// is a pure function of the current constraint set.
func (e *Engine) applyDataType(node *graph.Node, dep depset.Set) {
	var cs []datatype.Constraint
	cdep := dep
	node.Label.Facts(func(bp dag.BP, d depset.Set) {
		v := e.Store.At(bp)
		switch v.Tag {
		case dag.TagDataValue:
			op := datatype.Equal
			if !bp.IsPositive() {
				op = datatype.NotEqual
			}
			cs = append(cs, datatype.Constraint{Op: op, Value: *v.DataValue})
			cdep = depset.Union(cdep, d)
		case dag.TagDataExpr:
			op := v.DataOp
			if !bp.IsPositive() {
				op = op.Negate()
			}
			cs = append(cs, datatype.Constraint{Op: op, Value: *v.DataValue})
			cdep = depset.Union(cdep, d)
		}
	})
	if len(cs) == 0 {
		return
	}
	if !(datatype.NumericOracle{}).Consistent(cs) {
		e.setClash(cdep)
	}
}
