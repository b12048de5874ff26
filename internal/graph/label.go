// Package graph is the completion graph named in spec §2 as C4/C5: the
// tableau engine's working structure of nodes (each labelled with the
// concepts it is currently known to satisfy) linked by role edges, with
// every mutation reversible through internal/restore so the tableau can
// backtrack a branching choice without rebuilding the graph from scratch.
//
// It is grounded on Kernel/dlCompletionTree.h: Node mirrors DlCompletionTree
// (a label plus parent/children edges and a nominal-level sentinel used by
// blocking), Arc mirrors its paired successor/predecessor edge structure,
// and Graph.Restore (a restore.Stack, with Mark/RollbackTo) mirrors
// SaveState's counter-snapshot plus the TRestorer stack (UnBlock/
// CacheRestorer) that undoes everything pushed since.
package graph

import (
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/depset"
)

// Label is the set of concept facts (bipolar pointers into internal/dag)
// currently asserted of a node, each tagged with the dependency set that
// justifies it — the same role dlCompletionTree's per-label dep-sets play
// for backjumping (§4.1/§4.4).
type Label struct {
	facts map[dag.BP]depset.Set
}

// NewLabel returns an empty label.
func NewLabel() *Label {
	return &Label{facts: map[dag.BP]depset.Set{}}
}

// Has reports whether bp is asserted.
func (l *Label) Has(bp dag.BP) bool {
	_, ok := l.facts[bp]
	return ok
}

// Dep returns the dependency set bp was added with, or the zero Set if bp
// is not asserted.
func (l *Label) Dep(bp dag.BP) depset.Set {
	return l.facts[bp]
}

// Add asserts bp with dependency set dep. If bp is already present, the
// wider (dominating) dependency set is kept — a fact derivable along two
// paths should carry whichever justification is safe to keep regardless
// of which path gets undone first — and ok reports false (no-op other than
// possibly widening the dep set). A fresh assertion returns ok=true.
func (l *Label) Add(bp dag.BP, dep depset.Set) (ok bool) {
	if existing, had := l.facts[bp]; had {
		if dep.Dominates(existing) {
			l.facts[bp] = dep
		}
		return false
	}
	l.facts[bp] = dep
	return true
}

// Remove deletes bp, used by restore closures undoing an Add.
func (l *Label) Remove(bp dag.BP) {
	delete(l.facts, bp)
}

// Clash reports whether the label contains both some fact and its
// negation, returning the pair's combined dependency set — the backjump
// target per §4.4 ("on clash, jump to Union of the clashing facts' dep
// sets' Max level").
func (l *Label) Clash() (clashed bool, dep depset.Set) {
	for bp, d := range l.facts {
		if other, ok := l.facts[dag.Inverse(bp)]; ok {
			return true, depset.Union(d, other)
		}
	}
	return false, depset.Empty
}

// Facts calls f for every (bp, dep) pair currently asserted. Iteration
// order is unspecified; callers needing determinism should collect and
// sort.
func (l *Label) Facts(f func(bp dag.BP, dep depset.Set)) {
	for bp, d := range l.facts {
		f(bp, d)
	}
}

// Len is the number of distinct facts asserted.
func (l *Label) Len() int { return len(l.facts) }

// Subset reports whether every fact in l is also present in other,
// ignoring dep-sets — the SH blocking condition B1, "label(w) ⊆
// label(w')" (§4.4).
func (l *Label) Subset(other *Label) bool {
	for bp := range l.facts {
		if !other.Has(bp) {
			return false
		}
	}
	return true
}
