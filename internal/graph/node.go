package graph

import (
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/depset"
)

// Node is one vertex of the completion graph (§3 "Completion-graph node"):
// a label of asserted concept facts, the edge it was created through (nil
// for the root/nominal individuals), and the bookkeeping internal/blocking
// needs to mark and later unmark it blocked.
//
// Grounded on Kernel/dlCompletionTree.h's DlCompletionTree: Label is its
// label, Parent/Out mirror its parent pointer and children list, Nominal/
// NominalRank mirror the CTNominalLevel sentinel (a nominal node is never
// blockable, so blocking never needs to rank it against an ancestor), and
// Blocked/BlockedBy/DBlocked/PDep/Init/Cached/Affected mirror the fields
// DlCompletionTree keeps for Blocking.cpp's detectBlockedStatus/
// unblockNode/isBlockedBy_* family.
type Node struct {
	ID    int
	Label *Label

	// Parent is the arc this node was created through; nil for a root
	// individual. Used by blocking to walk ancestors.
	Parent *Arc
	// Out holds every arc leaving this node, both object- and data-role.
	Out []*Arc

	// CreatedAt is the branching level active when this node was created.
	// Blocking does not consult it: anywhere-blocking orders candidates by
	// ID.
	CreatedAt int

	// Nominal marks a node standing for a named individual: such nodes are
	// never subject to blocking (§4.2 "a nominal node is never blocked").
	Nominal     bool
	NominalRank int // merge-target tie-break among nominal nodes; lower wins

	// Init is the concept that triggered this node's creation (§3: "used
	// by blocking cheap rejection"): TOP for the initial root of a query,
	// or the filler concept of the ∃/≥ rule that generated it.
	Init dag.BP

	// Cached marks a node whose satisfiability was decided by a cached
	// result rather than full expansion; such nodes can never serve as a
	// blocker (§4.4 "Cached nodes cannot be blockers").
	Cached bool

	// Affected is set by setAffected (§4.2) whenever a label change on
	// this node or an ancestor may have invalidated a previously computed
	// blocking decision; DetectBlockedStatus walks affected nodes to
	// recompute it before the next rule application.
	Affected bool

	// Blocked reports whether the node is currently blocked (by any
	// means); BlockedBy names the blocker when Blocked is set by ancestor-
	// or anywhere-blocking (§4.4). DBlocked additionally distinguishes
	// "directly blocked" (this node has its own blocker) from a node that
	// is merely indirectly suppressed because an ancestor is blocked —
	// the tableau and blocking package use IBlocked (an arc
	// method, see arc.go) for the latter, so DBlocked here always implies
	// Blocked but not conversely.
	Blocked   bool
	BlockedBy *Node
	DBlocked  bool

	// Merged, when non-nil, is the surviving node this one was folded into
	// by an NN-merge (§4.3 LE rule); a merged node is never revisited by
	// the tableau loop but stays in the arena for ancestor/blocking scans
	// that still need to see history. PDep is the dependency set the
	// merge itself depends on (§3 "pDep: dep-set of purge").
	Merged *Node
	PDep   depset.Set

	// Distinct is this node's per-node inequality-relation set (§3): every
	// other node asserted distinct from this one, with the dep-set
	// justifying the assertion. Populated reversibly by Graph.AddDistinct,
	// which keeps both sides of the pair in sync.
	Distinct map[*Node]depset.Set
}

// Active reports whether the node is still a live participant in the
// graph (not folded away by a merge).
func (n *Node) Active() bool { return n.Merged == nil }

// PBlocked reports whether n has been purged (merged) into another node
// (§3 "pBlocked (purge/merged)"). Equivalent to !n.Active() but named to
// match the spec vocabulary at blocking call sites.
func (n *Node) PBlocked() bool { return n.Merged != nil }

// Blockable reports whether n is even a candidate to be blocked: nominal
// nodes and the root (no parent) are excluded. A root may still serve as a
// blocker for its descendants; nominal blockers are rejected by
// blocking.Engine.IsBlockedBy (§4.4 "Nominal nodes can neither block nor be
// blocked").
func (n *Node) Blockable() bool { return !n.Nominal && n.Parent != nil }

// Ancestors calls f for every ancestor of n, nearest first, following
// Parent links. The node itself is not included.
func (n *Node) Ancestors(f func(*Node)) {
	for p := n.Parent; p != nil; p = p.From.Parent {
		f(p.From)
	}
}

// setAffected marks n affected; callers needing the whole-subtree version
// (§4.2 "setAffected(node): marks node and all its descendants") should use
// Graph.SetAffected, which also skips nominal/p-blocked nodes and walks Out
// arcs — Node itself only exposes the single-node primitive since it has
// no access to the node arena.
func (n *Node) setAffected() { n.Affected = true }
