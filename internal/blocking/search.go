package blocking

import (
	"github.com/dtsarkov/shiq/internal/graph"
	"github.com/dtsarkov/shiq/internal/restore"
)

// FindAncestorBlocker walks node's parent chain looking for the first
// ancestor that blocks it (findDAncestorBlocker). The walk stops at the
// first non-blockable node it reaches (root, or a nominal); that node is
// still tested as a blocker candidate, and IsBlockedBy rejects it if it is
// a nominal (§4.4 "Nominal nodes can neither block nor be blocked").
func (e *Engine) FindAncestorBlocker(node *graph.Node) *graph.Node {
	p := node
	for p.Parent != nil && p.Blockable() {
		p = p.Parent.From
		if e.IsBlockedBy(node, p) {
			return p
		}
	}
	return nil
}

// FindAnywhereBlocker scans every node created before node (ascending id,
// §5 "Anywhere-blocking search: by ascending node id"), skipping already-
// blocked or purged candidates, and returns the first match
// (findDAnywhereBlocker). allNodes must be in ascending-id (creation)
// order, which is exactly what Graph.Nodes returns.
func (e *Engine) FindAnywhereBlocker(allNodes []*graph.Node, node *graph.Node) *graph.Node {
	for _, p := range allNodes {
		if p.ID >= node.ID {
			break
		}
		if p.Blocked || p.PBlocked() {
			continue
		}
		if e.IsBlockedBy(node, p) {
			return p
		}
	}
	return nil
}

// FindBlocker dispatches to FindAncestorBlocker or FindAnywhereBlocker per
// e.Anywhere.
func (e *Engine) FindBlocker(g *graph.Graph, node *graph.Node) *graph.Node {
	if e.Anywhere {
		return e.FindAnywhereBlocker(g.Nodes(), node)
	}
	return e.FindAncestorBlocker(node)
}

// Suppressed reports whether node's expansion is currently suppressed:
// either node itself is directly blocked, or some ancestor is (§4.3 step 2
// "If node is blocked or p-blocked, skip" generalised to the whole
// ancestor chain, since a descendant of a blocked node is never itself
// separately tested — its own blocking status is meaningless until its
// ancestor is unblocked).
func Suppressed(node *graph.Node) bool {
	if node.PBlocked() || node.Blocked {
		return true
	}
	for a := node.Parent; a != nil; a = a.From.Parent {
		if a.From.Blocked {
			return true
		}
	}
	return false
}

// setNodeDBlocked reversibly records that blocker directly blocks node.
func setNodeDBlocked(g *graph.Graph, node, blocker *graph.Node) {
	prevBlocked, prevDBlocked, prevBy := node.Blocked, node.DBlocked, node.BlockedBy
	node.Blocked, node.DBlocked, node.BlockedBy = true, true, blocker
	g.Restore.Push(restore.Func(func() {
		node.Blocked, node.DBlocked, node.BlockedBy = prevBlocked, prevDBlocked, prevBy
	}))
}

// DetectBlockedStatus recomputes blocked status bottom-up from node
// (detectBlockedStatus): it walks from node toward the root, testing each
// affected ancestor for a fresh blocker and stopping as soon as one is
// found blocked (everything below inherits suppression through the
// ancestor chain, so nothing further up needs testing) or the walk runs
// off the top of the affected region. If node itself ends up unblocked
// having previously been blocked, reschedule re-activates it.
func (e *Engine) DetectBlockedStatus(g *graph.Graph, node *graph.Node, reschedule func(*graph.Node)) {
	wasBlocked := node.Blocked

	p := node
	for p.Parent != nil && p.Blockable() && p.Affected {
		clearDBlocked(g, p)
		if blocker := e.FindBlocker(g, p); blocker != nil {
			setNodeDBlocked(g, p, blocker)
		}
		if p.Blocked {
			return
		}
		p = p.Parent.From
	}
	clearAffected(g, p)

	if wasBlocked && !node.Blocked {
		e.unblockNode(g, node, reschedule)
	}
}

// clearDBlocked reversibly drops a stale direct-blocking decision before it
// is retested; a node that is only indirectly suppressed through an
// ancestor (DBlocked false) is left untouched, since that status is
// recomputed when the ancestor itself is retested, not here.
func clearDBlocked(g *graph.Graph, n *graph.Node) {
	if !n.DBlocked {
		return
	}
	prevBlocked, prevDBlocked, prevBy := n.Blocked, n.DBlocked, n.BlockedBy
	n.Blocked, n.DBlocked, n.BlockedBy = false, false, nil
	g.Restore.Push(restore.Func(func() {
		n.Blocked, n.DBlocked, n.BlockedBy = prevBlocked, prevDBlocked, prevBy
	}))
}

func clearAffected(g *graph.Graph, n *graph.Node) {
	if !n.Affected {
		return
	}
	n.Affected = false
	g.Restore.Push(restore.Func(func() { n.Affected = true }))
}

// unblockNode reversibly clears node's blocked status, invokes reschedule
// so the tableau re-activates whatever rule applications it suppressed
// while node was blocked, and recurses into node's children, since a
// child that independently acquired its own (now stale) blocked status
// while node was blocking it must be re-examined too (unblockNode /
// unblockNodeChildren).
func (e *Engine) unblockNode(g *graph.Graph, node *graph.Node, reschedule func(*graph.Node)) {
	if node.PBlocked() || !node.Blockable() {
		return
	}
	prevBlocked, prevDBlocked, prevBy := node.Blocked, node.DBlocked, node.BlockedBy
	node.Blocked, node.DBlocked, node.BlockedBy = false, false, nil
	g.Restore.Push(restore.Func(func() {
		node.Blocked, node.DBlocked, node.BlockedBy = prevBlocked, prevDBlocked, prevBy
	}))
	if reschedule != nil {
		reschedule(node)
	}

	var up *graph.Arc
	if node.Parent != nil {
		up = node.Parent.Inverse
	}
	for _, a := range node.Out {
		if a == up {
			continue
		}
		if a.To.Blocked {
			e.unblockNode(g, a.To, reschedule)
		}
	}
}
