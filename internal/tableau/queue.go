package tableau

import (
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/graph"
	"github.com/dtsarkov/shiq/internal/restore"
)

// priority buckets rule scheduling per §5: "AND < FORALL < singleton < ≥ <
// ≤ < OR, then by node id ascending, then by label insertion order". The
// spec's six named buckets don't mention named-concept unfolding, IRR, or
// the ∃ generating rule explicitly; they are placed alongside the bucket
// they behave most like: +CONCEPT/-CONCEPT and IRR are deterministic,
// non-generating rewrites like +AND, so they share its bucket; ∃ (read as
// -FORALL) generates a successor exactly like ≥ does, so it shares that
// bucket rather than FORALL's.
const (
	prioAnd = iota
	prioForall
	prioSingleton
	prioGE // -LE (>= m) and -FORALL (exists), both successor-generating
	prioLE // +LE (<= n), the merge rule
	prioOr // -AND, the disjunction rule
	prioCount
)

func priority(bp dag.BP, v *dag.Vertex) int {
	switch v.Tag {
	case dag.TagAnd:
		if bp.IsPositive() {
			return prioAnd
		}
		return prioOr
	case dag.TagForall:
		if bp.IsPositive() {
			return prioForall
		}
		return prioGE
	case dag.TagLE:
		if bp.IsPositive() {
			return prioLE
		}
		return prioGE
	case dag.TagNSingleton, dag.TagPSingleton:
		return prioSingleton
	default:
		return prioAnd
	}
}

// entry is one scheduled rule application.
type entry struct {
	node *graph.Node
	bp   dag.BP
	seq  int // insertion order, the final scheduling tie-break
}

// todoQueue is the tableau's worklist. Every push and pop registers a
// restore hook on the shared graph.Graph.Restore stack so that a backjump
// (RollbackTo) leaves the queue in exactly the state it had at the target
// mark — the same discipline every other piece of mutable tableau state
// follows (§5: "No mutation is allowed without a matching restorer when a
// branch is open"). Entries are kept in a map keyed by a monotonic
// sequence number rather than a plain slice so that popping an arbitrary
// (non-tail) entry doesn't require shifting later entries' identities,
// which would make the corresponding restore closures reference stale
// indices.
type todoQueue struct {
	g *graph.Graph

	pending map[int]entry
	nextSeq int
}

func newTodoQueue(g *graph.Graph) *todoQueue {
	return &todoQueue{g: g, pending: map[int]entry{}}
}

// push schedules (node, bp), reversibly.
func (q *todoQueue) push(node *graph.Node, bp dag.BP) {
	seq := q.nextSeq
	q.nextSeq++
	q.pending[seq] = entry{node: node, bp: bp, seq: seq}
	q.g.Restore.Push(restore.Func(func() {
		delete(q.pending, seq)
	}))
}

// pop removes and returns the highest-priority pending entry: lowest
// priority bucket first, then lowest node id, then lowest sequence number
// (insertion order), per §5's full scheduling tie-break chain. Reversible:
// rolling back past a pop re-inserts the exact entry that was removed.
func (q *todoQueue) pop(store *dag.Store) (entry, bool) {
	var best entry
	bestSeq := -1
	bestPrio := prioCount
	for seq, e := range q.pending {
		v := store.At(e.bp)
		p := priority(e.bp, v)
		switch {
		case bestSeq < 0,
			p < bestPrio,
			p == bestPrio && e.node.ID < best.node.ID,
			p == bestPrio && e.node.ID == best.node.ID && seq < bestSeq:
			best, bestSeq, bestPrio = e, seq, p
		}
	}
	if bestSeq < 0 {
		return entry{}, false
	}
	delete(q.pending, bestSeq)
	q.g.Restore.Push(restore.Func(func() {
		q.pending[bestSeq] = best
	}))
	return best, true
}

// empty reports whether the queue currently has no pending entries.
func (q *todoQueue) empty() bool { return len(q.pending) == 0 }
