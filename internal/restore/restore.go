// Package restore implements the save/restore stack that undoes completion
// graph and DAG mutations back to an earlier branching level (§4.2 "State
// save/restore", §5 "Save/restore is strictly nested (LIFO)").
//
// Every mutator that touches shared state registers a Restorer before
// mutating, the same discipline as FaCT++'s TRestorer hierarchy
// (Kernel/dlCompletionTree.h: SaveState, UnBlock, CacheRestorer, ...) and
// its per-node SaveState snapshot-of-counters-only checkpoint. Rollback
// replays Restorers in LIFO order, which is what makes backjumping correct:
// popping to branch level L undoes every mutation recorded after save(L),
// in exactly the reverse order they happened.
package restore

// A Restorer undoes one mutation. Implementations should be small value
// types capturing just the prior state (a pointer plus the old value),
// matching FaCT++'s preference for inline restorer payloads over a heavier
// per-mutation allocation (§9, "Restorer objects").
type Restorer interface {
	Restore()
}

// Func adapts a plain function to a Restorer.
type Func func()

// Restore implements Restorer.
func (f Func) Restore() { f() }

// Mark is a checkpoint returned by Stack.Mark; it identifies a point in the
// restorer history to roll back to.
type Mark int

// Stack is the single source of truth for rollback (§5). It is not safe for
// concurrent use — the reasoner is single-threaded by design (§5).
type Stack struct {
	entries []Restorer
}

// New returns an empty Stack.
func New() *Stack {
	return &Stack{}
}

// Push registers r to be undone on a future RollbackTo that crosses the
// current mark. Every mutator must call Push before mutating, never after
// (§5: "No mutation is allowed without a matching restorer when a branch is
// open").
func (s *Stack) Push(r Restorer) {
	s.entries = append(s.entries, r)
}

// Mark returns a checkpoint for the stack's current depth. It does nothing
// but remember a length — the "snapshot of counters only" described in
// §4.2, since the stack itself is the thing rolled back, not the data it
// points at.
func (s *Stack) Mark() Mark {
	return Mark(len(s.entries))
}

// RollbackTo undoes every Restorer pushed since m, in LIFO order, and
// truncates the stack back to m. Rolling back to the current mark (or a
// mark with nothing pushed since) is a safe no-op.
func (s *Stack) RollbackTo(m Mark) {
	for i := len(s.entries) - 1; i >= int(m); i-- {
		s.entries[i].Restore()
		s.entries[i] = nil // drop the reference promptly
	}
	s.entries = s.entries[:m]
}

// Depth returns the number of Restorers currently pending, mostly useful
// for tests asserting that a code path did, or did not, register undo
// state.
func (s *Stack) Depth() int {
	return len(s.entries)
}
