package tableau

import (
	"github.com/dtsarkov/shiq/internal/depset"
	"github.com/dtsarkov/shiq/internal/restore"
)

// branchPoint is one open nondeterministic choice: the OR rule (−AND, one
// alternative per disjunct) and the merge rule (+LE, one alternative per
// candidate pair) are both modelled as "try alternative 0; on a clash whose
// dep-set mentions this branch's level, roll back and try the next
// alternative; when alternatives are exhausted, the branch itself
// disappears and the clash propagates to the level below" (§4.3
// "Backjumping").
type branchPoint struct {
	level depset.Level
	mark  restore.Mark

	// tryNext applies the next untried alternative (pushing whatever
	// restore hooks it needs) and reports whether one was available.
	tryNext func() bool
}

// beginBranch opens a branch with n alternatives, applying the first one.
// apply is called with the branch's own level and the alternative's index;
// it must perform exactly the mutations for that one alternative (further
// rollback to the branch's mark is handled by the engine). Returns false,
// opening nothing, if n is zero (a vacuous choice: this should not happen
// for a well-formed AND/LE vertex, but is handled so callers don't have to
// special-case it).
func (e *Engine) beginBranch(n int, apply func(level depset.Level, idx int)) bool {
	if n == 0 {
		return false
	}
	e.Graph.Level++
	level := e.Graph.Level

	idx := 0
	bp := &branchPoint{level: level}
	bp.tryNext = func() bool {
		if idx >= n {
			return false
		}
		bp.mark = e.Graph.Restore.Mark()
		apply(level, idx)
		idx++
		return true
	}
	if !bp.tryNext() {
		return false
	}
	e.branches = append(e.branches, bp)
	return true
}

// backjump handles a recorded clash: it walks down through open branches,
// rolling back to and retrying the branch whose level is the clash
// dep-set's maximum, per §4.3 "Backjumping": "restore all state down to
// maxL, then at that level try the next alternative of that branch ... If
// no alternatives remain at maxL, propagate the clash dep-set to maxL−1."
// Returns true once the KB is proven inconsistent (the clash reaches level
// 0 with no branch left to retry).
func (e *Engine) backjump() bool {
	d := e.clashDep
	for {
		maxL, ok := d.Max()
		if !ok {
			return true
		}
		bi := len(e.branches) - 1
		for bi >= 0 && e.branches[bi].level != maxL {
			bi--
		}
		if bi < 0 {
			// No branch recorded at this level: nothing to retry, drop the
			// level and keep unwinding the dep-set.
			d = d.Trim(maxL - 1)
			continue
		}
		// Branches nested inside bi are unreachable once bi rolls back or
		// retries; drop them first.
		e.branches = e.branches[:bi+1]
		bp := e.branches[bi]
		e.Graph.Restore.RollbackTo(bp.mark)
		if bp.tryNext() {
			e.clashed = false
			e.clashDep = depset.Empty
			return false
		}
		e.branches = e.branches[:bi]
		d = d.Trim(maxL - 1)
	}
}
