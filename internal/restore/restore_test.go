package restore_test

import (
	"testing"

	"github.com/dtsarkov/shiq/internal/restore"
)

func TestRollbackIsLIFO(t *testing.T) {
	var order []int
	s := restore.New()
	s.Push(restore.Func(func() { order = append(order, 1) }))
	s.Push(restore.Func(func() { order = append(order, 2) }))
	s.Push(restore.Func(func() { order = append(order, 3) }))

	s.RollbackTo(0)

	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestRollbackToMarkOnlyUndoesLaterEntries(t *testing.T) {
	x := 0
	s := restore.New()
	s.Push(restore.Func(func() { x = -1 }))
	mark := s.Mark()
	s.Push(restore.Func(func() { x = -2 }))

	s.RollbackTo(mark)

	if x != -2 {
		t.Fatalf("x = %d, want -2 (only entries after the mark should roll back)", x)
	}
	if s.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", s.Depth())
	}
}

func TestRollbackToZeroUndoesEverything(t *testing.T) {
	calls := 0
	s := restore.New()
	for i := 0; i < 5; i++ {
		s.Push(restore.Func(func() { calls++ }))
	}
	s.RollbackTo(0)
	if calls != 5 {
		t.Fatalf("calls = %d, want 5", calls)
	}
	if s.Depth() != 0 {
		t.Fatalf("Depth() = %d, want 0", s.Depth())
	}
}

// TestBitIdenticalAfterRollback exercises the §8 invariant "After rollback
// to level L, the completion graph is bit-identical to its state at
// save(L)" on a minimal piece of mutable state guarded by restorers.
func TestBitIdenticalAfterRollback(t *testing.T) {
	type state struct {
		label []int
	}
	st := &state{label: []int{1, 2}}
	s := restore.New()

	mark := s.Mark()
	before := append([]int(nil), st.label...)

	appendWithUndo := func(v int) {
		s.Push(restore.Func(func() {
			st.label = st.label[:len(st.label)-1]
		}))
		st.label = append(st.label, v)
	}

	appendWithUndo(3)
	appendWithUndo(4)

	s.RollbackTo(mark)

	if len(st.label) != len(before) {
		t.Fatalf("label = %v, want %v", st.label, before)
	}
	for i := range before {
		if st.label[i] != before[i] {
			t.Fatalf("label = %v, want %v", st.label, before)
		}
	}
}
