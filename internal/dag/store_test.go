package dag_test

import (
	"testing"

	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/roles"
)

func newStore(t *testing.T) (*dag.Store, *roles.System) {
	t.Helper()
	rs := roles.NewSystem()
	return dag.NewStore(rs), rs
}

func must(t *testing.T, bp dag.BP, err error) dag.BP {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return bp
}

func TestTopAndBottomAreInverses(t *testing.T) {
	if dag.Inverse(dag.TOP) != dag.BOTTOM {
		t.Fatalf("Inverse(TOP) = %d, want BOTTOM", dag.Inverse(dag.TOP))
	}
	if dag.Inverse(dag.BOTTOM) != dag.TOP {
		t.Fatalf("Inverse(BOTTOM) = %d, want TOP", dag.Inverse(dag.BOTTOM))
	}
}

func TestStructurallyEqualAndsShareASlot(t *testing.T) {
	s, _ := newStore(t)
	s.DeclareConcept("C", true, false, nil)
	s.DeclareConcept("D", true, false, nil)
	a := must(t, s.AddTree(dag.And(dag.Name("C"), dag.Name("D"))))
	b := must(t, s.AddTree(dag.And(dag.Name("C"), dag.Name("D"))))
	if a != b {
		t.Fatalf("two structurally identical ANDs should canonicalize to the same slot: %d != %d", a, b)
	}
}

func TestAndOfConceptAndItsNegationIsBottom(t *testing.T) {
	s, _ := newStore(t)
	s.DeclareConcept("C", true, false, nil)
	bp := must(t, s.AddTree(dag.And(dag.Name("C"), dag.Not(dag.Name("C")))))
	if bp != dag.BOTTOM {
		t.Fatalf("C ⊓ ¬C should lower to BOTTOM, got %d", bp)
	}
}

func TestAndOfConceptWithItselfSimplifiesToTheConcept(t *testing.T) {
	s, _ := newStore(t)
	s.DeclareConcept("C", true, false, nil)
	cbp := must(t, s.AddTree(dag.Name("C")))
	andbp := must(t, s.AddTree(dag.And(dag.Name("C"), dag.Name("C"))))
	if andbp != cbp {
		t.Fatalf("C ⊓ C should simplify to C's own slot, got %d want %d", andbp, cbp)
	}
}

func TestNestedAndFlattens(t *testing.T) {
	s, _ := newStore(t)
	s.DeclareConcept("A", true, false, nil)
	s.DeclareConcept("B", true, false, nil)
	s.DeclareConcept("C", true, false, nil)
	nested := must(t, s.AddTree(dag.And(dag.Name("A"), dag.And(dag.Name("B"), dag.Name("C")))))
	flat := must(t, s.AddTree(dag.AndAll(dag.Name("A"), dag.Name("B"), dag.Name("C"))))
	if nested != flat {
		t.Fatalf("nested and flat ANDs of the same conjuncts should canonicalize identically: %d != %d", nested, flat)
	}
}

func TestForallLowersToStateZero(t *testing.T) {
	s, rs := newStore(t)
	rs.Declare("R")
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	s.DeclareConcept("C", true, false, nil)
	bp := must(t, s.AddTree(dag.Forall("R", dag.Name("C"))))
	v := s.At(bp)
	if v.Tag != dag.TagForall {
		t.Fatalf("got tag %v, want FORALL", v.Tag)
	}
	if v.State != 0 {
		t.Fatalf("ground forall2dag should land on automaton state 0, got %d", v.State)
	}
}

func TestExistsIsDoubleNegatedForall(t *testing.T) {
	s, rs := newStore(t)
	rs.Declare("R")
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	s.DeclareConcept("C", true, false, nil)
	bp := must(t, s.AddTree(dag.Exists("R", dag.Name("C"))))
	if bp.IsPositive() {
		t.Fatalf("∃R.C should lower to a negative bipolar pointer over a FORALL vertex")
	}
	v := s.At(bp)
	if v.Tag != dag.TagForall {
		t.Fatalf("got tag %v, want FORALL", v.Tag)
	}
}

func TestAtLeastZeroIsTop(t *testing.T) {
	s, rs := newStore(t)
	rs.Declare("R")
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	s.DeclareConcept("C", true, false, nil)
	bp := must(t, s.AddTree(dag.AtLeast(0, "R", dag.Name("C"))))
	if bp != dag.TOP {
		t.Fatalf("(≥ 0 R.C) should be TOP, got %d", bp)
	}
}

func TestAtMostPreMaterializesLowerBounds(t *testing.T) {
	s, rs := newStore(t)
	r := rs.Declare("R")
	_ = r
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	s.DeclareConcept("C", true, false, nil)
	before := s.Len()
	must(t, s.AddTree(dag.AtMost(3, "R", dag.Name("C"))))
	// LE(3,...) plus pre-materialized LE(2,...) and LE(1,...): 3 new slots
	// (plus whatever the filler concept itself needed).
	if s.Len()-before < 3 {
		t.Fatalf("expected at least 3 new vertices for LE(3,...) plus its pre-materialized sub-bounds, got %d", s.Len()-before)
	}
}

func TestUndeclaredConceptIsAnError(t *testing.T) {
	s, _ := newStore(t)
	if _, err := s.AddTree(dag.Name("Ghost")); err == nil {
		t.Fatalf("expected an error resolving an undeclared concept name")
	}
}

func TestUndeclaredRoleIsAnError(t *testing.T) {
	s, _ := newStore(t)
	s.DeclareConcept("C", true, false, nil)
	if _, err := s.AddTree(dag.Forall("Ghost", dag.Name("C"))); err == nil {
		t.Fatalf("expected an error resolving an undeclared role")
	}
}
