package roles_test

import (
	"testing"

	"github.com/dtsarkov/shiq/internal/roles"
)

func TestInverseIsInvolutive(t *testing.T) {
	s := roles.NewSystem()
	r := s.Declare("R")
	if r.Inverse().Inverse() != r {
		t.Fatalf("inverse of inverse should be r itself")
	}
}

func TestSubRolePropagatesToInverse(t *testing.T) {
	s := roles.NewSystem()
	r := s.Declare("R")
	sub := s.Declare("S")
	s.AddSubRole(sub, r)
	if err := s.Compile(); err != nil {
		t.Fatal(err)
	}
	if !sub.SubsumedBy(r) {
		t.Fatalf("S should be a sub-role of R")
	}
	if !sub.Inverse().SubsumedBy(r.Inverse()) {
		t.Fatalf("inv(S) should be a sub-role of inv(R)")
	}
}

func TestSimpleRoleHasSingleHopAutomaton(t *testing.T) {
	s := roles.NewSystem()
	r := s.Declare("R")
	if err := s.Compile(); err != nil {
		t.Fatal(err)
	}
	a := r.Automaton()
	to, final, ok := a.Applicable(0, r)
	if !ok || !final || to != 1 {
		t.Fatalf("Applicable(0, R) = (%d, %v, %v), want (1, true, true)", to, final, ok)
	}
	if !a.Final(1) {
		t.Fatalf("state 1 should be final for a simple role")
	}
	if len(a.Transitions(1)) != 0 {
		t.Fatalf("terminal state should have no outgoing transitions")
	}
}

func TestTransitiveRoleLoops(t *testing.T) {
	s := roles.NewSystem()
	r := s.Declare("R")
	s.SetTransitive(r)
	if err := s.Compile(); err != nil {
		t.Fatal(err)
	}
	if r.Simple() {
		t.Fatalf("a transitive role must not be simple")
	}
	a := r.Automaton()
	to, final, ok := a.Applicable(0, r)
	if !ok || !final || to != 0 {
		t.Fatalf("Applicable(0, R) = (%d, %v, %v), want (0, true, true) for a transitive self-loop", to, final, ok)
	}
}

func TestTransitiveSubRoleMakesSuperNonSimple(t *testing.T) {
	s := roles.NewSystem()
	r := s.Declare("R")
	sub := s.Declare("S")
	s.SetTransitive(sub)
	s.AddSubRole(sub, r)
	if err := s.Compile(); err != nil {
		t.Fatal(err)
	}
	if r.Simple() {
		t.Fatalf("R has a transitive sub-role, so it must not be simple")
	}
}
