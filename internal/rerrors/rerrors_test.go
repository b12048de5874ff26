package rerrors

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewfAttributesAxiom(t *testing.T) {
	e := Newf(7, "concept %q is unsatisfiable", "A")
	if e.AxiomID() != 7 {
		t.Fatalf("AxiomID() = %d, want 7", e.AxiomID())
	}
	if got, want := e.Error(), `concept "A" is unsatisfiable`; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestWrapJoinsMessages(t *testing.T) {
	inner := Newf(3, "role R is not simple")
	outer := Wrapf(inner, 7, "cannot build (<= 2 R C)")
	if got, want := outer.Error(), "cannot build (<= 2 R C): role R is not simple"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if outer.AxiomID() != 7 {
		t.Fatalf("AxiomID() = %d, want 7", outer.AxiomID())
	}
}

func TestAppendFlattensLists(t *testing.T) {
	a := Newf(1, "first")
	b := Newf(2, "second")
	c := Newf(3, "third")

	got := Append(Append(a, b), c)
	l, ok := got.(list)
	if !ok || len(l) != 3 {
		t.Fatalf("Append chain should flatten to a 3-element list, got %#v", got)
	}
}

func TestSanitizeCollapsesSingleton(t *testing.T) {
	a := Newf(1, "only one")
	got := Sanitize(Append(nil, a))
	if _, ok := got.(list); ok {
		t.Fatalf("Sanitize should collapse a singleton list to a plain Error")
	}
	if got.AxiomID() != 1 {
		t.Fatalf("AxiomID() = %d, want 1", got.AxiomID())
	}
}

func TestSanitizeSortsByAxiomAndDedupes(t *testing.T) {
	var l list
	l.Add(Newf(5, "dup"))
	l.Add(Newf(1, "first"))
	l.Add(Newf(5, "dup"))

	got := Sanitize(l.Err().(Error))
	sorted, ok := got.(list)
	if !ok || len(sorted) != 2 {
		t.Fatalf("expected 2 deduplicated errors, got %#v", got)
	}
	if sorted[0].AxiomID() != 1 || sorted[1].AxiomID() != 5 {
		t.Fatalf("expected sort order [1, 5], got [%d, %d]", sorted[0].AxiomID(), sorted[1].AxiomID())
	}
}

func TestPromoteLeavesErrorUnchanged(t *testing.T) {
	e := Newf(4, "already typed")
	if Promote(e, "unused") != Error(e) {
		t.Fatalf("Promote should return an existing Error unchanged")
	}
}

func TestPromoteWrapsPlainError(t *testing.T) {
	got := Promote(New("boom"), "context")
	if got.AxiomID() != NoAxiom {
		t.Fatalf("a promoted plain error should carry NoAxiom, got %d", got.AxiomID())
	}
}

func TestPrintIncludesInputAxioms(t *testing.T) {
	inner := Newf(3, "role R is not simple")
	outer := Wrapf(inner, 7, "cannot build (<= 2 R C)")

	var buf bytes.Buffer
	Print(&buf, outer, nil)
	out := buf.String()
	if !strings.Contains(out, "axiom 7:") {
		t.Fatalf("expected output to mention axiom 7, got %q", out)
	}
	if !strings.Contains(out, "axioms: 3") {
		t.Fatalf("expected output to list input axiom 3, got %q", out)
	}
}
