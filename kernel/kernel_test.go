package kernel_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/apd/v3"

	"github.com/dtsarkov/shiq/internal/datatype"
	"github.com/dtsarkov/shiq/kernel"
)

func dec(t *testing.T, s string) apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return *d
}

func openKB(t *testing.T) *kernel.Kernel {
	t.Helper()
	k, err := kernel.NewKB(kernel.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(k.Release)
	return k
}

func TestNewKBRejectsSecondOpen(t *testing.T) {
	k := openKB(t)
	if _, err := kernel.NewKB(kernel.DefaultConfig()); err == nil {
		t.Fatalf("expected NewKB to fail while %v is still open", k.ID)
	}
}

func TestReleaseFreesSlotForAnother(t *testing.T) {
	k := openKB(t)
	k.Release()
	k2, err := kernel.NewKB(kernel.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error reopening after Release: %v", err)
	}
	k2.Release()
}

func TestQueryBeforePreprocessFails(t *testing.T) {
	k := openKB(t)
	if _, err := k.IsConsistent(context.Background()); err == nil {
		t.Fatalf("expected IsConsistent to fail before Preprocess")
	}
}

// TestCyclicPrimitiveConceptIsSatisfiable is §8 scenario 1: A ⊑ ∃R.A, a
// primitive concept whose only definition refers to itself through an
// existential, is satisfiable (the tableau must recognise SH-style subset
// blocking rather than looping forever building R-successors).
func TestCyclicPrimitiveConceptIsSatisfiable(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareRole("R")
	k.DeclareConcept("A", true, kernel.Exists("R", kernel.ConceptName("A")))
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsSatisfiable(ctx, kernel.ConceptName("A"))
	if err != nil {
		t.Fatalf("IsSatisfiable: %v", err)
	}
	if ans != kernel.AnswerYes {
		t.Fatalf("IsSatisfiable(A) = %v, want YES", ans)
	}
}

// TestClashingForallAndExistsIsUnsatisfiable is §8 scenario 2: ∃R.A ⊓
// ∀R.¬A must clash however R's filler is chosen, so the concept is
// unsatisfiable.
func TestClashingForallAndExistsIsUnsatisfiable(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareRole("R")
	k.DeclareConcept("A", true, nil)
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	c := kernel.And(
		kernel.Exists("R", kernel.ConceptName("A")),
		kernel.Forall("R", kernel.Not(kernel.ConceptName("A"))),
	)
	ans, err := k.IsSatisfiable(ctx, c)
	if err != nil {
		t.Fatalf("IsSatisfiable: %v", err)
	}
	if ans != kernel.AnswerNo {
		t.Fatalf("IsSatisfiable(∃R.A ⊓ ∀R.¬A) = %v, want NO", ans)
	}
}

// TestQualifiedNumberRestrictionForcesMerge is §8 scenario 3: (≤1 R.A) ⊓
// ∃R.(A⊓B) ⊓ ∃R.(A⊓C) forces the two A-fillers to merge; the result is
// satisfiable only once B and C's facts land on the same node without a
// clash.
func TestQualifiedNumberRestrictionForcesMerge(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareRole("R")
	k.DeclareConcept("A", true, nil)
	k.DeclareConcept("B", true, nil)
	k.DeclareConcept("C", true, nil)
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	a := kernel.ConceptName("A")
	c := kernel.AndAll(
		kernel.AtMost(1, "R", a),
		kernel.Exists("R", kernel.And(a, kernel.ConceptName("B"))),
		kernel.Exists("R", kernel.And(a, kernel.ConceptName("C"))),
	)
	ans, err := k.IsSatisfiable(ctx, c)
	if err != nil {
		t.Fatalf("IsSatisfiable: %v", err)
	}
	if ans != kernel.AnswerYes {
		t.Fatalf("IsSatisfiable(merge case) = %v, want YES", ans)
	}
}

// TestNominalClashIsUnsatisfiable is §8 scenario 4: an individual asserted
// to be both A and ¬A is an immediate ABox clash.
func TestNominalClashIsUnsatisfiable(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareConcept("A", true, nil)
	k.DeclareIndividual("i")
	k.AssertConcept("i", kernel.ConceptName("A"))
	k.AssertConcept("i", kernel.Not(kernel.ConceptName("A")))
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsConsistent(ctx)
	if err != nil {
		t.Fatalf("IsConsistent: %v", err)
	}
	if ans != kernel.AnswerNo {
		t.Fatalf("IsConsistent = %v, want NO", ans)
	}
}

// TestTransitiveRolePropagatesForallToInstance is §8 scenario 5: R
// transitive, a-R->b-R->c, a:∀R.A, c:¬A — the ∀ must propagate across
// both transitive hops and clash on c.
func TestTransitiveRolePropagatesForallToInstance(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareRole("R")
	k.SetTransitive("R")
	k.DeclareConcept("A", true, nil)
	k.DeclareIndividual("a")
	k.DeclareIndividual("b")
	k.DeclareIndividual("c")
	k.AssertConcept("a", kernel.Forall("R", kernel.ConceptName("A")))
	k.AssertConcept("c", kernel.Not(kernel.ConceptName("A")))
	k.AssertRole("a", "R", "b")
	k.AssertRole("b", "R", "c")
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsConsistent(ctx)
	if err != nil {
		t.Fatalf("IsConsistent: %v", err)
	}
	if ans != kernel.AnswerNo {
		t.Fatalf("IsConsistent = %v, want NO (forall must propagate through the transitive chain)", ans)
	}
}

// TestIrreflexiveRoleClashesOnSelfLoop is §8 scenario 6: R irreflexive, a
// asserted to stand in R to itself, is inconsistent.
func TestIrreflexiveRoleClashesOnSelfLoop(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareRole("R")
	k.SetIrreflexive("R")
	k.DeclareIndividual("a")
	k.AssertRole("a", "R", "a")
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsConsistent(ctx)
	if err != nil {
		t.Fatalf("IsConsistent: %v", err)
	}
	if ans != kernel.AnswerNo {
		t.Fatalf("IsConsistent = %v, want NO (R is irreflexive)", ans)
	}
}

func TestInconsistentKBMakesEveryQueryTriviallyYes(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareConcept("A", true, nil)
	k.DeclareIndividual("i")
	k.AssertConcept("i", kernel.ConceptName("A"))
	k.AssertConcept("i", kernel.Not(kernel.ConceptName("A")))
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsSubsumed(ctx, kernel.ConceptName("A"), kernel.Bottom())
	if err != nil {
		t.Fatalf("IsSubsumed: %v", err)
	}
	if ans != kernel.AnswerYes {
		t.Fatalf("IsSubsumed under an inconsistent KB = %v, want YES", ans)
	}
}

func TestSubsumptionAndEquivalence(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareConcept("A", true, nil)
	k.DeclareConcept("B", false, kernel.ConceptName("A"))
	k.DeclareConcept("C", false, kernel.ConceptName("A"))
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if ans, err := k.IsSubsumed(ctx, kernel.ConceptName("B"), kernel.ConceptName("A")); err != nil || ans != kernel.AnswerYes {
		t.Fatalf("IsSubsumed(B,A) = %v, %v; want YES, nil", ans, err)
	}
	if ans, err := k.IsEquivalent(ctx, kernel.ConceptName("B"), kernel.ConceptName("C")); err != nil || ans != kernel.AnswerYes {
		t.Fatalf("IsEquivalent(B,C) = %v, %v; want YES, nil", ans, err)
	}
	if ans, err := k.IsDisjoint(ctx, kernel.ConceptName("A"), kernel.Not(kernel.ConceptName("A"))); err != nil || ans != kernel.AnswerYes {
		t.Fatalf("IsDisjoint(A,¬A) = %v, %v; want YES, nil", ans, err)
	}
}

func TestIsRelatedEntailsAssertedRole(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareRole("R")
	k.DeclareIndividual("a")
	k.DeclareIndividual("b")
	k.AssertRole("a", "R", "b")
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsRelated(ctx, "a", "R", "b")
	if err != nil {
		t.Fatalf("IsRelated: %v", err)
	}
	if ans != kernel.AnswerYes {
		t.Fatalf("IsRelated(a,R,b) = %v, want YES", ans)
	}
}

func TestRetractRemovesAxiomEffect(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareConcept("A", true, nil)
	k.DeclareIndividual("i")
	id := k.AssertConcept("i", kernel.ConceptName("A"))
	k.AssertConcept("i", kernel.Not(kernel.ConceptName("A")))
	if err := k.Retract(id); err != nil {
		t.Fatalf("Retract: %v", err)
	}
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsConsistent(ctx)
	if err != nil {
		t.Fatalf("IsConsistent: %v", err)
	}
	if ans != kernel.AnswerYes {
		t.Fatalf("IsConsistent after retracting the clashing assertion = %v, want YES", ans)
	}
}

// TestForallAppliesToSuccessorCreatedAfterIt guards against a ∀ that fired
// before its R-successor existed never reaching it: ∃R.B is scheduled
// after ∀R.E (priority order, §4.3 step 4), so the successor ∃R.B creates
// must still pick up E from x's already-processed ∀R.E once E is defined
// as ¬B.
func TestForallAppliesToSuccessorCreatedAfterIt(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareRole("R")
	k.DeclareConcept("B", true, nil)
	k.DeclareConcept("E", false, kernel.Not(kernel.ConceptName("B")))
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	c := kernel.AndAll(
		kernel.Exists("R", kernel.ConceptName("B")),
		kernel.Forall("R", kernel.ConceptName("E")),
	)
	ans, err := k.IsSatisfiable(ctx, c)
	if err != nil {
		t.Fatalf("IsSatisfiable: %v", err)
	}
	if ans != kernel.AnswerNo {
		t.Fatalf("IsSatisfiable(∃R.B ⊓ ∀R.E, E≡¬B) = %v, want NO", ans)
	}
}

// TestForallPropagatesAcrossInverseRole is the "I" in SHIQ: b:∀inv(R).C
// must constrain a across the very a-R->b edge that created b, not just
// b's own R-successors.
func TestForallPropagatesAcrossInverseRole(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareRole("R")
	k.DeclareConcept("C", true, nil)
	k.DeclareIndividual("a")
	k.DeclareIndividual("b")
	k.AssertRole("a", "R", "b")
	k.AssertConcept("b", kernel.Forall("inv(R)", kernel.ConceptName("C")))
	k.AssertConcept("a", kernel.Not(kernel.ConceptName("C")))
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsConsistent(ctx)
	if err != nil {
		t.Fatalf("IsConsistent: %v", err)
	}
	if ans != kernel.AnswerNo {
		t.Fatalf("IsConsistent = %v, want NO (b's ∀Rinv.C must reach a across a-R->b)", ans)
	}
}

// TestContradictoryDataFacetsAreInconsistent is the datatype oracle (C8)
// wired end to end: a node asserted both >=5 and <=3 on the same data-role
// filler must clash, the way §8's other scenarios clash in the object
// domain.
func TestContradictoryDataFacetsAreInconsistent(t *testing.T) {
	k := openKB(t)
	ctx := context.Background()
	k.DeclareIndividual("i")
	k.AssertConcept("i", kernel.DataExpr(datatype.GreaterEqual, dec(t, "5"), nil))
	k.AssertConcept("i", kernel.DataExpr(datatype.LessEqual, dec(t, "3"), nil))
	if err := k.Preprocess(ctx); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	ans, err := k.IsConsistent(ctx)
	if err != nil {
		t.Fatalf("IsConsistent: %v", err)
	}
	if ans != kernel.AnswerNo {
		t.Fatalf("IsConsistent = %v, want NO (>=5 and <=3 on the same filler is inconsistent)", ans)
	}
}
