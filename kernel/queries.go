package kernel

import (
	"context"

	"github.com/dtsarkov/shiq/internal/blocking"
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/depset"
	"github.com/dtsarkov/shiq/internal/graph"
	"github.com/dtsarkov/shiq/internal/rerrors"
	"github.com/dtsarkov/shiq/internal/tableau"
)

// Answer is the three-valued result of a Kernel query (§6). Unknown is
// returned only together with a non-nil error; a query that completes
// answers Yes or No (SHIQ(D) concept satisfiability is decidable). The
// three values match the Description Logic literature's usual query
// contract.
type Answer int

const (
	AnswerNo Answer = iota
	AnswerYes
	AnswerUnknown
)

func (a Answer) String() string {
	switch a {
	case AnswerYes:
		return "YES"
	case AnswerNo:
		return "NO"
	default:
		return "UNKNOWN"
	}
}

func (k *Kernel) ensurePreprocessed() error {
	if !k.preprocessed || k.changed {
		return Newf(KindUnsupported, rerrors.NoAxiom, "kernel: query issued before a successful Preprocess")
	}
	return nil
}

// newRun builds a fresh tableau engine and completion graph over k's
// compiled store (§5: "a fresh Engine should be used per query").
func (k *Kernel) newRun() *tableau.Engine {
	g := graph.New()
	blk := blocking.New(k.store, k.regime, k.anywhere)
	return tableau.New(k.store, g, blk)
}

// satisfiableTree runs the tableau over a single fresh root asserted with
// bp, with no inconsistency short-circuiting: every composed query
// (subsumption, disjointness, equivalence, instance-checking) is built on
// top of this primitive directly, rather than through IsSatisfiable, since
// IsSatisfiable's own trivial-YES-if-inconsistent behaviour would invert
// their answers (§7).
func (k *Kernel) satisfiableTree(ctx context.Context, bp dag.BP) (bool, error) {
	eng := k.newRun()
	root := eng.Graph.NewNode(false)
	sat, err := eng.Run(ctx, root, bp)
	if err != nil {
		if err == tableau.ErrTimeout {
			return false, Newf(KindTimeout, rerrors.NoAxiom, "query timed out")
		}
		return false, Newf(KindInternal, rerrors.NoAxiom, "%v", err)
	}
	return sat, nil
}

// abSatisfiable runs the tableau over the whole ABox (every declared
// individual, its asserted concepts, and every asserted role edge) with an
// extra concept bp additionally asserted on the node for extra (ignored if
// extra == dag.Invalid). Used by checkConsistency and every instance/
// role-entailment query, which all reduce to "is the ABox, plus one more
// fact, satisfiable".
func (k *Kernel) abSatisfiable(ctx context.Context, extraIndividual string, extra dag.BP) (bool, error) {
	eng := k.newRun()
	nodes := map[string]*graph.Node{}
	for _, name := range k.individualOrder {
		n := eng.NewIndividual(k.individualBP[name])
		n.Init = dag.TOP
		eng.Seed(n, k.store.GCI(), depset.Empty)
		nodes[name] = n
	}
	for _, f := range k.conceptFacts {
		eng.Seed(nodes[f.individual], f.concept, depset.Empty)
	}
	for _, r := range k.roleAssertions {
		role := k.roleSystem.Lookup(r.role)
		eng.Graph.AddArc(nodes[r.from], nodes[r.to], role, depset.Empty)
	}
	if extra != dag.Invalid && extraIndividual != "" {
		eng.Seed(nodes[extraIndividual], extra, depset.Empty)
	}
	sat, err := eng.RunLoop(ctx)
	if err != nil {
		if err == tableau.ErrTimeout {
			return false, Newf(KindTimeout, rerrors.NoAxiom, "query timed out")
		}
		return false, Newf(KindInternal, rerrors.NoAxiom, "%v", err)
	}
	return sat, nil
}

// checkConsistency runs IsConsistent's actual tableau work and caches the
// verdict; callers needing just the cached bool should use
// trivialIfInconsistent/IsConsistent instead of calling this directly.
func (k *Kernel) checkConsistency(ctx context.Context) (bool, error) {
	if k.consistent != nil {
		return *k.consistent, nil
	}
	ok, err := k.abSatisfiable(ctx, "", dag.Invalid)
	if err != nil {
		return false, err
	}
	k.consistent = &ok
	return ok, nil
}

// trivialIfInconsistent reports (true, nil) when the ABox is inconsistent
// — the caller should return AnswerYes immediately without running its
// own tableau (§7 "all subsequent queries return YES trivially") — and
// (false, nil) when it is consistent.
func (k *Kernel) trivialIfInconsistent(ctx context.Context) (applies bool, err error) {
	ok, err := k.checkConsistency(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func answerOf(yes bool) Answer {
	if yes {
		return AnswerYes
	}
	return AnswerNo
}

// IsConsistent reports whether the knowledge base's ABox has a model
// (§6). Unlike every other query, it is never short-circuited by its own
// result.
func (k *Kernel) IsConsistent(ctx context.Context) (Answer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.ensurePreprocessed(); err != nil {
		return AnswerUnknown, err
	}
	ok, err := k.checkConsistency(ctx)
	if err != nil {
		return AnswerUnknown, err
	}
	return answerOf(ok), nil
}

// IsSatisfiable reports whether concept is satisfiable with respect to the
// KB's TBox (§6): C is satisfiable iff C ⊓ T_G is satisfiable, which
// satisfiableTree already asserts via Engine.Run seeding T_G on the root.
func (k *Kernel) IsSatisfiable(ctx context.Context, concept *dag.Tree) (Answer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.ensurePreprocessed(); err != nil {
		return AnswerUnknown, err
	}
	if trivial, err := k.trivialIfInconsistent(ctx); err != nil {
		return AnswerUnknown, err
	} else if trivial {
		return AnswerYes, nil
	}
	bp, err := k.store.AddTree(concept)
	if err != nil {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "%v", err)
	}
	ok, err := k.satisfiableTree(ctx, bp)
	if err != nil {
		return AnswerUnknown, err
	}
	return answerOf(ok), nil
}

// IsSubsumed reports whether sub ⊑ sup follows from the TBox: sub ⊓ ¬sup
// must be unsatisfiable (§6).
func (k *Kernel) IsSubsumed(ctx context.Context, sub, sup *dag.Tree) (Answer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.ensurePreprocessed(); err != nil {
		return AnswerUnknown, err
	}
	if trivial, err := k.trivialIfInconsistent(ctx); err != nil {
		return AnswerUnknown, err
	} else if trivial {
		return AnswerYes, nil
	}
	bp, err := k.store.AddTree(dag.And(sub, dag.Not(sup)))
	if err != nil {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "%v", err)
	}
	sat, err := k.satisfiableTree(ctx, bp)
	if err != nil {
		return AnswerUnknown, err
	}
	return answerOf(!sat), nil
}

// IsDisjoint reports whether a ⊓ b is unsatisfiable (§6).
func (k *Kernel) IsDisjoint(ctx context.Context, a, b *dag.Tree) (Answer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.ensurePreprocessed(); err != nil {
		return AnswerUnknown, err
	}
	if trivial, err := k.trivialIfInconsistent(ctx); err != nil {
		return AnswerUnknown, err
	} else if trivial {
		return AnswerYes, nil
	}
	bp, err := k.store.AddTree(dag.And(a, b))
	if err != nil {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "%v", err)
	}
	sat, err := k.satisfiableTree(ctx, bp)
	if err != nil {
		return AnswerUnknown, err
	}
	return answerOf(!sat), nil
}

// IsEquivalent reports whether a ≡ b follows from the TBox: both
// subsumption directions must hold (§6).
func (k *Kernel) IsEquivalent(ctx context.Context, a, b *dag.Tree) (Answer, error) {
	// IsSubsumed already applies its own inconsistency short-circuit and
	// locking; calling it twice keeps this method itself lock-free and
	// reuses the exact same reduction rather than duplicating it.
	ab, err := k.IsSubsumed(ctx, a, b)
	if err != nil {
		return AnswerUnknown, err
	}
	if ab != AnswerYes {
		return AnswerNo, nil
	}
	ba, err := k.IsSubsumed(ctx, b, a)
	if err != nil {
		return AnswerUnknown, err
	}
	return ba, nil
}

// IsInstance reports whether individual necessarily belongs to concept
// given the ABox: ABox ∧ individual:¬concept must be unsatisfiable (§6).
func (k *Kernel) IsInstance(ctx context.Context, individual string, concept *dag.Tree) (Answer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.ensurePreprocessed(); err != nil {
		return AnswerUnknown, err
	}
	if _, ok := k.individualBP[individual]; !ok {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "undeclared individual %q", individual)
	}
	if trivial, err := k.trivialIfInconsistent(ctx); err != nil {
		return AnswerUnknown, err
	} else if trivial {
		return AnswerYes, nil
	}
	bp, err := k.store.AddTree(dag.Not(concept))
	if err != nil {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "%v", err)
	}
	sat, err := k.abSatisfiable(ctx, individual, bp)
	if err != nil {
		return AnswerUnknown, err
	}
	return answerOf(!sat), nil
}

// IsRelated reports whether the role assertion from-role->to is entailed
// by the ABox even if never explicitly asserted: reduced to the
// unsatisfiability of ABox ∧ from:(≤0 role.{to}) (§6) — if some model
// of the ABox has no role-edge from from to to, that model satisfies the
// extra fact and the entailment does not hold; reusing AtMost/singleton-
// concept machinery this way needs no new tableau primitive.
func (k *Kernel) IsRelated(ctx context.Context, from, role, to string) (Answer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.ensurePreprocessed(); err != nil {
		return AnswerUnknown, err
	}
	if _, ok := k.individualBP[from]; !ok {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "undeclared individual %q", from)
	}
	if _, ok := k.individualBP[to]; !ok {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "undeclared individual %q", to)
	}
	if k.roleSystem.Lookup(role) == nil {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "undeclared role %q", role)
	}
	if trivial, err := k.trivialIfInconsistent(ctx); err != nil {
		return AnswerUnknown, err
	} else if trivial {
		return AnswerYes, nil
	}
	bp, err := k.store.AddTree(dag.AtMost(0, role, dag.Name(to)))
	if err != nil {
		return AnswerUnknown, Newf(KindUnsupported, rerrors.NoAxiom, "%v", err)
	}
	sat, err := k.abSatisfiable(ctx, from, bp)
	if err != nil {
		return AnswerUnknown, err
	}
	return answerOf(!sat), nil
}
