package kernel

import (
	"context"

	"github.com/dtsarkov/shiq/internal/blocking"
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/rerrors"
	"github.com/dtsarkov/shiq/internal/roles"
)

// Preprocess compiles every non-retracted axiom into a fresh role system
// and DAG, auto-detects the blocking regime (§9), and resets any cached
// query state. Everything is staged into locals and committed to k's
// fields only on complete success, matching §7's "preprocessing is
// all-or-nothing": a failed call leaves whatever was previously
// successfully preprocessed fully intact and queryable.
func (k *Kernel) Preprocess(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	rs := roles.NewSystemWithNames(k.cfg.TopObjectRole, k.cfg.BottomObjectRole, k.cfg.TopDataRole, k.cfg.BottomDataRole)

	for _, a := range k.axioms {
		if a.retracted {
			continue
		}
		switch a.kind {
		case axRoleDecl:
			rs.Declare(a.role)
		case axSubRole:
			sub := rs.Declare(a.role)
			super := rs.Declare(a.other)
			rs.AddSubRole(sub, super)
		case axTransitiveRole:
			rs.SetTransitive(rs.Declare(a.role))
		case axIrreflexiveRole:
			rs.Declare(a.role)
		case axRoleAssertion:
			rs.Declare(a.role)
		}
	}
	// A role mentioned only inside a concept expression (Forall/Exists/
	// AtMost/AtLeast/Irreflexive), never separately declared, is implicitly
	// declared here — mirroring the tolerance DeclareConcept already gives
	// forward-referenced concept names.
	scanRoleNames(k.axioms, rs)

	if err := rs.Compile(); err != nil {
		return Newf(KindUnsupported, rerrors.NoAxiom, "role hierarchy: %v", err)
	}

	store := dag.NewStore(rs)

	for _, a := range k.axioms {
		if a.retracted {
			continue
		}
		switch a.kind {
		case axConceptDecl:
			store.DeclareConcept(a.name, a.primitive, false, a.definition)
		case axIndividual:
			store.DeclareConcept(a.name, true, true, nil)
		}
	}

	var individualOrder []string
	seenIndividual := map[string]bool{}
	var roleFacts []roleAssertion
	var conceptAssertTrees []struct {
		id         AxiomID
		individual string
		tree       *dag.Tree
	}

	for _, a := range k.axioms {
		if a.retracted {
			continue
		}
		switch a.kind {
		case axGCI:
			store.AddGCIClause(dag.Or(dag.Not(a.sub), a.sup))
		case axIrreflexiveRole:
			store.AddGCIClause(dag.Irreflexive(a.role))
		case axIndividual:
			if !seenIndividual[a.name] {
				seenIndividual[a.name] = true
				individualOrder = append(individualOrder, a.name)
			}
		case axConceptAssertion:
			if store.Concept(a.individual) == nil {
				return Newf(KindUnsupported, int64(a.ID), "assertion on undeclared individual %q", a.individual)
			}
			conceptAssertTrees = append(conceptAssertTrees, struct {
				id         AxiomID
				individual string
				tree       *dag.Tree
			}{a.ID, a.individual, a.concept})
		case axRoleAssertion:
			roleFacts = append(roleFacts, roleAssertion{from: a.individual, role: a.role, to: a.to})
		}
	}

	if err := store.BuildDAG(); err != nil {
		return Newf(KindUnsupported, rerrors.NoAxiom, "%v", err)
	}

	individualBP := map[string]dag.BP{}
	for _, name := range individualOrder {
		individualBP[name] = store.Concept(name).PName
	}
	var conceptFacts []conceptAssertion
	for _, ca := range conceptAssertTrees {
		bp, err := store.AddTree(ca.tree)
		if err != nil {
			return Newf(KindUnsupported, int64(ca.id), "%v", err)
		}
		conceptFacts = append(conceptFacts, conceptAssertion{individual: ca.individual, concept: bp})
	}

	for _, from := range roleFacts {
		if _, ok := individualBP[from.from]; !ok {
			return Newf(KindUnsupported, rerrors.NoAxiom, "role assertion from undeclared individual %q", from.from)
		}
		if _, ok := individualBP[from.to]; !ok {
			return Newf(KindUnsupported, rerrors.NoAxiom, "role assertion to undeclared individual %q", from.to)
		}
	}

	regime, anywhere := detectRegime(k.axioms, rs)

	k.roleSystem = rs
	k.store = store
	k.regime = regime
	k.anywhere = anywhere
	k.individualBP = individualBP
	k.individualOrder = individualOrder
	k.roleAssertions = roleFacts
	k.conceptFacts = conceptFacts
	k.preprocessed = true
	k.changed = false
	k.consistent = nil
	return nil
}

// scanRoleNames walks every concept expression reachable from the axiom
// stream and declares any role name it finds that was never the subject of
// an explicit DeclareRole/AddSubRole/SetTransitive axiom.
func scanRoleNames(axioms []*Axiom, rs *roles.System) {
	declare := func(name string) {
		if name != "" && rs.Lookup(name) == nil {
			rs.Declare(name)
		}
	}
	var walk func(t *dag.Tree)
	walk = func(t *dag.Tree) {
		if t == nil {
			return
		}
		if t.Role != "" {
			declare(t.Role)
		}
		walk(t.Left)
		walk(t.Right)
		walk(t.Child)
	}
	for _, a := range axioms {
		if a.retracted {
			continue
		}
		walk(a.definition)
		walk(a.sub)
		walk(a.sup)
		walk(a.concept)
	}
}

// detectRegime applies §9's heuristic: RegimeSHIQ (and forced anywhere
// blocking) whenever the KB uses both inverse roles and qualified number
// restrictions, RegimeSHI for inverse roles alone, RegimeSH otherwise.
// Inverse-role usage is detected by the synthesized "inv(" name prefix
// (how a role expression names the inverse direction, §1); qualified-
// number-restriction usage is detected by the presence of any TokLE node.
func detectRegime(axioms []*Axiom, rs *roles.System) (blocking.Regime, bool) {
	usesInverse, usesQNR := false, false
	var walk func(t *dag.Tree)
	walk = func(t *dag.Tree) {
		if t == nil {
			return
		}
		if t.Tok == dag.TokLE {
			usesQNR = true
		}
		if len(t.Role) > 4 && t.Role[:4] == "inv(" {
			usesInverse = true
		}
		walk(t.Left)
		walk(t.Right)
		walk(t.Child)
	}
	for _, a := range axioms {
		if a.retracted {
			continue
		}
		walk(a.definition)
		walk(a.sub)
		walk(a.sup)
		walk(a.concept)
	}
	switch {
	case usesInverse && usesQNR:
		return blocking.RegimeSHIQ, true
	case usesInverse:
		return blocking.RegimeSHI, false
	default:
		return blocking.RegimeSH, false
	}
}
