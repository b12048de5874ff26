package kernel

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/datatype"
)

// AxiomID is the monotonically assigned identifier of an asserted axiom
// (§6 "axiom-building calls produce opaque axiom handles with a
// monotonically assigned id").
type AxiomID int64

type axiomKind int

const (
	axConceptDecl axiomKind = iota
	axGCI
	axRoleDecl
	axSubRole
	axTransitiveRole
	axIrreflexiveRole
	axIndividual
	axConceptAssertion
	axRoleAssertion
)

// Axiom is one opaque entry of the axiom stream (§6). Retract marks it
// retracted in place rather than removing it, so AxiomIDs stay stable and
// Preprocess can replay "every non-retracted axiom in assertion order"
// deterministically.
type Axiom struct {
	ID        AxiomID
	kind      axiomKind
	retracted bool

	name       string // axConceptDecl, axIndividual
	primitive  bool   // axConceptDecl
	definition *dag.Tree

	sub, sup *dag.Tree // axGCI

	role, other string // axRoleDecl/axSubRole(sub=role,other=super)/axTransitiveRole/axIrreflexiveRole

	individual string    // axConceptAssertion, axRoleAssertion (From)
	to         string    // axRoleAssertion (To)
	concept    *dag.Tree // axConceptAssertion
}

func (k *Kernel) addAxiom(a *Axiom) AxiomID {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.nextAxiomID++
	a.ID = k.nextAxiomID
	k.axioms = append(k.axioms, a)
	k.changed = true
	return a.ID
}

// DeclareConcept registers a named concept: primitive (told, C ⊑ body) if
// primitive is true, fully defined (C ≡ body) otherwise. definition may be
// nil for an undefined primitive concept.
func (k *Kernel) DeclareConcept(name string, primitive bool, definition *dag.Tree) AxiomID {
	return k.addAxiom(&Axiom{kind: axConceptDecl, name: name, primitive: primitive, definition: definition})
}

// AddGCI asserts the general concept inclusion sub ⊑ sup (§4.1 "GCIs are
// accumulated as one giant conjunction").
func (k *Kernel) AddGCI(sub, sup *dag.Tree) AxiomID {
	return k.addAxiom(&Axiom{kind: axGCI, sub: sub, sup: sup})
}

// DeclareRole registers an object or data role name with the compiled
// role system (§1 C9, "external collaborator"); its inverse is implicit.
func (k *Kernel) DeclareRole(name string) AxiomID {
	return k.addAxiom(&Axiom{kind: axRoleDecl, role: name})
}

// AddSubRole asserts sub ⊑ super in the role hierarchy.
func (k *Kernel) AddSubRole(sub, super string) AxiomID {
	return k.addAxiom(&Axiom{kind: axSubRole, role: sub, other: super})
}

// SetTransitive declares role transitive.
func (k *Kernel) SetTransitive(role string) AxiomID {
	return k.addAxiom(&Axiom{kind: axTransitiveRole, role: role})
}

// SetIrreflexive declares role irreflexive: no individual may stand in
// role to itself in any model, lowered at Preprocess time to a GCI over
// dag.Irreflexive(role) applying to every node (§4.1 IRR, §8 scenario 6).
func (k *Kernel) SetIrreflexive(role string) AxiomID {
	return k.addAxiom(&Axiom{kind: axIrreflexiveRole, role: role})
}

// DeclareIndividual registers name as a named individual (a nominal, §3
// "PSINGLETON/NSINGLETON").
func (k *Kernel) DeclareIndividual(name string) AxiomID {
	return k.addAxiom(&Axiom{kind: axIndividual, name: name})
}

// AssertConcept asserts individual : concept (an ABox concept assertion).
func (k *Kernel) AssertConcept(individual string, concept *dag.Tree) AxiomID {
	return k.addAxiom(&Axiom{kind: axConceptAssertion, individual: individual, concept: concept})
}

// AssertRole asserts the ABox role assertion (from, role, to) — "from R
// to" holds in every model.
func (k *Kernel) AssertRole(from, role, to string) AxiomID {
	return k.addAxiom(&Axiom{kind: axRoleAssertion, individual: from, role: role, to: to})
}

// Retract marks id retracted: Preprocess skips it on its next run, and
// IsChanged reports true until that happens. Retracting an axiom that is
// already retracted, or an unknown id, is reported as KindUnsupported
// rather than silently ignored, since it most likely indicates the caller
// mismanaged its own axiom handles.
func (k *Kernel) Retract(id AxiomID) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, a := range k.axioms {
		if a.ID == id {
			if a.retracted {
				return Newf(KindUnsupported, int64(id), "axiom %d already retracted", id)
			}
			a.retracted = true
			k.changed = true
			return nil
		}
	}
	return Newf(KindUnsupported, int64(id), "retract: unknown axiom id %d", id)
}

// IsChanged reports whether any axiom has been added or retracted since
// the last successful Preprocess (§6 "isChanged() returns true while
// unprocessed axioms remain").
func (k *Kernel) IsChanged() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.changed
}

// --- Axiom-facing concept/role expression builders (§6 "minimal axiom
// builder", the programmatic stand-in for the out-of-scope C-style API).
// These are thin re-exports of internal/dag's Tree constructors: the
// front end genuinely is that small, since every interesting expression
// shape (AND, FORALL, LE, NOT, IRR, data expressions) already has a
// builder there that Store.AddTree knows how to lower.

func ConceptName(name string) *dag.Tree      { return dag.Name(name) }
func Top() *dag.Tree                         { return dag.Top() }
func Bottom() *dag.Tree                      { return dag.Bottom() }
func Not(t *dag.Tree) *dag.Tree               { return dag.Not(t) }
func And(a, b *dag.Tree) *dag.Tree           { return dag.And(a, b) }
func AndAll(ts ...*dag.Tree) *dag.Tree        { return dag.AndAll(ts...) }
func Or(a, b *dag.Tree) *dag.Tree            { return dag.Or(a, b) }
func Forall(role string, c *dag.Tree) *dag.Tree { return dag.Forall(role, c) }
func Exists(role string, c *dag.Tree) *dag.Tree { return dag.Exists(role, c) }
func AtMost(n int, role string, c *dag.Tree) *dag.Tree  { return dag.AtMost(n, role, c) }
func AtLeast(m int, role string, c *dag.Tree) *dag.Tree { return dag.AtLeast(m, role, c) }
func Irreflexive(role string) *dag.Tree       { return dag.Irreflexive(role) }

// DataType names a concrete datatype a data-role filler must belong to,
// optionally conjoined with a host restriction (e.g. a facet expression
// further narrowing the same filler). The datatype oracle (C8) decides
// consistency of whatever DATAVALUE/DATAEXPR facts end up alongside it on
// a node's label (internal/tableau's applyDataType).
func DataType(name string, host *dag.Tree) *dag.Tree { return dag.DataType(name, host) }

// DataValue asserts a data-role filler equal to the exact decimal literal
// v.
func DataValue(v apd.Decimal) *dag.Tree { return dag.DataValueLit(v) }

// DataExpr asserts a single facet constraint (op v) on a data-role filler,
// optionally conjoined with host. op is one of datatype.Equal,
// datatype.NotEqual, datatype.LessThan, datatype.LessEqual,
// datatype.GreaterThan, datatype.GreaterEqual.
func DataExpr(op datatype.Op, v apd.Decimal, host *dag.Tree) *dag.Tree {
	return dag.DataExpr(int(op), v, host)
}
