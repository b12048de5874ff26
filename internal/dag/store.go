package dag

import (
	"fmt"

	"github.com/dtsarkov/shiq/internal/datatype"
	"github.com/dtsarkov/shiq/internal/roles"
)

// Store is the DAG: a flat, append-only table of vertices plus the
// canonicalization map that gives structurally-equal expressions the same
// slot. It also owns concept registration (concept.go) since a named
// concept's DAG slot and its bookkeeping entry are created together.
type Store struct {
	roles *roles.System

	vertices []Vertex
	canon    map[string]BP

	// useSorted tracks FaCT++'s "sort-based AND optimisation" flag; once a
	// trivial clash (C ⊓ ¬C) is caught directly while building an AND
	// vertex, it is turned off for the rest of the run, mirroring
	// BuildDAG.cpp disabling it globally on the first such hit. Nothing in
	// this package currently branches on it; it is surfaced for the
	// tableau engine to consult once it implements the optional
	// sorted-expansion heuristic.
	useSorted bool

	concepts   map[string]*ConceptEntry
	order      []*ConceptEntry // registration order, for deterministic BuildDAG
	inProgress map[string]bool

	gciClauses []*Tree
	gciBP      BP
}

// NewStore creates an empty DAG over the given (not yet necessarily
// compiled) role system.
func NewStore(rs *roles.System) *Store {
	s := &Store{
		roles:      rs,
		canon:      map[string]BP{},
		useSorted:  true,
		concepts:   map[string]*ConceptEntry{},
		inProgress: map[string]bool{},
	}
	s.vertices = append(s.vertices, Vertex{Tag: TagTop})
	return s
}

// At returns the vertex bp refers to (of either polarity); callers needing
// polarity-sensitive behaviour should check bp.IsPositive() themselves.
func (s *Store) At(bp BP) *Vertex {
	return &s.vertices[index(bp)]
}

// Len is the number of distinct vertex slots (not bipolar pointers: each
// slot serves both polarities).
func (s *Store) Len() int { return len(s.vertices) }

// addCanon structurally shares v with any previously-added vertex of equal
// key, returning the existing pointer (isNew=false) or appending a fresh
// slot (isNew=true).
func (s *Store) addCanon(v Vertex) (BP, bool) {
	k := v.key()
	if bp, ok := s.canon[k]; ok {
		return bp, false
	}
	bp := s.directAdd(v)
	s.canon[k] = bp
	return bp, true
}

// directAdd appends v as a fresh slot without consulting or updating the
// canonicalization map, for vertices with identity semantics: named
// concepts/individuals and the automaton-state pre-materialization that
// forall2dag/atmost2dag do for roles' non-terminal states.
func (s *Store) directAdd(v Vertex) BP {
	s.vertices = append(s.vertices, v)
	return bpForIndex(len(s.vertices) - 1)
}

func (s *Store) resolveRole(name string) (*roles.Role, error) {
	r := s.roles.Lookup(name)
	if r == nil {
		return nil, fmt.Errorf("dag: undeclared role %q", name)
	}
	return r, nil
}

// AddTree lowers a Tree into the DAG, returning the bipolar pointer for its
// root. This is tree2dag's token switch from BuildDAG.cpp.
func (s *Store) AddTree(t *Tree) (BP, error) {
	switch t.Tok {
	case TokTop:
		return TOP, nil
	case TokBottom:
		return BOTTOM, nil
	case TokName:
		c, ok := s.concepts[t.Name]
		if !ok {
			return Invalid, fmt.Errorf("dag: undeclared concept %q", t.Name)
		}
		return s.concept2dag(c)
	case TokNot:
		bp, err := s.AddTree(t.Left)
		if err != nil {
			return Invalid, err
		}
		return Inverse(bp), nil
	case TokAnd:
		return s.buildAnd(t)
	case TokForall:
		return s.buildForall(t)
	case TokLE:
		return s.buildAtMost(t)
	case TokIrr:
		r, err := s.resolveRole(t.Role)
		if err != nil {
			return Invalid, err
		}
		bp, _ := s.addCanon(Vertex{Tag: TagIrr, Role: r})
		return bp, nil
	case TokDataType:
		return s.buildDataType(t)
	case TokDataValue:
		v := t.Value
		bp, _ := s.addCanon(Vertex{Tag: TagDataValue, DataValue: &v})
		return bp, nil
	case TokDataExpr:
		return s.buildDataExpr(t)
	default:
		return Invalid, fmt.Errorf("dag: unhandled token %d", t.Tok)
	}
}

// buildAnd is fillANDVertex + the "single child"/"trivial clash" reductions
// BuildDAG.cpp applies once the flattened child list is known.
func (s *Store) buildAnd(t *Tree) (BP, error) {
	var children []BP
	seen := map[BP]bool{}
	clash, err := s.fillAnd(t, &children, seen)
	if err != nil {
		return Invalid, err
	}
	if clash {
		s.useSorted = false
		return BOTTOM, nil
	}
	if len(children) == 1 {
		return children[0], nil
	}
	bp, _ := s.addCanon(Vertex{Tag: TagAnd, Children: children})
	return bp, nil
}

// fillAnd recurses into nested ANDs, lowering every non-AND leaf and
// folding it into children via addAndChild. It mirrors fillANDVertex's use
// of C++ short-circuiting: once the left branch reports a clash, the
// right branch is never visited, so in a clashing AND the child list can
// be a strict subset of the full flattened set.
func (s *Store) fillAnd(t *Tree, children *[]BP, seen map[BP]bool) (bool, error) {
	if t.Tok == TokAnd {
		clash, err := s.fillAnd(t.Left, children, seen)
		if err != nil || clash {
			return clash, err
		}
		return s.fillAnd(t.Right, children, seen)
	}
	bp, err := s.AddTree(t)
	if err != nil {
		return false, err
	}
	return s.addAndChild(bp, children, seen), nil
}

// addAndChild folds bp into the running conjunction: a repeat is dropped
// (A⊓A=A), bp's negation already present is a trivial clash (A⊓¬A=⊥),
// otherwise bp is appended.
func (s *Store) addAndChild(bp BP, children *[]BP, seen map[BP]bool) bool {
	if seen[bp] {
		return false
	}
	if seen[Inverse(bp)] {
		return true
	}
	seen[bp] = true
	*children = append(*children, bp)
	return false
}

// buildForall is forall2dag: a ground FORALL(0,R,C) vertex, plus — for a
// non-simple object role, only the first time this (R,C) pair is lowered —
// one pre-materialized FORALL(i,R,C) vertex per remaining automaton state,
// so the tableau engine's +FORALL rule never has to build one mid-run.
func (s *Store) buildForall(t *Tree) (BP, error) {
	r, err := s.resolveRole(t.Role)
	if err != nil {
		return Invalid, err
	}
	c, err := s.AddTree(t.Child)
	if err != nil {
		return Invalid, err
	}
	ret, isNew := s.addCanon(Vertex{Tag: TagForall, State: 0, Role: r, Child: c})
	if r.IsDataRole() || r.Simple() || !isNew {
		return ret, nil
	}
	a := r.Automaton()
	for i := 1; i < a.NumStates(); i++ {
		s.directAdd(Vertex{Tag: TagForall, State: i, Role: r, Child: c})
	}
	return ret, nil
}

// buildAtMost is atmost2dag: a ground LE(n,R,C) vertex, plus — for an
// object role, only the first time this (n,R,C) triple is lowered — one
// pre-materialized LE(m,R,C) vertex for each m from n-1 down to 1, on the
// same role R (atmost2dag's `for m = n-1; m>0; --m` loop in BuildDAG.cpp).
func (s *Store) buildAtMost(t *Tree) (BP, error) {
	r, err := s.resolveRole(t.Role)
	if err != nil {
		return Invalid, err
	}
	c, err := s.AddTree(t.Child)
	if err != nil {
		return Invalid, err
	}
	ret, isNew := s.addCanon(Vertex{Tag: TagLE, N: t.N, Role: r, Child: c})
	if r.IsDataRole() || !isNew {
		return ret, nil
	}
	for m := t.N - 1; m > 0; m-- {
		s.directAdd(Vertex{Tag: TagLE, N: m, Role: r, Child: c})
	}
	return ret, nil
}

func (s *Store) buildDataType(t *Tree) (BP, error) {
	var host BP = Invalid
	if t.Left != nil {
		var err error
		host, err = s.AddTree(t.Left)
		if err != nil {
			return Invalid, err
		}
	}
	bp, _ := s.addCanon(Vertex{Tag: TagDataType, DataName: t.Name, DataHost: host})
	return bp, nil
}

func (s *Store) buildDataExpr(t *Tree) (BP, error) {
	var host BP = Invalid
	if t.Left != nil {
		var err error
		host, err = s.AddTree(t.Left)
		if err != nil {
			return Invalid, err
		}
	}
	v := t.Value
	bp, _ := s.addCanon(Vertex{Tag: TagDataExpr, DataOp: datatype.Op(t.Op), DataValue: &v, DataHost: host})
	return bp, nil
}

// AddGCIClause registers one general concept inclusion's tree (already
// expressed as a single conjunct, e.g. ¬C∨D for C⊑D). BuildGCI conjoins
// every registered clause into a single DAG pointer once all axioms have
// been seen.
func (s *Store) AddGCIClause(t *Tree) {
	s.gciClauses = append(s.gciClauses, t)
}

// BuildGCI lowers the accumulated GCI clauses into T_G, the single
// conjunction every node in the completion graph is implicitly subject to
// (§4.1's "GCIs are accumulated as one giant conjunction"). Calling it more
// than once is harmless: it recomputes the same pointer.
func (s *Store) BuildGCI() (BP, error) {
	bp, err := s.AddTree(AndAll(s.gciClauses...))
	if err != nil {
		return Invalid, err
	}
	s.gciBP = bp
	return bp, nil
}

// GCI returns T_G as last computed by BuildGCI (TOP if BuildGCI has never
// been called or no GCI clauses were ever registered).
func (s *Store) GCI() BP {
	if s.gciBP == Invalid {
		return TOP
	}
	return s.gciBP
}
