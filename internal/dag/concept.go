package dag

// ConceptEntry is the bookkeeping record for one named concept or
// individual (§3 "Concept entry"): its told definition plus the DAG slots
// that definition lowers to. It is grounded on TBox's TConcept: pName is
// pConcept->pName (the concept's own DAG vertex), pBody is the lowered
// definition.
type ConceptEntry struct {
	Name       string
	Primitive  bool // told (non-unfolding) vs. fully defined
	Singleton  bool // a nominal (named individual) rather than a class
	Definition *Tree

	PName BP // this concept's own DAG slot; Invalid until lowered
	PBody BP // the lowered definition; Invalid until lowered

	// Incomplete marks a concept whose DAG slot was created as a cycle
	// placeholder (addConceptToHeap re-entered while already in progress)
	// and has not yet had its body attached.
	Incomplete bool
}

// DeclareConcept registers name with the given told properties and
// definition tree (nil for an undefined primitive). Declaring the same
// name again updates the existing entry's told properties and definition
// in place (supporting forward references from axioms processed before
// their target is declared). DAG slots already assigned to the entry
// (PName, PBody) are kept: a new definition is lowered only if the concept
// has not been lowered yet.
func (s *Store) DeclareConcept(name string, primitive, singleton bool, definition *Tree) *ConceptEntry {
	if e, ok := s.concepts[name]; ok {
		e.Primitive = primitive
		e.Singleton = singleton
		e.Definition = definition
		return e
	}
	e := &ConceptEntry{Name: name, Primitive: primitive, Singleton: singleton, Definition: definition}
	s.concepts[name] = e
	s.order = append(s.order, e)
	return e
}

// Concept looks up a previously declared entry, or nil.
func (s *Store) Concept(name string) *ConceptEntry {
	return s.concepts[name]
}

func conceptTag(primitive, singleton bool) Tag {
	switch {
	case primitive && singleton:
		return TagNSingleton
	case !primitive && singleton:
		return TagPSingleton
	case primitive:
		return TagNConcept
	default:
		return TagPConcept
	}
}

// concept2dag resolves a NAME reference to its DAG slot, lowering it on
// first use. Equivalent to TBox's concept2dag dispatching to
// addConceptToHeap for anything not yet processed.
func (s *Store) concept2dag(c *ConceptEntry) (BP, error) {
	if c.PName != Invalid {
		return c.PName, nil
	}
	return s.addConceptToHeap(c)
}

// addConceptToHeap lowers c's definition and creates its named DAG slot.
// Re-entering while c is already in progress (a told cycle through c's own
// definition) creates a placeholder slot immediately and marks c
// Incomplete rather than recursing forever, mirroring addConceptToHeap's
// `static std::set<TConcept*> inProcess` guard.
func (s *Store) addConceptToHeap(c *ConceptEntry) (BP, error) {
	if s.inProgress[c.Name] {
		bp := s.addConceptNameToHeap(c, true)
		c.Incomplete = true
		return bp, nil
	}
	s.inProgress[c.Name] = true
	defer delete(s.inProgress, c.Name)

	if c.Definition != nil {
		body, err := s.AddTree(c.Definition)
		if err != nil {
			return Invalid, err
		}
		c.PBody = body
	} else {
		c.PBody = TOP
	}
	bp := s.addConceptNameToHeap(c, false)
	return bp, nil
}

// addConceptNameToHeap creates (or completes) c's own DAG slot. If c
// already has a placeholder slot from an earlier cycle re-entry, its body
// is attached now instead of creating a second slot; otherwise a fresh
// slot is created, carrying the body as its sole child unless this call is
// itself the cycle-detecting re-entry (cycled=true), in which case the
// slot is left bodyless for the outer call to complete.
func (s *Store) addConceptNameToHeap(c *ConceptEntry, cycled bool) BP {
	if c.PName != Invalid {
		v := s.At(c.PName)
		v.Children = append(v.Children, c.PBody)
		c.Incomplete = false
		return c.PName
	}
	v := Vertex{Tag: conceptTag(c.Primitive, c.Singleton), Concept: c}
	if !cycled {
		v.Children = []BP{c.PBody}
	}
	c.PName = s.directAdd(v)
	return c.PName
}

// BuildDAG lowers every concept declared so far (in registration order)
// that has not already been reached via some other concept's definition,
// then folds the accumulated GCI clauses into T_G. Mirrors TBox::buildDAG
// iterating its concept list and finishing with the GCI tree.
func (s *Store) BuildDAG() error {
	for _, c := range s.order {
		if c.PName == Invalid {
			if _, err := s.addConceptToHeap(c); err != nil {
				return err
			}
		}
	}
	_, err := s.BuildGCI()
	return err
}
