// Package roles is the external collaborator named in spec §1 as "role
// hierarchy preprocessing and role-automaton construction": the core
// consumes a compiled role system (sub/super-role relations, inverses,
// transitivity, and per-role automata) and this package is the minimal,
// concrete implementation of that system used to drive and test the core.
//
// It is grounded on trunk/Kernel/RoleMaster.cpp: role registration,
// told-cycle elimination into synonyms, ancestor/descendant propagation
// through the hierarchy, and a final "complete the automaton" pass mirror
// RoleMaster::initAncDesc's stages, simplified to plain sub-role
// hierarchies (no role composition axioms/regular role boxes — those are
// SROIQ territory, out of scope for SHIQ per spec §1).
package roles

import "fmt"

// Role is a (possibly inverse) role name in the compiled role system.
type Role struct {
	name       string
	inverse    *Role
	id         int32 // ascending registration order; used for deterministic iteration
	transitive bool
	parents    []*Role // direct super-roles (this ⊑ parent)
	// ancestors/descendants are filled in by System.Compile, mirroring
	// RoleMaster's "stage 3: fills ancestor/descendants using taxonomy".
	ancestors   map[*Role]bool // this and every role this is a sub-role of
	descendants map[*Role]bool // this and every sub-role of this
	automaton   *Automaton
	dataRole    bool
}

// Name returns the role's declared name ("inv(R)" for a synthesized inverse
// that was never separately named).
func (r *Role) Name() string { return r.name }

// Inverse returns the inverse role, never nil: every role has one, even if
// implicit.
func (r *Role) Inverse() *Role { return r.inverse }

// Transitive reports whether R ⊑ R∘R was declared for r.
func (r *Role) Transitive() bool { return r.transitive }

// IsDataRole reports whether r relates individuals to data values (its
// fillers are decided by the datatype oracle, not the tableau).
func (r *Role) IsDataRole() bool { return r.dataRole }

// Simple reports whether r has no transitive sub-role (itself included).
// Only simple roles may appear in number restrictions (§4.1 LE/GE), per
// the usual SHIQ well-formedness condition.
func (r *Role) Simple() bool {
	if r.transitive {
		return false
	}
	for d := range r.descendants {
		if d.transitive {
			return false
		}
	}
	return true
}

// SubsumedBy reports whether r ⊑* other (other is an ancestor of r,
// reflexively). Used wherever the spec says "an R'-neighbour ... where R'
// is a sub-role of R" (the FORALL and LE/GE rules, §4.3).
func (r *Role) SubsumedBy(other *Role) bool {
	return r.ancestors[other]
}

// Automaton returns the compiled role automaton for r, built by
// System.Compile. It is nil before Compile is called.
func (r *Role) Automaton() *Automaton { return r.automaton }

func (r *Role) String() string { return r.name }

// System is the compiled role hierarchy: the external collaborator that
// the tableau and blocking engine consult for sub/super-role relations,
// inverses, transitivity, and automata (spec §1 "Role system (ext.)", C9).
type System struct {
	byName   map[string]*Role
	all      []*Role
	nextID   int32
	compiled bool

	// The four distinguished roles (§6 configuration: topBRole, botBRole,
	// topDRole, botDRole).
	TopObjectRole, BottomObjectRole *Role
	TopDataRole, BottomDataRole     *Role
}

// NewSystem creates an empty role system with the four distinguished roles
// pre-declared under their default names, matching §6's configuration
// defaults.
func NewSystem() *System {
	return NewSystemWithNames("topObjectRole", "bottomObjectRole", "topDataRole", "bottomDataRole")
}

// NewSystemWithNames is NewSystem with the four distinguished roles named
// explicitly, for kernel.Config's topBRole/botBRole/topDRole/botDRole
// options (§6 "Configuration").
func NewSystemWithNames(topObject, bottomObject, topData, bottomData string) *System {
	s := &System{byName: map[string]*Role{}}
	s.TopObjectRole = s.Declare(topObject)
	s.BottomObjectRole = s.Declare(bottomObject)
	s.TopDataRole = s.declareData(topData)
	s.BottomDataRole = s.declareData(bottomData)
	return s
}

func (s *System) newPair(name string, dataRole bool) *Role {
	fwd := &Role{name: name, id: s.nextID, dataRole: dataRole}
	s.nextID++
	invName := "inv(" + name + ")"
	inv := &Role{name: invName, id: s.nextID, dataRole: dataRole}
	s.nextID++
	fwd.inverse = inv
	inv.inverse = fwd
	s.all = append(s.all, fwd, inv)
	// The synthesized inverse is registered under its own "inv(name)" key
	// too, so axiom trees can name it directly (e.g. Forall("inv(hasChild)",
	// C)) exactly like any other declared role.
	s.byName[invName] = inv
	return fwd
}

// Declare registers a new object role named name, returning the forward
// role; its inverse is created alongside it and reachable via Inverse.
// Declaring the same name twice returns the existing role.
func (s *System) Declare(name string) *Role {
	if r, ok := s.byName[name]; ok {
		return r
	}
	r := s.newPair(name, false)
	s.byName[name] = r
	return r
}

func (s *System) declareData(name string) *Role {
	r := s.newPair(name, true)
	s.byName[name] = r
	return r
}

// Lookup returns the previously declared role named name, or nil.
func (s *System) Lookup(name string) *Role {
	return s.byName[name]
}

// AddSubRole asserts sub ⊑ super (and, symmetrically, inv(sub) ⊑
// inv(super)), matching RoleMaster::addRoleParent's inverse propagation.
func (s *System) AddSubRole(sub, super *Role) {
	sub.parents = append(sub.parents, super)
	sub.inverse.parents = append(sub.inverse.parents, super.inverse)
}

// SetTransitive declares r transitive (and, symmetrically, its inverse).
func (s *System) SetTransitive(r *Role) {
	r.transitive = true
	r.inverse.transitive = true
}

// Compile closes the hierarchy (ancestors/descendants, §RoleMaster "stage
// 3") and builds each role's automaton ("complete role automaton's info").
// It must be called once, after every role/sub-role/transitivity axiom has
// been asserted and before the DAG or tableau consult the system.
func (s *System) Compile() error {
	if s.compiled {
		return nil
	}
	for _, r := range s.all {
		r.ancestors = map[*Role]bool{r: true}
	}
	// Fixed-point closure: small hierarchies in practice, so a naive
	// repeat-until-stable pass (rather than a topological sort) is both
	// simple and sufficient, and tolerates any declaration order.
	for changed := true; changed; {
		changed = false
		for _, r := range s.all {
			for _, p := range r.parents {
				for a := range p.ancestors {
					if !r.ancestors[a] {
						r.ancestors[a] = true
						changed = true
					}
				}
			}
		}
	}
	for _, r := range s.all {
		r.descendants = map[*Role]bool{}
	}
	for _, r := range s.all {
		for a := range r.ancestors {
			a.descendants[r] = true
		}
	}
	for _, r := range s.all {
		if err := r.checkNoCycleThroughProperAncestor(); err != nil {
			return err
		}
	}
	for _, r := range s.all {
		r.automaton = buildAutomaton(r)
	}
	s.compiled = true
	return nil
}

func (r *Role) checkNoCycleThroughProperAncestor() error {
	// A role listed among its own direct parents is rejected here. FaCT++
	// resolves told cycles in the sub-role hierarchy into synonyms
	// (RoleMaster::eliminateToldCycles); this package does not. A longer
	// told cycle (R ⊑ S ⊑ R) is not rejected: the ancestor closure in
	// Compile makes every role on it a sub-role of the others.
	if len(r.parents) == 0 {
		return nil
	}
	for _, p := range r.parents {
		if p == r {
			return fmt.Errorf("roles: role %q declared as its own super-role", r.name)
		}
	}
	return nil
}

// All returns every declared role (forward and inverse) in registration
// order, for deterministic iteration (e.g. "anywhere" style scans).
func (s *System) All() []*Role {
	return s.all
}
