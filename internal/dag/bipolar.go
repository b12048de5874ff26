// Package dag is the shared, structurally-canonicalized concept DAG named
// in spec §2 as C3: every concept expression built by an axiom is lowered
// once into this DAG, and its negation is never a separate node but the
// same node read with the opposite sign — a "bipolar pointer" (§3 BP).
//
// It is grounded on Kernel/BuildDAG.cpp's TBox::buildDAG/tree2dag family:
// AddTree mirrors tree2dag's token switch, the AND builder mirrors
// fillANDVertex's flatten-and-detect-clash recursion (including its
// short-circuiting behaviour), forall2dag/atmost2dag mirror the
// automaton-state and sub-role pre-materialization loops, and concept.go's
// cycle handling mirrors addConceptToHeap/addConceptNameToHeap's
// in-progress set and placeholder vertex.
package dag

// BP is a bipolar pointer: a signed reference into the DAG's vertex table.
// Its sign is the polarity (the concept itself, or its negation); abs(bp)-1
// is the index of the shared vertex entry both polarities refer to, so a
// concept and its negation never occupy distinct DAG slots.
type BP int32

// Invalid is the zero value of BP, never produced by any Store method.
const Invalid BP = 0

// TOP is the universal concept. It occupies DAG slot 0 as a sentinel
// vertex with no children; BOTTOM is its negation, never a distinct slot.
const TOP BP = 1

// BOTTOM is ⊥, i.e. ¬⊤.
const BOTTOM BP = -TOP

// Inverse returns the bipolar pointer for ¬c. Inverse is involutive and
// Invalid maps to itself.
func Inverse(bp BP) BP {
	if bp == Invalid {
		return Invalid
	}
	return -bp
}

// IsPositive reports whether bp refers to a concept in its asserted
// (un-negated) polarity.
func (bp BP) IsPositive() bool { return bp > 0 }

// index returns the 0-based slot in Store.vertices that bp (of either
// polarity) refers to.
func index(bp BP) int {
	if bp < 0 {
		bp = -bp
	}
	return int(bp) - 1
}

// bpForIndex is the inverse of index: the positive bipolar pointer for the
// vertex stored at slot i.
func bpForIndex(i int) BP { return BP(i + 1) }
