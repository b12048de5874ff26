package dag

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/dtsarkov/shiq/internal/datatype"
	"github.com/dtsarkov/shiq/internal/roles"
)

// Tag identifies the shape of a DAG vertex (§3 "DAG vertex").
type Tag int

const (
	// TagTop is the single sentinel occupying slot 0. Its negation, read
	// through BOTTOM, needs no vertex of its own.
	TagTop Tag = iota
	// TagAnd is an ordered, flattened, duplicate-free conjunction. ∨ is
	// never stored directly: C∨D is built as ¬(¬C∧¬D) by the caller.
	TagAnd
	// TagForall is ∀R.C at one automaton state of R (§4.1/§4.3).
	TagForall
	// TagLE is (≤ n R.C); its negation read through Inverse is (≥ n+1 R.C).
	TagLE
	// TagIrr asserts that R has no self-loop at the node it labels (§4.1).
	TagIrr
	// TagNConcept is a primitive (told, non-defining) named concept.
	TagNConcept
	// TagPConcept is a defined (fully-unfolding) named concept.
	TagPConcept
	// TagNSingleton is a primitive named individual (nominal).
	TagNSingleton
	// TagPSingleton is a defined named individual.
	TagPSingleton
	// TagDataType names a concrete datatype, optionally restricting a host
	// datatype (e.g. a sub-range).
	TagDataType
	// TagDataValue is one concrete literal.
	TagDataValue
	// TagDataExpr is a single facet constraint (e.g. ">= 5") over a host
	// datatype, consumed by the datatype oracle (§1 C8).
	TagDataExpr
)

func (t Tag) String() string {
	switch t {
	case TagTop:
		return "TOP"
	case TagAnd:
		return "AND"
	case TagForall:
		return "FORALL"
	case TagLE:
		return "LE"
	case TagIrr:
		return "IRR"
	case TagNConcept:
		return "NCONCEPT"
	case TagPConcept:
		return "PCONCEPT"
	case TagNSingleton:
		return "NSINGLETON"
	case TagPSingleton:
		return "PSINGLETON"
	case TagDataType:
		return "DATATYPE"
	case TagDataValue:
		return "DATAVALUE"
	case TagDataExpr:
		return "DATAEXPR"
	default:
		return "?"
	}
}

// Vertex is one entry of the DAG. Only the fields relevant to Tag are
// meaningful; it is a tagged union rather than an interface hierarchy
// because every vertex shape is closed and known up front, and a plain
// struct keeps Store.vertices a flat, index-stable, GC-friendly slice for
// the save/restore arena built on top of it (internal/graph).
type Vertex struct {
	Tag Tag

	// AND
	Children []BP

	// FORALL / LE / IRR
	Role  *roles.Role
	State int // FORALL: automaton state. unused for LE/IRR.
	N     int // LE: the bound.
	Child BP  // FORALL/LE: the filler concept.

	// NCONCEPT/PCONCEPT/NSINGLETON/PSINGLETON
	Concept *ConceptEntry

	// DATATYPE/DATAVALUE/DATAEXPR
	DataName  string // DATATYPE: the datatype's name.
	DataHost  BP     // DATATYPE: optional restricted host type. DATAEXPR: host type the facet applies to.
	DataOp    datatype.Op
	DataValue *apd.Decimal
}

// key returns a string uniquely determined by the vertex's canonicalizable
// fields, used to structurally share equal vertices. NCONCEPT/PCONCEPT/
// NSINGLETON/PSINGLETON are never looked up this way (each named concept
// gets its own slot via directAdd, keyed by identity, not structure).
func (v *Vertex) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:", v.Tag)
	switch v.Tag {
	case TagAnd:
		for _, c := range v.Children {
			fmt.Fprintf(&b, "%d,", c)
		}
	case TagForall:
		fmt.Fprintf(&b, "%s:%d:%d", v.Role.Name(), v.State, v.Child)
	case TagLE:
		fmt.Fprintf(&b, "%s:%d:%d", v.Role.Name(), v.N, v.Child)
	case TagIrr:
		fmt.Fprintf(&b, "%s", v.Role.Name())
	case TagDataType:
		fmt.Fprintf(&b, "%s:%d", v.DataName, v.DataHost)
	case TagDataValue:
		fmt.Fprintf(&b, "%s", v.DataValue.String())
	case TagDataExpr:
		fmt.Fprintf(&b, "%d:%d:%s", v.DataOp, v.DataHost, v.DataValue.String())
	}
	return b.String()
}
