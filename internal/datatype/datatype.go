// Package datatype is the external collaborator named in spec §1 as the
// "datatype reasoner": a black box that decides consistency of a set of
// concrete-domain (literal-valued) constraints, consulted by the tableau
// engine (internal/tableau's applyDataType) whenever a node's label
// contains DATATYPE/DATAVALUE/DATAEXPR facts (§3 "DAG vertex", tag
// DATATYPE/DATAVALUE/DATAEXPR) — §1 lists this as interface-only, so the
// core only needs an Oracle it can call, not a specific decision
// procedure.
//
// Oracle is grounded on Kernel/DataTypeCenter.cpp's role as a registry that
// the main kernel defers to for anything datatype-shaped; NumericOracle is
// implemented here with github.com/cockroachdb/apd/v3 so that the
// interval/ exact-value arithmetic needed to make the scenarios in §8
// runnable is exact arbitrary-precision decimal comparison rather than
// float64, matching the intent of a "numeric facet" datatype in OWL.
package datatype

import "github.com/cockroachdb/apd/v3"

// Op is a concrete-domain comparison operator.
type Op int

const (
	Equal Op = iota
	NotEqual
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual
)

// Negate returns the operator for ¬(o v): the complementary comparison a
// negative DATAVALUE/DATAEXPR bipolar pointer asserts.
func (o Op) Negate() Op {
	switch o {
	case Equal:
		return NotEqual
	case NotEqual:
		return Equal
	case LessThan:
		return GreaterEqual
	case LessEqual:
		return GreaterThan
	case GreaterThan:
		return LessEqual
	case GreaterEqual:
		return LessThan
	default:
		return o
	}
}

func (o Op) String() string {
	switch o {
	case Equal:
		return "="
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case LessEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Constraint restricts a single concrete-domain variable (a DATAVALUE slot
// in one node's label, per §3) to satisfy Op against Value.
type Constraint struct {
	Op    Op
	Value apd.Decimal
}

// Oracle decides satisfiability of a conjunction of concrete-domain
// constraints, standing in for the external datatype reasoner named in
// spec §1/§2 (C8). The tableau engine calls it each time it processes a
// DATATYPE, DATAVALUE or DATAEXPR fact on a node, with every
// DATAVALUE/DATAEXPR constraint gathered on that node's label; it does not
// get to see — or care about — the completion graph.
type Oracle interface {
	// Consistent reports whether some value exists satisfying every
	// constraint in cs simultaneously.
	Consistent(cs []Constraint) bool
}

// NumericOracle implements Oracle over a single totally-ordered numeric
// datatype (the common "integer"/"decimal" OWL facets) using exact
// arbitrary-precision decimal arithmetic, so that e.g. `>= 1/3` style
// facets used in tests never fall prey to float64 rounding.
type NumericOracle struct{}

var _ Oracle = NumericOracle{}

// Consistent narrows cs to the tightest [lo, hi] interval plus a set of
// excluded exact values, then checks the interval is non-empty and not
// entirely excluded. This is exactly interval arithmetic over a dense
// order (decimals), which is sufficient for every facet shape spec.md
// names (min/max/exact).
func (NumericOracle) Consistent(cs []Constraint) bool {
	var ctx apd.Context
	ctx.Precision = 50

	var lo, hi *apd.Decimal
	loOpen, hiOpen := false, false
	var excluded []apd.Decimal

	cmp := func(a, b *apd.Decimal) int {
		c, _ := ctx.Cmp(new(apd.Decimal), a, b)
		return int(c)
	}

	for _, c := range cs {
		v := c.Value
		switch c.Op {
		case Equal:
			if lo == nil || cmp(&v, lo) > 0 {
				lo = &v
				loOpen = false
			}
			if hi == nil || cmp(&v, hi) < 0 {
				hi = &v
				hiOpen = false
			}
		case NotEqual:
			excluded = append(excluded, v)
		case LessThan:
			if hi == nil || cmp(&v, hi) < 0 || (cmp(&v, hi) == 0 && !hiOpen) {
				hi = &v
				hiOpen = true
			}
		case LessEqual:
			if hi == nil || cmp(&v, hi) < 0 {
				hi = &v
				hiOpen = false
			}
		case GreaterThan:
			if lo == nil || cmp(&v, lo) > 0 || (cmp(&v, lo) == 0 && !loOpen) {
				lo = &v
				loOpen = true
			}
		case GreaterEqual:
			if lo == nil || cmp(&v, lo) > 0 {
				lo = &v
				loOpen = false
			}
		}
	}

	if lo != nil && hi != nil {
		c := cmp(lo, hi)
		if c > 0 {
			return false
		}
		if c == 0 && (loOpen || hiOpen) {
			return false
		}
		if c == 0 {
			for _, e := range excluded {
				if cmp(lo, &e) == 0 {
					return false
				}
			}
		}
	}
	return true
}
