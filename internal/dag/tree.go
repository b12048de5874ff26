package dag

import "github.com/cockroachdb/apd/v3"

// Tok is the kind of a Tree node, the axiom-facing front end that Store.
// AddTree lowers into the DAG (tree2dag's token switch in BuildDAG.cpp).
type Tok int

const (
	TokTop Tok = iota
	TokBottom
	TokName
	TokNot
	TokAnd
	TokForall
	TokLE
	TokIrr
	TokDataType
	TokDataValue
	TokDataExpr
)

// Tree is an unlowered concept expression, built by the axiom front end
// (kernel/axioms.go) and handed to Store.AddTree. Unlike DLTree's uniform
// binary-tree-of-everything representation, Tree uses tagged fields per
// operator: Go favours a closed tagged struct here over forcing every
// operand (role names, bounds) through a generic binary Left/Right shape.
type Tree struct {
	Tok Tok

	Name string // TokName (named concept), TokDataType (datatype name)
	Left *Tree  // TokNot, TokAnd (first operand), TokDataType (optional host)

	// TokAnd
	Right *Tree

	// TokForall / TokLE / TokIrr
	Role  string
	Child *Tree // filler concept for TokForall/TokLE

	// TokLE
	N int

	// TokDataValue / TokDataExpr
	Value apd.Decimal
	Op    int // datatype.Op, kept untyped here; buildDataExpr in store.go converts it
}

func Top() *Tree    { return &Tree{Tok: TokTop} }
func Bottom() *Tree { return &Tree{Tok: TokBottom} }
func Name(n string) *Tree { return &Tree{Tok: TokName, Name: n} }
func Not(t *Tree) *Tree   { return &Tree{Tok: TokNot, Left: t} }
func And(a, b *Tree) *Tree {
	return &Tree{Tok: TokAnd, Left: a, Right: b}
}

// AndAll folds ts into a left-leaning binary AND tree; Store flattens it
// back into an n-ary vertex at lowering time, so fold direction is
// immaterial. AndAll of zero trees is TOP (the empty conjunction).
func AndAll(ts ...*Tree) *Tree {
	if len(ts) == 0 {
		return Top()
	}
	acc := ts[0]
	for _, t := range ts[1:] {
		acc = And(acc, t)
	}
	return acc
}

// Or builds C∨D as ¬(¬C∧¬D); the DAG never stores disjunction directly.
func Or(a, b *Tree) *Tree { return Not(And(Not(a), Not(b))) }

// Forall builds ∀role.c.
func Forall(role string, c *Tree) *Tree {
	return &Tree{Tok: TokForall, Role: role, Child: c}
}

// Exists builds ∃role.c as ¬∀role.¬c.
func Exists(role string, c *Tree) *Tree {
	return Not(Forall(role, Not(c)))
}

// AtMost builds (≤ n role.c).
func AtMost(n int, role string, c *Tree) *Tree {
	return &Tree{Tok: TokLE, N: n, Role: role, Child: c}
}

// AtLeast builds (≥ m role.c) as ¬(≤ (m-1) role.c); (≥ 0 ...) is
// vacuously TOP.
func AtLeast(m int, role string, c *Tree) *Tree {
	if m <= 0 {
		return Top()
	}
	return Not(AtMost(m-1, role, c))
}

// Irreflexive asserts that role has no self-loop at the labelled node.
func Irreflexive(role string) *Tree {
	return &Tree{Tok: TokIrr, Role: role}
}

// DataType names a concrete datatype, optionally restricting host.
func DataType(name string, host *Tree) *Tree {
	return &Tree{Tok: TokDataType, Name: name, Left: host}
}

// DataValueLit is one concrete literal of a datatype.
func DataValueLit(v apd.Decimal) *Tree {
	return &Tree{Tok: TokDataValue, Value: v}
}

// DataExpr is a single facet constraint (op v) applying to host.
func DataExpr(op int, v apd.Decimal, host *Tree) *Tree {
	return &Tree{Tok: TokDataExpr, Op: op, Value: v, Left: host}
}
