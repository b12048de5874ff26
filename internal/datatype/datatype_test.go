package datatype_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"

	"github.com/dtsarkov/shiq/internal/datatype"
)

func dec(s string) apd.Decimal {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return *d
}

func TestEmptyConstraintSetIsConsistent(t *testing.T) {
	if !(datatype.NumericOracle{}).Consistent(nil) {
		t.Fatalf("no constraints should always be consistent")
	}
}

func TestContradictoryBoundsAreInconsistent(t *testing.T) {
	cs := []datatype.Constraint{
		{Op: datatype.LessEqual, Value: dec("3")},
		{Op: datatype.GreaterEqual, Value: dec("5")},
	}
	if (datatype.NumericOracle{}).Consistent(cs) {
		t.Fatalf(">=5 and <=3 should be inconsistent")
	}
}

func TestExclusivePointIsInconsistent(t *testing.T) {
	cs := []datatype.Constraint{
		{Op: datatype.LessThan, Value: dec("5")},
		{Op: datatype.GreaterEqual, Value: dec("5")},
	}
	if (datatype.NumericOracle{}).Consistent(cs) {
		t.Fatalf("<5 and >=5 should be inconsistent")
	}
}

func TestExactValueExcludedIsInconsistent(t *testing.T) {
	cs := []datatype.Constraint{
		{Op: datatype.Equal, Value: dec("2")},
		{Op: datatype.NotEqual, Value: dec("2")},
	}
	if (datatype.NumericOracle{}).Consistent(cs) {
		t.Fatalf("=2 and !=2 should be inconsistent")
	}
}

func TestOverlappingRangeIsConsistent(t *testing.T) {
	cs := []datatype.Constraint{
		{Op: datatype.GreaterEqual, Value: dec("1")},
		{Op: datatype.LessEqual, Value: dec("10")},
		{Op: datatype.NotEqual, Value: dec("5")},
	}
	if !(datatype.NumericOracle{}).Consistent(cs) {
		t.Fatalf("[1,10] minus {5} should still be consistent")
	}
}

func TestOpNegateIsInvolutive(t *testing.T) {
	for _, op := range []datatype.Op{datatype.Equal, datatype.NotEqual, datatype.LessThan, datatype.LessEqual, datatype.GreaterThan, datatype.GreaterEqual} {
		if got := op.Negate().Negate(); got != op {
			t.Fatalf("%v.Negate().Negate() = %v, want %v", op, got, op)
		}
		if op.Negate() == op {
			t.Fatalf("%v.Negate() should differ from %v", op, op)
		}
	}
}

func TestExactArithmeticNotFloatRounded(t *testing.T) {
	// 1/3 represented precisely via apd; a naive float64 comparison of
	// "0.3333333333333333" against this would round differently.
	third, _, err := apd.NewFromString("0.3333333333333333333333333333333333333333")
	if err != nil {
		t.Fatal(err)
	}
	cs := []datatype.Constraint{
		{Op: datatype.GreaterEqual, Value: *third},
		{Op: datatype.LessEqual, Value: *third},
	}
	if !(datatype.NumericOracle{}).Consistent(cs) {
		t.Fatalf("a value bounded equal to itself should be consistent")
	}
}
