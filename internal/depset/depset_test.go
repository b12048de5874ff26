package depset_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dtsarkov/shiq/internal/depset"
)

func TestUnionIdempotent(t *testing.T) {
	d := depset.Singleton(3).With(5)
	u := depset.Union(d, d)
	if !u.Equal(d) {
		t.Fatalf("Union(d, d) = %v, want %v", u, d)
	}
}

func TestUnionSortsAndDedups(t *testing.T) {
	a := depset.Singleton(5).With(1).With(3)
	b := depset.Singleton(3).With(2)
	got := depset.Union(a, b).Levels()
	want := []depset.Level{1, 2, 3, 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Union levels mismatch (-want +got):\n%s", diff)
	}
}

func TestMaxIsBackjumpTarget(t *testing.T) {
	d := depset.Singleton(2).With(7).With(4)
	max, ok := d.Max()
	if !ok || max != 7 {
		t.Fatalf("Max() = (%v, %v), want (7, true)", max, ok)
	}
	if _, ok := depset.Empty.Max(); ok {
		t.Fatalf("Max() of empty set should report false")
	}
}

func TestDominates(t *testing.T) {
	big := depset.Singleton(1).With(2).With(3)
	small := depset.Singleton(1).With(3)
	if !big.Dominates(small) {
		t.Fatalf("expected %v to dominate %v", big, small)
	}
	if small.Dominates(big) {
		t.Fatalf("did not expect %v to dominate %v", small, big)
	}
}

func TestTrimDiscardsAboveLevel(t *testing.T) {
	d := depset.Singleton(1).With(4).With(9)
	got := d.Trim(4).Levels()
	want := []depset.Level{1, 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Trim mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroLevelNeverStored(t *testing.T) {
	d := depset.Singleton(0)
	if !d.Empty() {
		t.Fatalf("Singleton(0) should be empty, the root level is never recorded")
	}
}

func TestContains(t *testing.T) {
	d := depset.Singleton(2).With(9)
	if !d.Contains(2) || !d.Contains(9) {
		t.Fatalf("Contains failed for members of %v", d)
	}
	if d.Contains(3) {
		t.Fatalf("Contains(3) on %v should be false", d)
	}
}
