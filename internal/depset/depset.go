// Package depset implements dependency sets: the small sets of branching
// levels that every derived fact in the tableau (a label entry, an arc, a
// clash) is tagged with so that backjumping knows how far to unwind.
//
// A Set is a persistent, sorted collection of levels. Union is the only
// growth operation and is idempotent; Set values are immutable once built,
// so they can be freely shared between label entries without defensive
// copies — exactly the property the completion graph's save/restore
// discipline depends on (§5: "every state mutation ... is reversible").
//
// The representation (a sorted slice, deduped and capped at small sizes in
// practice since nesting of nondeterministic choices is shallow) is adapted
// from the generation-stamped open-addressing set in
// cuelang.org/go/internal/intset, simplified: dep-sets are normally tiny
// (single digits), so a sorted slice with linear/binary merge beats a hash
// table in both memory and cache behaviour, and gives Max() for free.
package depset

import "sort"

// Level is a branching level: a monotonically increasing integer assigned
// on each nondeterministic split. Level 0 is the initial state and never
// appears in a dep-set (nothing depends on the root).
type Level uint32

// Set is an immutable, sorted set of branching levels.
type Set struct {
	levels []Level
}

// Empty is the dep-set with no levels, the identity of Union.
var Empty = Set{}

// Singleton returns the dep-set containing exactly l.
func Singleton(l Level) Set {
	if l == 0 {
		return Empty
	}
	return Set{levels: []Level{l}}
}

// Contains reports whether l is a member of d ("mentions" in spec wording).
func (d Set) Contains(l Level) bool {
	i := sort.Search(len(d.levels), func(i int) bool { return d.levels[i] >= l })
	return i < len(d.levels) && d.levels[i] == l
}

// Empty reports whether d has no levels.
func (d Set) Empty() bool { return len(d.levels) == 0 }

// Len returns the number of levels in d.
func (d Set) Len() int { return len(d.levels) }

// Max returns the maximum level in d and true, or (0, false) if d is empty.
// This is the level backjumping restores to.
func (d Set) Max() (Level, bool) {
	if len(d.levels) == 0 {
		return 0, false
	}
	return d.levels[len(d.levels)-1], true
}

// Levels returns the sorted levels in d. The caller must not modify the
// returned slice.
func (d Set) Levels() []Level { return d.levels }

// Union returns the dep-set containing every level in d or o. Union is
// idempotent: Union(d, d) == d.
func Union(d, o Set) Set {
	if len(d.levels) == 0 {
		return o
	}
	if len(o.levels) == 0 {
		return d
	}
	merged := make([]Level, 0, len(d.levels)+len(o.levels))
	i, j := 0, 0
	for i < len(d.levels) && j < len(o.levels) {
		switch {
		case d.levels[i] < o.levels[j]:
			merged = append(merged, d.levels[i])
			i++
		case d.levels[i] > o.levels[j]:
			merged = append(merged, o.levels[j])
			j++
		default:
			merged = append(merged, d.levels[i])
			i++
			j++
		}
	}
	merged = append(merged, d.levels[i:]...)
	merged = append(merged, o.levels[j:]...)
	return Set{levels: merged}
}

// With returns d with l added.
func (d Set) With(l Level) Set {
	if l == 0 {
		return d
	}
	return Union(d, Singleton(l))
}

// Dominates reports whether every level in o is also in d, i.e. d is a
// (non-strict) superset of o. Used by the label saturation rule (§8,
// "Saturation idempotence"): re-adding (bp, d) where an existing (bp, d')
// already dominates d is a no-op.
func (d Set) Dominates(o Set) bool {
	if len(o.levels) > len(d.levels) {
		return false
	}
	i := 0
	for _, l := range o.levels {
		for i < len(d.levels) && d.levels[i] < l {
			i++
		}
		if i >= len(d.levels) || d.levels[i] != l {
			return false
		}
	}
	return true
}

// Trim returns d restricted to levels <= max, discarding anything above it.
// Used when restoring to a branch level: dep-sets recorded at levels beyond
// the restore point can no longer be mentioned by surviving facts.
func (d Set) Trim(max Level) Set {
	i := sort.Search(len(d.levels), func(i int) bool { return d.levels[i] > max })
	if i == len(d.levels) {
		return d
	}
	return Set{levels: d.levels[:i:i]}
}

// Equal reports whether d and o contain exactly the same levels.
func (d Set) Equal(o Set) bool {
	if len(d.levels) != len(o.levels) {
		return false
	}
	for i := range d.levels {
		if d.levels[i] != o.levels[i] {
			return false
		}
	}
	return true
}

func (d Set) String() string {
	if len(d.levels) == 0 {
		return "{}"
	}
	b := []byte{'{'}
	for i, l := range d.levels {
		if i > 0 {
			b = append(b, ',', ' ')
		}
		b = appendUint(b, uint64(l))
	}
	return string(append(b, '}'))
}

func appendUint(b []byte, v uint64) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, tmp[i:]...)
}
