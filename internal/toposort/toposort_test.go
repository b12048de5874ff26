package toposort

import "testing"

func TestLevelsOrdersByDependency(t *testing.T) {
	b := NewGraphBuilder()
	// Animal <- Dog, Animal <- Cat, Dog <- Poodle (edge: from is
	// subsumed by to).
	b.AddEdge("Dog", "Animal")
	b.AddEdge("Cat", "Animal")
	b.AddEdge("Poodle", "Dog")

	g := b.Build()
	levels := g.Levels()

	want := [][]string{
		{"Animal"},
		{"Cat", "Dog"},
		{"Poodle"},
	}
	if len(levels) != len(want) {
		t.Fatalf("Levels() = %v, want %v", levels, want)
	}
	for i := range want {
		if !equalStrings(levels[i], want[i]) {
			t.Fatalf("level %d = %v, want %v", i, levels[i], want[i])
		}
	}
}

func TestLevelsCollapsesEquivalenceCycle(t *testing.T) {
	b := NewGraphBuilder()
	// A and B mutually subsume each other: an equivalence cycle.
	b.AddEdge("A", "B")
	b.AddEdge("B", "A")
	b.AddEdge("A", "Top")
	b.AddEdge("B", "Top")

	g := b.Build()
	levels := g.Levels()

	if len(levels) != 2 {
		t.Fatalf("expected 2 levels (Top, then the {A,B} cycle), got %v", levels)
	}
	if !equalStrings(levels[0], []string{"Top"}) {
		t.Fatalf("level 0 = %v, want [Top]", levels[0])
	}
	if !equalStrings(levels[1], []string{"A", "B"}) {
		t.Fatalf("level 1 = %v, want [A B]", levels[1])
	}
}

func TestEnsureNodeKeepsIsolatedNodes(t *testing.T) {
	b := NewGraphBuilder()
	b.EnsureNode("Lonely")
	b.AddEdge("X", "Y")

	g := b.Build()
	levels := g.Levels()

	var all []string
	for _, l := range levels {
		all = append(all, l...)
	}
	found := false
	for _, n := range all {
		if n == "Lonely" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected isolated node Lonely to appear in Levels(), got %v", levels)
	}
}

func TestSortIsFlatAndRespectsEdges(t *testing.T) {
	b := NewGraphBuilder()
	b.AddEdge("Dog", "Animal")
	b.AddEdge("Poodle", "Dog")

	g := b.Build()
	order := g.Sort()

	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos["Animal"] >= pos["Dog"] {
		t.Fatalf("Animal should sort before Dog, got order %v", order)
	}
	if pos["Dog"] >= pos["Poodle"] {
		t.Fatalf("Dog should sort before Poodle, got order %v", order)
	}
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	b := NewGraphBuilder()
	b.AddEdge("X", "Y")
	b.AddEdge("X", "Y")

	n := b.nodes["X"]
	if len(n.Outgoing) != 1 {
		t.Fatalf("expected a duplicate AddEdge to be a no-op, got %d outgoing edges", len(n.Outgoing))
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
