package graph_test

import (
	"testing"

	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/depset"
	"github.com/dtsarkov/shiq/internal/graph"
	"github.com/dtsarkov/shiq/internal/roles"
)

func TestAddFactIsReversible(t *testing.T) {
	g := graph.New()
	n := g.NewNode(false)
	mark := g.Restore.Mark()
	g.AddFact(n, dag.TOP, depset.Singleton(1))
	if !n.Label.Has(dag.TOP) {
		t.Fatalf("fact should be present after AddFact")
	}
	g.Restore.RollbackTo(mark)
	if n.Label.Has(dag.TOP) {
		t.Fatalf("fact should be gone after rollback")
	}
}

func TestNodeCreationIsReversible(t *testing.T) {
	g := graph.New()
	mark := g.Restore.Mark()
	g.NewNode(false)
	g.NewNode(false)
	if len(g.Nodes()) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes()))
	}
	g.Restore.RollbackTo(mark)
	if len(g.Nodes()) != 0 {
		t.Fatalf("expected 0 nodes after rollback, got %d", len(g.Nodes()))
	}
}

func TestClashDetectsFactAndItsNegation(t *testing.T) {
	g := graph.New()
	n := g.NewNode(false)
	g.AddFact(n, dag.TOP, depset.Singleton(1))
	g.AddFact(n, dag.BOTTOM, depset.Singleton(2))
	clashed, dep := n.Label.Clash()
	if !clashed {
		t.Fatalf("TOP and BOTTOM together should clash")
	}
	if !dep.Contains(1) || !dep.Contains(2) {
		t.Fatalf("clash dep set should union both contributing levels, got %v", dep)
	}
}

func TestAddArcCreatesMatchingInverse(t *testing.T) {
	g := graph.New()
	rs := roles.NewSystem()
	r := rs.Declare("R")
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	a := g.NewNode(false)
	b := g.NewNode(false)
	arc := g.AddArc(a, b, r, depset.Empty)
	if arc.Inverse.From != b || arc.Inverse.To != a {
		t.Fatalf("inverse arc should run b->a")
	}
	if arc.Inverse.Role != r.Inverse() {
		t.Fatalf("inverse arc should be labelled with the role's inverse")
	}
	if len(a.Out) != 1 || len(b.Out) != 1 {
		t.Fatalf("both endpoints should see exactly one outgoing arc")
	}
}

func TestAddArcIsReversible(t *testing.T) {
	g := graph.New()
	rs := roles.NewSystem()
	r := rs.Declare("R")
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	a := g.NewNode(false)
	b := g.NewNode(false)
	mark := g.Restore.Mark()
	g.AddArc(a, b, r, depset.Empty)
	g.Restore.RollbackTo(mark)
	if len(a.Out) != 0 || len(b.Out) != 0 {
		t.Fatalf("arcs should be gone after rollback")
	}
}

func TestMergeIntoUnionsLabelsAndRedirectsEdges(t *testing.T) {
	g := graph.New()
	rs := roles.NewSystem()
	r := rs.Declare("R")
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	x := g.NewNode(false)
	y := g.NewNode(false) // merge target
	z := g.NewNode(false) // z --R--> x, will be redirected to y

	g.AddFact(x, dag.TOP, depset.Singleton(1))
	g.AddArc(z, x, r, depset.Singleton(1))

	g.MergeInto(x, y, depset.Singleton(2))

	if !y.Label.Has(dag.TOP) {
		t.Fatalf("y should inherit x's facts after merge")
	}
	if x.Merged != y {
		t.Fatalf("x.Merged should point at y")
	}

	found := false
	for _, out := range z.Out {
		if out.To == y {
			found = true
		}
		if out.To == x {
			t.Fatalf("z's edge should have been redirected away from x")
		}
	}
	if !found {
		t.Fatalf("z should now have an edge to y")
	}
}

func TestMergeIntoIsReversible(t *testing.T) {
	g := graph.New()
	rs := roles.NewSystem()
	r := rs.Declare("R")
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	x := g.NewNode(false)
	y := g.NewNode(false)
	z := g.NewNode(false)

	g.AddFact(x, dag.TOP, depset.Singleton(1))
	g.AddArc(z, x, r, depset.Singleton(1))

	mark := g.Restore.Mark()
	g.MergeInto(x, y, depset.Singleton(2))
	g.Restore.RollbackTo(mark)

	if x.Merged != nil {
		t.Fatalf("x should no longer be marked merged after rollback")
	}
	if y.Label.Has(dag.TOP) {
		t.Fatalf("y should not have x's facts after rollback")
	}
	found := false
	for _, out := range z.Out {
		if out.To == x {
			found = true
		}
	}
	if !found {
		t.Fatalf("z's edge to x should be restored after rollback")
	}
}

func TestAncestorsWalksParentChain(t *testing.T) {
	g := graph.New()
	rs := roles.NewSystem()
	r := rs.Declare("R")
	if err := rs.Compile(); err != nil {
		t.Fatal(err)
	}
	root := g.NewNode(false)
	arc1 := g.AddArc(root, g.NewNode(false), r, depset.Empty)
	child := arc1.To
	child.Parent = arc1
	arc2 := g.AddArc(child, g.NewNode(false), r, depset.Empty)
	grandchild := arc2.To
	grandchild.Parent = arc2

	var seen []*graph.Node
	grandchild.Ancestors(func(n *graph.Node) { seen = append(seen, n) })
	if len(seen) != 2 || seen[0] != child || seen[1] != root {
		t.Fatalf("expected [child, root], got %v", seen)
	}
}
