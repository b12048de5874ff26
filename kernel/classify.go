package kernel

import (
	"context"
	"sort"

	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/toposort"
)

// taxTop and taxBottom name the two sentinel taxonomy vertices every
// classification has even if the KB never declared a concept named Top or
// Bottom: every concept subsumes Bottom and is subsumed by Top.
const (
	taxTop    = "⊤"
	taxBottom = "⊥"
)

// TaxonomyNode is one vertex of a classified taxonomy: an equivalence
// class of concept names (singleton in the common case; more than one
// member when two or more declared concepts turned out equivalent) plus
// its direct neighbours in the subsumption Hasse diagram.
type TaxonomyNode struct {
	Names    []string
	Parents  []*TaxonomyNode
	Children []*TaxonomyNode
}

// Primary is the canonical (lexicographically first) name for this
// equivalence class, used wherever a single label is needed.
func (n *TaxonomyNode) Primary() string { return n.Names[0] }

// Taxonomy is the classified concept hierarchy (§6 "Classification"): the
// result of running pairwise subsumption over every declared concept name,
// grouping mutually-subsuming names into one vertex, and reducing the
// result to its direct (Hasse-diagram) edges.
type Taxonomy struct {
	byName map[string]*TaxonomyNode
	order  []*TaxonomyNode // general (Top) to specific (Bottom)
	top    *TaxonomyNode
	bottom *TaxonomyNode
}

// Top and Bottom return the taxonomy's universal and empty vertices.
func (t *Taxonomy) Top() *TaxonomyNode    { return t.top }
func (t *Taxonomy) Bottom() *TaxonomyNode { return t.bottom }

// Node returns the vertex a declared concept name belongs to, or nil.
func (t *Taxonomy) Node(name string) *TaxonomyNode { return t.byName[name] }

func conceptTreeFor(name string) *dag.Tree {
	switch name {
	case taxTop:
		return dag.Top()
	case taxBottom:
		return dag.Bottom()
	default:
		return dag.Name(name)
	}
}

// declaredConceptNames returns every non-individual concept name
// registered in the compiled store, in declaration order.
func (k *Kernel) declaredConceptNames() []string {
	var names []string
	seen := map[string]bool{}
	for _, a := range k.axioms {
		if a.retracted || a.kind != axConceptDecl {
			continue
		}
		if !seen[a.name] {
			seen[a.name] = true
			names = append(names, a.name)
		}
	}
	return names
}

// Classify computes the full subsumption taxonomy over every declared
// concept name (§6 "Classification"), via O(n²) pairwise IsSubsumed
// queries followed by equivalence grouping and Hasse-diagram direct-edge
// reduction — the standard DL classification algorithm (Taxonomy building
// in FaCT++'s own Kernel.cpp), adapted here to drive this package's own
// query primitive instead of a dedicated classification rule.
func (k *Kernel) Classify(ctx context.Context) (*Taxonomy, error) {
	names := k.declaredConceptNames()
	all := append([]string{taxTop, taxBottom}, names...)
	n := len(all)

	subsumed := make([][]bool, n)
	for i := range subsumed {
		subsumed[i] = make([]bool, n)
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				subsumed[i][j] = true
				continue
			}
			if a == taxTop {
				subsumed[i][j] = (b == taxTop)
				continue
			}
			if b == taxBottom {
				subsumed[i][j] = (a == taxBottom)
				continue
			}
			if a == taxBottom || b == taxTop {
				subsumed[i][j] = true
				continue
			}
			ans, err := k.IsSubsumed(ctx, conceptTreeFor(a), conceptTreeFor(b))
			if err != nil {
				return nil, err
			}
			subsumed[i][j] = ans == AnswerYes
		}
	}

	// Group mutually-subsuming names into equivalence classes.
	classOf := make([]int, n)
	for i := range classOf {
		classOf[i] = -1
	}
	var classes [][]int
	for i := 0; i < n; i++ {
		if classOf[i] != -1 {
			continue
		}
		c := len(classes)
		members := []int{i}
		classOf[i] = c
		for j := i + 1; j < n; j++ {
			if classOf[j] == -1 && subsumed[i][j] && subsumed[j][i] {
				classOf[j] = c
				members = append(members, j)
			}
		}
		classes = append(classes, members)
	}

	nodes := make([]*TaxonomyNode, len(classes))
	byName := map[string]*TaxonomyNode{}
	for c, members := range classes {
		var memberNames []string
		for _, idx := range members {
			memberNames = append(memberNames, all[idx])
		}
		sort.Strings(memberNames)
		node := &TaxonomyNode{Names: memberNames}
		nodes[c] = node
		for _, name := range memberNames {
			byName[name] = node
		}
	}

	// classSubsumed[c1][c2]: does c1 ⊑ c2, using any member pair (all
	// members of a class agree by construction).
	classSubsumed := func(c1, c2 int) bool {
		return subsumed[classes[c1][0]][classes[c2][0]]
	}

	builder := toposort.NewGraphBuilder()
	for c := range classes {
		builder.EnsureNode(nodes[c].Primary())
	}
	// Direct-edge reduction: c1's direct super is c2 iff c1 ⊑ c2, c1 != c2,
	// and no intermediate c3 exists with c1 ⊑ c3 ⊑ c2 (c3 distinct from
	// both) — the standard Hasse-diagram condition.
	for c1 := range classes {
		for c2 := range classes {
			if c1 == c2 || !classSubsumed(c1, c2) {
				continue
			}
			direct := true
			for c3 := range classes {
				if c3 == c1 || c3 == c2 {
					continue
				}
				if classSubsumed(c1, c3) && classSubsumed(c3, c2) {
					direct = false
					break
				}
			}
			if direct {
				nodes[c1].Parents = append(nodes[c1].Parents, nodes[c2])
				nodes[c2].Children = append(nodes[c2].Children, nodes[c1])
				builder.AddEdge(nodes[c1].Primary(), nodes[c2].Primary())
			}
		}
	}

	g := builder.Build()
	var order []*TaxonomyNode
	for _, level := range g.Levels() {
		for _, name := range level {
			order = append(order, byName[name])
		}
	}

	return &Taxonomy{
		byName: byName,
		order:  order,
		top:    byName[taxTop],
		bottom: byName[taxBottom],
	}, nil
}

// Actor is the visitor a Taxonomy.Walk drives over the classified
// hierarchy, general concepts first: Apply returns false to stop the walk
// early once the caller has seen enough (e.g. found the single vertex it
// was searching for).
type Actor interface {
	Apply(node *TaxonomyNode) bool
}

// Walk drives a general-to-specific traversal of the taxonomy, calling
// a.Apply on every vertex until it returns false or the taxonomy is
// exhausted.
func (t *Taxonomy) Walk(a Actor) {
	for _, node := range t.order {
		if !a.Apply(node) {
			return
		}
	}
}

// RealiseIndividual returns the most specific declared concepts
// individual is necessarily an instance of (§6 "Realisation"): every
// concept it is an IsInstance of, minus any concept whose taxonomy node is
// a proper ancestor of another result (so only the "direct types" survive,
// matching the usual DL realisation contract).
func (k *Kernel) RealiseIndividual(ctx context.Context, tax *Taxonomy, individual string) ([]string, error) {
	var types []string
	for _, name := range k.declaredConceptNames() {
		ans, err := k.IsInstance(ctx, individual, dag.Name(name))
		if err != nil {
			return nil, err
		}
		if ans == AnswerYes {
			types = append(types, name)
		}
	}

	isAncestor := func(a, b *TaxonomyNode) bool {
		if a == b {
			return false
		}
		seen := map[*TaxonomyNode]bool{}
		var walk func(n *TaxonomyNode) bool
		walk = func(n *TaxonomyNode) bool {
			if seen[n] {
				return false
			}
			seen[n] = true
			for _, p := range n.Parents {
				if p == a || walk(p) {
					return true
				}
			}
			return false
		}
		return walk(b)
	}

	var direct []string
	for _, name := range types {
		node := tax.Node(name)
		isMostSpecific := true
		for _, other := range types {
			if other == name {
				continue
			}
			otherNode := tax.Node(other)
			if node != nil && otherNode != nil && isAncestor(node, otherNode) {
				isMostSpecific = false
				break
			}
		}
		if isMostSpecific {
			direct = append(direct, name)
		}
	}
	sort.Strings(direct)
	return direct, nil
}
