// Package tableau is the expansion engine named in spec §2 as C7: it pops
// scheduled (node, concept) pairs off a priority queue, applies the rule
// keyed by the concept's DAG tag and sign, and on clash backjumps to the
// branching level the clash's dependency set names (§4.3).
//
// It is grounded on Kernel/Reasoner.cpp's main "doReasoning" checkSatisfy
// loop: the todo-list/priority split mirrors ToDoList's ring of per-
// priority queues, and beginBranch/backjump mirror DlCompletionGraph's
// createBranchingContext/SaveState pair plus Reasoner.cpp's backjumping
// restoration (restore to level, retry next choice, or drop a level and
// keep unwinding).
package tableau

import (
	"context"
	"errors"

	"github.com/dtsarkov/shiq/internal/blocking"
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/depset"
	"github.com/dtsarkov/shiq/internal/graph"
	"github.com/dtsarkov/shiq/internal/roles"
)

// ErrTimeout is returned by Run when ctx is cancelled before the tableau
// reaches a verdict (§5 "A cooperative timeout is checked at each tableau
// main-loop iteration").
var ErrTimeout = errors.New("tableau: operation timed out")

// Engine drives one tableau run against a shared DAG store and completion
// graph. A fresh Engine should be used per query: branch/clash state does
// not reset itself between Run calls.
type Engine struct {
	Store    *dag.Store
	Graph    *graph.Graph
	Blocking *blocking.Engine

	todo     *todoQueue
	branches []*branchPoint

	clashed  bool
	clashDep depset.Set

	nominals map[dag.BP]*graph.Node
}

// New creates a tableau engine over store/g, using blk for loop detection.
func New(store *dag.Store, g *graph.Graph, blk *blocking.Engine) *Engine {
	return &Engine{
		Store:    store,
		Graph:    g,
		Blocking: blk,
		todo:     newTodoQueue(g),
		nominals: map[dag.BP]*graph.Node{},
	}
}

// Run asserts concept on root (with dependency set depset.Empty) and drives
// the tableau to completion: every newly created or affected node also
// picks up the accumulated GCI (§4.2 "After each addition, also add the GCI
// concept T_G to any newly created or affected node"). It returns whether a
// model was found (root's branch survives to todo-exhaustion), or
// ErrTimeout if ctx is cancelled first.
func (e *Engine) Run(ctx context.Context, root *graph.Node, concept dag.BP) (bool, error) {
	root.Init = dag.TOP
	e.addFact(root, concept, depset.Empty)
	e.addFact(root, e.Store.GCI(), depset.Empty)
	if e.clashed {
		return !e.backjump(), nil
	}
	return e.loop(ctx)
}

// Seed asserts concept on node, reversibly and with clash detection, but
// without driving the main loop — for callers (kernel) that prime several
// nodes of a shared ABox graph before a single RunLoop call, unlike Run's
// single-root convenience.
func (e *Engine) Seed(node *graph.Node, concept dag.BP, dep depset.Set) {
	e.addFact(node, concept, dep)
}

// NewIndividual returns the nominal node registered for bp, creating one
// if this is the first call for bp. Using the engine's own registry (the
// one applySingleton consults for the +SINGLETON rule) means an ABox
// individual seeded directly by the kernel merges correctly with any
// nominal node the tableau creates later for the same named individual.
func (e *Engine) NewIndividual(bp dag.BP) *graph.Node {
	if n, ok := e.nominals[bp]; ok {
		return e.resolve(n)
	}
	n := e.Graph.NewNode(true)
	n.Init = dag.TOP
	e.nominals[bp] = n
	return n
}

// RunLoop drives the main loop to completion, timeout, or clash, without
// seeding anything itself. Callers must have asserted every initial fact
// via Seed first; Run is the single-root convenience built on top of this
// plus one Seed call.
func (e *Engine) RunLoop(ctx context.Context) (bool, error) {
	if e.clashed {
		return !e.backjump(), nil
	}
	return e.loop(ctx)
}

func (e *Engine) loop(ctx context.Context) (bool, error) {
	const checkEvery = 256
	for i := 0; ; i++ {
		if i%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return false, ErrTimeout
			default:
			}
		}

		ent, ok := e.todo.pop(e.Store)
		if !ok {
			return true, nil
		}
		node := e.resolve(ent.node)
		if node.PBlocked() || blocking.Suppressed(node) {
			continue
		}
		if node.Affected && node.Blockable() {
			e.Blocking.DetectBlockedStatus(e.Graph, node, e.reschedule)
			if node.Blocked {
				continue
			}
		}
		if !node.Label.Has(ent.bp) {
			// The fact was withdrawn by an intervening rollback, or folded
			// away by a merge that landed it on a different node; nothing
			// to do.
			continue
		}
		e.applyRule(node, ent.bp, node.Label.Dep(ent.bp))
		if e.clashed {
			if unsat := e.backjump(); unsat {
				return false, nil
			}
		}
	}
}

// resolve follows a chain of merges to the node that currently stands for
// n, since MergeInto leaves n.Merged set but n itself inert.
func (e *Engine) resolve(n *graph.Node) *graph.Node {
	for n.Merged != nil {
		n = n.Merged
	}
	return n
}

// addFact asserts bp on node (following n's merge chain first), schedules
// it if freshly asserted, and checks for a clash immediately — the clash
// dependency set is recorded but not yet acted on; callers drive backjump
// once they are done asserting for this rule application.
func (e *Engine) addFact(node *graph.Node, bp dag.BP, dep depset.Set) {
	node = e.resolve(node)
	if e.Graph.AddFact(node, bp, dep) {
		e.schedule(node, bp)
	}
	if !e.clashed {
		if clashed, cdep := node.Label.Clash(); clashed {
			e.clashed = true
			e.clashDep = cdep
		}
	}
}

func (e *Engine) schedule(node *graph.Node, bp dag.BP) {
	e.todo.push(node, bp)
}

// reschedule re-queues every fact already on node's label. Used both when
// unblockNode reactivates a node whose rule applications had been
// suppressed while it was blocked, and after a merge: MergeInto folds
// src's facts into dst via the bare Graph.AddFact (it has no knowledge of
// the tableau's queue), so the merge rules call this afterward to make
// sure every fact now on dst — old or newly arrived — gets a chance to
// fire again.
func (e *Engine) reschedule(node *graph.Node) {
	node.Label.Facts(func(bp dag.BP, _ depset.Set) {
		e.schedule(node, bp)
	})
}

// setClash records dep as the justification for an already-detected clash,
// without overwriting one recorded earlier in the same rule application.
func (e *Engine) setClash(dep depset.Set) {
	if !e.clashed {
		e.clashed = true
		e.clashDep = dep
	}
}

// checkClash tests node's label directly, for callers (the merge rules)
// that mutate a label through a path other than addFact and so need to
// request the clash check explicitly.
func (e *Engine) checkClash(node *graph.Node) {
	if e.clashed {
		return
	}
	if clashed, cdep := node.Label.Clash(); clashed {
		e.clashed = true
		e.clashDep = cdep
	}
}

// addSuccessor creates a fresh R-successor of parent (the ∃/≥ rules'
// "generate a new R-successor" step, §4.2 addEdge), gives it init so
// blocking's cheap rejection can use it, and seeds its label with the
// accumulated GCI before returning it. The initial filler concept, if any,
// must still be asserted by the caller via addFact.
//
// A ∀R.C already fired on parent before this successor existed never gets
// a second chance to run: +FORALL is scheduled ahead of the ∃/≥ rules that
// generate successors (§4.3 step 4's priority order), so by the time this
// edge is created, parent's positive TagForall facts have already swept
// every neighbour that existed at the time. addEdge must therefore replay
// each of them across the new arc directly, the same per-arc step
// applyForallPos uses for its sweep (§4.2 addEdge "inherit the endpoints'
// applicable universal restrictions").
func (e *Engine) addSuccessor(parent *graph.Node, r *roles.Role, init dag.BP, dep depset.Set, nominal bool) *graph.Node {
	child := e.Graph.NewNode(nominal)
	arc := e.Graph.AddArc(parent, child, r, dep)
	child.Parent = arc
	child.Init = init
	e.addFact(child, e.Store.GCI(), depset.Empty)

	parent.Label.Facts(func(bp dag.BP, fdep depset.Set) {
		if !bp.IsPositive() {
			return
		}
		v := e.Store.At(bp)
		if v.Tag != dag.TagForall {
			return
		}
		e.applyForallToArc(v.Role.Automaton(), arc, bp, v, fdep)
	})
	return child
}
