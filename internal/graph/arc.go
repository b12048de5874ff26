package graph

import (
	"github.com/dtsarkov/shiq/internal/depset"
	"github.com/dtsarkov/shiq/internal/roles"
)

// Arc is one role edge between two nodes. Every edge is created alongside
// its inverse (an R-edge from x to y always has a matching inv(R)-edge
// from y to x), mirroring dlCompletionTree's paired successor/predecessor
// edge structure — so a rule that needs "all R-predecessors of y" can just
// follow y's Out arcs labelled by inv(R).
type Arc struct {
	From, To *Node
	Role     *roles.Role
	Dep      depset.Set

	// Inverse is the matching edge in the opposite direction, never nil.
	Inverse *Arc
}

// IBlocked reports whether this arc is indirectly blocked because its
// source node is blocked (§3 "Arc ... IBlocked flag"): rule application
// skips such arcs even though the arc itself carries no independent
// blocked state, matching Blocking.cpp's `(*p)->isIBlocked()` guard in B2,
// which simply defers to the edge's endpoint.
func (a *Arc) IBlocked() bool { return a.From.Blocked }

// RoleSatisfies reports whether this arc can serve as an R'-neighbour for
// role r (§4.3's "an R'-neighbour where R' is a sub-role of R").
func (a *Arc) RoleSatisfies(r *roles.Role) bool {
	return a.Role.SubsumedBy(r)
}
