// Package kernel is the external Kernel API named in spec §6: the single
// façade a caller builds a knowledge base through, modelled on FaCT++'s C
// API (one KB open at a time, an append-only axiom stream, an explicit
// Preprocess step, then a battery of yes/no/unknown queries).
//
// Nothing here implements tableau reasoning itself — every query reduces
// to one or more internal/tableau.Engine runs over the DAG and role system
// internal/dag and internal/roles already provide (§2's C1-C9). This
// package's own job is axiom bookkeeping, the DL-standard query-to-
// unsatisfiability reductions (§6), and the all-or-nothing preprocessing
// pipeline (§7).
package kernel

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dtsarkov/shiq/internal/blocking"
	"github.com/dtsarkov/shiq/internal/dag"
	"github.com/dtsarkov/shiq/internal/rerrors"
	"github.com/dtsarkov/shiq/internal/roles"
)

var (
	openMu sync.Mutex
	openKB *Kernel
)

type roleAssertion struct {
	from, role, to string
}

type conceptAssertion struct {
	individual string
	concept    dag.BP
}

// Kernel is one knowledge base session. Exported fields are limited to ID;
// everything else is accessed through methods, mirroring the opaque
// handle FaCT++'s reasoner object presents through its C API.
type Kernel struct {
	mu  sync.Mutex
	ID  uuid.UUID
	cfg Config

	axioms      []*Axiom
	nextAxiomID AxiomID
	changed     bool

	preprocessed bool
	roleSystem   *roles.System
	store        *dag.Store
	regime       blocking.Regime
	anywhere     bool

	individualBP    map[string]dag.BP
	individualOrder []string
	roleAssertions  []roleAssertion
	conceptFacts    []conceptAssertion

	// consistent caches the verdict of the last IsConsistent run against
	// the currently preprocessed state; nil means "not yet decided" and is
	// reset by every successful Preprocess (§7: a cached answer must never
	// outlive the axiom state it was computed from).
	consistent *bool
}

// NewKB opens a fresh knowledge base under cfg, enforcing FaCT++'s
// single-open-KB-per-process discipline (§6: "NewKB fails if a KB is
// already open"). The returned Kernel must eventually be passed to
// Release.
func NewKB(cfg Config) (*Kernel, error) {
	openMu.Lock()
	defer openMu.Unlock()
	if openKB != nil {
		return nil, Newf(KindUnsupported, rerrors.NoAxiom,
			"kernel: a knowledge base is already open (session %s)", openKB.ID)
	}
	k := &Kernel{ID: uuid.New(), cfg: cfg}
	openKB = k
	return k, nil
}

// Release closes k, freeing the process-wide slot NewKB enforces.
// Releasing an already-released or never-opened Kernel is a no-op.
func (k *Kernel) Release() {
	openMu.Lock()
	defer openMu.Unlock()
	if openKB == k {
		openKB = nil
	}
}

// Config returns the configuration k was opened with.
func (k *Kernel) Config() Config { return k.cfg }

// Clear discards every axiom and compiled state, returning k to the state
// NewKB left it in (§6 "clearKB()"); the session id and configuration
// survive.
func (k *Kernel) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.axioms = nil
	k.nextAxiomID = 0
	k.changed = false
	k.resetCompiled()
}

func (k *Kernel) resetCompiled() {
	k.preprocessed = false
	k.roleSystem = nil
	k.store = nil
	k.individualBP = nil
	k.individualOrder = nil
	k.roleAssertions = nil
	k.conceptFacts = nil
	k.consistent = nil
}
