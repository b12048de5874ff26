package kernel

import "github.com/dtsarkov/shiq/internal/rerrors"

// Kind is the four-value error taxonomy named in spec §7.
type Kind int

const (
	// KindInconsistentKB means the knowledge base's ABox is itself
	// contradictory: every subsequent query other than IsConsistent
	// answers YES trivially (§7 "all subsequent queries return YES
	// trivially").
	KindInconsistentKB Kind = iota
	// KindUnsupported means an axiom or query used a construct the core
	// cannot decide (e.g. an undeclared name, or a role characteristic
	// inconsistent with the selected blocking regime).
	KindUnsupported
	// KindTimeout means the cooperative timeout fired before the tableau
	// reached a verdict (§5). It is the one Kind that supersedes a query's
	// Boolean return entirely, matching §6's "TIMEOUT is an out-of-band
	// error that supersedes the return".
	KindTimeout
	// KindInternal means an invariant of the core itself was violated;
	// non-recoverable.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInconsistentKB:
		return "INCONSISTENT_KB"
	case KindUnsupported:
		return "UNSUPPORTED"
	case KindTimeout:
		return "TIMEOUT"
	case KindInternal:
		return "INTERNAL"
	default:
		return "?"
	}
}

// Error is the common error type every Kernel API entry point returns on
// failure. It embeds internal/rerrors.Error (axiom-attributed diagnostics,
// §7) and adds the Kind taxonomy this package's callers switch on.
type Error struct {
	rerrors.Error
	Kind Kind
}

// Newf creates an Error of the given kind, attributed to axiomID
// (rerrors.NoAxiom if the failure isn't attributable to one axiom).
func Newf(kind Kind, axiomID int64, format string, args ...interface{}) *Error {
	return &Error{Error: rerrors.Newf(axiomID, format, args...), Kind: kind}
}

// Unwrap exposes the underlying rerrors.Error to errors.As/errors.Is.
func (e *Error) Unwrap() error { return e.Error }
