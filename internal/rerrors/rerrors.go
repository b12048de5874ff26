// Package rerrors defines the shared error type returned by every Kernel
// API entry point (§7).
//
// The pivotal type is the interface Error. Unlike cue/errors's posError,
// which anchors a diagnostic to a token.Pos into parsed source text, an
// Error here anchors to an AxiomID: this reasoner never parses source, so
// the only thing worth blaming a failure on is which axiom produced it.
// Error, list, Wrap, Append, Sanitize and Print are direct adaptations of
// cuelang.org/go/cue/errors's eponymous machinery with that one
// substitution made throughout.
package rerrors

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// New is a convenience wrapper for [errors.New]; it does not return an
// Error attributable to any axiom.
func New(msg string) error {
	return errors.New(msg)
}

// NoAxiom is the zero value of an axiom id, meaning "not attributable to
// any single axiom" (e.g. an internal error raised before any axiom was
// read).
const NoAxiom int64 = -1

// A Message implements the error interface as well as Msg, to allow a
// caller to recover the unformatted template and arguments for later,
// possibly localized, rendering.
type Message struct {
	format string
	args   []interface{}
}

// NewMessagef creates an error message for human consumption. The argument
// list should not be modified afterwards.
func NewMessagef(format string, args ...interface{}) Message {
	return Message{format: format, args: args}
}

// Msg returns the unformatted template and its arguments.
func (m *Message) Msg() (format string, args []interface{}) {
	return m.format, m.args
}

func (m *Message) Error() string {
	return fmt.Sprintf(m.format, m.args...)
}

// Error is the common error type returned by the Kernel API.
type Error interface {
	error

	// AxiomID returns the id of the axiom primarily responsible for this
	// error, or NoAxiom if none applies.
	AxiomID() int64

	// InputAxioms reports every axiom id that contributed to this error
	// (e.g. every member of a clashing pair), excluding AxiomID itself.
	InputAxioms() []int64

	// Msg returns the unformatted template and its arguments for human
	// consumption.
	Msg() (format string, args []interface{})
}

// Newf creates an Error attributed to axiomID.
func Newf(axiomID int64, format string, args ...interface{}) Error {
	return &axError{axiomID: axiomID, Message: NewMessagef(format, args...)}
}

// Wrapf creates an Error attributed to axiomID, wrapping err for context.
func Wrapf(err error, axiomID int64, format string, args ...interface{}) Error {
	e := &axError{axiomID: axiomID, Message: NewMessagef(format, args...)}
	return Wrap(e, err)
}

// Wrap creates a new error where child is a subordinate error of parent.
// If child is itself a list, the result is a list where child is wrapped
// under parent element-wise.
func Wrap(parent Error, child error) Error {
	if child == nil {
		return parent
	}
	if a, ok := child.(list); ok {
		b := make(list, len(a))
		for i, err := range a {
			b[i] = &wrapped{parent, err}
		}
		return b
	}
	return &wrapped{parent, child}
}

type wrapped struct {
	main Error
	wrap error
}

func (e *wrapped) Error() string {
	switch msg := e.main.Error(); {
	case e.wrap == nil:
		return msg
	case msg == "":
		return e.wrap.Error()
	default:
		return fmt.Sprintf("%s: %s", msg, e.wrap)
	}
}

func (e *wrapped) Msg() (format string, args []interface{}) { return e.main.Msg() }
func (e *wrapped) AxiomID() int64                           { return e.main.AxiomID() }

func (e *wrapped) InputAxioms() []int64 {
	ids := append([]int64(nil), e.main.InputAxioms()...)
	if w, ok := e.wrap.(Error); ok {
		ids = append(ids, w.AxiomID())
		ids = append(ids, w.InputAxioms()...)
	}
	return ids
}

func (e *wrapped) Unwrap() error { return e.wrap }

// Promote converts a plain Go error into an Error, attributing it to
// NoAxiom if it isn't already one.
func Promote(err error, msg string) Error {
	if x, ok := err.(Error); ok {
		return x
	}
	return Wrapf(err, NoAxiom, "%s", msg)
}

var _ Error = &axError{}

type axError struct {
	axiomID int64
	Message
}

func (e *axError) AxiomID() int64       { return e.axiomID }
func (e *axError) InputAxioms() []int64 { return nil }

// Append combines two errors, flattening lists as necessary, preserving
// order.
func Append(a, b Error) Error {
	switch x := a.(type) {
	case nil:
		return b
	case list:
		return appendToList(x, b)
	}
	return appendToList(list{a}, b)
}

// Errors reports the individual errors making up err: err itself if it
// isn't a list, or its elements if it is. A plain Go error is promoted
// first.
func Errors(err error) []Error {
	if err == nil {
		return nil
	}
	var l list
	var e Error
	switch {
	case errors.As(err, &l):
		return l
	case errors.As(err, &e):
		return []Error{e}
	default:
		return []Error{Promote(err, "")}
	}
}

func appendToList(a list, err Error) list {
	switch x := err.(type) {
	case nil:
		return a
	case list:
		if len(a) == 0 {
			return x
		}
		for _, e := range x {
			a = appendToList(a, e)
		}
		return a
	default:
		for _, e := range a {
			if e == err {
				return a
			}
		}
		return append(a, err)
	}
}

// list is a list of Errors, the concrete type behind a Kernel call that
// reports more than one diagnostic (e.g. a consistency check that both
// times out and hits an internal invariant failure).
type list []Error

// AddNewf adds an Error attributed to axiomID and formatted from msg/args.
func (p *list) AddNewf(axiomID int64, msg string, args ...interface{}) {
	*p = append(*p, Newf(axiomID, msg, args...))
}

// Add appends err, flattening if err is itself a list.
func (p *list) Add(err Error) { *p = appendToList(*p, err) }

// Reset empties the list.
func (p *list) Reset() { *p = (*p)[:0] }

// Sanitize sorts the list and removes duplicates on a best-effort basis,
// collapsing to a single Error (not a list) if only one remains.
func Sanitize(err Error) Error {
	if err == nil {
		return nil
	}
	l, ok := err.(list)
	if !ok {
		return err
	}
	a := slices.Clone(l)
	a.Sort()
	a = slices.CompactFunc(a, func(x, y Error) bool { return x.AxiomID() == y.AxiomID() && x.Error() == y.Error() })
	if len(a) == 1 {
		return a[0]
	}
	return a
}

// Sort orders the list by axiom id, NoAxiom first, then by message.
func (p list) Sort() {
	slices.SortFunc(p, func(a, b Error) int {
		if a.AxiomID() != b.AxiomID() {
			if a.AxiomID() == NoAxiom {
				return -1
			}
			if b.AxiomID() == NoAxiom {
				return 1
			}
			if a.AxiomID() < b.AxiomID() {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Error(), b.Error())
	})
}

func (p list) Error() string {
	format, args := p.Msg()
	return fmt.Sprintf(format, args...)
}

// Msg reports the unformatted template for the first error, noting how
// many more follow.
func (p list) Msg() (format string, args []interface{}) {
	switch len(p) {
	case 0:
		return "no errors", nil
	case 1:
		return p[0].Msg()
	}
	return "%s (and %d more errors)", []interface{}{p[0], len(p) - 1}
}

func (p list) AxiomID() int64 {
	if len(p) == 0 {
		return NoAxiom
	}
	return p[0].AxiomID()
}

func (p list) InputAxioms() []int64 {
	if len(p) == 0 {
		return nil
	}
	return p[0].InputAxioms()
}

// Err returns an error equivalent to the list, or nil if it is empty.
func (p list) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// Config controls how Print renders errors.
type Config struct {
	// Format formats the given string and arguments and writes it to w. It
	// is used for all printing; nil means fmt.Fprintf.
	Format func(w io.Writer, format string, args ...interface{})
}

var zeroConfig = &Config{}

// Print writes err to w, one diagnostic per line, expanding a list into
// its elements.
func Print(w io.Writer, err error, cfg *Config) {
	if cfg == nil {
		cfg = zeroConfig
	}
	fprintf := cfg.Format
	if fprintf == nil {
		fprintf = func(w io.Writer, format string, args ...interface{}) { fmt.Fprintf(w, format, args...) }
	}
	for _, e := range Errors(err) {
		writeErr(w, e, fprintf)
		if ids := e.InputAxioms(); len(ids) > 0 {
			fprintf(w, " (axioms:")
			for _, id := range ids {
				fprintf(w, " %d", id)
			}
			fprintf(w, ")")
		}
		fprintf(w, "\n")
	}
}

func writeErr(w io.Writer, err Error, fprintf func(io.Writer, string, ...interface{})) {
	if id := err.AxiomID(); id != NoAxiom {
		fprintf(w, "axiom %d: ", id)
	}
	msg, args := err.Msg()
	fprintf(w, msg, args...)
}

// Details is a convenience wrapper for Print returning the error text as a
// string.
func Details(err error, cfg *Config) string {
	var b strings.Builder
	Print(&b, err, cfg)
	return b.String()
}
