package models

import (
	"errors"
	"fmt"

	"excavator/internal/ast"
)

var (
	// ErrMalformedAst means the input tree broke a structural precondition.
	// It points at a front-end bug and is never recovered.
	ErrMalformedAst = errors.New("malformed ast")

	// ErrUnsupportedConstruct means the calculator met a node it has no rule
	// for. Counting on would under-report complexity.
	ErrUnsupportedConstruct = errors.New("unsupported construct")

	// ErrGoldenMissing means no expected report exists for a source.
	ErrGoldenMissing = errors.New("golden file missing")
)

// ConstructError carries the offending node's location.
type ConstructError struct {
	Err     error
	Kind    ast.Kind
	Keyword string
	Span    ast.Span
	Detail  string
}

func (e *ConstructError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Err, e.Kind)
	if e.Keyword != "" {
		msg += fmt.Sprintf(" %q", e.Keyword)
	}
	msg += " at " + e.Span.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConstructError) Unwrap() error { return e.Err }

// Malformed builds a MalformedAst error for n.
func Malformed(n *ast.Node, detail string) error {
	ce := &ConstructError{Err: ErrMalformedAst, Detail: detail}
	if n != nil {
		ce.Kind = n.Kind
		ce.Span = n.Span
	}
	return ce
}

// Unsupported builds an UnsupportedConstruct error for n.
func Unsupported(n *ast.Node, detail string) error {
	return &ConstructError{
		Err:     ErrUnsupportedConstruct,
		Kind:    n.Kind,
		Keyword: n.Keyword,
		Span:    n.Span,
		Detail:  detail,
	}
}
