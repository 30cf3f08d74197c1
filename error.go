package catcomp

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to test an error returned by this package.
var (
	ErrParse               = errors.New("parse error")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrMalformedEntry      = errors.New("malformed entry")
	ErrUnknownLanguage     = errors.New("unknown language")
	ErrUnknownIdentifier   = errors.New("unknown identifier")
	ErrIO                  = errors.New("i/o error")
	ErrEncoding            = errors.New("encoding error")
)

// Error is the catalog error type. Identifier() and Line() are empty/zero when the
// failure is not tied to an entry or a source line.
type Error interface {
	Error() string
	Unwrap() error
	Kind() error
	Identifier() string
	Line() int
}

type DefaultError struct {
	kind   error
	ident  string
	line   int
	detail string
	err    error
}

func (ce *DefaultError) Error() string {
	msg := ce.kind.Error()
	if ce.line > 0 {
		msg = fmt.Sprintf("line %d: %s", ce.line, msg)
	}
	if ce.ident != "" {
		msg += fmt.Sprintf(" [%s]", ce.ident)
	}
	if ce.detail != "" {
		msg += ": " + ce.detail
	}
	if ce.err != nil {
		msg += ": " + ce.err.Error()
	}
	return msg
}

func (ce *DefaultError) Unwrap() error {
	return ce.err
}

// Is matches the error kind, so errors.Is(err, ErrMalformedEntry) holds for a
// malformed entry regardless of the wrapped cause.
func (ce *DefaultError) Is(target error) bool {
	return target == ce.kind
}

func (ce *DefaultError) Kind() error {
	return ce.kind
}

func (ce *DefaultError) Identifier() string {
	return ce.ident
}

func (ce *DefaultError) Line() int {
	return ce.line
}

func newCatalogError(kind error, line int, ident string, detail string, err error) error {
	return &DefaultError{kind: kind, line: line, ident: ident, detail: detail, err: err}
}
