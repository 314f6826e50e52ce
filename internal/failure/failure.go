// Package failure classifies the errors a report run can end with.
//
// Every failure aborts the whole run. The kind only decides how the caller
// surfaces it: validation problems go back to the user, precondition
// violations are defects, IO errors are reported verbatim.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the class of a failure.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors not produced by this package.
	KindUnknown Kind = iota
	// KindValidation marks malformed or ragged input and invalid settings.
	KindValidation
	// KindPrecondition marks an internal contract breach.
	KindPrecondition
	// KindIO marks a failure to read input or write the output artifact.
	KindIO
)

// Sentinel errors matching each kind through errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrPrecondition = errors.New("precondition violation")
	ErrIO           = errors.New("io error")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindPrecondition:
		return ErrPrecondition
	case KindIO:
		return ErrIO
	default:
		return nil
	}
}

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if s := e.Kind.sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString("error")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Validation wraps err as a validation failure.
func Validation(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// Validationf formats a validation failure.
func Validationf(op, format string, args ...any) error {
	return Validation(op, fmt.Errorf(format, args...))
}

// Precondition wraps err as a precondition violation.
func Precondition(op string, err error) error {
	return &Error{Kind: KindPrecondition, Op: op, Err: err}
}

// Preconditionf formats a precondition violation.
func Preconditionf(op, format string, args ...any) error {
	return Precondition(op, fmt.Errorf(format, args...))
}

// IO wraps err as an IO failure. A nil err yields nil.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIO, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Problems collects several validation findings into one error.
type Problems []string

// Add records a finding.
func (p *Problems) Add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

// Err returns nil when nothing was recorded.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

func (p Problems) Error() string {
	if len(p) == 1 {
		return p[0]
	}
	return fmt.Sprintf("%d problems: %s", len(p), strings.Join(p, "; "))
}
