package procbind

import "fmt"

// ErrorKind - classification of a resolution failure. Both kinds are
// client-attributable: the request is structurally invalid and must be
// resubmitted corrected.
type ErrorKind int

const (
	// ErrKindMissing - a required parameter has no request value and no
	// config default
	ErrKindMissing ErrorKind = iota + 1
	// ErrKindCoercion - a supplied value cannot be parsed into the declared
	// scalar kind
	ErrKindCoercion
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindMissing:
		return "missing required parameter"
	case ErrKindCoercion:
		return "type coercion failure"
	}
	return fmt.Sprintf("error kind(%d)", int(k))
}

// ResolveError - terminal resolution failure carrying the offending
// parameter name so callers can report it without parsing the message
type ResolveError struct {
	Kind      ErrorKind
	Parameter string
	Err       error
}

func (e *ResolveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %s", e.Kind, e.Parameter, e.Err.Error())
	}
	return fmt.Sprintf("%s %q", e.Kind, e.Parameter)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

func newMissingParameterError(name string) *ResolveError {
	return &ResolveError{Kind: ErrKindMissing, Parameter: name}
}

func newParameterCoercionError(name string, err error) *ResolveError {
	return &ResolveError{Kind: ErrKindCoercion, Parameter: name, Err: err}
}
