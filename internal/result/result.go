// Package result is the uniform outcome type of store calls and the single
// place where transport failures are classified.
package result

import (
	"errors"
	"fmt"
)

// Reason is the closed set of failure classes callers can act on.
type Reason int

const (
	// Unknown is an unclassified failure.
	Unknown Reason = iota
	// Network means the transport could not complete the call.
	Network
	// Server covers non-2xx responses, undecodable bodies, not-found and
	// zero-match lookups.
	Server
)

func (r Reason) String() string {
	switch r {
	case Network:
		return "network"
	case Server:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against a Failure's reason.
var (
	ErrNetwork = errors.New("network failure")
	ErrServer  = errors.New("server failure")
	ErrUnknown = errors.New("unknown failure")
)

func (r Reason) sentinel() error {
	switch r {
	case Network:
		return ErrNetwork
	case Server:
		return ErrServer
	default:
		return ErrUnknown
	}
}

// Failure is a classified call failure.
type Failure struct {
	Op     string
	Reason Reason
	Status int // HTTP status when the store answered, 0 otherwise
	Err    error
}

func (f *Failure) Error() string {
	msg := f.Op + ": " + f.Reason.String() + " failure"
	if f.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", f.Status)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches the sentinel of the failure's own reason.
func (f *Failure) Is(target error) bool { return target == f.Reason.sentinel() }

// NewFailure creates a Failure.
func NewFailure(op string, reason Reason, err error) *Failure {
	return &Failure{Op: op, Reason: reason, Err: err}
}

// ReasonOf returns the reason of the outermost Failure in err's chain.
// Errors without a Failure are Unknown.
func ReasonOf(err error) Reason {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return Unknown
}

// Result is either a value or a Failure.
type Result[T any] struct {
	value T
	err   *Failure
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{value: v} }

// Fail wraps a failure. A nil failure becomes an Unknown failure so a Result
// is never both empty and unsuccessful.
func Fail[T any](f *Failure) Result[T] {
	if f == nil {
		f = NewFailure("result", Unknown, nil)
	}
	return Result[T]{err: f}
}

// IsOk reports success.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Value returns the success value (zero on failure).
func (r Result[T]) Value() T { return r.value }

// Failure returns the failure, nil on success.
func (r Result[T]) Failure() *Failure { return r.err }

// Reason returns the failure reason. Only meaningful when !IsOk().
func (r Result[T]) Reason() Reason {
	if r.err == nil {
		return Unknown
	}
	return r.err.Reason
}

// Unpack converts the result to Go's value, error convention.
func (r Result[T]) Unpack() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
