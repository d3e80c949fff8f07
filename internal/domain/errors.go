package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid signals an entity that failed validation before any store call.
var ErrInvalid = errors.New("invalid entity")

// ValidationError lists the offending fields of one entity.
type ValidationError struct {
	Kind     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalid.Error(), e.Kind, strings.Join(e.Problems, "; "))
}

// Is matches ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Validator accumulates validation problems for one entity.
type Validator struct {
	kind     string
	problems []string
}

// NewValidator starts validating an entity of the given kind.
func NewValidator(kind string) *Validator {
	return &Validator{kind: kind}
}

// Require records a problem when value is blank.
func (v *Validator) Require(name, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.problems = append(v.problems, name+" is required")
	}
	return v
}

// Check records msg when ok is false.
func (v *Validator) Check(ok bool, msg string) *Validator {
	if !ok {
		v.problems = append(v.problems, msg)
	}
	return v
}

// Err returns a *ValidationError, or nil when nothing was recorded.
func (v *Validator) Err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Kind: v.kind, Problems: v.problems}
}
