package entity

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/medstore/internal/result"
)

// Stage is the last state a logical write reached before it stopped.
type Stage int

const (
	// StageNone means nothing was persisted by this write.
	StageNone Stage = iota
	// StageCreated means the document exists but its id field is unset.
	StageCreated
	// StageIdentityPatched means the document carries its id.
	StageIdentityPatched
	// StageFieldsPatched means an update wrote its mutable fields.
	StageFieldsPatched
	// StageAssetUploaded means the asset exists but is not referenced yet.
	StageAssetUploaded
	// StageAttached means the asset reference was written.
	StageAttached
)

func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageIdentityPatched:
		return "identity_patched"
	case StageFieldsPatched:
		return "fields_patched"
	case StageAssetUploaded:
		return "asset_uploaded"
	case StageAttached:
		return "attached"
	default:
		return "none"
	}
}

// Partial reports whether the store was left holding an incomplete document.
func (s Stage) Partial() bool { return s != StageNone }

// ErrNoMatch is the cause of a delete-by-field that found nothing.
var ErrNoMatch = errors.New("no matching document")

// ErrMissingID is returned when an operation needs an existing identifier.
var ErrMissingID = errors.New("entity id is required")

// WriteError describes a failed logical write. Err is always a
// *result.Failure; its Reason is Server for every failed remote step.
type WriteError struct {
	Kind  string
	ID    string
	Stage Stage
	Err   error
}

func (e *WriteError) Error() string {
	id := e.ID
	if id == "" {
		id = "<new>"
	}
	return fmt.Sprintf("write %s %s (stage %s): %v", e.Kind, id, e.Stage, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// AsWriteError extracts a *WriteError from err's chain.
func AsWriteError(err error) (*WriteError, bool) {
	var we *WriteError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// serverFailure collapses a step failure into a Server failure. A classified
// cause is unwrapped so its own reason no longer matches in errors.Is; its
// status and message are kept.
func serverFailure(op string, cause error) *result.Failure {
	var inner *result.Failure
	if !errors.As(cause, &inner) {
		return result.NewFailure(op, result.Server, cause)
	}
	err := inner.Err
	if err == nil {
		err = errors.New(inner.Op)
	} else {
		err = fmt.Errorf("%s: %w", inner.Op, err)
	}
	f := result.NewFailure(op, result.Server, err)
	f.Status = inner.Status
	return f
}
