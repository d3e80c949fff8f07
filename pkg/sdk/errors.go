package medstore

import (
	"github.com/kailas-cloud/medstore/internal/domain"
	"github.com/kailas-cloud/medstore/internal/repository/entity"
	"github.com/kailas-cloud/medstore/internal/result"
)

// Reason classifies a failed call.
type Reason = result.Reason

// Failure reasons.
const (
	Unknown = result.Unknown
	Network = result.Network
	Server  = result.Server
)

// Sentinel errors re-exported from the internal layers.
// Use errors.Is() to check.
var (
	ErrNetwork   = result.ErrNetwork
	ErrServer    = result.ErrServer
	ErrUnknown   = result.ErrUnknown
	ErrInvalid   = domain.ErrInvalid
	ErrNoMatch   = entity.ErrNoMatch
	ErrMissingID = entity.ErrMissingID
)

// ValidationError lists the problems of an entity rejected before any store
// call. It matches ErrInvalid.
type ValidationError = domain.ValidationError

// WriteError reports a failed write with the id it created, if any, and the
// last stage it reached.
type WriteError = entity.WriteError

// Stage is the last state a write reached.
type Stage = entity.Stage

// Write stages.
const (
	StageNone            = entity.StageNone
	StageCreated         = entity.StageCreated
	StageIdentityPatched = entity.StageIdentityPatched
	StageFieldsPatched   = entity.StageFieldsPatched
	StageAssetUploaded   = entity.StageAssetUploaded
	StageAttached        = entity.StageAttached
)

// ReasonOf returns the reason of err. Errors from outside the store layer are
// Unknown; validation errors are Unknown too, test them with ErrInvalid.
func ReasonOf(err error) Reason { return result.ReasonOf(err) }

// AsWriteError extracts a *WriteError from err's chain.
func AsWriteError(err error) (*WriteError, bool) { return entity.AsWriteError(err) }
