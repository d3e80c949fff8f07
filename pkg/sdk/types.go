package medstore

import (
	"github.com/kailas-cloud/medstore/internal/domain/asset"
	"github.com/kailas-cloud/medstore/internal/domain/clinic"
	"github.com/kailas-cloud/medstore/internal/domain/query"
)

// Entity kinds.
type (
	Doctor      = clinic.Doctor
	Hospital    = clinic.Hospital
	Service     = clinic.Service
	Appointment = clinic.Appointment
	Blog        = clinic.Blog
	Achievement = clinic.Achievement
	PanelUser   = clinic.PanelUser
	Timestamps  = clinic.Timestamps
)

// Appointment statuses.
const (
	StatusPending   = clinic.StatusPending
	StatusConfirmed = clinic.StatusConfirmed
	StatusCancelled = clinic.StatusCancelled
	StatusCompleted = clinic.StatusCompleted
)

// Panel user roles.
const (
	RoleAdmin  = clinic.RoleAdmin
	RoleEditor = clinic.RoleEditor
	RoleViewer = clinic.RoleViewer
)

// Conditions are field equality filters, all of which must hold.
type Conditions = query.Conditions

// Uploader stores asset bytes and returns their public URL.
type Uploader = asset.Uploader

// UploaderFunc adapts a function to Uploader.
type UploaderFunc = asset.UploaderFunc

// ErrUploadFailed marks any uploader failure.
var ErrUploadFailed = asset.ErrUploadFailed
