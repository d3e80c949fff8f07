// Package clinic holds the entity kinds managed from the clinic admin console.
package clinic

import (
	"net/mail"
	"slices"
	"time"

	"github.com/kailas-cloud/medstore/internal/domain"
)

// Kind names, also used as collection and asset folder names.
const (
	KindDoctor      = "doctors"
	KindHospital    = "hospitals"
	KindService     = "services"
	KindAppointment = "appointments"
	KindBlog        = "blogs"
	KindAchievement = "achievements"
	KindPanelUser   = "panelUsers"
)

// Kinds lists every entity kind in a stable order.
var Kinds = []string{
	KindDoctor, KindHospital, KindService, KindAppointment,
	KindBlog, KindAchievement, KindPanelUser,
}

// Entity is implemented by every kind's pointer type.
type Entity interface {
	SetID(id string)
	Validate() error
	Stamp(now time.Time, created bool)
}

// Timestamps are RFC 3339 strings written by the use case layer.
// CreatedAt is set once and never part of an update.
type Timestamps struct {
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Stamp sets UpdatedAt, and CreatedAt when created is true.
func (t *Timestamps) Stamp(now time.Time, created bool) {
	ts := now.UTC().Format(time.RFC3339)
	if created {
		t.CreatedAt = ts
	}
	t.UpdatedAt = ts
}

// Doctor is a practitioner profile.
type Doctor struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Specialization string   `json:"specialization"`
	HospitalID     string   `json:"hospitalId,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Email          string   `json:"email,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	Qualifications []string `json:"qualifications"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	Timestamps
}

// SetID sets the store identifier.
func (d *Doctor) SetID(id string) { d.ID = id }

// Validate checks required fields.
func (d *Doctor) Validate() error {
	return domain.NewValidator(KindDoctor).
		Require("name", d.Name).
		Require("specialization", d.Specialization).
		Check(validEmail(d.Email), "email is malformed").
		Err()
}

// Hospital is a facility profile. Its asset is the logo.
type Hospital struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	Description string   `json:"description,omitempty"`
	Departments []string `json:"departments"`
	LogoURL     string   `json:"hospitalLogoUrl,omitempty"`
	Timestamps
}

// SetID sets the store identifier.
func (h *Hospital) SetID(id string) { h.ID = id }

// Validate checks required fields.
func (h *Hospital) Validate() error {
	return domain.NewValidator(KindHospital).
		Require("name", h.Name).
		Require("address", h.Address).
		Require("city", h.City).
		Check(validEmail(h.Email), "email is malformed").
		Err()
}

// Service is a treatment or procedure offered by one or more hospitals.
// Price is kept as a display string.
type Service struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Price       string   `json:"price,omitempty"`
	HospitalIDs []string `json:"hospitalIds"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Timestamps
}

// SetID sets the store identifier.
func (s *Service) SetID(id string) { s.ID = id }

// Validate checks required fields.
func (s *Service) Validate() error {
	return domain.NewValidator(KindService).
		Require("name", s.Name).
		Err()
}

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var appointmentStatuses = []string{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// Appointment is a patient booking. Date is YYYY-MM-DD.
type Appointment struct {
	ID           string `json:"id"`
	PatientName  string `json:"patientName"`
	PatientPhone string `json:"patientPhone"`
	DoctorID     string `json:"doctorId"`
	HospitalID   string `json:"hospitalId,omitempty"`
	ServiceID    string `json:"serviceId,omitempty"`
	Date         string `json:"date"`
	Slot         string `json:"slot,omitempty"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	Timestamps
}

// SetID sets the store identifier.
func (a *Appointment) SetID(id string) { a.ID = id }

// Validate checks required fields. An empty status defaults to pending.
func (a *Appointment) Validate() error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	_, dateErr := time.Parse(time.DateOnly, a.Date)
	return domain.NewValidator(KindAppointment).
		Require("patientName", a.PatientName).
		Require("patientPhone", a.PatientPhone).
		Require("doctorId", a.DoctorID).
		Require("date", a.Date).
		Check(a.Date == "" || dateErr == nil, "date must be YYYY-MM-DD").
		Check(slices.Contains(appointmentStatuses, a.Status), "unknown status "+a.Status).
		Err()
}

// Blog is a published article.
type Blog struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Timestamps
}

// SetID sets the store identifier.
func (b *Blog) SetID(id string) { b.ID = id }

// Validate checks required fields.
func (b *Blog) Validate() error {
	return domain.NewValidator(KindBlog).
		Require("title", b.Title).
		Require("content", b.Content).
		Check(validTime(b.PublishedAt), "publishedAt must be RFC 3339").
		Err()
}

// Achievement is an award or milestone shown on the site.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Timestamps
}

// SetID sets the store identifier.
func (a *Achievement) SetID(id string) { a.ID = id }

// Validate checks required fields.
func (a *Achievement) Validate() error {
	return domain.NewValidator(KindAchievement).
		Require("title", a.Title).
		Err()
}

// Panel user roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

var roles = []string{RoleAdmin, RoleEditor, RoleViewer}

// PanelUser is an admin console account.
type PanelUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Timestamps
}

// SetID sets the store identifier.
func (u *PanelUser) SetID(id string) { u.ID = id }

// Validate checks required fields.
func (u *PanelUser) Validate() error {
	return domain.NewValidator(KindPanelUser).
		Require("name", u.Name).
		Require("email", u.Email).
		Check(validEmail(u.Email), "email is malformed").
		Check(slices.Contains(roles, u.Role), "role must be one of admin, editor or viewer").
		Err()
}

func validEmail(s string) bool {
	if s == "" {
		return true
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

func validTime(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

var (
	_ Entity = (*Doctor)(nil)
	_ Entity = (*Hospital)(nil)
	_ Entity = (*Service)(nil)
	_ Entity = (*Appointment)(nil)
	_ Entity = (*Blog)(nil)
	_ Entity = (*Achievement)(nil)
	_ Entity = (*PanelUser)(nil)
)
