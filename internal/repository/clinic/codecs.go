// Package clinic declares the document codecs of the clinic entity kinds and
// builds their repositories on the generic orchestrator.
package clinic

import (
	"github.com/kailas-cloud/medstore/internal/domain/asset"
	dom "github.com/kailas-cloud/medstore/internal/domain/clinic"
	"github.com/kailas-cloud/medstore/internal/repository/entity"
)

// Asset field names.
const (
	ImageField        = "imageUrl"
	HospitalLogoField = "hospitalLogoUrl"
)

func createdAt[T any](at func(*T) *dom.Timestamps) entity.Field[T] {
	return entity.String("createdAt", func(v *T) *string { return &at(v).CreatedAt }).CreateOnly()
}

func updatedAt[T any](at func(*T) *dom.Timestamps) entity.Field[T] {
	return entity.String("updatedAt", func(v *T) *string { return &at(v).UpdatedAt })
}

// DoctorCodec maps doctors.
var DoctorCodec = &entity.Codec[dom.Doctor]{
	Kind:       "doctor",
	Collection: dom.KindDoctor,
	AssetField: ImageField,
	ID:         func(d *dom.Doctor) *string { return &d.ID },
	Asset:      func(d *dom.Doctor) *string { return &d.ImageURL },
	Fields: []entity.Field[dom.Doctor]{
		entity.String("name", func(d *dom.Doctor) *string { return &d.Name }),
		entity.String("specialization", func(d *dom.Doctor) *string { return &d.Specialization }),
		entity.String("hospitalId", func(d *dom.Doctor) *string { return &d.HospitalID }),
		entity.String("phone", func(d *dom.Doctor) *string { return &d.Phone }),
		entity.String("email", func(d *dom.Doctor) *string { return &d.Email }),
		entity.String("bio", func(d *dom.Doctor) *string { return &d.Bio }),
		entity.Strings("qualifications", func(d *dom.Doctor) *[]string { return &d.Qualifications }),
		createdAt(func(d *dom.Doctor) *dom.Timestamps { return &d.Timestamps }),
		updatedAt(func(d *dom.Doctor) *dom.Timestamps { return &d.Timestamps }),
	},
}

// HospitalCodec maps hospitals. The asset is the logo.
var HospitalCodec = &entity.Codec[dom.Hospital]{
	Kind:       "hospital",
	Collection: dom.KindHospital,
	AssetField: HospitalLogoField,
	ID:         func(h *dom.Hospital) *string { return &h.ID },
	Asset:      func(h *dom.Hospital) *string { return &h.LogoURL },
	Fields: []entity.Field[dom.Hospital]{
		entity.String("name", func(h *dom.Hospital) *string { return &h.Name }),
		entity.String("address", func(h *dom.Hospital) *string { return &h.Address }),
		entity.String("city", func(h *dom.Hospital) *string { return &h.City }),
		entity.String("phone", func(h *dom.Hospital) *string { return &h.Phone }),
		entity.String("email", func(h *dom.Hospital) *string { return &h.Email }),
		entity.String("description", func(h *dom.Hospital) *string { return &h.Description }),
		entity.Strings("departments", func(h *dom.Hospital) *[]string { return &h.Departments }),
		createdAt(func(h *dom.Hospital) *dom.Timestamps { return &h.Timestamps }),
		updatedAt(func(h *dom.Hospital) *dom.Timestamps { return &h.Timestamps }),
	},
}

// ServiceCodec maps services.
var ServiceCodec = &entity.Codec[dom.Service]{
	Kind:       "service",
	Collection: dom.KindService,
	AssetField: ImageField,
	ID:         func(s *dom.Service) *string { return &s.ID },
	Asset:      func(s *dom.Service) *string { return &s.ImageURL },
	Fields: []entity.Field[dom.Service]{
		entity.String("name", func(s *dom.Service) *string { return &s.Name }),
		entity.String("description", func(s *dom.Service) *string { return &s.Description }),
		entity.String("category", func(s *dom.Service) *string { return &s.Category }),
		entity.String("price", func(s *dom.Service) *string { return &s.Price }),
		entity.Strings("hospitalIds", func(s *dom.Service) *[]string { return &s.HospitalIDs }),
		createdAt(func(s *dom.Service) *dom.Timestamps { return &s.Timestamps }),
		updatedAt(func(s *dom.Service) *dom.Timestamps { return &s.Timestamps }),
	},
}

// AppointmentCodec maps appointments. They carry no asset.
var AppointmentCodec = &entity.Codec[dom.Appointment]{
	Kind:       "appointment",
	Collection: dom.KindAppointment,
	ID:         func(a *dom.Appointment) *string { return &a.ID },
	Fields: []entity.Field[dom.Appointment]{
		entity.String("patientName", func(a *dom.Appointment) *string { return &a.PatientName }),
		entity.String("patientPhone", func(a *dom.Appointment) *string { return &a.PatientPhone }),
		entity.String("doctorId", func(a *dom.Appointment) *string { return &a.DoctorID }),
		entity.String("hospitalId", func(a *dom.Appointment) *string { return &a.HospitalID }),
		entity.String("serviceId", func(a *dom.Appointment) *string { return &a.ServiceID }),
		entity.String("date", func(a *dom.Appointment) *string { return &a.Date }),
		entity.String("slot", func(a *dom.Appointment) *string { return &a.Slot }),
		entity.String("status", func(a *dom.Appointment) *string { return &a.Status }),
		entity.String("notes", func(a *dom.Appointment) *string { return &a.Notes }),
		createdAt(func(a *dom.Appointment) *dom.Timestamps { return &a.Timestamps }),
		updatedAt(func(a *dom.Appointment) *dom.Timestamps { return &a.Timestamps }),
	},
}

// BlogCodec maps blog posts.
var BlogCodec = &entity.Codec[dom.Blog]{
	Kind:       "blog",
	Collection: dom.KindBlog,
	AssetField: ImageField,
	ID:         func(b *dom.Blog) *string { return &b.ID },
	Asset:      func(b *dom.Blog) *string { return &b.ImageURL },
	Fields: []entity.Field[dom.Blog]{
		entity.String("title", func(b *dom.Blog) *string { return &b.Title }),
		entity.String("content", func(b *dom.Blog) *string { return &b.Content }),
		entity.String("author", func(b *dom.Blog) *string { return &b.Author }),
		entity.Strings("tags", func(b *dom.Blog) *[]string { return &b.Tags }),
		entity.String("publishedAt", func(b *dom.Blog) *string { return &b.PublishedAt }),
		createdAt(func(b *dom.Blog) *dom.Timestamps { return &b.Timestamps }),
		updatedAt(func(b *dom.Blog) *dom.Timestamps { return &b.Timestamps }),
	},
}

// AchievementCodec maps achievements.
var AchievementCodec = &entity.Codec[dom.Achievement]{
	Kind:       "achievement",
	Collection: dom.KindAchievement,
	AssetField: ImageField,
	ID:         func(a *dom.Achievement) *string { return &a.ID },
	Asset:      func(a *dom.Achievement) *string { return &a.ImageURL },
	Fields: []entity.Field[dom.Achievement]{
		entity.String("title", func(a *dom.Achievement) *string { return &a.Title }),
		entity.String("description", func(a *dom.Achievement) *string { return &a.Description }),
		entity.String("date", func(a *dom.Achievement) *string { return &a.Date }),
		createdAt(func(a *dom.Achievement) *dom.Timestamps { return &a.Timestamps }),
		updatedAt(func(a *dom.Achievement) *dom.Timestamps { return &a.Timestamps }),
	},
}

// PanelUserCodec maps admin console accounts.
var PanelUserCodec = &entity.Codec[dom.PanelUser]{
	Kind:       "panel_user",
	Collection: dom.KindPanelUser,
	ID:         func(u *dom.PanelUser) *string { return &u.ID },
	Fields: []entity.Field[dom.PanelUser]{
		entity.String("name", func(u *dom.PanelUser) *string { return &u.Name }),
		entity.String("email", func(u *dom.PanelUser) *string { return &u.Email }),
		entity.String("role", func(u *dom.PanelUser) *string { return &u.Role }),
		entity.Strings("permissions", func(u *dom.PanelUser) *[]string { return &u.Permissions }),
		createdAt(func(u *dom.PanelUser) *dom.Timestamps { return &u.Timestamps }),
		updatedAt(func(u *dom.PanelUser) *dom.Timestamps { return &u.Timestamps }),
	},
}

// Repos bundles one repository per kind over a shared store and uploader.
type Repos struct {
	Doctors      *entity.Repo[dom.Doctor]
	Hospitals    *entity.Repo[dom.Hospital]
	Services     *entity.Repo[dom.Service]
	Appointments *entity.Repo[dom.Appointment]
	Blogs        *entity.Repo[dom.Blog]
	Achievements *entity.Repo[dom.Achievement]
	PanelUsers   *entity.Repo[dom.PanelUser]
}

// New creates every kind's repository.
func New(s entity.Store, u asset.Uploader) *Repos {
	return &Repos{
		Doctors:      entity.New(s, u, DoctorCodec),
		Hospitals:    entity.New(s, u, HospitalCodec),
		Services:     entity.New(s, u, ServiceCodec),
		Appointments: entity.New(s, u, AppointmentCodec),
		Blogs:        entity.New(s, u, BlogCodec),
		Achievements: entity.New(s, u, AchievementCodec),
		PanelUsers:   entity.New(s, u, PanelUserCodec),
	}
}
