package medstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/medstore/internal/domain/clinic"
	repoclinic "github.com/kailas-cloud/medstore/internal/repository/clinic"
	"github.com/kailas-cloud/medstore/internal/repository/entity"
	"github.com/kailas-cloud/medstore/internal/transport/firestore"
	"github.com/kailas-cloud/medstore/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/medstore/internal/usecase/health"
)

// storePinger is the connectivity check of the store transport.
type storePinger interface {
	Ping(ctx context.Context) error
}

// Client is the medstore SDK entry point. It is safe for concurrent use.
type Client struct {
	store     storePinger
	healthSvc healthUseCase
	obs       *observer

	doctors      *Repository[Doctor]
	hospitals    *Repository[Hospital]
	services     *Repository[Service]
	appointments *Repository[Appointment]
	blogs        *Repository[Blog]
	achievements *Repository[Achievement]
	panelUsers   *Repository[PanelUser]
}

// New creates a Client. No network call is made; use Ping to check
// connectivity.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{now: time.Now}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.baseURL == "" {
		return nil, errors.New("medstore: base url required (use WithBaseURL)")
	}

	store, err := firestore.NewClient(&firestore.Config{
		BaseURL:    cfg.baseURL,
		HTTPClient: cfg.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("medstore: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store entity.Store, cfg *clientConfig, obs *observer) *Client {
	repos := repoclinic.New(store, cfg.uploader)

	var assets healthuc.AssetChecker
	if ac, ok := cfg.uploader.(healthuc.AssetChecker); ok {
		assets = ac
	}

	c := &Client{obs: obs}
	if p, ok := store.(storePinger); ok {
		c.store = p
		c.healthSvc = healthuc.New(p, assets)
	}

	c.doctors = newRepository[Doctor](clinic.KindDoctor, repos.Doctors, cfg, obs)
	c.hospitals = newRepository[Hospital](clinic.KindHospital, repos.Hospitals, cfg, obs)
	c.services = newRepository[Service](clinic.KindService, repos.Services, cfg, obs)
	c.appointments = newRepository[Appointment](clinic.KindAppointment, repos.Appointments, cfg, obs)
	c.blogs = newRepository[Blog](clinic.KindBlog, repos.Blogs, cfg, obs)
	c.achievements = newRepository[Achievement](clinic.KindAchievement, repos.Achievements, cfg, obs)
	c.panelUsers = newRepository[PanelUser](clinic.KindPanelUser, repos.PanelUsers, cfg, obs)
	return c
}

func newRepository[T any, PT interface {
	*T
	clinic.Entity
}](kind string, repo catalog.Repository[T], cfg *clientConfig, obs *observer) *Repository[T] {
	svc := catalog.New[T, PT](kind, repo).WithClock(cfg.now)
	return &Repository[T]{kind: kind, svc: svc, obs: obs}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return errors.New("ping: store does not support ping")
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Doctors returns the doctor repository.
func (c *Client) Doctors() *Repository[Doctor] { return c.doctors }

// Hospitals returns the hospital repository.
func (c *Client) Hospitals() *Repository[Hospital] { return c.hospitals }

// Services returns the service repository.
func (c *Client) Services() *Repository[Service] { return c.services }

// Appointments returns the appointment repository.
func (c *Client) Appointments() *Repository[Appointment] { return c.appointments }

// Blogs returns the blog repository.
func (c *Client) Blogs() *Repository[Blog] { return c.blogs }

// Achievements returns the achievement repository.
func (c *Client) Achievements() *Repository[Achievement] { return c.achievements }

// PanelUsers returns the panel user repository.
func (c *Client) PanelUsers() *Repository[PanelUser] { return c.panelUsers }
