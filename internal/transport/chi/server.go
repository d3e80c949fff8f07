// Package chi is the HTTP gateway over the catalog use cases.
package chi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/domain/query"
	healthuc "github.com/kailas-cloud/medstore/internal/usecase/health"
)

const defaultMaxBodyBytes = 10 << 20

// Catalog is the use case surface one entity kind is served through.
type Catalog[T any] interface {
	Kind() string
	Create(ctx context.Context, v T, asset []byte) (T, error)
	Update(ctx context.Context, id string, v T, asset []byte) (T, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (T, error)
	Find(ctx context.Context, conds query.Conditions) ([]T, error)
}

// Server holds the routes of the gateway.
type Server struct {
	health  *healthuc.Service
	logger  *zap.Logger
	metrics http.Handler
	maxBody int64
	mounts  []func(chi.Router)
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps request bodies, including the base64 asset.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithMetricsHandler replaces the default Prometheus handler.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer creates an HTTP API server.
func NewServer(health *healthuc.Service, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		health:  health,
		logger:  logger,
		metrics: promhttp.Handler(),
		maxBody: defaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mount serves one kind under /v1/<kind>.
func Mount[T any](s *Server, svc Catalog[T]) {
	h := &kindHandler[T]{svc: svc, maxBody: s.maxBody}
	s.mounts = append(s.mounts, func(r chi.Router) {
		r.Route("/v1/"+svc.Kind(), func(r chi.Router) {
			r.Get("/", h.list)
			r.Post("/", h.create)
			r.Get("/{id}", h.get)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
	s.logger.Debug("kind mounted", zap.String("kind", svc.Kind()))
}

// Register adds every route to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.healthCheck)
	r.Method(http.MethodGet, "/metrics", s.metrics)
	for _, m := range s.mounts {
		m(r)
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// ListResponse is the body of GET /v1/<kind>.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

type kindHandler[T any] struct {
	svc     Catalog[T]
	maxBody int64
}

// assetEnvelope picks the optional base64 asset out of a write body.
type assetEnvelope struct {
	Asset []byte `json:"asset"`
}

func (h *kindHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	v, asset, ok := h.decode(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Create(r.Context(), v, asset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *kindHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	v, asset, ok := h.decode(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), v, asset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *kindHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *kindHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// list treats every query parameter as an equality condition.
func (h *kindHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	var conds query.Conditions
	for name, values := range r.URL.Query() {
		if len(values) != 1 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "filter "+name+" must appear once")
			return
		}
		if conds == nil {
			conds = make(query.Conditions)
		}
		conds[name] = values[0]
	}

	items, err := h.svc.Find(r.Context(), conds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, ListResponse[T]{Items: items, Count: len(items)})
}

func (h *kindHandler[T]) decode(w http.ResponseWriter, r *http.Request) (T, []byte, bool) {
	var v T
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "request body too large")
			return v, nil, false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "unreadable request body")
		return v, nil, false
	}
	if err := json.Unmarshal(body, &v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return v, nil, false
	}
	var env assetEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "asset must be base64")
		return v, nil, false
	}
	return v, env.Asset, true
}
