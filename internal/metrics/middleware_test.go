package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter(t *testing.T) (*chi.Mux, *HTTP) {
	t.Helper()
	m := NewHTTP(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	return r, m
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r, m := newRouter(t)
	r.Get("/v1/doctors/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/doctors/"+id, http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(m.total.WithLabelValues("GET", "/v1/doctors/{id}", "200"))
	if got != 3 {
		t.Errorf("http_requests_total = %v, want 3", got)
	}
	if testutil.CollectAndCount(m.duration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r, m := newRouter(t)
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/bad", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })

	tests := []struct {
		path   string
		status string
	}{
		{"/ok", "200"},
		{"/bad", "502"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
			if v := testutil.ToFloat64(m.total.WithLabelValues("GET", tc.path, tc.status)); v != 1 {
				t.Errorf("requests_total for %s = %v, want 1", tc.path, v)
			}
		})
	}
}

func TestRouteLabel(t *testing.T) {
	if routeLabel("") != "unmatched" {
		t.Error("empty pattern should be unmatched")
	}
	if routeLabel("/health") != "/health" {
		t.Error("pattern should pass through")
	}
}
