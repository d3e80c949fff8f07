package chi

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/db/emulator"
	"github.com/kailas-cloud/medstore/internal/domain"
	"github.com/kailas-cloud/medstore/internal/domain/asset"
	"github.com/kailas-cloud/medstore/internal/domain/clinic"
	"github.com/kailas-cloud/medstore/internal/domain/query"
	repoclinic "github.com/kailas-cloud/medstore/internal/repository/clinic"
	"github.com/kailas-cloud/medstore/internal/repository/entity"
	"github.com/kailas-cloud/medstore/internal/result"
	"github.com/kailas-cloud/medstore/internal/transport/firestore"
	"github.com/kailas-cloud/medstore/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/medstore/internal/usecase/health"
)

// --- Mocks ---

type mockCatalog struct {
	createFn func(v clinic.Doctor, asset []byte) (clinic.Doctor, error)
	updateFn func(id string, v clinic.Doctor, asset []byte) (clinic.Doctor, error)
	deleteFn func(id string) error
	getFn    func(id string) (clinic.Doctor, error)
	findFn   func(conds query.Conditions) ([]clinic.Doctor, error)
}

func (m *mockCatalog) Kind() string { return clinic.KindDoctor }

func (m *mockCatalog) Create(_ context.Context, v clinic.Doctor, asset []byte) (clinic.Doctor, error) {
	return m.createFn(v, asset)
}

func (m *mockCatalog) Update(_ context.Context, id string, v clinic.Doctor, asset []byte) (clinic.Doctor, error) {
	return m.updateFn(id, v, asset)
}

func (m *mockCatalog) Delete(_ context.Context, id string) error { return m.deleteFn(id) }

func (m *mockCatalog) Get(_ context.Context, id string) (clinic.Doctor, error) { return m.getFn(id) }

func (m *mockCatalog) Find(_ context.Context, conds query.Conditions) ([]clinic.Doctor, error) {
	return m.findFn(conds)
}

type pinger func(context.Context) error

func (p pinger) Ping(ctx context.Context) error { return p(ctx) }

type assetChecker func(context.Context) error

func (a assetChecker) HealthCheck(ctx context.Context) error { return a(ctx) }

func okPing(context.Context) error { return nil }

func newTestRouter(t *testing.T, cat Catalog[clinic.Doctor], opts ...Option) http.Handler {
	t.Helper()
	s := NewServer(healthuc.New(pinger(okPing), nil), zap.NewNop(), opts...)
	Mount(s, cat)
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

// --- Writes ---

func TestCreate_DecodesEntityAndAsset(t *testing.T) {
	var gotAsset []byte
	cat := &mockCatalog{createFn: func(v clinic.Doctor, a []byte) (clinic.Doctor, error) {
		gotAsset = a
		v.ID = "d1"
		return v, nil
	}}
	h := newTestRouter(t, cat)

	body := `{"name":"Alice","specialization":"cardiology","asset":"` +
		base64.StdEncoding.EncodeToString([]byte("png-bytes")) + `"}`
	rec := do(h, http.MethodPost, "/v1/doctors", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if string(gotAsset) != "png-bytes" {
		t.Errorf("asset = %q", gotAsset)
	}
	var out clinic.Doctor
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.ID != "d1" || out.Name != "Alice" {
		t.Errorf("out = %+v", out)
	}
}

func TestCreate_InvalidJSON(t *testing.T) {
	h := newTestRouter(t, &mockCatalog{})

	rec := do(h, http.MethodPost, "/v1/doctors", `{"name":`)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != codeBadRequest {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestCreate_BadAssetEncoding(t *testing.T) {
	h := newTestRouter(t, &mockCatalog{})

	rec := do(h, http.MethodPost, "/v1/doctors", `{"name":"A","asset":"%%%"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCreate_BodyTooLarge(t *testing.T) {
	h := newTestRouter(t, &mockCatalog{}, WithMaxBodyBytes(16))

	rec := do(h, http.MethodPost, "/v1/doctors", `{"name":"`+strings.Repeat("x", 64)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge || decodeError(t, rec).Code != codeBodyTooLarge {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestCreate_ValidationError(t *testing.T) {
	cat := &mockCatalog{createFn: func(clinic.Doctor, []byte) (clinic.Doctor, error) {
		return clinic.Doctor{}, &domain.ValidationError{Kind: "doctors", Problems: []string{"name is required"}}
	}}
	h := newTestRouter(t, cat)

	rec := do(h, http.MethodPost, "/v1/doctors", `{}`)
	resp := decodeError(t, rec)
	if rec.Code != http.StatusBadRequest || resp.Code != codeValidationFailed {
		t.Fatalf("status = %d, resp = %+v", rec.Code, resp)
	}
	if diff := cmp.Diff([]string{"name is required"}, resp.Problems); diff != "" {
		t.Errorf("problems (-want +got):\n%s", diff)
	}
}

func TestCreate_PartialWriteReportsStage(t *testing.T) {
	cat := &mockCatalog{createFn: func(clinic.Doctor, []byte) (clinic.Doctor, error) {
		return clinic.Doctor{}, &entity.WriteError{
			Kind: "doctor", ID: "d7", Stage: entity.StageIdentityPatched,
			Err: result.NewFailure("upload", result.Server, asset.ErrUploadFailed),
		}
	}}
	h := newTestRouter(t, cat)

	rec := do(h, http.MethodPost, "/v1/doctors", `{"name":"A"}`)
	resp := decodeError(t, rec)
	want := ErrorResponse{
		Code: codeStoreError, Message: "document store rejected the request",
		ID: "d7", Stage: "identity_patched",
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response (-want +got):\n%s", diff)
	}
}

func TestUpdate_UsesPathID(t *testing.T) {
	var gotID string
	cat := &mockCatalog{updateFn: func(id string, v clinic.Doctor, _ []byte) (clinic.Doctor, error) {
		gotID = id
		v.ID = id
		return v, nil
	}}
	h := newTestRouter(t, cat)

	rec := do(h, http.MethodPut, "/v1/doctors/d9", `{"id":"other","name":"A","specialization":"x"}`)
	if rec.Code != http.StatusOK || gotID != "d9" {
		t.Errorf("status = %d, id = %q", rec.Code, gotID)
	}
}

func TestDelete_NoMatchIs404(t *testing.T) {
	cat := &mockCatalog{deleteFn: func(string) error {
		return result.NewFailure("delete doctors", result.Server, entity.ErrNoMatch)
	}}
	h := newTestRouter(t, cat)

	rec := do(h, http.MethodDelete, "/v1/doctors/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestDelete_NoContent(t *testing.T) {
	cat := &mockCatalog{deleteFn: func(string) error { return nil }}
	h := newTestRouter(t, cat)

	if rec := do(h, http.MethodDelete, "/v1/doctors/d1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}

// --- Reads ---

func TestGet_ErrorMapping(t *testing.T) {
	notFound := result.NewFailure("get doctors/x", result.Server, errors.New("404"))
	notFound.Status = http.StatusNotFound

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", notFound, http.StatusNotFound, codeNotFound},
		{"not found before any write", &entity.WriteError{Kind: "doctor", ID: "x", Stage: entity.StageNone, Err: notFound}, http.StatusNotFound, codeNotFound},
		{"not found after partial write", &entity.WriteError{Kind: "doctor", ID: "x", Stage: entity.StageFieldsPatched, Err: notFound}, http.StatusBadGateway, codeStoreError},
		{"network", result.NewFailure("get", result.Network, errors.New("reset")), http.StatusBadGateway, codeStoreUnavailable},
		{"server", result.NewFailure("get", result.Server, errors.New("500")), http.StatusBadGateway, codeStoreError},
		{"unknown", result.NewFailure("get", result.Unknown, errors.New("panic")), http.StatusInternalServerError, codeInternalError},
		{"plain", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := &mockCatalog{getFn: func(string) (clinic.Doctor, error) { return clinic.Doctor{}, tc.err }}
			rec := do(newTestRouter(t, cat), http.MethodGet, "/v1/doctors/x", "")
			if rec.Code != tc.wantCode || decodeError(t, rec).Code != tc.wantBody {
				t.Errorf("status = %d, body = %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestList_QueryParamsBecomeConditions(t *testing.T) {
	var got query.Conditions
	cat := &mockCatalog{findFn: func(conds query.Conditions) ([]clinic.Doctor, error) {
		got = conds
		return nil, nil
	}}
	h := newTestRouter(t, cat)

	rec := do(h, http.MethodGet, "/v1/doctors?hospitalId=h1&specialization=ent", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if diff := cmp.Diff(query.Conditions{"hospitalId": "h1", "specialization": "ent"}, got); diff != "" {
		t.Errorf("conditions (-want +got):\n%s", diff)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"items":[],"count":0}` {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestList_RepeatedFilterRejected(t *testing.T) {
	h := newTestRouter(t, &mockCatalog{})

	if rec := do(h, http.MethodGet, "/v1/doctors?name=a&name=b", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(t, &mockCatalog{})

	if rec := do(h, http.MethodGet, "/v1/unicorns", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

// --- Health ---

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		store      error
		assets     error
		wantStatus int
		wantBody   string
	}{
		{"healthy", nil, nil, http.StatusOK, "ok"},
		{"assets down", nil, errors.New("403"), http.StatusServiceUnavailable, "degraded"},
		{"store down", errors.New("refused"), nil, http.StatusServiceUnavailable, "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := healthuc.New(
				pinger(func(context.Context) error { return tc.store }),
				assetChecker(func(context.Context) error { return tc.assets }),
			)
			r := chi.NewRouter()
			NewServer(svc, zap.NewNop()).Register(r)

			rec := do(r, http.MethodGet, "/health", "")
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tc.wantStatus || resp.Status != tc.wantBody {
				t.Errorf("status = %d, resp = %+v", rec.Code, resp)
			}
		})
	}
}

// --- Through the real stack ---

func TestGateway_AgainstEmulator(t *testing.T) {
	emu := emulator.New()
	store := httptest.NewServer(emu)
	t.Cleanup(store.Close)

	c, err := firestore.NewClient(&firestore.Config{BaseURL: store.URL + emulator.Root, HTTPClient: store.Client()})
	if err != nil {
		t.Fatal(err)
	}
	uploader := asset.UploaderFunc(func(_ context.Context, _ []byte, folder, name string) (string, error) {
		return "https://assets.test/" + folder + "/" + name, nil
	})
	repos := repoclinic.New(c, uploader)

	s := NewServer(healthuc.New(c, nil), zap.NewNop())
	Mount[clinic.Hospital](s, catalog.New[clinic.Hospital](clinic.KindHospital, repos.Hospitals))
	r := chi.NewRouter()
	s.Register(r)

	body, _ := json.Marshal(map[string]any{
		"name":    "City Clinic",
		"address": "1 Main St",
		"city":    "Pune",
		"asset":   []byte("logo"),
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/hospitals", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	var created clinic.Hospital
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.LogoURL != "https://assets.test/hospitals/"+created.ID {
		t.Fatalf("created = %+v", created)
	}

	rec = do(r, http.MethodGet, "/v1/hospitals/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = do(r, http.MethodPut, "/v1/hospitals/unknown", `{"name":"Ghost","address":"2 Side St","city":"Pune"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update unknown status = %d, body = %s", rec.Code, rec.Body)
	}
	if n := emu.Len(clinic.KindHospital); n != 1 {
		t.Errorf("hospitals stored = %d, want 1", n)
	}

	if rec = do(r, http.MethodDelete, "/v1/hospitals/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec = do(r, http.MethodDelete, "/v1/hospitals/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rec.Code)
	}
	if rec = do(r, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}
