package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/medstore/internal/domain/asset"
)

func TestUploader_Upload(t *testing.T) {
	var uploaded []byte
	var calls []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			if r.URL.Path != "/o" {
				t.Errorf("unexpected upload path: %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("name"); got != "doctors/abc123" {
				t.Errorf("name = %q, want doctors/abc123", got)
			}
			uploaded, _ = io.ReadAll(r.Body)
			_ = json.NewEncoder(w).Encode(objectMeta{Name: "doctors/abc123"})
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(objectMeta{
				Name:           "doctors/abc123",
				ContentType:    "image/png",
				DownloadTokens: "tok-1,tok-2",
			})
		}
	}))
	defer server.Close()

	u, err := NewUploader(&Config{BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := u.Upload(context.Background(), []byte("png-bytes"), "doctors", "abc123")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	want := server.URL + "/o/doctors%2Fabc123?alt=media&token=tok-1"
	if got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
	if string(uploaded) != "png-bytes" {
		t.Errorf("uploaded = %q", uploaded)
	}
	if len(calls) != 2 || calls[0] != "POST /o" || calls[1] != "GET /o/doctors%2Fabc123" {
		t.Errorf("calls = %v", calls)
	}
}

func TestUploader_UploadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Permission denied."}}`))
	}))
	defer server.Close()

	u, _ := NewUploader(&Config{BaseURL: server.URL})
	_, err := u.Upload(context.Background(), []byte("x"), "blogs", "b1")
	if !errors.Is(err, asset.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
}

func TestUploader_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(objectMeta{Name: "blogs/b1"})
	}))
	defer server.Close()

	u, _ := NewUploader(&Config{BaseURL: server.URL})
	if _, err := u.Upload(context.Background(), []byte("x"), "blogs", "b1"); !errors.Is(err, asset.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
}

func TestNewUploader_RequiresBaseURL(t *testing.T) {
	if _, err := NewUploader(&Config{}); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestUploader_HealthCheck(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"name":"clinic","bucket":"clinic"}`))
	}))
	defer server.Close()

	u, _ := NewUploader(&Config{BaseURL: server.URL + "/"})
	if err := u.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	status = http.StatusForbidden
	if err := u.HealthCheck(context.Background()); !errors.Is(err, asset.ErrUploadFailed) {
		t.Errorf("err = %v", err)
	}
}
