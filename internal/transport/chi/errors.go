package chi

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/domain"
	"github.com/kailas-cloud/medstore/internal/logger"
	"github.com/kailas-cloud/medstore/internal/repository/entity"
	"github.com/kailas-cloud/medstore/internal/result"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeUnauthorized     = "unauthorized"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeBodyTooLarge     = "body_too_large"
	codeStoreUnavailable = "store_unavailable"
	codeStoreError       = "store_error"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Problems []string `json:"problems,omitempty"`
	// ID and Stage are set when a write failed after the document was created.
	ID    string `json:"id,omitempty"`
	Stage string `json:"stage,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// errorHandler tries to handle an error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	validationHandler,
	sentinelHandler(entity.ErrNoMatch, http.StatusNotFound, codeNotFound),
	sentinelHandler(entity.ErrMissingID, http.StatusBadRequest, codeBadRequest),
	notFoundHandler,
	storeFailureHandler,
}

func validationHandler(w http.ResponseWriter, err error) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:     codeValidationFailed,
		Message:  "invalid " + ve.Kind,
		Problems: ve.Problems,
	})
	return true
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// notFoundHandler maps a store 404 that left nothing behind to 404.
func notFoundHandler(w http.ResponseWriter, err error) bool {
	var f *result.Failure
	if !errors.As(err, &f) || f.Reason != result.Server || f.Status != http.StatusNotFound {
		return false
	}
	if we, ok := entity.AsWriteError(err); ok && we.Stage.Partial() {
		return false
	}
	writeError(w, http.StatusNotFound, codeNotFound, "document not found")
	return true
}

// storeFailureHandler maps Network and Server failures to 502, carrying the
// partial-write stage when there is one.
func storeFailureHandler(w http.ResponseWriter, err error) bool {
	resp := ErrorResponse{}
	switch result.ReasonOf(err) {
	case result.Network:
		resp.Code, resp.Message = codeStoreUnavailable, "document store unreachable"
	case result.Server:
		resp.Code, resp.Message = codeStoreError, "document store rejected the request"
	default:
		return false
	}
	if we, ok := entity.AsWriteError(err); ok && we.Stage.Partial() {
		resp.ID, resp.Stage = we.ID, we.Stage.String()
	}
	writeJSON(w, http.StatusBadGateway, resp)
	return true
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := logger.FromContext(r.Context())
	for _, h := range errorHandlers {
		if h(w, err) {
			l.Debug("request failed", zap.Error(err))
			return
		}
	}
	l.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
