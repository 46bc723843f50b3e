package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorCode is a machine-readable API error code, in the same register as
// the reference service's error taxonomy.
type ErrorCode string

const (
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalidJSON   ErrorCode = "INVALID_JSON"
	ErrCodeInvalidSchema ErrorCode = "INVALID_SNAPSHOT"
	ErrCodeInvalidType   ErrorCode = "INVALID_TYPE"
	ErrCodeMissingKey    ErrorCode = "MISSING_KEY"
	ErrCodeFeatureNotFnd ErrorCode = "FEATURE_NOT_FOUND"
)

// ErrorResponse is a structured API error, mirroring the reference
// service's error/message/code/fields/request_id shape.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Code      ErrorCode         `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	resp := ErrorResponse{Error: http.StatusText(status), Message: message, Code: code}
	if id := middleware.GetReqID(r.Context()); id != "" {
		resp.RequestID = id
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
