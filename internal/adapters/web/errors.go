package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
// Returns false when the caller should stop handling the request.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// domainErrorCode maps core errors to a stable code and HTTP status.
func domainErrorCode(err error) (string, int) {
	switch {
	case core.IsValidation(err):
		return "VALIDATION_ERROR", http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrLimitExceeded):
		return "LIMIT_EXCEEDED", http.StatusConflict
	case errors.Is(err, core.ErrCustomerBlocked):
		return "CUSTOMER_BLOCKED", http.StatusConflict
	case errors.Is(err, core.ErrOverrideDenied):
		return "OVERRIDE_DENIED", http.StatusForbidden
	case errors.Is(err, core.ErrInstallmentAlreadyPaid):
		return "ALREADY_PAID", http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return "NOT_FOUND", http.StatusNotFound
	default:
		return "INTERNAL_ERROR", http.StatusInternalServerError
	}
}

// writeDomainError maps core errors to HTTP statuses and stable codes.
// Business rejections keep their message; everything else collapses to a
// generic 500 so internals never leak.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := domainErrorCode(err)
	message := err.Error()
	if code == "INTERNAL_ERROR" {
		message = "internal server error"
	}
	writeError(w, r, message, code, status)
}
