// Package httputil holds the JSON response helpers shared by handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "expenses/pkg/domain-errors"
)

// StatusClientClosedRequest is the non-standard status reported when the
// caller abandoned the request before it completed.
const StatusClientClosedRequest = 499

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidArgument, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeCancelled:
		return StatusClientClosedRequest
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error envelope for err. Server-side failures never
// leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)
	body := map[string]string{"error": string(code)}
	if status < http.StatusInternalServerError {
		body["error_description"] = dErrors.MessageOf(err)
	}
	WriteJSON(w, status, body)
}
