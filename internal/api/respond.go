// Package api exposes the session engine over a JSON HTTP surface, plus a
// websocket feed of the per-session event log.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/chronocore/engine/internal/errors"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to its HTTP status and wire body. Errors
// without a code render as opaque internal failures.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	message := "internal error"

	var coded *apperrors.Error
	if errors.As(err, &coded) && code != apperrors.CodeInternal && code != apperrors.CodeUnknown {
		message = coded.Message
	}
	writeJSON(w, code.HTTPStatus(), errorBody{Code: string(code), Message: message})
}

// writeValidationError renders a request-shape problem without involving the
// domain error taxonomy.
func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Code: string(apperrors.CodeValidation), Message: message})
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
