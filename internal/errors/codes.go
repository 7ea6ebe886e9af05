// Package errors provides structured error handling for the session engine.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation indicates malformed or missing input.
	CodeValidation Code = "VALIDATION"
	// CodeNotFound indicates a session, participant, timeline, realm or rift
	// reference that does not resolve.
	CodeNotFound Code = "NOT_FOUND"
	// CodeAuthorization indicates the actor lacks the right to perform the
	// action (not the active player, not the creator, not the owner).
	CodeAuthorization Code = "AUTHORIZATION"
	// CodeInvalidState indicates an action that is illegal in the current
	// lifecycle state.
	CodeInvalidState Code = "INVALID_STATE"
	// CodeCapacity indicates a full roster.
	CodeCapacity Code = "CAPACITY"
	// CodeConflict indicates a duplicate join or an already-claimed resource.
	CodeConflict Code = "CONFLICT"
	// CodePrecondition indicates an unmet start or gameplay gate.
	CodePrecondition Code = "PRECONDITION"
	// CodeExternalService indicates a failed scoring call. It is recovered by
	// the resolver's fallback path and never surfaced to callers.
	CodeExternalService Code = "EXTERNAL_SERVICE"
	// CodeInternal indicates an unexpected storage or infrastructure failure.
	CodeInternal Code = "INTERNAL"
)

// HTTPStatus maps error codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAuthorization:
		return http.StatusForbidden
	case CodeInvalidState, CodeCapacity, CodeConflict:
		return http.StatusConflict
	case CodePrecondition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
