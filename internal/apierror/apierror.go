// Package apierror models the error payloads returned by the Atrium API and
// derives the user-facing message a form should display.
//
// Every error body follows the validation-error shape: either
// {"detail": "some message"} or {"detail": [{"loc": [...], "msg": "...",
// "type": "..."}, ...]}. Anything else falls back to a generic message.
package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// FallbackMessage is shown when the error body carries no usable detail
const FallbackMessage = "Something went wrong."

// FieldError is a single entry of a validation-error array
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// APIError represents a non-2xx response from the API
type APIError struct {
	StatusCode int
	Detail     string       // set when detail was a plain string
	Fields     []FieldError // set when detail was a validation array
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message())
}

// Message returns the user-facing message: the first validation entry's msg
// when present, else the string detail, else the generic fallback.
func (e *APIError) Message() string {
	if len(e.Fields) > 0 && e.Fields[0].Msg != "" {
		return e.Fields[0].Msg
	}
	if e.Detail != "" {
		return e.Detail
	}
	return FallbackMessage
}

// IsUnauthorized reports whether the response was a definitive
// "not authenticated" answer. 401/403 must never be retried.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsValidation reports whether the payload was rejected before reaching
// business logic (HTTP 422)
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// FromResponse decodes an error body into an APIError. A missing or
// malformed body still yields a usable error with the fallback message.
func FromResponse(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	if len(body) == 0 {
		return apiErr
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	// Detail is either a plain string or a validation-error array
	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var fields []FieldError
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
		apiErr.Fields = fields
	}

	return apiErr
}
