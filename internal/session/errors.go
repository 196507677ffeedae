package session

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/atrium-dev/atrium/internal/apierror"
)

// AuthError carries the human-readable message a login or signup form
// should display. It never leaks transport details to the user.
type AuthError struct {
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause
func (e *AuthError) Unwrap() error {
	return e.Err
}

// authErrorFrom derives an AuthError from any API client failure. API
// errors contribute their payload message; transport failures get the
// generic fallback.
func authErrorFrom(err error) *AuthError {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return &AuthError{Message: apiErr.Message(), Err: err}
	}
	return &AuthError{Message: apierror.FallbackMessage, Err: err}
}

// credentialsMessage maps a local credentials validation failure to the
// message the login form shows
func credentialsMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierror.FallbackMessage
	}
	switch fieldErrs[0].Field() {
	case "Username":
		return "Invalid email address"
	case "Password":
		return "Password is required"
	}
	return apierror.FallbackMessage
}

// registrationMessage maps a local registration validation failure to the
// message the signup form shows
func registrationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierror.FallbackMessage
	}
	fe := fieldErrs[0]
	switch {
	case fe.Field() == "Email":
		return "Invalid email address"
	case fe.Field() == "Password" && fe.Tag() == "min":
		return "Password must be at least 8 characters"
	case fe.Field() == "Password":
		return "Password is required"
	}
	return apierror.FallbackMessage
}
