package apierror

import (
	"errors"
	"testing"
)

func TestFromResponse_StringDetail(t *testing.T) {
	err := FromResponse(404, []byte(`{"detail": "User not found"}`))

	if err.StatusCode != 404 {
		t.Errorf("expected status 404, got %d", err.StatusCode)
	}
	if err.Message() != "User not found" {
		t.Errorf("expected message %q, got %q", "User not found", err.Message())
	}
}

func TestFromResponse_FieldErrors(t *testing.T) {
	body := []byte(`{"detail": [
		{"loc": ["body", "email"], "msg": "Invalid email format", "type": "value_error"},
		{"loc": ["body", "password"], "msg": "Field required", "type": "value_error"}
	]}`)

	err := FromResponse(422, body)

	if len(err.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Fields))
	}
	// The first field message wins
	if err.Message() != "Invalid email format" {
		t.Errorf("expected message %q, got %q", "Invalid email format", err.Message())
	}
	if !err.IsValidation() {
		t.Error("expected IsValidation to be true for 422")
	}
	if err.Fields[0].Loc[1] != "email" {
		t.Errorf("expected loc to name the field, got %v", err.Fields[0].Loc)
	}
}

func TestFromResponse_FallbackMessage(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "empty object", body: []byte(`{}`)},
		{name: "empty body", body: nil},
		{name: "not json", body: []byte(`<html>502 Bad Gateway</html>`)},
		{name: "empty detail", body: []byte(`{"detail": ""}`)},
		{name: "empty detail array", body: []byte(`{"detail": []}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromResponse(500, tt.body)
			if err.Message() != FallbackMessage {
				t.Errorf("expected fallback message, got %q", err.Message())
			}
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{status: 401, want: true},
		{status: 403, want: true},
		{status: 400, want: false},
		{status: 404, want: false},
		{status: 422, want: false},
		{status: 500, want: false},
	}

	for _, tt := range tests {
		err := FromResponse(tt.status, []byte(`{"detail": "x"}`))
		if got := err.IsUnauthorized(); got != tt.want {
			t.Errorf("status %d: IsUnauthorized() = %t, want %t", tt.status, got, tt.want)
		}
	}
}

func TestErrorsAs(t *testing.T) {
	var wrapped error = FromResponse(401, []byte(`{"detail": "Not authenticated"}`))

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("expected errors.As to unwrap *APIError")
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", apiErr.StatusCode)
	}
}
