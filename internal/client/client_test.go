package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atrium-dev/atrium/internal/apierror"
)

func TestLoginSendsFormEncodedCredentials(t *testing.T) {
	var gotContentType, gotUsername, gotPassword, gotGrantType string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login/access-token", func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		gotUsername = r.PostFormValue("username")
		gotPassword = r.PostFormValue("password")
		gotGrantType = r.PostFormValue("grant_type")

		http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "tok", Path: "/"})
		json.NewEncoder(w).Encode(map[string]string{"message": "Login successful"})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Login(context.Background(), "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("expected form content type, got %q", gotContentType)
	}
	if gotUsername != "alice@example.com" || gotPassword != "secret123" {
		t.Errorf("credentials not transmitted: username=%q password=%q", gotUsername, gotPassword)
	}
	if gotGrantType != "password" {
		t.Errorf("expected grant_type=password, got %q", gotGrantType)
	}

	// The session cookie was captured by the jar
	cookie, ok := c.SessionCookie()
	if !ok || cookie != "tok" {
		t.Errorf("expected session cookie %q, got %q (ok=%t)", "tok", cookie, ok)
	}
}

func TestSessionCookieIsSentOnSubsequentRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login/access-token", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "tok", Path: "/"})
		json.NewEncoder(w).Encode(map[string]string{"message": "Login successful"})
	})
	mux.HandleFunc("GET /api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "01ABC", "email": "alice@example.com"})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Login(context.Background(), "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	user, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestRestoreSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value != "persisted" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "01ABC", "email": "alice@example.com"})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.RestoreSessionCookie("persisted"); err != nil {
		t.Fatalf("RestoreSessionCookie: %v", err)
	}

	if _, err := c.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser after restore: %v", err)
	}

	c.ClearSession()
	if _, ok := c.SessionCookie(); ok {
		t.Error("expected no session cookie after ClearSession")
	}
}

func TestNonOKResponseDecodesAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/items", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Item not found"})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.ListItems(context.Background(), 0, 100)
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierror.APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message() != "Item not found" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestUnauthorizedHookFiresOnlyForAuthedEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fired := 0
	c.OnUnauthorized(func() { fired++ })

	// The identity check itself answers the question "am I logged in";
	// a 401 here is an expected outcome, not a session-expiry event
	if _, err := c.CurrentUser(context.Background()); err == nil {
		t.Fatal("expected error from CurrentUser")
	}
	if fired != 0 {
		t.Fatalf("hook fired %d times for the identity check", fired)
	}

	// A 401 on a data endpoint means the session died mid-use
	if _, err := c.ListItems(context.Background(), 0, 100); err == nil {
		t.Fatal("expected error from ListItems")
	}
	if fired != 1 {
		t.Fatalf("expected hook to fire once, fired %d times", fired)
	}

	// Login failures are form errors, never session-expiry events
	if err := c.Login(context.Background(), "alice@example.com", "bad"); err == nil {
		t.Fatal("expected error from Login")
	}
	if fired != 1 {
		t.Fatalf("hook fired for a login failure (total %d)", fired)
	}
}
