// Package guard gates navigation on session state. A guard either allows
// entry with an already-cached authenticated session, or performs exactly
// one identity check and redirects, without the guarded view ever being
// entered during the check.
package guard

import (
	"context"

	"github.com/atrium-dev/atrium/internal/session"
)

// Decision is the outcome of evaluating a guard
type Decision struct {
	Allowed    bool
	RedirectTo string // set when Allowed is false
}

// Guard decides whether a navigation may proceed
type Guard func(ctx context.Context) Decision

// RequireAuth only admits authenticated visitors; everyone else is sent to
// the login view
func RequireAuth(s *session.Controller) Guard {
	return func(ctx context.Context) Decision {
		if !s.CurrentSession(ctx).IsAuthenticated() {
			return Decision{RedirectTo: session.RouteLogin}
		}
		return Decision{Allowed: true}
	}
}

// RequireAdmin admits superusers only. Non-superusers go to the home view,
// anonymous visitors to login.
func RequireAdmin(s *session.Controller) Guard {
	return func(ctx context.Context) Decision {
		sess := s.CurrentSession(ctx)
		if !sess.IsAuthenticated() {
			return Decision{RedirectTo: session.RouteLogin}
		}
		if !sess.User.IsSuperuser {
			return Decision{RedirectTo: session.RouteHome}
		}
		return Decision{Allowed: true}
	}
}

// GuestOnly is the symmetric guard for the login and signup views: an
// already-authenticated visitor is redirected to the home view
func GuestOnly(s *session.Controller) Guard {
	return func(ctx context.Context) Decision {
		if s.CurrentSession(ctx).IsAuthenticated() {
			return Decision{RedirectTo: session.RouteHome}
		}
		return Decision{Allowed: true}
	}
}

// Run evaluates guards in order for one navigation. The first redirect
// wins and is performed on the navigator; nested guards in the same
// navigation share the controller's cached identity, so at most one
// identity-check request is issued.
func Run(ctx context.Context, nav session.Navigator, guards ...Guard) bool {
	for _, g := range guards {
		decision := g(ctx)
		if !decision.Allowed {
			nav.NavigateTo(decision.RedirectTo)
			return false
		}
	}
	return true
}
