package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/atrium-dev/atrium/internal/cli/auth"
	"github.com/atrium-dev/atrium/internal/cli/config"
	"github.com/atrium-dev/atrium/internal/cli/serverselect"
	"github.com/atrium-dev/atrium/internal/client"
	"github.com/atrium-dev/atrium/internal/guard"
	"github.com/atrium-dev/atrium/internal/session"
)

// cmdContext is the context commands run their API calls under
func cmdContext() context.Context {
	return context.Background()
}

// routePrinter adapts the session navigator to a terminal: a navigation is
// rendered as a hint about where the visitor ended up
type routePrinter struct {
	lastRoute string
}

func (p *routePrinter) NavigateTo(route string) {
	p.lastRoute = route
	switch route {
	case session.RouteLogin:
		fmt.Fprintln(os.Stderr, "You are signed out. Run 'atrium login' to sign in.")
	case session.RouteSignup:
		fmt.Fprintln(os.Stderr, "Run 'atrium signup' to create an account.")
	}
}

// workspace wires together everything a command needs: the resolved server,
// the API client with the restored session cookie, and the session controller
type workspace struct {
	server  *config.Server
	api     *client.Client
	session *session.Controller
	nav     *routePrinter
}

// newWorkspace loads the project config, resolves the server and builds the
// session controller with any previously persisted session restored
func newWorkspace(serverAlias string) (*workspace, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'atrium init' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return nil, err
	}

	if err := server.Validate(); err != nil {
		return nil, fmt.Errorf("%w. Please edit %s", err, config.ConfigFileName)
	}

	api, err := client.New(server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	// Restore the persisted session cookie, if any. Missing is fine, the
	// visitor is simply anonymous.
	if cookie, err := auth.LoadSession(server.URL); err == nil && cookie != "" {
		if err := api.RestoreSessionCookie(cookie); err != nil {
			return nil, fmt.Errorf("failed to restore session: %w", err)
		}
	}

	// CLI logging goes to stderr and stays quiet unless something is wrong
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()

	nav := &routePrinter{}
	ctrl := session.NewController(api, nav, log)

	return &workspace{
		server:  server,
		api:     api,
		session: ctrl,
		nav:     nav,
	}, nil
}

// persistSession writes the current session cookie back to the keychain, or
// removes the stored one when the session is gone
func (w *workspace) persistSession() error {
	if cookie, ok := w.api.SessionCookie(); ok {
		return auth.SaveSession(w.server.URL, cookie)
	}
	return auth.DeleteSession(w.server.URL)
}

// requireAuth runs the authentication guard for a command that needs a
// signed-in user
func (w *workspace) requireAuth(ctx context.Context) error {
	if !guard.Run(ctx, w.nav, guard.RequireAuth(w.session)) {
		// An expired cookie was detected during the check, drop it
		_ = w.persistSession()
		return errors.New("not authenticated")
	}
	return nil
}

// requireAdmin runs the superuser guard
func (w *workspace) requireAdmin(ctx context.Context) error {
	if !guard.Run(ctx, w.nav, guard.RequireAdmin(w.session)) {
		if w.nav.lastRoute == session.RouteHome {
			return errors.New("this command requires superuser privileges")
		}
		_ = w.persistSession()
		return errors.New("not authenticated")
	}
	return nil
}
