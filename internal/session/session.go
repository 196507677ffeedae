// Package session is the single source of truth for "is someone logged in,
// and who". It owns the cached identity, the login/signup/logout operations
// and the reaction to authentication failures observed on any remote call.
//
// Authentication is cookie-based: the server sets an httpOnly access_token
// cookie on login and the controller never stores a secret itself.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/atrium-dev/atrium/internal/apierror"
	"github.com/atrium-dev/atrium/internal/client"
)

// State is the session-level state of the controller
type State string

// Session states. The machine is long-running for the life of the
// application session; there is no terminal state.
const (
	StateAnonymous      State = "anonymous"
	StateChecking       State = "checking"
	StateAuthenticated  State = "authenticated"
	StateAuthenticating State = "authenticating"
	StateError          State = "error"
)

// Well-known routes the controller navigates between
const (
	RouteHome   = "/"
	RouteLogin  = "/login"
	RouteSignup = "/signup"
)

// DefaultFreshness is how long a fetched identity stays fresh before the
// next CurrentSession call refreshes it from the server
const DefaultFreshness = 5 * time.Minute

// ErrLoginPending is returned when Login is called while a previous login
// request is still in flight. The duplicate call issues no network request.
var ErrLoginPending = errors.New("login already in progress")

// Navigator moves the visitor between views. Implementations must tolerate
// being called after their view has gone away (a no-op, not a crash).
type Navigator interface {
	NavigateTo(route string)
}

// Session represents the current visitor's authentication status
type Session struct {
	User      *client.UserPublic
	IsLoading bool
}

// IsAuthenticated reports whether an identity is attached to the session
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// Credentials is the transient username/password pair submitted during
// login. It is never retained beyond the duration of the login request.
type Credentials struct {
	Username string `validate:"required,email"`
	Password string `validate:"required"`
}

// Registration is the payload for account creation
type Registration struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	FullName string
}

var validate = validator.New()

// Controller implements the session state machine
type Controller struct {
	api       *client.Client
	nav       Navigator
	log       zerolog.Logger
	freshness time.Duration

	group singleflight.Group

	mu        sync.Mutex
	state     State
	user      *client.UserPublic
	resolved  bool // a definitive answer (possibly "anonymous") is cached
	fetchedAt time.Time
	loggingIn bool
	lastError string
}

// Option configures a Controller
type Option func(*Controller)

// WithFreshness overrides the identity freshness window
func WithFreshness(d time.Duration) Option {
	return func(c *Controller) { c.freshness = d }
}

// NewController creates the session controller and hooks it into the API
// client so that a 401/403 on any authenticated request forces the session
// back to anonymous.
func NewController(api *client.Client, nav Navigator, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		api:       api,
		nav:       nav,
		log:       log,
		freshness: DefaultFreshness,
		state:     StateChecking,
	}
	for _, opt := range opts {
		opt(c)
	}
	api.OnUnauthorized(c.forceAnonymous)
	return c
}

// State returns the current session state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the message of the most recent failed login, retained
// for display on the login form
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Login authenticates with the given credentials. On success the cached
// identity is refreshed before the visitor is navigated to the home view.
// On failure the returned error carries a human-readable message and no
// navigation happens. A Login while another is pending is a no-op.
func (c *Controller) Login(ctx context.Context, creds Credentials) (Session, error) {
	if err := validate.Struct(creds); err != nil {
		return Session{}, &AuthError{Message: credentialsMessage(err), Err: err}
	}

	c.mu.Lock()
	if c.loggingIn {
		c.mu.Unlock()
		return Session{}, ErrLoginPending
	}
	c.loggingIn = true
	c.state = StateAuthenticating
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loggingIn = false
		c.mu.Unlock()
	}()

	if err := c.api.Login(ctx, creds.Username, creds.Password); err != nil {
		authErr := authErrorFrom(err)
		c.mu.Lock()
		c.state = StateAnonymous
		c.lastError = authErr.Message
		c.mu.Unlock()
		c.log.Debug().Err(err).Msg("Login failed")
		return Session{}, authErr
	}

	// The cookie is set; refresh the identity before navigating so a guard
	// evaluated right after login never observes a stale anonymous session
	sess := c.refresh(ctx)
	if !sess.IsAuthenticated() {
		// Login succeeded but the identity check did not confirm it.
		// Treated as a failed login rather than a half-open session.
		authErr := &AuthError{Message: apierror.FallbackMessage}
		c.mu.Lock()
		c.state = StateAnonymous
		c.lastError = authErr.Message
		c.mu.Unlock()
		return Session{}, authErr
	}

	c.mu.Lock()
	c.lastError = ""
	c.mu.Unlock()

	c.log.Info().Str("email", creds.Username).Msg("User logged in")
	c.nav.NavigateTo(RouteHome)
	return sess, nil
}

// Signup registers a new account. Registration does not authenticate: on
// success the visitor is navigated to the login view. On failure the error
// is returned for the form and session state is untouched.
func (c *Controller) Signup(ctx context.Context, reg Registration) error {
	if err := validate.Struct(reg); err != nil {
		return &AuthError{Message: registrationMessage(err), Err: err}
	}

	_, err := c.api.Signup(ctx, client.SignupRequest{
		Email:    reg.Email,
		Password: reg.Password,
		FullName: reg.FullName,
	})
	if err != nil {
		return authErrorFrom(err)
	}

	c.nav.NavigateTo(RouteLogin)
	return nil
}

// Logout terminates the session. The server call is best-effort (the local
// intent is "log out regardless"), the cached state is cleared
// unconditionally, and only then is the visitor navigated to the login
// view, so a guard evaluated immediately after never observes a stale
// authenticated session.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.api.Logout(ctx); err != nil {
		// Ignored: the cookie might already be expired
		c.log.Debug().Err(err).Msg("Logout request failed")
	}

	c.api.ClearSession()

	c.mu.Lock()
	c.user = nil
	c.resolved = true
	c.fetchedAt = time.Now()
	c.state = StateAnonymous
	c.lastError = ""
	c.mu.Unlock()

	c.nav.NavigateTo(RouteLogin)
}

// CurrentSession returns the cached identity, refreshing it from the
// server at most once per freshness window. Concurrent callers share a
// single identity-check request. A 401/403 answer is cached as
// a definitive "anonymous" and never retried.
func (c *Controller) CurrentSession(ctx context.Context) Session {
	c.mu.Lock()
	if c.resolved && time.Since(c.fetchedAt) < c.freshness {
		sess := Session{User: c.user}
		c.mu.Unlock()
		return sess
	}
	c.mu.Unlock()

	return c.refresh(ctx)
}

// Invalidate drops the cached identity so the next CurrentSession call
// refreshes from the server
func (c *Controller) Invalidate() {
	c.mu.Lock()
	c.resolved = false
	c.mu.Unlock()
}

// refresh performs the de-duplicated identity check. N concurrent callers
// issue exactly one network request.
func (c *Controller) refresh(ctx context.Context) Session {
	result, _, _ := c.group.Do("identity", func() (interface{}, error) {
		c.mu.Lock()
		if c.state != StateAuthenticated && c.state != StateAuthenticating {
			c.state = StateChecking
		}
		c.mu.Unlock()

		user, err := c.api.CurrentUser(ctx)
		if err != nil {
			var apiErr *apierror.APIError
			if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
				// Definitively not authenticated; cache the answer
				c.mu.Lock()
				c.user = nil
				c.resolved = true
				c.fetchedAt = time.Now()
				c.state = StateAnonymous
				c.mu.Unlock()
				return Session{}, nil
			}

			// Transport or server failure: do not cache, the check may be
			// re-issued on demand (next navigation), never in a tight loop
			c.mu.Lock()
			c.resolved = false
			c.state = StateError
			c.mu.Unlock()
			c.log.Warn().Err(err).Msg("Identity check failed")
			return Session{}, nil
		}

		// The whole identity is replaced atomically, never merged
		c.mu.Lock()
		c.user = user
		c.resolved = true
		c.fetchedAt = time.Now()
		c.state = StateAuthenticated
		c.mu.Unlock()
		return Session{User: user}, nil
	})

	return result.(Session)
}

// forceAnonymous is the forced AUTHENTICATED -> ANONYMOUS transition: a
// 401/403 observed on any authenticated request escalates to a session
// reset and a redirect to the login view, regardless of which request
// triggered it.
func (c *Controller) forceAnonymous() {
	c.mu.Lock()
	wasAnonymous := c.state == StateAnonymous
	c.user = nil
	c.resolved = true
	c.fetchedAt = time.Now()
	c.state = StateAnonymous
	c.mu.Unlock()

	c.api.ClearSession()

	if !wasAnonymous {
		c.log.Info().Msg("Session expired, redirecting to login")
		c.nav.NavigateTo(RouteLogin)
	}
}
