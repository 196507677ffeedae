package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/atrium-dev/atrium/internal/client"
	"github.com/atrium-dev/atrium/internal/session"
)

type recordingNav struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNav) NavigateTo(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNav) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

// newIdentityStub serves /users/me, counting requests. authenticated
// controls whether the visitor is recognized; superuser their role.
func newIdentityStub(t *testing.T, authenticated, superuser bool) (*session.Controller, *recordingNav, func() int) {
	t.Helper()

	var mu sync.Mutex
	meCount := 0

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		meCount++
		mu.Unlock()

		if !authenticated {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           "01ABC",
			"email":        "alice@example.com",
			"is_active":    true,
			"is_superuser": superuser,
		})
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	api, err := client.New(ts.URL)
	require.NoError(t, err)

	nav := &recordingNav{}
	ctrl := session.NewController(api, nav, zerolog.Nop())

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return meCount
	}
	return ctrl, nav, count
}

func TestRequireAuthRedirectsAnonymousToLogin(t *testing.T) {
	ctrl, nav, _ := newIdentityStub(t, false, false)

	allowed := Run(context.Background(), nav, RequireAuth(ctrl))
	require.False(t, allowed)
	require.Equal(t, []string{session.RouteLogin}, nav.visited())
}

func TestRequireAuthAdmitsAuthenticated(t *testing.T) {
	ctrl, nav, _ := newIdentityStub(t, true, false)

	allowed := Run(context.Background(), nav, RequireAuth(ctrl))
	require.True(t, allowed)
	require.Empty(t, nav.visited())
}

func TestNestedGuardsShareOneIdentityCheck(t *testing.T) {
	ctrl, nav, count := newIdentityStub(t, true, true)

	// A parent layout guard and a nested admin guard evaluated in the same
	// navigation must resolve from one request
	allowed := Run(context.Background(), nav, RequireAuth(ctrl), RequireAdmin(ctrl))
	require.True(t, allowed)
	require.Equal(t, 1, count())
}

func TestRequireAdminSendsNonSuperuserHome(t *testing.T) {
	ctrl, nav, _ := newIdentityStub(t, true, false)

	allowed := Run(context.Background(), nav, RequireAdmin(ctrl))
	require.False(t, allowed)
	require.Equal(t, []string{session.RouteHome}, nav.visited())
}

func TestGuestOnlyRedirectsAuthenticatedHome(t *testing.T) {
	ctrl, nav, _ := newIdentityStub(t, true, false)

	allowed := Run(context.Background(), nav, GuestOnly(ctrl))
	require.False(t, allowed)
	require.Equal(t, []string{session.RouteHome}, nav.visited())
}

func TestGuestOnlyAdmitsAnonymous(t *testing.T) {
	ctrl, nav, _ := newIdentityStub(t, false, false)

	allowed := Run(context.Background(), nav, GuestOnly(ctrl))
	require.True(t, allowed)
	require.Empty(t, nav.visited())
}

func TestAnonymousAnswerIsNotRetriedAcrossGuards(t *testing.T) {
	ctrl, nav, count := newIdentityStub(t, false, false)

	Run(context.Background(), nav, RequireAuth(ctrl))
	Run(context.Background(), nav, RequireAuth(ctrl))
	Run(context.Background(), nav, RequireAdmin(ctrl))

	// The 401 was cached as a definitive answer after the first check
	require.Equal(t, 1, count())
}
