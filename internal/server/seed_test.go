package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/atrium-dev/atrium/internal/config"
)

func TestSeedFixtureProvisionsSuperuser(t *testing.T) {
	dir := t.TempDir()

	fixture := `users:
  - email: admin@example.com
    password: changethis
    full_name: First Superuser
    is_superuser: true
`
	fixturePath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(fixturePath, []byte(fixture), 0644))

	cfg := &config.Config{
		Server:   config.ServerConfig{Addr: ":0", AllowedOrigins: []string{"http://localhost:5173"}},
		Database: config.DatabaseConfig{URL: filepath.Join(dir, "test.sqlite")},
		Redis:    config.RedisConfig{Address: "localhost:6379"},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			ResetTokenTTL:   time.Hour,
			SeedFixturePath: fixturePath,
		},
		Uploads: config.UploadConfig{Dir: filepath.Join(dir, "uploads"), MaxBytes: 1 << 20},
	}

	srv, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c := newTestClient(t, ts.URL)
	c.login("admin@example.com", "changethis")

	// The seeded account really is a superuser
	resp := c.doJSON(http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, float64(1), body["count"])

	// Loading the fixture again does not duplicate the account
	_, err = New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)

	resp = c.doJSON(http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, float64(1), body["count"])
}
