package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/atrium-dev/atrium/internal/config"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Addr:           ":0",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Database: config.DatabaseConfig{URL: filepath.Join(dir, "test.sqlite")},
		Redis:    config.RedisConfig{Address: "localhost:6379"},
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			AccessTokenTTL: time.Hour,
			ResetTokenTTL:  time.Hour,
		},
		Uploads: config.UploadConfig{
			Dir:             filepath.Join(dir, "uploads"),
			MaxBytes:        1 << 20,
			FailedRetention: time.Hour,
		},
	}

	srv, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return srv, ts
}

// testClient wraps an http.Client with a cookie jar so the session cookie
// set on login rides along automatically
type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestClient(t *testing.T, base string) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: base, http: &http.Client{Jar: jar}}
}

func (c *testClient) doJSON(method, path string, body interface{}) *http.Response {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	return resp
}

func (c *testClient) doForm(path string, form url.Values) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (c *testClient) signup(email, password string) {
	c.t.Helper()
	resp := c.doJSON(http.MethodPost, "/api/v1/users/signup", map[string]string{
		"email":     email,
		"password":  password,
		"full_name": "Test User",
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (c *testClient) login(email, password string) {
	c.t.Helper()
	resp := c.doForm("/api/v1/login/access-token", url.Values{
		"username":   {email},
		"password":   {password},
		"grant_type": {"password"},
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSignupLoginAndIdentity(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")
	c.login("alice@example.com", "secret123")

	resp := c.doJSON(http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "alice@example.com", body["email"])
	require.Equal(t, false, body["is_superuser"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")

	resp := c.doForm("/api/v1/login/access-token", url.Values{
		"username": {"alice@example.com"},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "Incorrect email or password", body["detail"])
}

func TestLoginValidationErrorShape(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	// Missing password: the error detail is an array of field errors
	resp := c.doForm("/api/v1/login/access-token", url.Values{
		"username": {"alice@example.com"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	defer resp.Body.Close()
	var body struct {
		Detail []struct {
			Loc  []string `json:"loc"`
			Msg  string   `json:"msg"`
			Type string   `json:"type"`
		} `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Detail, 1)
	require.Equal(t, []string{"body", "password"}, body.Detail[0].Loc)
	require.Equal(t, "Field required", body.Detail[0].Msg)
	require.Equal(t, "value_error", body.Detail[0].Type)
}

func TestMissingSessionIsUnauthorized(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	resp := c.doJSON(http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "Not authenticated", body["detail"])
}

func TestGarbageTokenIsForbidden(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/users/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "not-a-jwt"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "Could not validate credentials", body["detail"])
}

func TestLogoutClearsSession(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")
	c.login("alice@example.com", "secret123")

	resp := c.doJSON(http.MethodPost, "/api/v1/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = c.doJSON(http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestDuplicateSignupRejected(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")

	resp := c.doJSON(http.MethodPost, "/api/v1/users/signup", map[string]string{
		"email":    "alice@example.com",
		"password": "secret456",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "The user with this email already exists in the system", body["detail"])
}

func TestItemsAreOwnerScoped(t *testing.T) {
	_, ts := newTestServer(t)

	alice := newTestClient(t, ts.URL)
	alice.signup("alice@example.com", "secret123")
	alice.login("alice@example.com", "secret123")

	resp := alice.doJSON(http.MethodPost, "/api/v1/items", map[string]string{
		"title": "Alice's item",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	itemID := created["id"].(string)

	bob := newTestClient(t, ts.URL)
	bob.signup("bob@example.com", "secret123")
	bob.login("bob@example.com", "secret123")

	// Bob can't see Alice's item
	resp = bob.doJSON(http.MethodGet, "/api/v1/items/"+itemID, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "Not enough permissions", body["detail"])

	// Bob's listing is empty
	resp = bob.doJSON(http.MethodGet, "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeBody(t, resp)
	require.Equal(t, float64(0), page["count"])
}

func TestUserAdministrationRequiresSuperuser(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")
	c.login("alice@example.com", "secret123")

	resp := c.doJSON(http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "The user doesn't have enough privileges", body["detail"])
}

func TestPasswordRecoveryFlow(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	// Unknown email
	resp := c.doJSON(http.MethodPost, "/api/v1/password-recovery/nobody@example.com", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "The user with this email does not exist in the system.", body["detail"])

	c.signup("alice@example.com", "secret123")

	resp = c.doJSON(http.MethodPost, "/api/v1/password-recovery/alice@example.com", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// A forged token is rejected
	resp = c.doJSON(http.MethodPost, "/api/v1/reset-password", map[string]string{
		"token":        "forged",
		"new_password": "newsecret123",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, "Invalid token", body["detail"])
}

func TestProjectCapacityStartsEmpty(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")
	c.login("alice@example.com", "secret123")

	resp := c.doJSON(http.MethodPost, "/api/v1/projects", map[string]string{
		"name": "Research",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	project := decodeBody(t, resp)
	projectID := project["id"].(string)

	resp = c.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/projects/%s/capacity", projectID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	capacity := decodeBody(t, resp)
	require.Equal(t, float64(0), capacity["document_count"])
	require.Equal(t, float64(0), capacity["used_bytes"])
	require.Greater(t, capacity["document_limit"], float64(0))
}

func (c *testClient) upload(path, filename string, content []byte) *http.Response {
	c.t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = part.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	return resp
}

func TestDocumentUploadAndCapacity(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")
	c.login("alice@example.com", "secret123")

	resp := c.doJSON(http.MethodPost, "/api/v1/projects", map[string]string{"name": "Research"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := decodeBody(t, resp)["id"].(string)

	content := []byte("The first paragraph.\n\nThe second paragraph.\n")
	resp = c.upload(fmt.Sprintf("/api/v1/projects/%s/documents", projectID), "notes.txt", content)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	doc := decodeBody(t, resp)
	require.Equal(t, "pending", doc["status"])
	require.Equal(t, "notes.txt", doc["filename"])
	require.Equal(t, float64(len(content)), doc["size_bytes"])

	resp = c.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/projects/%s/capacity", projectID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	capacity := decodeBody(t, resp)
	require.Equal(t, float64(1), capacity["document_count"])
	require.Equal(t, float64(len(content)), capacity["used_bytes"])
}

func TestOversizedUploadRejected(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")
	c.login("alice@example.com", "secret123")

	resp := c.doJSON(http.MethodPost, "/api/v1/projects", map[string]string{"name": "Research"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := decodeBody(t, resp)["id"].(string)

	// One byte over the configured per-file limit
	big := bytes.Repeat([]byte("a"), (1<<20)+1)
	resp = c.upload(fmt.Sprintf("/api/v1/projects/%s/documents", projectID), "big.txt", big)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "File is too large", body["detail"])
}

func TestChatConversationLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	c := newTestClient(t, ts.URL)

	c.signup("alice@example.com", "secret123")
	c.login("alice@example.com", "secret123")

	resp := c.doJSON(http.MethodPost, "/api/v1/projects", map[string]string{"name": "Research"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := decodeBody(t, resp)["id"].(string)

	// Title defaults when omitted
	resp = c.doJSON(http.MethodPost, "/api/v1/chat/conversations", map[string]string{
		"project_id": projectID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	conv := decodeBody(t, resp)
	require.Equal(t, "New conversation", conv["title"])
	convID := conv["id"].(string)

	resp = c.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/chat/conversations/%s/messages", convID), map[string]string{
		"content": "What do my documents say?",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reply := decodeBody(t, resp)
	require.Equal(t, "assistant", reply["role"])
	require.NotEmpty(t, reply["content"])

	resp = c.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/chat/conversations/%s/messages", convID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var messages []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	require.Len(t, messages, 2)
	require.Equal(t, "user", messages[0]["role"])
	require.Equal(t, "assistant", messages[1]["role"])
}
