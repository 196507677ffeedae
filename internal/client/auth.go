package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// UserPublic represents a user record returned by the API
type UserPublic struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignupRequest represents an account-creation request
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// ResetPasswordRequest represents a reset-password request
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is the generic {message} payload some endpoints return
type MessageResponse struct {
	Message string `json:"message"`
}

// Login authenticates with the server. On success the server establishes
// the session by setting the access_token cookie; no token is returned to
// or stored by the caller.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("grant_type", "password")

	// A 401 here is a login-form error, never a forced session reset
	return c.doForm(ctx, http.MethodPost, "/api/v1/login/access-token", form, nil, requestOptions{})
}

// Logout asks the server to terminate the session and clear the cookie
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/logout", nil, nil, requestOptions{})
}

// CurrentUser fetches the identity behind the session cookie.
// A 401/403 answer means "not authenticated" and is returned as-is; it is
// never retried and never escalated through the unauthorized hook.
func (c *Client) CurrentUser(ctx context.Context) (*UserPublic, error) {
	var user UserPublic
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/users/me", nil, &user, requestOptions{}); err != nil {
		return nil, err
	}
	return &user, nil
}

// Signup registers a new account. Registration does not authenticate.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*UserPublic, error) {
	var user UserPublic
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/users/signup", req, &user, requestOptions{}); err != nil {
		return nil, err
	}
	return &user, nil
}

// RecoverPassword requests a password-recovery email for the given address
func (c *Client) RecoverPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var msg MessageResponse
	path := "/api/v1/password-recovery/" + url.PathEscape(email)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &msg, requestOptions{}); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ResetPassword sets a new password using a recovery token
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (*MessageResponse, error) {
	var msg MessageResponse
	req := ResetPasswordRequest{Token: token, NewPassword: newPassword}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/reset-password", req, &msg, requestOptions{}); err != nil {
		return nil, err
	}
	return &msg, nil
}
