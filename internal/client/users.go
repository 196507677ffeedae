package client

import (
	"context"
	"fmt"
	"net/http"
)

// UpdateMeRequest represents a profile update for the current user
type UpdateMeRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// UpdatePasswordRequest represents a password change for the current user
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CreateUserRequest represents an admin user-creation request
type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UpdateUserRequest represents an admin user update
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

// UsersPage is a paginated list of users
type UsersPage struct {
	Data  []UserPublic `json:"data"`
	Count int64        `json:"count"`
}

// UpdateMe updates the current user's profile
func (c *Client) UpdateMe(ctx context.Context, req UpdateMeRequest) (*UserPublic, error) {
	var user UserPublic
	if err := c.doJSON(ctx, http.MethodPatch, "/api/v1/users/me", req, &user, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMyPassword changes the current user's password
func (c *Client) UpdateMyPassword(ctx context.Context, req UpdatePasswordRequest) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.doJSON(ctx, http.MethodPatch, "/api/v1/users/me/password", req, &msg, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMe deletes the current user's account
func (c *Client) DeleteMe(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/users/me", nil, nil, requestOptions{notifyUnauthorized: true})
}

// ListUsers returns a page of users (superuser only)
func (c *Client) ListUsers(ctx context.Context, skip, limit int) (*UsersPage, error) {
	var page UsersPage
	path := fmt.Sprintf("/api/v1/users?skip=%d&limit=%d", skip, limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateUser creates a user (superuser only)
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserPublic, error) {
	var user UserPublic
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/users", req, &user, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches a user by ID (superuser only)
func (c *Client) GetUser(ctx context.Context, userID string) (*UserPublic, error) {
	var user UserPublic
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/users/"+userID, nil, &user, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates a user by ID (superuser only)
func (c *Client) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*UserPublic, error) {
	var user UserPublic
	if err := c.doJSON(ctx, http.MethodPatch, "/api/v1/users/"+userID, req, &user, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user by ID (superuser only)
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/users/"+userID, nil, nil, requestOptions{notifyUnauthorized: true})
}
