package client

import (
	"context"
	"net/http"
	"time"
)

// Project represents a project record
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectCapacity reports how much of a project's document budget is used
type ProjectCapacity struct {
	DocumentCount int   `json:"document_count"`
	DocumentLimit int   `json:"document_limit"`
	UsedBytes     int64 `json:"used_bytes"`
	ByteLimit     int64 `json:"byte_limit"`
}

// CreateProjectRequest represents a project-creation request
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest represents a project update
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListProjects returns all projects owned by the current user
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/projects", nil, &projects, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches a single project by ID
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/projects/"+projectID, nil, &project, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a new project owned by the current user
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	var project Project
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/projects", req, &project, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject updates a project by ID
func (c *Client) UpdateProject(ctx context.Context, projectID string, req UpdateProjectRequest) (*Project, error) {
	var project Project
	if err := c.doJSON(ctx, http.MethodPatch, "/api/v1/projects/"+projectID, req, &project, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project and everything in it
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/projects/"+projectID, nil, nil, requestOptions{notifyUnauthorized: true})
}

// GetCapacity returns the document budget usage for a project
func (c *Client) GetCapacity(ctx context.Context, projectID string) (*ProjectCapacity, error) {
	var capacity ProjectCapacity
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/projects/"+projectID+"/capacity", nil, &capacity, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &capacity, nil
}
