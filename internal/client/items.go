package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Item represents an item record
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemsPage is a paginated list of items
type ItemsPage struct {
	Data  []Item `json:"data"`
	Count int64  `json:"count"`
}

// CreateItemRequest represents an item-creation request
type CreateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateItemRequest represents an item update
type UpdateItemRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListItems returns a page of the current user's items
func (c *Client) ListItems(ctx context.Context, skip, limit int) (*ItemsPage, error) {
	var page ItemsPage
	path := fmt.Sprintf("/api/v1/items?skip=%d&limit=%d", skip, limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetItem fetches a single item by ID
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var item Item
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/items/"+itemID, nil, &item, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem creates a new item owned by the current user
func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	var item Item
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/items", req, &item, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem updates an item by ID
func (c *Client) UpdateItem(ctx context.Context, itemID string, req UpdateItemRequest) (*Item, error) {
	var item Item
	if err := c.doJSON(ctx, http.MethodPatch, "/api/v1/items/"+itemID, req, &item, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem deletes an item by ID
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/items/"+itemID, nil, nil, requestOptions{notifyUnauthorized: true})
}
