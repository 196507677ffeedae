package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Conversation represents a chat thread scoped to a project
type Conversation struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage represents a single message within a conversation
type ChatMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateConversationRequest represents a conversation-creation request
type CreateConversationRequest struct {
	ProjectID string `json:"project_id"`
	Title     string `json:"title,omitempty"`
}

// SendMessageRequest represents a user message sent into a conversation
type SendMessageRequest struct {
	Content string `json:"content"`
}

// ListConversations returns all conversations of the current user
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var conversations []Conversation
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/chat/conversations", nil, &conversations, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return conversations, nil
}

// ListProjectConversations returns conversations scoped to one project
func (c *Client) ListProjectConversations(ctx context.Context, projectID string) ([]Conversation, error) {
	var conversations []Conversation
	path := "/api/v1/chat/conversations/" + projectID
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &conversations, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return conversations, nil
}

// CreateConversation starts a new conversation in a project
func (c *Client) CreateConversation(ctx context.Context, req CreateConversationRequest) (*Conversation, error) {
	var conversation Conversation
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/chat/conversations", req, &conversation, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// UpdateConversationTitle renames a conversation
func (c *Client) UpdateConversationTitle(ctx context.Context, conversationID, title string) (*Conversation, error) {
	var conversation Conversation
	path := "/api/v1/chat/conversations/" + conversationID + "/title?title=" + url.QueryEscape(title)
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, &conversation, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListMessages returns the messages of a conversation in order
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	path := "/api/v1/chat/conversations/" + conversationID + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &messages, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage posts a user message and returns the assistant's reply
func (c *Client) SendMessage(ctx context.Context, conversationID string, req SendMessageRequest) (*ChatMessage, error) {
	var reply ChatMessage
	path := "/api/v1/chat/conversations/" + conversationID + "/messages"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &reply, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &reply, nil
}
