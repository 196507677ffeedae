package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/atrium-dev/atrium/internal/apierror"
)

// Document represents an uploaded document and its processing state
type Document struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Status      string     `json:"status"`
	ChunkCount  int        `json:"chunk_count"`
	Error       string     `json:"error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DocumentProgress reports processing progress for a document
type DocumentProgress struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

// UploadDocument uploads a file into a project. The server stores the file
// and enqueues processing; the returned document starts in "pending".
func (c *Client) UploadDocument(ctx context.Context, projectID, filename string, content io.Reader) (*Document, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	url := fmt.Sprintf("%s/api/v1/projects/%s/documents", c.baseURL, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		apiErr := apierror.FromResponse(resp.StatusCode, body)
		if apiErr.IsUnauthorized() && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, apiErr
	}

	var doc Document
	if err := decodeJSON(resp.Body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns all documents in a project
func (c *Client) ListDocuments(ctx context.Context, projectID string) ([]Document, error) {
	var docs []Document
	path := "/api/v1/projects/" + projectID + "/documents"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &docs, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument fetches a single document by ID
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/documents/"+documentID, nil, &doc, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentProgress returns the processing progress of a document
func (c *Client) GetDocumentProgress(ctx context.Context, documentID string) (*DocumentProgress, error) {
	var progress DocumentProgress
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/documents/"+documentID+"/progress", nil, &progress, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &progress, nil
}

// RetryDocument re-enqueues processing of a failed document
func (c *Client) RetryDocument(ctx context.Context, documentID string) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/documents/"+documentID+"/retry", nil, &doc, requestOptions{notifyUnauthorized: true}); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument deletes a document and its stored file
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/documents/"+documentID, nil, nil, requestOptions{notifyUnauthorized: true})
}
