package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/models"
	"github.com/atrium-dev/atrium/internal/tasks"
)

// DocumentProgress reports processing progress for a document
type DocumentProgress struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

// uploadDocument stores an uploaded file and enqueues processing
func (s *Server) uploadDocument(c *gin.Context) {
	project, ok := s.findOwnedProject(c, c.Param("id"))
	if !ok {
		return
	}

	capacity, err := s.projectCapacity(project.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute project capacity")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if capacity.DocumentCount >= capacity.DocumentLimit {
		detail(c, http.StatusBadRequest, "Project document limit reached")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusBadRequest, "No file provided")
		return
	}

	if fileHeader.Size > s.config.Uploads.MaxBytes {
		detail(c, http.StatusBadRequest, "File is too large")
		return
	}
	if capacity.UsedBytes+fileHeader.Size > capacity.ByteLimit {
		detail(c, http.StatusBadRequest, "Project storage limit reached")
		return
	}

	// Stored under a fresh ULID so uploads never collide on filename
	storageName := ulid.Make().String() + filepath.Ext(fileHeader.Filename)
	storagePath := filepath.Join(s.config.Uploads.Dir, storageName)

	if err := os.MkdirAll(s.config.Uploads.Dir, 0o755); err != nil {
		s.logger.Error().Err(err).Msg("Failed to create upload directory")
		detail(c, http.StatusInternalServerError, "Failed to store file")
		return
	}
	if err := c.SaveUploadedFile(fileHeader, storagePath); err != nil {
		s.logger.Error().Err(err).Msg("Failed to store uploaded file")
		detail(c, http.StatusInternalServerError, "Failed to store file")
		return
	}

	doc := &models.Document{
		ProjectID:   project.ID,
		Filename:    filepath.Base(fileHeader.Filename),
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		StoragePath: storagePath,
		Status:      models.DocumentStatusPending,
	}

	if err := s.db.Create(doc).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create document")
		detail(c, http.StatusInternalServerError, "Failed to create document")
		return
	}

	if err := s.enqueueDocumentProcessing(doc.ID); err != nil {
		// The document stays pending; retry can re-enqueue it later
		s.logger.Error().Err(err).Str("document_id", doc.ID).Msg("Failed to enqueue document processing")
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("project_id", project.ID).
		Int64("size_bytes", doc.SizeBytes).
		Msg("Document uploaded")

	c.JSON(http.StatusCreated, doc)
}

func (s *Server) enqueueDocumentProcessing(documentID string) error {
	task, err := tasks.NewDocumentProcessTask(documentID)
	if err != nil {
		return err
	}
	if _, err := s.asynqClient.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// listDocuments returns all documents of a project
func (s *Server) listDocuments(c *gin.Context) {
	project, ok := s.findOwnedProject(c, c.Param("id"))
	if !ok {
		return
	}

	var docs []models.Document
	if err := s.db.Where("project_id = ?", project.ID).Order("created_at DESC").Find(&docs).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list documents")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, docs)
}

// findOwnedDocument loads a document and checks project ownership
func (s *Server) findOwnedDocument(c *gin.Context) (*models.Document, bool) {
	var doc models.Document
	if err := s.db.Where("id = ?", c.Param("id")).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "Document not found")
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find document")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}

	if _, ok := s.findOwnedProject(c, doc.ProjectID); !ok {
		return nil, false
	}

	return &doc, true
}

// getDocument fetches a single document
func (s *Server) getDocument(c *gin.Context) {
	doc, ok := s.findOwnedDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, doc)
}

// getDocumentProgress returns the processing progress of a document
func (s *Server) getDocumentProgress(c *gin.Context) {
	doc, ok := s.findOwnedDocument(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, DocumentProgress{
		ID:         doc.ID,
		Status:     doc.Status,
		ChunkCount: doc.ChunkCount,
		Error:      doc.Error,
	})
}

// retryDocument re-enqueues processing of a failed document
func (s *Server) retryDocument(c *gin.Context) {
	doc, ok := s.findOwnedDocument(c)
	if !ok {
		return
	}

	if doc.Status != models.DocumentStatusFailed {
		detail(c, http.StatusBadRequest, "Only failed documents can be retried")
		return
	}

	updates := map[string]interface{}{
		"status": models.DocumentStatusPending,
		"error":  "",
	}
	if err := s.db.Model(doc).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to reset document")
		detail(c, http.StatusInternalServerError, "Failed to retry document")
		return
	}

	if err := s.enqueueDocumentProcessing(doc.ID); err != nil {
		s.logger.Error().Err(err).Str("document_id", doc.ID).Msg("Failed to enqueue document processing")
		detail(c, http.StatusInternalServerError, "Failed to retry document")
		return
	}

	s.logger.Info().Str("document_id", doc.ID).Msg("Document processing retried")

	c.JSON(http.StatusOK, doc)
}

// deleteDocument deletes a document and its stored file
func (s *Server) deleteDocument(c *gin.Context) {
	doc, ok := s.findOwnedDocument(c)
	if !ok {
		return
	}

	if err := s.db.Delete(doc).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete document")
		detail(c, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("path", doc.StoragePath).Msg("Failed to remove stored file")
	}

	s.logger.Info().Str("document_id", doc.ID).Msg("Document deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}
