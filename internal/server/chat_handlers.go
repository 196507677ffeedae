package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/models"
)

// CreateConversationRequest represents a conversation-creation request
type CreateConversationRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Title     string `json:"title" binding:"max=255"`
}

// SendMessageRequest represents a user message sent into a conversation
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// listConversations returns all conversations of the caller
func (s *Server) listConversations(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var conversations []models.Conversation
	if err := s.db.Where("user_id = ?", sessionData.UserID).Order("updated_at DESC").Find(&conversations).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list conversations")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// listProjectConversations returns conversations scoped to one project
func (s *Server) listProjectConversations(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	project, ok := s.findOwnedProject(c, c.Param("id"))
	if !ok {
		return
	}

	var conversations []models.Conversation
	err := s.db.Where("project_id = ? AND user_id = ?", project.ID, sessionData.UserID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list conversations")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// createConversation starts a new conversation in a project
func (s *Server) createConversation(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	project, ok := s.findOwnedProject(c, req.ProjectID)
	if !ok {
		return
	}

	title := req.Title
	if title == "" {
		title = "New conversation"
	}

	conversation := &models.Conversation{
		ProjectID: project.ID,
		UserID:    sessionData.UserID,
		Title:     title,
	}

	if err := s.db.Create(conversation).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create conversation")
		detail(c, http.StatusInternalServerError, "Failed to create conversation")
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

// findOwnedConversation loads a conversation owned by the caller
func (s *Server) findOwnedConversation(c *gin.Context) (*models.Conversation, bool) {
	sessionData, _ := GetSessionData(c)

	var conversation models.Conversation
	if err := s.db.Where("id = ?", c.Param("id")).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "Conversation not found")
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find conversation")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}

	if conversation.UserID != sessionData.UserID && !sessionData.IsSuperuser {
		detail(c, http.StatusBadRequest, "Not enough permissions")
		return nil, false
	}

	return &conversation, true
}

// updateConversationTitle renames a conversation
func (s *Server) updateConversationTitle(c *gin.Context) {
	conversation, ok := s.findOwnedConversation(c)
	if !ok {
		return
	}

	title := c.Query("title")
	if title == "" {
		detail(c, http.StatusUnprocessableEntity, "Title is required")
		return
	}

	if err := s.db.Model(conversation).Update("title", title).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update conversation")
		detail(c, http.StatusInternalServerError, "Failed to update conversation")
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// listMessages returns the messages of a conversation in order
func (s *Server) listMessages(c *gin.Context) {
	conversation, ok := s.findOwnedConversation(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conversation.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list messages")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, messages)
}

// sendMessage stores a user message and answers with the assistant reply
func (s *Server) sendMessage(c *gin.Context) {
	conversation, ok := s.findOwnedConversation(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	userMessage := &models.Message{
		ConversationID: conversation.ID,
		Role:           models.MessageRoleUser,
		Content:        req.Content,
	}
	if err := s.db.Create(userMessage).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to store message")
		detail(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	reply := &models.Message{
		ConversationID: conversation.ID,
		Role:           models.MessageRoleAssistant,
		Content:        s.composeReply(conversation, req.Content),
	}
	if err := s.db.Create(reply).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to store assistant reply")
		detail(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	// Touch the conversation so it sorts to the top of listings
	s.db.Model(conversation).Update("updated_at", reply.CreatedAt)

	c.JSON(http.StatusCreated, reply)
}

// composeReply produces the assistant answer for a user message. Without
// an LLM backend configured this reports what document context the
// conversation's project has available.
func (s *Server) composeReply(conversation *models.Conversation, content string) string {
	var completed int64
	s.db.Model(&models.Document{}).
		Where("project_id = ? AND status = ?", conversation.ProjectID, models.DocumentStatusCompleted).
		Count(&completed)

	if completed == 0 {
		return "No processed documents are available in this project yet. Upload documents and wait for processing to finish to get grounded answers."
	}
	return fmt.Sprintf("Answering from %d processed document(s) in this project. (LLM backend not configured; this is a placeholder response.)", completed)
}
