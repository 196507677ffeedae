package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/models"
)

// CreateItemRequest represents an item-creation request
type CreateItemRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=2048"`
}

// UpdateItemRequest represents an item update
type UpdateItemRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2048"`
}

// ItemsPage is a paginated item listing
type ItemsPage struct {
	Data  []models.Item `json:"data"`
	Count int64         `json:"count"`
}

// pagination reads skip/limit query parameters with the API's defaults
func pagination(c *gin.Context) (int, int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}
	return skip, limit
}

// findOwnedItem loads an item and enforces owner scoping. Superusers see
// everything; everyone else only their own items.
func (s *Server) findOwnedItem(c *gin.Context) (*models.Item, bool) {
	sessionData, _ := GetSessionData(c)

	var item models.Item
	if err := s.db.Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "Item not found")
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find item")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}

	if !sessionData.IsSuperuser && item.OwnerID != sessionData.UserID {
		detail(c, http.StatusBadRequest, "Not enough permissions")
		return nil, false
	}

	return &item, true
}

// listItems returns a page of the caller's items
func (s *Server) listItems(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	skip, limit := pagination(c)

	query := s.db.Model(&models.Item{})
	if !sessionData.IsSuperuser {
		query = query.Where("owner_id = ?", sessionData.UserID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count items")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var items []models.Item
	if err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&items).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list items")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, ItemsPage{Data: items, Count: count})
}

// getItem fetches a single item
func (s *Server) getItem(c *gin.Context) {
	item, ok := s.findOwnedItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, item)
}

// createItem creates an item owned by the caller
func (s *Server) createItem(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	item := &models.Item{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     sessionData.UserID,
	}

	if err := s.db.Create(item).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create item")
		detail(c, http.StatusInternalServerError, "Failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// updateItem updates an item
func (s *Server) updateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	item, ok := s.findOwnedItem(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update item")
			detail(c, http.StatusInternalServerError, "Failed to update item")
			return
		}
	}

	c.JSON(http.StatusOK, item)
}

// deleteItem deletes an item
func (s *Server) deleteItem(c *gin.Context) {
	item, ok := s.findOwnedItem(c)
	if !ok {
		return
	}

	if err := s.db.Delete(item).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete item")
		detail(c, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
