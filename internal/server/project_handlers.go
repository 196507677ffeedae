package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/models"
)

// Per-project document budget
const (
	projectDocumentLimit = 50
	projectByteLimit     = int64(100 << 20) // 100MB
)

// CreateProjectRequest represents a project-creation request
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=2048"`
}

// UpdateProjectRequest represents a project update
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2048"`
}

// ProjectCapacity reports how much of a project's document budget is used
type ProjectCapacity struct {
	DocumentCount int   `json:"document_count"`
	DocumentLimit int   `json:"document_limit"`
	UsedBytes     int64 `json:"used_bytes"`
	ByteLimit     int64 `json:"byte_limit"`
}

// findOwnedProject loads a project and enforces owner scoping
func (s *Server) findOwnedProject(c *gin.Context, projectID string) (*models.Project, bool) {
	sessionData, _ := GetSessionData(c)

	var project models.Project
	if err := s.db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "Project not found")
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find project")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}

	if !sessionData.IsSuperuser && project.OwnerID != sessionData.UserID {
		detail(c, http.StatusBadRequest, "Not enough permissions")
		return nil, false
	}

	return &project, true
}

// listProjects returns the caller's projects
func (s *Server) listProjects(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	query := s.db.Model(&models.Project{})
	if !sessionData.IsSuperuser {
		query = query.Where("owner_id = ?", sessionData.UserID)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list projects")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, projects)
}

// getProject fetches a single project
func (s *Server) getProject(c *gin.Context) {
	project, ok := s.findOwnedProject(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project)
}

// createProject creates a project owned by the caller
func (s *Server) createProject(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     sessionData.UserID,
	}

	if err := s.db.Create(project).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create project")
		detail(c, http.StatusInternalServerError, "Failed to create project")
		return
	}

	s.logger.Info().Str("project_id", project.ID).Str("owner_id", project.OwnerID).Msg("Project created")

	c.JSON(http.StatusCreated, project)
}

// updateProject updates a project
func (s *Server) updateProject(c *gin.Context) {
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	project, ok := s.findOwnedProject(c, c.Param("id"))
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update project")
			detail(c, http.StatusInternalServerError, "Failed to update project")
			return
		}
	}

	c.JSON(http.StatusOK, project)
}

// deleteProject deletes a project and everything in it
func (s *Server) deleteProject(c *gin.Context) {
	project, ok := s.findOwnedProject(c, c.Param("id"))
	if !ok {
		return
	}

	if err := s.db.Select("Documents", "Conversations").Delete(project).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete project")
		detail(c, http.StatusInternalServerError, "Failed to delete project")
		return
	}

	s.logger.Info().Str("project_id", project.ID).Msg("Project deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// projectCapacity computes the document budget usage for a project
func (s *Server) projectCapacity(projectID string) (*ProjectCapacity, error) {
	var count int64
	if err := s.db.Model(&models.Document{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}

	var usedBytes int64
	err := s.db.Model(&models.Document{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&usedBytes).Error
	if err != nil {
		return nil, err
	}

	return &ProjectCapacity{
		DocumentCount: int(count),
		DocumentLimit: projectDocumentLimit,
		UsedBytes:     usedBytes,
		ByteLimit:     projectByteLimit,
	}, nil
}

// getProjectCapacity returns the document budget usage for a project
func (s *Server) getProjectCapacity(c *gin.Context) {
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

	c.JSON(http.StatusOK, capacity)
}
