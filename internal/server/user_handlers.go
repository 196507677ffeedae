package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/auth"
	"github.com/atrium-dev/atrium/internal/models"
)

// UserPublic represents user information returned in responses
type UserPublic struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

func userPublic(user *models.User) UserPublic {
	return UserPublic{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
	}
}

// SignupRequest represents open account registration
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// CreateUserRequest represents a superuser creating an account
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"full_name"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UpdateMeRequest represents a self-service profile update
type UpdateMeRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
}

// UpdatePasswordRequest represents a self-service password change
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UpdateUserRequest represents a superuser updating an account
type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UsersPage is a paginated user listing
type UsersPage struct {
	Data  []UserPublic `json:"data"`
	Count int64        `json:"count"`
}

// The router cannot hold both /users/me and /users/:id, so the :id
// handlers dispatch on the literal "me" segment themselves.

func (s *Server) getUserOrMe(c *gin.Context) {
	if c.Param("id") == "me" {
		s.getCurrentUser(c)
		return
	}
	if sessionData, _ := GetSessionData(c); !sessionData.IsSuperuser {
		detail(c, http.StatusForbidden, "The user doesn't have enough privileges")
		return
	}
	s.getUser(c)
}

func (s *Server) updateUserOrMe(c *gin.Context) {
	if c.Param("id") == "me" {
		s.updateCurrentUser(c)
		return
	}
	if sessionData, _ := GetSessionData(c); !sessionData.IsSuperuser {
		detail(c, http.StatusForbidden, "The user doesn't have enough privileges")
		return
	}
	s.updateUser(c)
}

func (s *Server) deleteUserOrMe(c *gin.Context) {
	if c.Param("id") == "me" {
		s.deleteCurrentUser(c)
		return
	}
	if sessionData, _ := GetSessionData(c); !sessionData.IsSuperuser {
		detail(c, http.StatusForbidden, "The user doesn't have enough privileges")
		return
	}
	s.deleteUser(c)
}

func (s *Server) updateMyPassword(c *gin.Context) {
	if c.Param("id") != "me" {
		detail(c, http.StatusNotFound, "Not found")
		return
	}
	s.updateCurrentUserPassword(c)
}

// signup registers a new account. Registration never authenticates.
func (s *Server) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check email")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		detail(c, http.StatusBadRequest, "The user with this email already exists in the system")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		detail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		IsActive:     true,
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		detail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User signed up")

	c.JSON(http.StatusOK, userPublic(user))
}

// getCurrentUser answers the identity check behind the session cookie
func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		detail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, userPublic(&user))
}

// updateCurrentUser updates the caller's own profile
func (s *Server) updateCurrentUser(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		detail(c, http.StatusNotFound, "User not found")
		return
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		var count int64
		s.db.Model(&models.User{}).Where("email = ? AND id <> ?", *req.Email, user.ID).Count(&count)
		if count > 0 {
			detail(c, http.StatusConflict, "User with this email already exists")
			return
		}
		updates["email"] = *req.Email
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update user")
			detail(c, http.StatusInternalServerError, "Failed to update user")
			return
		}
	}

	c.JSON(http.StatusOK, userPublic(&user))
}

// updateCurrentUserPassword changes the caller's own password
func (s *Server) updateCurrentUserPassword(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		detail(c, http.StatusNotFound, "User not found")
		return
	}

	if err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash); err != nil {
		detail(c, http.StatusBadRequest, "Incorrect password")
		return
	}

	if req.NewPassword == req.CurrentPassword {
		detail(c, http.StatusBadRequest, "New password cannot be the same as the current one")
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		detail(c, http.StatusInternalServerError, "Failed to update password")
		return
	}

	if err := s.db.Model(&user).Update("password_hash", passwordHash).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update password")
		detail(c, http.StatusInternalServerError, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// deleteCurrentUser deletes the caller's own account
func (s *Server) deleteCurrentUser(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	if sessionData.IsSuperuser {
		detail(c, http.StatusForbidden, "Super users are not allowed to delete themselves")
		return
	}

	if err := s.db.Where("id = ?", sessionData.UserID).Delete(&models.User{}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete user")
		detail(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	s.clearSessionCookie(c)
	s.logger.Info().Str("user_id", sessionData.UserID).Msg("User deleted own account")

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// listUsers returns a page of users (superuser only)
func (s *Server) listUsers(c *gin.Context) {
	skip, limit := pagination(c)

	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var users []models.User
	if err := s.db.Order("created_at DESC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	page := UsersPage{Data: make([]UserPublic, len(users)), Count: count}
	for i := range users {
		page.Data[i] = userPublic(&users[i])
	}

	c.JSON(http.StatusOK, page)
}

// createUser creates a user (superuser only)
func (s *Server) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check email")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		detail(c, http.StatusBadRequest, "The user with this email already exists in the system")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		detail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		IsActive:     isActive,
		IsSuperuser:  req.IsSuperuser,
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		detail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("created_by", sessionData.UserID).
		Msg("User created")

	c.JSON(http.StatusCreated, userPublic(user))
}

// getUser fetches a user by ID (superuser only)
func (s *Server) getUser(c *gin.Context) {
	var user models.User
	if err := s.db.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, userPublic(&user))
}

// updateUser updates a user by ID (superuser only)
func (s *Server) updateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		var count int64
		s.db.Model(&models.User{}).Where("email = ? AND id <> ?", *req.Email, user.ID).Count(&count)
		if count > 0 {
			detail(c, http.StatusConflict, "User with this email already exists")
			return
		}
		updates["email"] = *req.Email
	}
	if req.Password != nil {
		passwordHash, err := auth.HashPassword(*req.Password)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to hash password")
			detail(c, http.StatusInternalServerError, "Failed to update user")
			return
		}
		updates["password_hash"] = passwordHash
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsSuperuser != nil {
		updates["is_superuser"] = *req.IsSuperuser
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update user")
			detail(c, http.StatusInternalServerError, "Failed to update user")
			return
		}
	}

	c.JSON(http.StatusOK, userPublic(&user))
}

// deleteUser deletes a user by ID (superuser only, cannot delete self)
func (s *Server) deleteUser(c *gin.Context) {
	userID := c.Param("id")
	sessionData, _ := GetSessionData(c)

	if userID == sessionData.UserID {
		detail(c, http.StatusForbidden, "Super users are not allowed to delete themselves")
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := s.db.Delete(&user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete user")
		detail(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("deleted_by", sessionData.UserID).
		Msg("User deleted")

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
