package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/auth"
	"github.com/atrium-dev/atrium/internal/models"
)

const sessionCookieName = "access_token"

// LoginForm represents the form-encoded login request
type LoginForm struct {
	Username  string `form:"username" binding:"required,email"`
	Password  string `form:"password" binding:"required"`
	GrantType string `form:"grant_type"`
}

// ResetPasswordRequest represents a reset-password request
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// setSessionCookie attaches the httpOnly session cookie to the response
func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		sessionCookieName,
		token,
		int(s.config.Auth.AccessTokenTTL.Seconds()),
		"/",
		"",
		s.config.Auth.CookieSecure,
		true, // httpOnly: the client never reads the credential
	)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", s.config.Auth.CookieSecure, true)
}

// login authenticates with form-encoded credentials and establishes the
// session by setting the httpOnly access_token cookie
func (s *Server) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		bindingDetail(c, err)
		return
	}

	var user models.User
	if err := s.db.Where("email = ?", form.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusBadRequest, "Incorrect email or password")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := auth.VerifyPassword(form.Password, user.PasswordHash); err != nil {
		detail(c, http.StatusBadRequest, "Incorrect email or password")
		return
	}

	if !user.IsActive {
		detail(c, http.StatusBadRequest, "Inactive user")
		return
	}

	token, err := auth.GenerateAccessToken(user.ID, user.Email, s.config.Auth.AccessTokenTTL)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate access token")
		detail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.setSessionCookie(c, token)

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// logout clears the session cookie. It succeeds whether or not a valid
// session was attached: the client's intent is "log out regardless".
func (s *Server) logout(c *gin.Context) {
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// recoverPassword issues a password-reset token for the given email
func (s *Server) recoverPassword(c *gin.Context) {
	email := c.Param("email")

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "The user with this email does not exist in the system.")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := auth.GeneratePasswordResetToken(user.ID, user.Email, s.config.Auth.ResetTokenTTL)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate reset token")
		detail(c, http.StatusInternalServerError, "Failed to generate reset token")
		return
	}

	// No mailer is wired up yet; the token lands in the server log so an
	// operator can hand it to the user.
	// TODO: deliver reset tokens by email once SMTP settings exist
	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("reset_token", token).
		Msg("Password recovery requested")

	c.JSON(http.StatusOK, gin.H{"message": "Password recovery email sent"})
}

// resetPassword sets a new password using a recovery token
func (s *Server) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingDetail(c, err)
		return
	}

	claims, err := auth.ValidateToken(req.Token, auth.PurposePasswordReset)
	if err != nil {
		detail(c, http.StatusBadRequest, "Invalid token")
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		detail(c, http.StatusNotFound, "The user with this email does not exist in the system.")
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

	s.logger.Info().Str("user_id", user.ID).Msg("Password reset")

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
