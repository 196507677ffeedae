package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/atrium-dev/atrium/internal/auth"
	"github.com/atrium-dev/atrium/internal/models"
)

const bearerPrefix = "Bearer "

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidToken     = errors.New("invalid token")
	ErrUserNotFound     = errors.New("user not found")
	ErrInactiveUser     = errors.New("inactive user")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

// GetSessionData returns the authenticated session attached to the request
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

// detail answers an error in the {"detail": ...} shape all clients expect
func detail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"detail": message})
	c.Abort()
}

// fieldDetail is one entry of a validation-error array
type fieldDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// bindingDetail answers a request-binding failure as a 422 with a
// validation-error array, mirroring the wire shape clients parse
func bindingDetail(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]fieldDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fieldDetail{
				Loc:  []string{"body", strings.ToLower(fe.Field())},
				Msg:  validationMessage(fe),
				Type: "value_error",
			})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": fields})
		c.Abort()
		return
	}

	detail(c, http.StatusUnprocessableEntity, err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "email":
		return "Invalid email format"
	case "min":
		return "String should have at least " + fe.Param() + " characters"
	}
	return "Invalid value"
}

// extractToken pulls the access token from the httpOnly cookie, falling
// back to an Authorization bearer header for non-browser clients
func extractToken(c *gin.Context) (string, string, error) {
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie != "" {
		return cookie, "cookie", nil
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, bearerPrefix) {
		token := strings.TrimPrefix(authHeader, bearerPrefix)
		if token != "" {
			return token, "bearer", nil
		}
	}

	return "", "", ErrNotAuthenticated
}

// AuthMiddleware validates the session token and attaches session data
func AuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, method, err := extractToken(c)
		if err != nil {
			detail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := auth.ValidateToken(token, auth.PurposeAccess)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to validate session token")
			detail(c, http.StatusForbidden, "Could not validate credentials")
			return
		}

		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User behind valid token not found")
			detail(c, http.StatusUnauthorized, "User not found")
			return
		}

		if !user.IsActive {
			detail(c, http.StatusForbidden, "Inactive user")
			return
		}

		setSession(c, &auth.SessionData{
			UserID:      user.ID,
			Email:       user.Email,
			IsSuperuser: user.IsSuperuser,
			AuthMethod:  method,
		})

		c.Next()
	}
}

// SuperuserMiddleware ensures the authenticated user is a superuser
func SuperuserMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			detail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		if !sessionData.IsSuperuser {
			detail(c, http.StatusForbidden, "The user doesn't have enough privileges")
			return
		}

		c.Next()
	}
}
