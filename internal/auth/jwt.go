package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// Token purposes. Access tokens ride in the session cookie; reset tokens
// are mailed out for password recovery and are not valid for API access.
const (
	PurposeAccess        = "access"
	PurposePasswordReset = "password_reset"
)

// Claims represents the JWT token claims for both token purposes
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// InitializeJWT sets the JWT secret key
func InitializeJWT(secret string) {
	jwtSecret = []byte(secret)
}

// GenerateAccessToken creates the session token carried by the access_token cookie
func GenerateAccessToken(userID, email string, ttl time.Duration) (string, error) {
	return generateToken(userID, email, PurposeAccess, ttl)
}

// GeneratePasswordResetToken creates a short-lived token for the reset-password flow
func GeneratePasswordResetToken(userID, email string, ttl time.Duration) (string, error) {
	return generateToken(userID, email, PurposePasswordReset, ttl)
}

func generateToken(userID, email, purpose string, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", fmt.Errorf("JWT secret not initialized")
	}

	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims.
// The purpose must match: an access token is not a reset token and vice versa.
func ValidateToken(tokenString, purpose string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, fmt.Errorf("JWT secret not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Purpose != purpose {
		return nil, fmt.Errorf("token purpose mismatch")
	}

	return claims, nil
}
