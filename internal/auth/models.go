package auth

import (
	"github.com/golang-jwt/jwt/v4"

	"tagging/internal/shared/middleware"
)

const (
	tokenIssuer = "tagging"

	// Only access tokens open the admin; refresh tokens only mint new pairs
	tokenTypeAccess  = middleware.TokenTypeAccess
	tokenTypeRefresh = "refresh"
)

// JWTClaims is the payload of both token types. The middleware reads the
// same user_id, email, role and type claims.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
