package middleware

import (
	"net/http"
	"strings"

	"tagging/internal/shared/config"
	"tagging/internal/shared/utils/response"
	"tagging/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// AccessTokenCookie carries the access token for the HTML admin pages. It is
// only honoured by JWTCookieAuthWithConfig; the JSON API takes bearer tokens.
const AccessTokenCookie = "access_token"

// TokenTypeAccess is the "type" claim of tokens accepted here
const TokenTypeAccess = "access"

// AdminCookiePath scopes the session cookie to the HTML admin pages
const AdminCookiePath = "/admin/tagging/"

// extractToken reads the bearer token, falling back to the admin cookie when
// allowCookie is set
func extractToken(c *gin.Context, allowCookie bool) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", "authorization header format must be Bearer {token}"
		}
		return parts[1], ""
	}

	if !allowCookie {
		return "", "Authorization header is required"
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, ""
	}

	return "", "Authorization header is required"
}

func parseAccessToken(tokenString, secret string) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != TokenTypeAccess {
		return nil, false
	}
	return claims, true
}

// JWTAuthWithConfig creates a JWT authentication middleware with config. Only
// the Authorization bearer header is accepted.
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return jwtAuth(cfg, false)
}

// JWTCookieAuthWithConfig also accepts the access token cookie set at login.
// Use it for the server-rendered admin pages only.
func JWTCookieAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return jwtAuth(cfg, true)
}

func jwtAuth(cfg *config.Config, allowCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := extractToken(c, allowCookie)
		if problem != "" {
			response.RespondError(c, http.StatusUnauthorized, problem, nil)
			c.Abort()
			return
		}

		claims, ok := parseAccessToken(tokenString, cfg.JWT.Secret)
		if !ok {
			response.RespondError(c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set("user_id", claims["user_id"])
		c.Set("user_email", claims["email"])
		c.Set("user_role", claims["role"])

		c.Next()
	}
}

// RequireStaff admits admins and staff, the users allowed into the tag admin
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(users.StaffRoles()...)
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user_role")
		if !exists {
			response.RespondError(c, http.StatusUnauthorized, "user role not found in context", nil)
			c.Abort()
			return
		}

		userRole, _ := value.(string)
		hasRole := false
		for _, role := range requiredRoles {
			if userRole == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			response.RespondError(c, http.StatusForbidden, "Insufficient permissions", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
