package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagging/internal/shared/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role, tokenType string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "11111111-1111-1111-1111-111111111111",
		"email":   "staff@example.com",
		"role":    role,
		"type":    tokenType,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_role"))
	}
	r.GET("/admin", JWTCookieAuthWithConfig(cfg), RequireStaff(), handler)
	r.GET("/api/admin", JWTAuthWithConfig(cfg), RequireStaff(), handler)
	return r
}

func TestJWTAuth_BearerHeader(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "STAFF", "access"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "STAFF", w.Body.String())
}

func TestJWTAuth_Cookie(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signToken(t, "ADMIN", "access")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_BearerOnlyIgnoresCookie(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signToken(t, "ADMIN", "access")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ADMIN", "access"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + signToken(t, "ADMIN", "refresh"), http.StatusUnauthorized},
		{"plain user", "Bearer " + signToken(t, "USER", "access"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
