package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tagging/internal/shared/config"
	"tagging/internal/shared/database"
	"tagging/internal/shared/middleware"
	"tagging/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		GinMode: gin.TestMode,
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: time.Hour,
		},
	}
}

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewRepository(db)
	return NewService(repo, testConfig(), nil), repo
}

func createStaff(t *testing.T, repo Repository, email, password string) *users.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &users.User{
		FirstName: "Staff",
		LastName:  "Member",
		Email:     email,
		Password:  string(hashed),
		Role:      users.RoleStaff,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestRegister_CreatesRegularUser(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.com ",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, string(users.RoleUser), resp.User.Role)
	assert.False(t, resp.User.CanUseAdmin)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Register(context.Background(), &RegisterRequest{
		FirstName: "Ada",
		LastName:  "Again",
		Email:     "ada@example.com",
		Password:  "secret123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService(t)
	createStaff(t, repo, "staff@example.com", "qwerty")

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: "STAFF@example.com", Password: "qwerty"})
	require.NoError(t, err)
	assert.Equal(t, string(users.RoleStaff), resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, string(users.RoleStaff), claims.Role)

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "staff@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "qwerty"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	svc, repo := newTestService(t)
	createStaff(t, repo, "staff@example.com", "qwerty")

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: "staff@example.com", Password: "qwerty"})
	require.NoError(t, err)

	pair, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.RefreshToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "access tokens cannot refresh")
}

func TestValidateToken_Rejects(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := &service{config: testConfig()}
	token, err := expired.signToken("id", "a@example.com", "STAFF", "access", time.Now().Add(-2*time.Hour), time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestService(t)
	user := createStaff(t, repo, "staff@example.com", "qwerty")

	err := svc.ChangePassword(context.Background(), user.ID.String(), &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID.String(), &ChangePasswordRequest{CurrentPassword: "qwerty", NewPassword: "newpass"}))

	_, err = svc.Login(context.Background(), &LoginRequest{Email: "staff@example.com", Password: "newpass"})
	assert.NoError(t, err)
}

func TestLoginHandler_SetsSessionCookie(t *testing.T) {
	svc, repo := newTestService(t)
	createStaff(t, repo, "staff@example.com", "qwerty")

	router := gin.New()
	SetupAuthRoutes(router.Group("/api/v1"), NewController(svc, testConfig()), testConfig())

	body, _ := json.Marshal(LoginRequest{Email: "staff@example.com", Password: "qwerty"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.AccessTokenCookie {
			session = cookie
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, middleware.AdminCookiePath, session.Path)
	assert.NotEmpty(t, session.Value)
}

func TestMeHandler_ReturnsAccount(t *testing.T) {
	svc, repo := newTestService(t)
	staff := createStaff(t, repo, "staff@example.com", "qwerty")

	login, err := svc.Login(context.Background(), &LoginRequest{Email: "staff@example.com", Password: "qwerty"})
	require.NoError(t, err)

	router := gin.New()
	SetupAuthRoutes(router.Group("/api/v1"), NewController(svc, testConfig()), testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, staff.ID.String(), body.Data.ID)
	assert.True(t, body.Data.CanUseAdmin)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: login.AccessToken})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUser_Unknown(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetUser(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
