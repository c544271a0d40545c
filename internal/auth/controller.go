package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tagging/internal/shared/config"
	"tagging/internal/shared/middleware"
	"tagging/internal/shared/utils/response"
)

type Controller struct {
	service   Service
	validator *validator.Validate
	config    *config.Config
}

func NewController(service Service, cfg *config.Config) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
		config:    cfg,
	}
}

// setSessionCookie lets the HTML admin reuse the access token
func (c *Controller) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.AccessTokenCookie, token, maxAge, middleware.AdminCookiePath, "", c.config.CookieSecure, true)
}

func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyExists):
			response.RespondError(ctx, http.StatusConflict, "User with this email already exists", nil)
		default:
			response.RespondError(ctx, http.StatusInternalServerError, "Failed to register user", nil)
		}
		return
	}

	response.RespondSuccess(ctx, http.StatusCreated, "User registered successfully", resp)
}

func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.RespondError(ctx, http.StatusUnauthorized, "Invalid email or password", nil)
		default:
			response.RespondError(ctx, http.StatusInternalServerError, "Failed to login", nil)
		}
		return
	}

	c.setSessionCookie(ctx, resp.AccessToken, int(resp.ExpiresIn))
	response.RespondSuccess(ctx, http.StatusOK, "Login successful", resp)
}

func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	tokenPair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
			response.RespondError(ctx, http.StatusUnauthorized, "Invalid or expired refresh token", nil)
		case errors.Is(err, ErrUserNotFound):
			response.RespondError(ctx, http.StatusUnauthorized, "User not found", nil)
		default:
			response.RespondError(ctx, http.StatusInternalServerError, "Failed to refresh token", nil)
		}
		return
	}

	c.setSessionCookie(ctx, tokenPair.AccessToken, int(tokenPair.ExpiresIn))
	response.RespondSuccess(ctx, http.StatusOK, "Token refreshed successfully", tokenPair)
}

func (c *Controller) Logout(ctx *gin.Context) {
	c.setSessionCookie(ctx, "", -1)

	response.RespondSuccess(ctx, http.StatusOK, "Logged out successfully", nil)
}

func (c *Controller) ChangePassword(ctx *gin.Context) {
	userID, exists := ctx.Get("user_id")
	if !exists {
		response.RespondError(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	err := c.service.ChangePassword(ctx.Request.Context(), fmt.Sprint(userID), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.RespondError(ctx, http.StatusUnauthorized, "Current password is incorrect", nil)
		case errors.Is(err, ErrUserNotFound):
			response.RespondError(ctx, http.StatusNotFound, "User not found", nil)
		default:
			response.RespondError(ctx, http.StatusInternalServerError, "Failed to change password", nil)
		}
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Password changed successfully", nil)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	userID, exists := ctx.Get("user_id")
	if !exists {
		response.RespondError(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	user, err := c.service.GetUser(ctx.Request.Context(), fmt.Sprint(userID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.RespondError(ctx, http.StatusNotFound, "User not found", nil)
			return
		}
		response.RespondError(ctx, http.StatusInternalServerError, "Failed to load user", nil)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "User data retrieved successfully", user)
}
