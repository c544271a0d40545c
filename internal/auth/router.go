package auth

import (
	"github.com/gin-gonic/gin"

	"tagging/internal/shared/config"
	"tagging/internal/shared/middleware"
)

// SetupAuthRoutes registers the account endpoints. Login, refresh and logout
// also maintain the admin session cookie; /me and /change-password take a
// bearer token like the rest of the JSON API.
func SetupAuthRoutes(router *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", controller.Register) // POST /api/v1/auth/register - Create a USER account
		auth.POST("/login", controller.Login)       // POST /api/v1/auth/login - Token pair + admin cookie
		auth.POST("/refresh", controller.RefreshToken)
		auth.POST("/logout", controller.Logout)
	}

	account := auth.Group("")
	account.Use(middleware.JWTAuthWithConfig(cfg))
	{
		account.GET("/me", controller.GetMe)
		account.PUT("/change-password", controller.ChangePassword)
	}
}
