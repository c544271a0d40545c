// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tagging/docs"
	"tagging/internal/auth"
	"tagging/internal/shared/config"
	"tagging/internal/shared/database"
	"tagging/internal/shared/middleware"
	"tagging/internal/tagevents"
	"tagging/internal/tags"
	"tagging/pkg/logger"
)

const serviceName = "tagging-backend"

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher tagevents.Publisher
	log       *logger.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher tagevents.Publisher, log *logger.Logger) *Router {
	if publisher == nil {
		publisher = tagevents.NopPublisher{}
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		log:       log,
	}
}

// SetupRoutes configures all application routes. The engine's HTML renderer
// is replaced with the admin page renderer.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.HTMLRender = tags.NewAdminRenderer()

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	tagService := tags.NewService(
		tags.NewRepository(r.db.SQL),
		r.db.CacheService(),
		r.publisher,
		r.log,
		r.config.Tagging,
	)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		tags.SetupTagRoutes(api, tags.NewController(tagService), r.staffOnly(false)...)
	}

	// Server-rendered admin pages, the only routes reading the session cookie
	tags.SetupAdminRoutes(engine, tags.NewAdminController(tagService), r.staffOnly(true)...)
}

// staffOnly is the middleware chain guarding an admin surface. The JSON API
// takes bearer tokens; the HTML pages also take the session cookie.
func (r *Router) staffOnly(withCookie bool) []gin.HandlerFunc {
	authenticate := middleware.JWTAuthWithConfig(r.config)
	if withCookie {
		authenticate = middleware.JWTCookieAuthWithConfig(r.config)
	}
	return []gin.HandlerFunc{authenticate, middleware.RequireStaff()}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "operational",
			"api_version":  r.config.APIVersion,
			"multilingual": r.config.Tagging.MultilingualTags,
			"timestamp":    time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authService := auth.NewService(auth.NewRepository(r.db.SQL), r.config, r.log)
	auth.SetupAuthRoutes(rg, auth.NewController(authService, r.config), r.config)
}
