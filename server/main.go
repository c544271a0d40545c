package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"tagging/api/routes"
	"tagging/internal/shared/config"
	"tagging/internal/shared/database"
	"tagging/internal/tagevents"
	"tagging/internal/tags"
	"tagging/pkg/logger"
	"tagging/pkg/ratelimit"
)

const requestIDHeader = "X-Request-ID"

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title                       Tagging API
// @version                     1.0
// @description                 Tags, synonyms and tagged objects, with the join-tags admin action.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()

	gin.SetMode(cfg.GinMode)

	// The level and handler depend on env and gin mode, both settled only now
	appLogger = logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.InitDB(initCtx, cfg)
	initCancel()
	if err != nil {
		appLogger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	publisher, err := tagevents.NewPublisher(cfg.Kafka, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize tag event publisher", slog.Any("error", err))
		appLogger.Info("Continuing without tag events")
		publisher = tagevents.NopPublisher{}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing tag event publisher", slog.Any("error", err))
		}
	}()

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if cfg.Kafka.Enabled && cfg.Kafka.ConsumerGroup != "" && db.Redis != nil {
		handler := tags.CacheInvalidationHandler(db.CacheService(), appLogger)
		consumer, err := tagevents.NewConsumer(tagevents.NewConsumerConfig(cfg.Kafka), handler, appLogger)
		if err != nil {
			appLogger.Error("Failed to initialize tag event consumer", slog.Any("error", err))
		} else {
			consumer.Start(consumerCtx)
			defer func() {
				consumerCancel()
				if err := consumer.Close(); err != nil {
					appLogger.Error("Error stopping tag event consumer", slog.Any("error", err))
				}
			}()
		}
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, ratelimit.NewConfig(cfg.RateLimit))
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	router := setupRouter(cfg, db, publisher, rateLimiter, appLogger)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("admin", fmt.Sprintf("http://localhost:%s/admin/tagging/tag/", cfg.Port)),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("kafka_events", cfg.Kafka.Enabled),
			slog.Bool("multilingual", cfg.Tagging.MultilingualTags),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, publisher tagevents.Publisher, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	// Logs requests and recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(corsConfig(cfg)))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
	}

	routes.NewRouter(cfg, db, publisher, appLogger).SetupRoutes(engine)

	return engine
}

// corsConfig allows credentialed requests from the configured origins only.
// A "*" entry opens the API to every origin without credentials.
func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}

	if slices.Contains(cfg.CORSAllowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		corsCfg.AllowOriginFunc = func(string) bool { return false }
		return corsCfg
	}

	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

// RequestLoggerMiddleware tags every request with an X-Request-ID and logs it
// once the handlers are done, with the authenticated user when there is one.
func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()
		duration := time.Since(start)

		reqLogger := l.WithRequestID(requestID)
		if userID, ok := c.Get("user_id"); ok {
			reqLogger = reqLogger.WithUserID(fmt.Sprint(userID))
		}

		if len(c.Errors) > 0 {
			reqLogger.LogHTTPError(c, c.Errors.Last(), c.Writer.Status())
			return
		}
		reqLogger.LogHTTPRequest(c, duration)
	}
}
