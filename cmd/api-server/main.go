package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"reviewhub/database"
	"reviewhub/internal/api/handler"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/service"
	"reviewhub/internal/config"
	"reviewhub/internal/mail"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Redis is optional; without it the signup cooldown is disabled.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid redis url", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
	}

	// Without an SMTP host, confirmation codes go to the log. That is a
	// development convenience only; any other environment must deliver.
	var mailer mail.Mailer
	switch {
	case cfg.SMTPHost != "":
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	case cfg.IsDevelopment():
		logger.Warn("SMTP_HOST not set, confirmation codes will be logged")
		mailer = mail.NewLogMailer(logger)
	default:
		logger.Error("SMTP_HOST must be set outside development")
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepo(db)

	// Services
	authService := service.NewAuthService(userRepo, mailer, rdb, logger, cfg.JWTSecret, cfg.JWTExpiry, cfg.SignupCooldown)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Identify(authService, userRepo))

	r.GET("/check-conn", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})

	// Auth endpoints are throttled per client IP.
	auth := r.Group("/auth", middleware.AuthRateLimit(rate.Limit(1), 5))
	handler.NewAuthHandler(authService).RegisterRoutes(auth)

	v1 := r.Group("/api/v1")
	handler.NewUserHandler(userService).RegisterRoutes(v1.Group("/users"))
	handler.NewCategoryHandler(categoryService).RegisterRoutes(v1.Group("/categories"))
	handler.NewGenreHandler(genreService).RegisterRoutes(v1.Group("/genres"))
	handler.NewTitleHandler(titleService).RegisterRoutes(v1.Group("/titles"))
	handler.NewReviewHandler(reviewService).RegisterRoutes(v1.Group("/titles/:title_id/reviews"))
	handler.NewCommentHandler(commentService).RegisterRoutes(v1.Group("/titles/:title_id/reviews/:review_id/comments"))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
