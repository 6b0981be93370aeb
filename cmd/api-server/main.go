package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"yamdb/database"
	"yamdb/internal/cache"
	"yamdb/internal/config"
	"yamdb/internal/httpapi/handler"
	"yamdb/internal/httpapi/middleware"
	"yamdb/internal/httpapi/repository"
	"yamdb/internal/httpapi/service"
	"yamdb/internal/notify"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// redis is optional: with no client the rating cache degrades to
	// recomputing averages per request
	var ratings *cache.RatingCache
	if opts, err := redis.ParseURL(cfg.RedisURL); err != nil {
		logger.Warn("invalid redis url, rating cache disabled", "error", err)
	} else {
		if cfg.RedisPassword != "" {
			opts.Password = cfg.RedisPassword
		}
		ratings = cache.NewRatingCache(redis.NewClient(opts), cfg.CacheTTL)
	}

	var sender notify.Sender
	if cfg.SMTPAddr != "" {
		sender = &notify.SMTPSender{Addr: cfg.SMTPAddr, From: cfg.EmailFrom}
	} else {
		sender = &notify.LogSender{Logger: logger}
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, sender, logger, cfg)

	handlers := handler.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(service.NewUserService(userRepo, sender, logger)),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Genre:    handler.NewGenreHandler(service.NewGenreService(genreRepo)),
		Title:    handler.NewTitleHandler(service.NewTitleService(titleRepo, reviewRepo, categoryRepo, genreRepo, ratings)),
		Review:   handler.NewReviewHandler(service.NewReviewService(reviewRepo, titleRepo, ratings)),
		Comment:  handler.NewCommentHandler(service.NewCommentService(commentRepo, reviewRepo)),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	handler.SetupRouter(r, handlers, authService, authLimiter)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server starting", "addr", addr, "env", cfg.GoEnv)
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
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
