// Package main is the entrypoint for the Rosterd API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/cache"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/handler"
	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/middleware"
	"github.com/rosterd/rosterd/internal/model"
	"github.com/rosterd/rosterd/internal/repository"
	"github.com/rosterd/rosterd/internal/server"
)

func main() {
	ctx := context.Background()

	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL, cfg.QueryTimeout)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	metricsRecorder := metrics.NewInMemory()

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	studentHandler := handler.NewStudentHandler(logger, repo, metricsRecorder, cfg.DefaultPageSize, cfg.MaxPageSize)
	authHandler := handler.NewAuthHandler(logger, repo, tokens, metricsRecorder)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	r := setupRouter(healthHandler, studentHandler, authHandler, metricsHandler, tokens, repo, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	studentHandler *handler.StudentHandler,
	authHandler *handler.AuthHandler,
	metricsHandler *handler.MetricsHandler,
	tokens *auth.TokenIssuer,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: tokens,
		Users:  repo,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Cache:   cacheClient,
		Enabled: cfg.RateLimitEnabled,
		Window:  cfg.RateLimitWindow,
		Max:     cfg.RateLimitMax,
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(rateLimitCfg))
		r.Use(middleware.SanitizeQuery)
		r.Use(middleware.Timeout(logger, cfg.RequestTimeout))

		// Login is rate-limited and sanitized but unauthenticated.
		r.Post("/auth/login", authHandler.Login)

		// Operational counters, admins only.
		r.With(middleware.Auth(authCfg), middleware.RequireRole(model.RoleAdmin)).
			Get("/metrics", metricsHandler.Metrics)

		r.Route("/students", func(r chi.Router) {
			r.Use(middleware.Timeout(logger, cfg.StudentTimeout))
			r.Use(middleware.Auth(authCfg))

			// Reads are open to both roles; mutations are admin only.
			r.With(middleware.RequireRole(model.RoleAdmin, model.RoleUser)).Get("/", studentHandler.List)
			r.With(middleware.RequireRole(model.RoleAdmin, model.RoleUser)).Get("/{id}", studentHandler.Get)
			r.With(middleware.RequireRole(model.RoleAdmin)).Post("/", studentHandler.Create)
			r.With(middleware.RequireRole(model.RoleAdmin)).Put("/{id}", studentHandler.Update)
			r.With(middleware.RequireRole(model.RoleAdmin)).Delete("/{id}", studentHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
