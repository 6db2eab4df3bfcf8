// Package main is the entrypoint for the Thingful API server.
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

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/auth"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/cache"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/config"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/handler"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/middleware"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/sanitize"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/server"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/service"
)

// store is everything the API needs from persistence.
type store interface {
	service.UserStore
	service.ThingStore
	auth.UserFinder
	middleware.ThingFinder
	handler.HealthChecker
}

// dependencies are the collaborators setupRouter wires into routes.
type dependencies struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   store
	cache   handler.HealthChecker
	limiter middleware.RateLimiter
	hasher  auth.Hasher
	metrics *metrics.InMemoryRecorder
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	hasher, err := auth.NewPasswordHasher(cfg.PasswordHashAlgorithm, cfg.BcryptCost)
	if err != nil {
		logger.Error("invalid password hasher settings", "error", err)
		os.Exit(1)
	}

	r := setupRouter(dependencies{
		cfg:     cfg,
		logger:  logger,
		store:   repo,
		cache:   cacheClient,
		limiter: cacheClient,
		hasher:  hasher,
		metrics: metrics.NewInMemory(),
	})

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"password_hash", hasher.Algorithm(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps dependencies) *chi.Mux {
	cfg, logger := deps.cfg, deps.logger
	sanitizer := sanitize.NewStrict()

	credentials := auth.NewCredentialStore(deps.store)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authenticator := auth.NewAuthenticator(credentials, deps.hasher, tokens)

	userService := service.NewUserService(deps.store, credentials, deps.hasher, deps.metrics)
	authService := service.NewAuthService(authenticator, tokens, deps.metrics)
	thingService := service.NewThingService(deps.store)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(logger, deps.store, deps.cache)
	metricsHandler := handler.NewMetricsHandler(deps.metrics)
	userHandler := handler.NewUserHandler(userService, sanitizer, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	thingHandler := handler.NewThingHandler(thingService, sanitizer, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	requireAuth := middleware.Authenticate(middleware.AuthConfig{
		Logger:        logger,
		Authenticator: authenticator,
		Metrics:       deps.metrics,
	})
	requireThing := middleware.RequireThing(middleware.ThingGateConfig{
		Logger:  logger,
		Things:  deps.store,
		Metrics: deps.metrics,
	})
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:    logger,
		Limiter:   deps.limiter,
		Metrics:   deps.metrics,
		Enabled:   cfg.RateLimitEnabled,
		IPRPS:     cfg.RateLimitRPS,
		IPBurst:   cfg.RateLimitBurst,
		UserRPM:   cfg.RateLimitUserRPM,
		UserBurst: cfg.RateLimitUserBurst,
	}
	limitUser := middleware.RateLimitUser(rateLimitCfg)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.CORS(corsCfg))

	// Probes and introspection
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)
	r.Get("/", h.Root)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Post("/auth/login", authHandler.Login)

		r.Post("/users", userHandler.Create)
		r.With(requireAuth, limitUser).Get("/users/{user_id}", userHandler.Get)

		r.Get("/things", thingHandler.List)
		// Authentication runs before the existence check so anonymous
		// callers never reach the store.
		r.Route("/things/{thing_id}", func(r chi.Router) {
			r.Use(requireAuth, limitUser, requireThing)
			r.Get("/", thingHandler.Get)
			r.Get("/reviews", thingHandler.Reviews)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

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
