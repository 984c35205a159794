// Package main is the entrypoint for the Recipebox API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/handler"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/middleware"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/server"
	"github.com/recipebox/recipebox/internal/service"
	"github.com/recipebox/recipebox/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
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

	// Services
	recorder := metrics.NewInMemory()
	images := storage.NewImageStore(cfg.MediaRoot, cfg.MaxImageSize)
	userService := service.NewUserService(repo, cacheClient, recorder)
	recipeService := service.NewRecipeService(repo, images, recorder)
	tagService := service.NewTagService(repo)
	ingredientService := service.NewIngredientService(repo)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	ingredientHandler := handler.NewIngredientHandler(ingredientService, logger)

	r := setupRouter(routerDeps{
		health:      healthHandler,
		users:       userHandler,
		recipes:     recipeHandler,
		tags:        tagHandler,
		ingredients: ingredientHandler,
		repo:        repo,
		cache:       cacheClient,
		metrics:     recorder,
		images:      images,
		cfg:         cfg,
		logger:      logger,
	})

	srv := server.New(server.Options{
		Handler:         r,
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          logger,
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"media_root", cfg.MediaRoot,
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

type routerDeps struct {
	health      *handler.HealthHandler
	users       *handler.UserHandler
	recipes     *handler.RecipeHandler
	tags        *handler.TagHandler
	ingredients *handler.IngredientHandler
	repo        *repository.Repository
	cache       *cache.Cache
	metrics     metrics.Recorder
	images      *storage.ImageStore
	cfg         *config.Config
	logger      *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	cfg := deps.cfg
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", handler.Root)

	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
		Cache:      deps.cache,
		Metrics:    deps.metrics,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:       deps.logger,
		Cache:        deps.cache,
		APIEnabled:   cfg.RateLimitAPIEnabled,
		APIRPM:       cfg.RateLimitAPIRPM,
		APIBurst:     cfg.RateLimitAPIBurst,
		TokenEnabled: cfg.RateLimitTokenEnabled,
		TokenRPS:     cfg.RateLimitTokenRPS,
		TokenBurst:   cfg.RateLimitTokenBurst,
	}

	bodyLimit := middleware.MaxBodySize(cfg.MaxRequestBodySize)

	// User routes
	r.Route("/user", func(r chi.Router) {
		// Registration and token issuance are unauthenticated; IP rate
		// limiting slows down enumeration and credential stuffing.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(rateLimitCfg))
			r.Use(bodyLimit)
			r.Post("/create", deps.users.Create)
			r.Post("/token", deps.users.Token)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitAPI(rateLimitCfg))
			r.Use(bodyLimit)
			r.Get("/me", deps.users.Me)
			r.Patch("/me", deps.users.UpdateMe)
			r.Post("/token/revoke", deps.users.RevokeToken)
		})
	})

	// Recipe domain routes (all authenticated)
	r.Route("/recipe", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))

		r.Route("/recipes", func(r chi.Router) {
			r.With(bodyLimit).Get("/", deps.recipes.List)
			r.With(bodyLimit).Post("/", deps.recipes.Create)
			r.With(bodyLimit).Get("/{id}", deps.recipes.Get)
			r.With(bodyLimit).Patch("/{id}", deps.recipes.Update)
			r.With(bodyLimit).Delete("/{id}", deps.recipes.Delete)
			// Image uploads carry their own, larger body limit
			r.With(middleware.MaxBodySize(cfg.MaxImageSize + 1<<20)).
				Post("/{id}/upload-image", deps.recipes.UploadImage)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Use(bodyLimit)
			r.Get("/", deps.tags.List)
			r.Patch("/{id}", deps.tags.Update)
			r.Delete("/{id}", deps.tags.Delete)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Use(bodyLimit)
			r.Get("/", deps.ingredients.List)
			r.Patch("/{id}", deps.ingredients.Update)
			r.Delete("/{id}", deps.ingredients.Delete)
		})
	})

	// Serve uploaded media directly in development. Production fronts
	// the media root with a proper file server or CDN.
	if cfg.IsDevelopment() {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(deps.images.Root())))
		r.Get("/media/*", fs.ServeHTTP)
	}

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
