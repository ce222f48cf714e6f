package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/vendor-outreach/internal/ai"
	"github.com/octobees/vendor-outreach/internal/ai/gemini"
	"github.com/octobees/vendor-outreach/internal/auth"
	"github.com/octobees/vendor-outreach/internal/config"
	"github.com/octobees/vendor-outreach/internal/database"
	"github.com/octobees/vendor-outreach/internal/handler"
	"github.com/octobees/vendor-outreach/internal/logger"
	"github.com/octobees/vendor-outreach/internal/mailer"
	middlewarepkg "github.com/octobees/vendor-outreach/internal/middleware"
	"github.com/octobees/vendor-outreach/internal/ratelimit"
	"github.com/octobees/vendor-outreach/internal/repository"
	"github.com/octobees/vendor-outreach/internal/router"
	"github.com/octobees/vendor-outreach/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolConfig{MaxConns: int32(cfg.DatabaseMaxConns)})
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	outreachLimit, closeLimit := newOutreachLimit(ctx, cfg, zlog)
	defer closeLimit()

	generator := newGenerator(ctx, cfg, zlog)

	mail, err := newMailer(ctx, cfg.Email, zlog)
	if err != nil {
		zlog.Fatal("failed to configure mailer", zap.String("provider", cfg.Email.Provider), zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	vendorsRepo := repository.NewPGXVendorsRepository(pool)
	weddingsRepo := repository.NewPGXWeddingsRepository(pool)
	outreachRepo := repository.NewPGXOutreachRepository(pool)

	importContacts := service.NewContactNormalizer(cfg.DefaultPhoneRegion)
	outreachContacts := service.NewContactNormalizer(cfg.DefaultPhoneRegion, service.WithDNSResolver(net.DefaultResolver))

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	vendorsService := service.NewVendorsService(vendorsRepo, importContacts)
	weddingsService := service.NewWeddingsService(weddingsRepo)
	matchService := service.NewMatchService(vendorsRepo, weddingsService, zlog.Named("match"))
	outreachService := service.NewOutreachService(service.OutreachDependencies{
		Weddings:  weddingsService,
		Vendors:   vendorsRepo,
		Outreach:  outreachRepo,
		Users:     usersRepo,
		Generator: generator,
		Mailer:    mail,
		Contacts:  outreachContacts,
		BatchSize: cfg.Email.BatchSize,
		Logger:    zlog.Named("outreach"),
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(zlog.Named("http")))
	e.Use(echoMiddleware.Recover())

	router.Register(e, jwtManager, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Users:    handler.NewUserAdminHandler(userService),
		Vendors:  handler.NewVendorsHandler(vendorsService),
		Weddings: handler.NewWeddingsHandler(weddingsService),
		Matches:  handler.NewMatchesHandler(matchService),
		Outreach: handler.NewOutreachHandler(outreachService),
	}, outreachLimit, zlog.Named("ratelimit"))

	serverErr := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("mailer", mail.Name()))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newOutreachLimit prefers a Redis-backed store so limits hold across replicas. Without Redis,
// or when it is unreachable at startup, each process keeps its own buckets.
func newOutreachLimit(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (ratelimit.Store, func()) {
	limit := cfg.RateLimitOutreach
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err == nil {
			return ratelimit.NewRedisStore(client, "vendor-outreach:ratelimit", limit.Requests, limit.Interval), func() { _ = client.Close() }
		}
		zlog.Warn("redis unavailable, using in-memory rate limits", zap.Error(err))
	}
	store := ratelimit.NewMemoryStore(limit.Requests, limit.Interval)
	return store, store.Stop
}

func newGenerator(ctx context.Context, cfg *config.Config, zlog *zap.Logger) ai.Generator {
	if cfg.GeminiAPIKey == "" {
		zlog.Info("GEMINI_API_KEY not set, outreach drafts use the built-in template")
		return nil
	}
	g, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		zlog.Warn("gemini client unavailable, outreach drafts use the built-in template", zap.Error(err))
		return nil
	}
	return g
}

func newMailer(ctx context.Context, cfg config.EmailConfig, zlog *zap.Logger) (mailer.Mailer, error) {
	switch cfg.Provider {
	case config.EmailProviderSES:
		return mailer.NewSESMailer(ctx, cfg.AWSRegion, cfg.From)
	case config.EmailProviderWorker:
		return mailer.NewWorkerMailer(nil, cfg.WorkerURL, cfg.From)
	default:
		return mailer.NewLogMailer(zlog.Named("mailer")), nil
	}
}
