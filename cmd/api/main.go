package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"realestate-backend/internal/cache"
	"realestate-backend/internal/clients"
	"realestate-backend/internal/config"
	"realestate-backend/internal/contacts"
	"realestate-backend/internal/db"
	"realestate-backend/internal/handlers"
	"realestate-backend/internal/middleware"
	"realestate-backend/internal/newsletters"
	"realestate-backend/internal/notifications"
	"realestate-backend/internal/projects"
	"realestate-backend/internal/uploads"
	"realestate-backend/internal/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run returns on startup failure or after a graceful shutdown, so deferred
// cleanup always runs.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("mongo connection failed: %w", err)
	}
	logger.Info("mongo connected", slog.String("database", cfg.MongoDB))
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn("mongo disconnect failed", slog.String("error", err.Error()))
		}
	}()

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		return fmt.Errorf("index creation failed: %w", err)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	var counter middleware.Counter
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
		counter = middleware.NewRedisCounter(redisCache.Client())
	}

	pipeline, err := uploads.New(uploads.Options{
		Dir:       cfg.UploadDir,
		URLPrefix: cfg.UploadURLPrefix,
		MaxSize:   cfg.MaxFileSize,
		Width:     cfg.CropWidth,
		Height:    cfg.CropHeight,
		Quality:   cfg.JPEGQuality,
		MaxPixels: cfg.MaxInputPixels,
	}, logger)
	if err != nil {
		return fmt.Errorf("upload dir unavailable: %w", err)
	}

	var contactNotifier contacts.Notifier
	var welcomeNotifier newsletters.Notifier
	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.NotifyEmail, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
		contactNotifier = mailer
		welcomeNotifier = mailer
	}

	val := validation.New()
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	projectsService := projects.NewService(projects.NewRepository(cols.Projects), pipeline, val, cfg.Timezone)
	clientsService := clients.NewService(clients.NewRepository(cols.Clients), pipeline, val, cfg.Timezone)
	contactsService := contacts.NewService(contacts.NewRepository(cols.Contacts), val, cfg.Timezone, contactNotifier)
	newslettersService := newsletters.NewService(newsletters.NewRepository(cols.Newsletters), val, cfg.Timezone, welcomeNotifier)

	resources := handlers.Resources{
		Projects:    projects.NewHandler(projectsService, cacheStore, cacheTTL, pipeline.MaxSize(), cfg.Timezone, logger),
		Clients:     clients.NewHandler(clientsService, cacheStore, cacheTTL, pipeline.MaxSize(), cfg.Timezone, logger),
		Contacts:    contacts.NewHandler(contactsService, cfg.Timezone, logger),
		Newsletters: newsletters.NewHandler(newslettersService, cfg.Timezone, logger),
	}

	server := handlers.NewServer(handlers.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}), logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowSec)*time.Second, counter, logger)

	router := handlers.NewRouter(server, resources, handlers.RouterOptions{
		FrontendOrigins: cfg.FrontendOrigins,
		Limiter:         limiter,
		UploadDir:       pipeline.Dir(),
		UploadURLPrefix: pipeline.URLPrefix(),
		RequestTimeout:  30 * time.Second,
		TrustedProxies:  trustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
	return nil
}
