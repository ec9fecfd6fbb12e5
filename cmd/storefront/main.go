package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/iarleylcs/cartify-flow/internal/cart"
	"github.com/iarleylcs/cartify-flow/internal/catalog"
	"github.com/iarleylcs/cartify-flow/internal/checkout"
	"github.com/iarleylcs/cartify-flow/internal/config"
	"github.com/iarleylcs/cartify-flow/internal/events"
	"github.com/iarleylcs/cartify-flow/internal/httpapi"
	"github.com/iarleylcs/cartify-flow/internal/repository"
	"github.com/iarleylcs/cartify-flow/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Catalog storage and cache.
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		logger.Fatal("failed to open catalog database", zap.Error(err))
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(cfg.CatalogMigrations); err != nil {
		logger.Fatal("failed to run catalog migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	catalogSvc := catalog.NewService(catalogRepo, catalog.NewRedisCache(redisClient), logger)

	// Carts live in memory, keyed by browse session.
	cartSvc := cart.NewService(cart.NewMemoryStore(), logger)

	// Order persistence.
	creds := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.OrdersMigrations,
	}
	orderRepo, err := repository.NewRepository(creds)
	if err != nil {
		logger.Fatal("failed to connect to orders database", zap.Error(err))
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(creds); err != nil {
		logger.Fatal("failed to run order migrations", zap.Error(err))
	}

	dispatcher := webhook.NewDispatcher(cfg.WebhookEndpoints, cfg.WebhookTimeout, logger)

	announcer := events.NewAnnouncer(logger, cfg.KafkaBrokers...)
	defer announcer.Close()

	workflow := checkout.NewWorkflow(cartSvc, orderRepo, dispatcher, announcer, cfg.SubmissionTimeout, logger)

	router := httpapi.NewRouter(
		httpapi.NewProductHandler(catalogSvc),
		httpapi.NewCartHandler(cartSvc, catalogSvc),
		httpapi.NewCheckoutHandler(workflow, orderRepo),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
}
