package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/pkg/accounts"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/content"
	"github.com/example/storefront/pkg/discovery"
	"github.com/example/storefront/pkg/logging"
	"github.com/example/storefront/pkg/mail"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/server"
	"go.uber.org/zap"
)

const keepAliveInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := logging.New(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting API server",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoStore, err := repository.NewMongoStore(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoStore.Close(context.Background())

	if err := mongoStore.Ping(ctx); err != nil {
		logger.Fatal("MongoDB ping failed", zap.Error(err))
	}
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	cache := repository.NewCache(&cfg.Redis)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("Redis unreachable, continuing without product cache", zap.Error(err))
		cache = nil
	}

	users := mongoStore.Users()
	products := mongoStore.Products(cache, logger)
	carts := mongoStore.Carts()
	orders := mongoStore.Orders()
	coupons := mongoStore.Coupons()
	blogs := mongoStore.Blogs()

	tokens := auth.NewTokenManager(&cfg.JWT)
	mailer := mail.NewMailer(&cfg.Mail)

	srv := server.New(cfg, logger, server.Deps{
		Accounts:       accounts.NewService(users, products, tokens, mailer, cfg.Server.ClientURL, logger),
		Catalog:        catalog.NewService(products, users),
		Checkout:       checkout.NewService(products, carts, coupons, orders, logger),
		Content:        content.NewService(blogs),
		Users:          users,
		Coupons:        coupons,
		Categories:     mongoStore.Categories(),
		BlogCategories: mongoStore.BlogCategories(),
		Brands:         mongoStore.Brands(),
		Colors:         mongoStore.Colors(),
		Enquiries:      mongoStore.Enquiries(),
		VerifyToken:    tokens.Verify,
	})
	srv.SetupRoutes()

	// Instance registration is optional; the server serves traffic either
	// way.
	if len(cfg.Etcd.Endpoints) > 0 {
		registry, err := discovery.NewRegistry(&cfg.Etcd)
		if err != nil {
			logger.Warn("Failed to connect to etcd, continuing without registration", zap.Error(err))
		} else {
			defer registry.Close()
			instance := &discovery.Instance{
				Name: cfg.Server.Name,
				Host: cfg.Server.Host,
				Port: cfg.Server.Port,
			}
			if err := registry.Register(ctx, instance); err != nil {
				logger.Warn("Instance registration failed", zap.Error(err))
			}
		}
	}

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			srvErr <- err
		}
	}()

	go keepAlive(ctx, logger, cfg.Server.Port)

	logger.Info("API server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("API server stopped")
}

// keepAlive emits a periodic liveness log line, the successor of the
// original deployment's 15-minute heartbeat.
func keepAlive(ctx context.Context, logger *zap.Logger, port int) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("Still listening", zap.Int("port", port))
		}
	}
}
