package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/handlers"
	"github.com/shopfront/api/internal/platform/auth"
	"github.com/shopfront/api/internal/platform/config"
	"github.com/shopfront/api/internal/platform/kvstore"
	"github.com/shopfront/api/internal/platform/observability"
	"github.com/shopfront/api/internal/repositories/kv"
	"github.com/shopfront/api/internal/services"
	"github.com/shopfront/api/internal/upstream/dummyjson"
)

func main() {
	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("configuration incomplete", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	store, err := kvstore.OpenBolt(cfg.Store.Path)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err), zap.String("path", cfg.Store.Path))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close error", zap.Error(err))
		}
	}()

	registry := kv.NewRegistry(store)

	upstream := dummyjson.NewClient(cfg.Upstream.BaseURL, dummyjson.WithTimeout(cfg.Upstream.Timeout))

	issuer := auth.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TTL)
	authenticator := auth.NewAuthenticator(issuer)

	authService, err := services.NewAuthService(services.AuthServiceDeps{
		Client:           upstream,
		Issuer:           issuer,
		AdminUsernames:   cfg.Admin.AdminUsernames,
		ManagerUsernames: cfg.Admin.ManagerUsernames,
		Logger:           observability.ServiceLogger(logger.Named("auth")),
	})
	if err != nil {
		logger.Fatal("failed to initialise auth service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Client:          upstream,
		DefaultPageSize: cfg.Catalog.DefaultPageSize,
		Logger:          observability.ServiceLogger(logger.Named("catalog")),
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Repository: registry.Carts(),
		Catalog:    catalogService,
		Clock:      time.Now,
		Logger:     observability.ServiceLogger(logger.Named("cart")),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Sessions: registry.CheckoutSessions(),
		Carts:    registry.Carts(),
		Orders:   registry.Orders(),
		Clock:    time.Now,
		Logger:   observability.ServiceLogger(logger.Named("checkout")),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders: registry.Orders(),
		Logger: observability.ServiceLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	commentService, err := services.NewCommentService(services.CommentServiceDeps{
		Repository: registry.Comments(),
		Remote:     upstream,
		Reviews:    catalogService,
		Clock:      time.Now,
		Logger:     observability.ServiceLogger(logger.Named("comments")),
	})
	if err != nil {
		logger.Fatal("failed to initialise comment service", zap.Error(err))
	}

	productService, err := services.NewProductAdminService(services.ProductAdminServiceDeps{
		Repository:        registry.Products(),
		Remote:            upstream,
		LowStockThreshold: cfg.Catalog.LowStockThreshold,
		Logger:            observability.ServiceLogger(logger.Named("admin")),
	})
	if err != nil {
		logger.Fatal("failed to initialise product admin service", zap.Error(err))
	}

	authHandlers := handlers.NewAuthHandlers(authenticator, authService)
	catalogHandlers := handlers.NewCatalogHandlers(catalogService)
	cartHandlers := handlers.NewCartHandlers(authenticator, cartService)
	checkoutHandlers := handlers.NewCheckoutHandlers(authenticator, checkoutService)
	orderHandlers := handlers.NewOrderHandlers(authenticator, orderService)
	commentHandlers := handlers.NewCommentHandlers(authenticator, commentService)
	adminHandlers := handlers.NewAdminHandlers(productService)

	healthHandlers := handlers.NewHealthHandlers(storeProbe(store))

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithAuthRoutes(authHandlers.Routes),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithCommentRoutes(commentHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
		handlers.WithAdminMiddlewares(authenticator.RequireSession(), auth.RequireRoles(domain.RoleAdmin, domain.RoleManager)),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("shopfront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// storeProbe reports store readiness by listing a known collection.
func storeProbe(store kvstore.Store) handlers.ReadinessProbe {
	return func(ctx context.Context) error {
		_, err := store.List(ctx, "carts")
		return err
	}
}
