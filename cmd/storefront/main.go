package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vandonov/storefront/internal/api/handlers"
	"github.com/vandonov/storefront/internal/api/middleware"
	"github.com/vandonov/storefront/internal/cache"
	"github.com/vandonov/storefront/internal/config"
	"github.com/vandonov/storefront/internal/health"
	"github.com/vandonov/storefront/internal/metrics"
	repository "github.com/vandonov/storefront/internal/repositories"
	service "github.com/vandonov/storefront/internal/services"
	"github.com/vandonov/storefront/internal/telemetry"
	"github.com/vandonov/storefront/pkg/fakestore"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing
	shutdownTracing, err := telemetry.Setup(context.Background(), &cfg.Telemetry)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	// Database setup
	if err := repository.Migrate(cfg, "migrations"); err != nil {
		slog.Error("❌ Error running migrations", "error", err.Error())
		os.Exit(1)
	}

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	rateLimitRepo := repository.NewRateLimitRepo(redisClient, &cfg.RateConfig)
	denylistRepo := repository.NewTokenDenylistRepo(redisClient)

	// Cache backend selection is explicit configuration, not capability
	// probing.
	var backend cache.Cache

	switch cfg.Cache.Backend {
	case "memory":
		backend = cache.NewMemoryCache(cfg.Cache.DefaultTTL)
	default:
		backend = cache.NewRedisCache(redisClient, &cfg.Cache)
	}

	defer backend.Close()

	cartCache := cache.NewCartCache(backend, cfg.Cache.DefaultTTL)
	orderCache := cache.NewOrderCache(backend, cfg.Cache.DefaultTTL)
	productCache := cache.NewProductCache(backend, cfg.Cache.DefaultTTL)

	// Services and handlers
	userService := service.NewUserService(repos.User, rateLimitRepo, denylistRepo, &cfg.Security)
	userHandler := handlers.NewUserHandler(userService)
	productService := service.NewProductService(repos.Product, repos.Category, productCache)
	productHandler := handlers.NewProductHandler(productService)
	cartService := service.NewCartService(repos.Cart, cartCache)
	cartHandler := handlers.NewCartHandler(cartService)
	orderService := service.NewOrderService(repos.Order, orderCache)
	checkoutService := service.NewCheckoutService(repos.Order, cartCache, orderCache, &cfg.Checkout)
	orderHandler := handlers.NewOrderHandler(orderService, checkoutService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey), denylistRepo)

	checkoutService.Start()

	feed := fakestore.NewClient(cfg.Catalog.FeedURL)

	healthHandler, err := health.NewHealthHandler(cfg, feed)
	if err != nil {
		slog.Error("❌ Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.Handle("POST /api/v1/users/logout", authMiddleware.Authenticate(userHandler.Logout()))
	routerMux.Handle("GET /api/v1/users/me", authMiddleware.Authenticate(userHandler.GetProfile()))
	routerMux.HandleFunc("GET /api/v1/categories", productHandler.ListCategories())
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	routerMux.Handle("PUT /api/v1/products/{id}", authMiddleware.Authenticate(productHandler.UpdateProduct()))
	routerMux.Handle("GET /api/v1/carts", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.Handle("DELETE /api/v1/carts", authMiddleware.Authenticate(cartHandler.ClearCart()))
	routerMux.Handle("POST /api/v1/carts/products/{id}", authMiddleware.Authenticate(cartHandler.AddProduct()))
	routerMux.Handle("DELETE /api/v1/carts/products/{id}", authMiddleware.Authenticate(cartHandler.RemoveProduct()))
	routerMux.Handle("POST /api/v1/carts/checkout", authMiddleware.Authenticate(orderHandler.Checkout()))
	routerMux.Handle("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.Handle("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.Handle("PATCH /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.UpdateOrder()))
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "storefront")

	// Setup http server
	server := http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.HTTPServer.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	// Drain pending background checkouts before the process exits.
	checkoutService.Stop()

	if err := shutdownTracing(context.Background()); err != nil {
		slog.Error("⚠️ Error shutting down tracing", slog.String("error", err.Error()))
	}
}
