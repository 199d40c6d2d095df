// Command catalog-sync pulls the upstream product feed once and upserts it
// into the local catalog. Run it from cron or as a one-off job.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/vandonov/storefront/internal/cache"
	"github.com/vandonov/storefront/internal/config"
	repository "github.com/vandonov/storefront/internal/repositories"
	service "github.com/vandonov/storefront/internal/services"
	"github.com/vandonov/storefront/pkg/fakestore"
)

func main() {

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

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
		}
	}()

	var backend cache.Cache

	switch cfg.Cache.Backend {
	case "memory":
		backend = cache.NewMemoryCache(cfg.Cache.DefaultTTL)
	default:
		redisClient, err := repository.NewRedisClient(cfg)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", "error", err.Error())
			os.Exit(1)
		}

		backend = cache.NewRedisCache(redisClient, &cfg.Cache)
	}

	defer backend.Close()

	productCache := cache.NewProductCache(backend, cfg.Cache.DefaultTTL)

	feed := fakestore.NewClient(cfg.Catalog.FeedURL)
	syncService := service.NewCatalogSyncService(feed, repos.Product, repos.Category, productCache, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Catalog.HTTPTimeout*4)
	defer cancel()

	synced, err := syncService.Sync(ctx)
	if err != nil {
		slog.Error("❌ Catalog sync failed", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("✅ Catalog sync finished", slog.Int("products", synced))
}
