package service

import (
	"context"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"github.com/vandonov/storefront/internal/cache"
	"github.com/vandonov/storefront/internal/errors"
	"github.com/vandonov/storefront/internal/models"
	repository "github.com/vandonov/storefront/internal/repositories"
	"github.com/vandonov/storefront/pkg/fakestore"
)

// ProductFeed is the slice of the upstream client the sync job needs.
type ProductFeed interface {
	FetchProducts(ctx context.Context) ([]fakestore.Product, error)
}

type CatalogSyncService struct {
	feed         ProductFeed
	products     repository.ProductRepository
	categories   repository.CategoryRepository
	productCache *cache.ProductCache
	sanitizer    *bluemonday.Policy
	logger       *slog.Logger
}

func NewCatalogSyncService(feed ProductFeed, products repository.ProductRepository, categories repository.CategoryRepository, productCache *cache.ProductCache, logger *slog.Logger) *CatalogSyncService {
	return &CatalogSyncService{
		feed:         feed,
		products:     products,
		categories:   categories,
		productCache: productCache,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger,
	}
}

// Sync pulls the upstream feed and upserts every product, resolving
// categories by name as they appear. Feed text is stripped of any markup
// before it reaches the database. A single bad row skips, not aborts.
func (s *CatalogSyncService) Sync(ctx context.Context) (int, error) {

	feedProducts, err := s.feed.FetchProducts(ctx)
	if err != nil {
		return 0, errors.ThirdPartyError("Failed to fetch product feed").WithError(err)
	}

	categoryIDs := make(map[string]int64)
	synced := 0

	for _, fp := range feedProducts {

		categoryName := s.sanitizer.Sanitize(fp.Category)

		categoryID, ok := categoryIDs[categoryName]
		if !ok {
			category, err := s.categories.FirstOrCreate(ctx, categoryName)
			if err != nil {
				s.logger.Error("failed to resolve category", slog.String("category", categoryName), slog.Any("error", err))
				continue
			}
			categoryID = category.ID
			categoryIDs[categoryName] = categoryID
		}

		externalID := fp.ID

		product := &models.Product{
			ExternalID:   &externalID,
			Title:        s.sanitizer.Sanitize(fp.Title),
			Description:  s.sanitizer.Sanitize(fp.Description),
			Image:        fp.Image,
			Price:        fp.Price,
			Rating:       fp.Rating.Rate,
			ReviewsCount: fp.Rating.Count,
			CategoryID:   categoryID,
		}

		if err := s.products.UpsertByExternalID(ctx, product); err != nil {
			s.logger.Error("failed to upsert product", slog.Int64("external_id", fp.ID), slog.Any("error", err))
			continue
		}

		synced++
	}

	// Cached lists and the category index are stale after any sync run.
	s.productCache.InvalidateLists(ctx)

	s.logger.Info("catalog sync complete",
		slog.Int("fetched", len(feedProducts)),
		slog.Int("synced", synced),
	)

	return synced, nil
}
