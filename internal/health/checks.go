package health

import (
	"context"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"

	"github.com/vandonov/storefront/internal/config"
	"github.com/vandonov/storefront/pkg/fakestore"
)

func NewHealthHandler(cfg *config.Config, feed *fakestore.Client) (*health.Health, error) {

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "storefront",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(
			health.Config{
				Name:      "database",
				Timeout:   3 * time.Second,
				SkipOnErr: false,
				Check: postgres.New(postgres.Config{
					DSN: cfg.Database.GetDSN(),
				}),
			},
			health.Config{
				Name:      "redis",
				Timeout:   2 * time.Second,
				SkipOnErr: false,
				Check: healthRedis.New(
					healthRedis.Config{
						DSN: cfg.RedisConnect.GetDSN(),
					},
				),
			},
			health.Config{
				Name:    "catalog-feed",
				Timeout: 5 * time.Second,
				// The feed is only needed by the sync job, a down feed
				// must not fail the whole service.
				SkipOnErr: true,
				Check: func(ctx context.Context) error {
					if feed == nil {
						return fmt.Errorf("catalog feed client is not initialized")
					}

					if _, err := feed.FetchProducts(ctx); err != nil {
						return fmt.Errorf("failed to reach catalog feed: %w", err)
					}

					return nil
				},
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
