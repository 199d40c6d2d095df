package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/vandonov/storefront/internal/config"
)

type Repositories struct {
	DB       *sql.DB
	User     UserRepository
	Product  ProductRepository
	Category CategoryRepository
	Cart     CartRepository
	Order    OrderRepository
}

func New(cfg *config.Config) (*Repositories, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repositories{
		DB:       db,
		User:     NewUserRepo(db),
		Product:  NewProductRepo(db),
		Category: NewCategoryRepo(db),
		Cart:     NewCartRepo(db, cfg.Database.LockTimeout),
		Order:    NewOrderRepo(db, cfg.Database.LockTimeout),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// Migrate applies pending schema migrations from the given directory.
func Migrate(cfg *config.Config, migrationsPath string) error {

	m, err := migrate.New("file://"+migrationsPath, cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
