package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Database struct {
	Host            string        `yaml:"host" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"password" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"name" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"sslmode" env:"PG_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
	// Bound on row-lock waits inside cart transactions. Indefinite blocking
	// on a contended cart row is an availability risk.
	LockTimeout time.Duration `yaml:"lock_timeout" env:"PG_LOCK_TIMEOUT" env-default:"3s"`
}

type RedisConnect struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"username" env:"REDIS_USER"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type CacheConfig struct {
	// Backend selects the cache implementation at configuration time:
	// "redis" supports tag-scoped invalidation, "memory" falls back to a
	// full flush when a tag is invalidated.
	Backend    string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"redis"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"1h"`
}

type RateConfig struct {
	MaxAttempts int64         `yaml:"max_attempts" env:"RATE_MAX_ATTEMPTS" env-default:"5"`
	WindowSize  time.Duration `yaml:"window_size" env:"RATE_WINDOW_SIZE" env-default:"15m"`
}

type Security struct {
	JWTKey   string        `yaml:"jwt_key" env:"JWT_KEY" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
}

type Checkout struct {
	// Workers is the number of background checkout consumers; QueueSize
	// bounds pending checkout requests before enqueue starts failing fast.
	Workers   int           `yaml:"workers" env:"CHECKOUT_WORKERS" env-default:"2"`
	QueueSize int           `yaml:"queue_size" env:"CHECKOUT_QUEUE_SIZE" env-default:"128"`
	JobTTL    time.Duration `yaml:"job_ttl" env:"CHECKOUT_JOB_TTL" env-default:"30s"`
}

type Catalog struct {
	FeedURL     string        `yaml:"feed_url" env:"CATALOG_FEED_URL" env-default:"https://fakestoreapi.com"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"CATALOG_HTTP_TIMEOUT" env-default:"15s"`
}

type Telemetry struct {
	Enabled      bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4318"`
}

type Config struct {
	Env          string       `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Cache        CacheConfig  `yaml:"cache"`
	RateConfig   RateConfig   `yaml:"rate_limit"`
	Security     Security     `yaml:"security"`
	Checkout     Checkout     `yaml:"checkout"`
	Catalog      Catalog      `yaml:"catalog"`
	Telemetry    Telemetry    `yaml:"telemetry"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "path to the configuration file")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			log.Fatal("Config path is not set")
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg
}

func LoadConfigFromPath(configPath string) (*Config, error) {

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}

	return &cfg, nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s/%d",
		r.Username, r.Password, r.Host, r.Port, r.DB)
}
