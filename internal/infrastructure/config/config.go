// Package config loads process settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	LockLocal    = "local"
	LockRedis    = "redis"
	LockPostgres = "postgres"
)

type Config struct {
	Port     string `env:"PORT,      default=8000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth   AuthConfig
	Rental RentalConfig
	Lock   LockConfig

	Mongo    MongoConfig
	Redis    RedisConfig
	Postgres PostgresConfig
}

type AuthConfig struct {
	// SignatureKey signs every session token; the process refuses to start without it.
	SignatureKey string        `env:"JWT_SIGNATURE_KEY, required"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,         default=0s"`
}

type RentalConfig struct {
	// DefaultDuration closes a window requested without an end. 0 leaves it open.
	DefaultDuration time.Duration `env:"RENTAL_DEFAULT_DURATION, default=24h" validate:"gte=0"`
	Store           string        `env:"RENTAL_STORE,            default=mongo" validate:"oneof=mongo postgres"`
}

// LockConfig selects the per-car lock held across the rental conflict check
// and the write.
//
// The default "local" backend only serialises bookings inside one process.
// With RENTAL_STORE=mongo there is no storage-level constraint behind it, so
// deployments running more than one instance must use "redis" or "postgres".
type LockConfig struct {
	Backend string `env:"LOCK_BACKEND, default=local" validate:"oneof=local redis postgres"`
	// TTL is the redis lease; a crashed holder blocks a car at most this long.
	TTL time.Duration `env:"LOCK_TTL,     default=10s"   validate:"gt=0"`
	// Hold bounds the check and the write done under the lock. It must stay
	// below TTL so the work is cut off before the lease can pass to another
	// instance.
	Hold    time.Duration `env:"LOCK_HOLD,    default=8s"    validate:"gt=0,ltfield=TTL"`
	Wait    time.Duration `env:"LOCK_WAIT,    default=5s"    validate:"gt=0"`
	Stripes int           `env:"LOCK_STRIPES, default=64"    validate:"gt=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bcr"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

// IsDevelopment reports whether the process runs with developer defaults
// such as pretty console logs.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// SingleInstanceOnly reports whether the selected backends keep bookings
// conflict-free only while a single process serves rentals.
func (c *Config) SingleInstanceOnly() bool {
	return c.Lock.Backend == LockLocal && c.Rental.Store == StoreMongo
}

// UsesPostgres reports whether any component needs the relational store.
func (c *Config) UsesPostgres() bool {
	return c.Rental.Store == StorePostgres || c.Lock.Backend == LockPostgres
}

// Load reads a .env file when present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l, applies defaults and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.UsesPostgres() && cfg.Postgres.DSN == "" {
		return nil, errors.New("config: POSTGRES_DSN is required when RENTAL_STORE or LOCK_BACKEND is postgres")
	}

	return &cfg, nil
}
