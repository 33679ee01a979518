package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bcr/rental-system/internal/api"
	"github.com/bcr/rental-system/internal/api/handler"
	"github.com/bcr/rental-system/internal/core/ports"
	"github.com/bcr/rental-system/internal/core/service"
	"github.com/bcr/rental-system/internal/infrastructure/auth"
	"github.com/bcr/rental-system/internal/infrastructure/config"
	"github.com/bcr/rental-system/internal/infrastructure/db/mongo"
	"github.com/bcr/rental-system/internal/infrastructure/db/postgres"
	"github.com/bcr/rental-system/internal/infrastructure/db/redis"
	"github.com/bcr/rental-system/internal/infrastructure/lock"
	"github.com/bcr/rental-system/pkg/logger"
)

const (
	serviceName     = "rental-api"
	shutdownTimeout = 10 * time.Second
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}
		log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: serviceName})

		app, err := buildApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer app.close()

		return serve(ctx, app.deps, cfg.Port, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// app holds the wired router dependencies plus the teardown of every backend
// opened to build them.
type app struct {
	deps    api.Deps
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	checks := map[string]handler.Check{}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(closeCtx)
	})
	checks["mongodb"] = mongo.Ping(client)
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	var rentals ports.RentalRepository = mongo.NewRentalRepository(db)
	var locker ports.VehicleLocker = lock.NewStriped(cfg.Lock.Stripes)

	if cfg.UsesPostgres() {
		pg, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		checks["postgres"] = pg.Ping
		log.Info().Msg("connected to postgres")

		if cfg.Rental.Store == config.StorePostgres {
			rentals = postgres.NewRentalRepository(pg)
		}
		if cfg.Lock.Backend == config.LockPostgres {
			locker = postgres.NewVehicleLocker(pg, cfg.Lock.Wait, log)
		}
	}

	if cfg.Lock.Backend == config.LockRedis {
		rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		checks["redis"] = redis.Ping(rdb)
		locker = redis.NewVehicleLocker(rdb, cfg.Lock.TTL, cfg.Lock.Hold, cfg.Lock.Wait, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	tokens, err := auth.NewJWTCodec(cfg.Auth.SignatureKey, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}

	cars := mongo.NewCarRepository(db)
	a.deps = api.Deps{
		Log:    logger.Component("http"),
		Tokens: tokens,
		Auth: service.NewAuthService(
			mongo.NewUserRepository(db),
			mongo.NewRoleRepository(db),
			auth.NewBcryptHasher(),
			tokens,
			logger.Component("auth"),
		),
		Cars:    service.NewCarService(cars, rentals, logger.Component("cars")),
		Rentals: service.NewRentalService(cars, rentals, locker, cfg.Rental.DefaultDuration, logger.Component("rentals")),
		Checks:  checks,
	}

	if cfg.SingleInstanceOnly() {
		log.Warn().
			Str("rental_store", cfg.Rental.Store).
			Str("lock_backend", cfg.Lock.Backend).
			Msg("bookings are serialised in this process only; run a single instance or set LOCK_BACKEND=redis or postgres")
	}
	log.Info().
		Str("rental_store", cfg.Rental.Store).
		Str("lock_backend", cfg.Lock.Backend).
		Msg("rental backends selected")
	return a, nil
}

// serve runs the router until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, deps api.Deps, port string, log zerolog.Logger) error {
	e := api.NewRouter(deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", port).Msg("http server listening")
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
