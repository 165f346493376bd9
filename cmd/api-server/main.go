package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinic-scheduling/internal/api"
	"github.com/clinicops/clinic-scheduling/internal/config"
	"github.com/clinicops/clinic-scheduling/internal/db"
	"github.com/clinicops/clinic-scheduling/internal/directory"
	"github.com/clinicops/clinic-scheduling/internal/outcome"
	"github.com/clinicops/clinic-scheduling/internal/persist"
	"github.com/clinicops/clinic-scheduling/internal/pharmacy"
	"github.com/clinicops/clinic-scheduling/internal/redisclient"
	"github.com/clinicops/clinic-scheduling/internal/redislock"
	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

const version = "0.3.0"

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("app", "api-server").Logger()
	logger.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("sink_backend", cfg.SinkBackend).
		Str("lock_backend", cfg.LockBackend).
		Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pgPool *pgxpool.Pool
	if cfg.SinkBackend == config.SinkPostgres {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()

		if err := db.EnsureSchema(rootCtx, pgPool); err != nil {
			logger.Fatal().Err(err).Msg("postgres schema error")
		}
		logger.Info().Msg("connected to Postgres")
	}

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb, err = redisclient.New(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()
		logger.Info().Msg("connected to Redis")
	}

	var sink persist.Sink
	switch cfg.SinkBackend {
	case config.SinkPostgres:
		sink = persist.NewPgSink(pgPool)
	case config.SinkRedis:
		sink = persist.NewRedisSink(rdb)
	default:
		sink = persist.NoopSink{}
	}

	journal := persist.NewJournal(sink, cfg.FlushInterval, logger.With().Str("component", "journal").Logger())

	availability := scheduling.NewMemoryAvailabilityStore()
	appointments := scheduling.NewMemoryRepository()
	outcomes := outcome.NewMemoryRepository()
	users := directory.NewMemoryDirectory()
	catalog := pharmacy.NewMemoryCatalog()

	journal.Register(scheduling.CollectionAvailability, availability.MarshalSnapshot)
	journal.Register(scheduling.CollectionAppointments, appointments.MarshalSnapshot)
	journal.Register(outcome.CollectionOutcomes, outcomes.MarshalSnapshot)
	journal.Register(directory.CollectionDirectory, users.MarshalSnapshot)
	journal.Register(pharmacy.CollectionMedications, catalog.MarshalSnapshot)

	restoreCtx, cancelRestore := context.WithTimeout(rootCtx, 30*time.Second)
	err = journal.Restore(restoreCtx, map[string]func([]byte) error{
		scheduling.CollectionAvailability: availability.RestoreSnapshot,
		scheduling.CollectionAppointments: appointments.RestoreSnapshot,
		outcome.CollectionOutcomes:        outcomes.RestoreSnapshot,
		directory.CollectionDirectory:     users.RestoreSnapshot,
		pharmacy.CollectionMedications:    catalog.RestoreSnapshot,
	})
	cancelRestore()
	if err != nil {
		logger.Fatal().Err(err).Msg("snapshot restore error")
	}

	var locker scheduling.Locker
	if cfg.LockBackend == config.LockRedis {
		locker = redislock.NewDoctorLocker(rdb, cfg.LockTTL)
	} else {
		locker = scheduling.NewLocalLocker()
	}

	schedulingSvc := scheduling.NewService(appointments, availability, users, locker, journal,
		logger.With().Str("component", "scheduling").Logger())
	outcomeSvc := outcome.NewService(outcomes, schedulingSvc, catalog, cfg.ConsultationFee, journal,
		logger.With().Str("component", "outcome").Logger())

	router := api.NewRouter(api.RouterConfig{
		Scheduling: schedulingSvc,
		Outcomes:   outcomeSvc,
		PgPool:     pgPool,
		Redis:      rdb,
		Env:        cfg.Env,
		Version:    version,
		Logger:     logger.With().Str("component", "http").Logger(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	case <-rootCtx.Done():
	}

	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	if err := journal.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("journal flush error")
	}

	logger.Info().Msg("api-server stopped")
}
