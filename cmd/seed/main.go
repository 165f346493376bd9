package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinic-scheduling/internal/config"
	"github.com/clinicops/clinic-scheduling/internal/db"
	"github.com/clinicops/clinic-scheduling/internal/directory"
	"github.com/clinicops/clinic-scheduling/internal/persist"
	"github.com/clinicops/clinic-scheduling/internal/pharmacy"
	"github.com/clinicops/clinic-scheduling/internal/redisclient"
	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

// seed writes directory, medication and availability snapshots through the
// configured sink so a fresh api-server boots with data to schedule against.
func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("app", "seed").Logger()
	logger.Info().Msg("seed starting")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}
	if cfg.SinkBackend == config.SinkNone {
		logger.Fatal().Msg("SINK_BACKEND must be postgres or redis to seed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var sink persist.Sink
	switch cfg.SinkBackend {
	case config.SinkPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("ensure schema")
		}
		sink = persist.NewPgSink(pool)
	case config.SinkRedis:
		rdb, err := redisclient.New(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect redis")
		}
		defer rdb.Close()
		sink = persist.NewRedisSink(rdb)
	}

	gofakeit.Seed(time.Now().UnixNano())

	users := directory.NewMemoryDirectory()
	doctors := seedDoctors(users, 20)
	seedPatients(users, 500)
	logger.Info().Int("doctors", 20).Int("patients", 500).Msg("directory generated")

	catalog := pharmacy.NewMemoryCatalog()
	seedMedications(catalog, 40)
	logger.Info().Int("medications", 40).Msg("catalog generated")

	availability := scheduling.NewMemoryAvailabilityStore()
	seedAvailability(availability, doctors)
	logger.Info().Msg("availability generated")

	save(ctx, logger, sink, directory.CollectionDirectory, users.MarshalSnapshot)
	save(ctx, logger, sink, pharmacy.CollectionMedications, catalog.MarshalSnapshot)
	save(ctx, logger, sink, scheduling.CollectionAvailability, availability.MarshalSnapshot)

	logger.Info().Msg("seed complete")
}

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

func seedDoctors(users *directory.MemoryDirectory, count int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		users.PutDoctor(directory.Doctor{
			ID:        id,
			Name:      gofakeit.Name(),
			Specialty: specialties[gofakeit.Number(0, len(specialties)-1)],
		})
		ids = append(ids, id)
	}
	return ids
}

func seedPatients(users *directory.MemoryDirectory, count int) {
	for i := 0; i < count; i++ {
		users.PutPatient(directory.Patient{
			ID:    uuid.New(),
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
		})
	}
}

func seedMedications(catalog *pharmacy.MemoryCatalog, count int) {
	for i := 0; i < count; i++ {
		catalog.Put(pharmacy.Medication{
			ID:    uuid.New(),
			Name:  gofakeit.BeerName(),
			Price: gofakeit.Price(5, 250),
		})
	}
}

// seedAvailability fills the current month from today with 09:00-17:00 hourly
// slots for every doctor.
func seedAvailability(store *scheduling.MemoryAvailabilityStore, doctors []uuid.UUID) {
	start := scheduling.DateOf(time.Now().UTC())
	last := start.LastOfMonth()
	times := scheduling.GenerateSlots(scheduling.NewTimeOfDay(9, 0), scheduling.NewTimeOfDay(17, 0), 60)

	for _, doctorID := range doctors {
		for d := start; !d.After(last); d = d.AddDays(1) {
			store.ReplaceDay(doctorID, d, times)
		}
	}
}

func save(ctx context.Context, logger zerolog.Logger, sink persist.Sink, collection string, fn func() ([]byte, error)) {
	payload, err := fn()
	if err != nil {
		logger.Fatal().Err(err).Str("collection", collection).Msg("snapshot error")
	}
	if err := sink.Save(ctx, collection, payload); err != nil {
		logger.Fatal().Err(err).Str("collection", collection).Msg("save error")
	}
	logger.Info().Str("collection", collection).Msg("snapshot saved")
}
