package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinic-scheduling/internal/outcome"
	"github.com/clinicops/clinic-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Scheduling *scheduling.Service
	Outcomes   *outcome.Service
	PgPool     *pgxpool.Pool
	Redis      *redis.Client
	Env        string
	Version    string
	Logger     zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Doctor calendar
	r.Put("/doctors/{doctorID}/availability", setAvailabilityHandler(cfg.Scheduling))
	r.Get("/doctors/{doctorID}/availability", getAvailabilityHandler(cfg.Scheduling))

	// Appointment lifecycle
	r.Post("/appointments", scheduleAppointmentHandler(cfg.Scheduling))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Scheduling))
	r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Scheduling))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Scheduling))
	r.Post("/appointments/{id}/status", updateStatusHandler(cfg.Scheduling))
	r.Post("/doctors/{doctorID}/appointments/accept-all", acceptAllHandler(cfg.Scheduling))
	r.Post("/doctors/{doctorID}/appointments/decline-all", declineAllHandler(cfg.Scheduling))

	// Appointment queries
	r.Get("/patients/{patientID}/appointments", listByPatientHandler(cfg.Scheduling))
	r.Get("/doctors/{doctorID}/appointments", listByDoctorHandler(cfg.Scheduling))

	// Outcomes
	r.Post("/appointments/{id}/outcome", recordOutcomeHandler(cfg.Outcomes))
	r.Get("/appointments/{id}/outcome", getOutcomeHandler(cfg.Outcomes))
	r.Patch("/outcomes/{id}/prescription", updatePrescriptionHandler(cfg.Outcomes))
	r.Patch("/outcomes/{id}/billing", updateBillingHandler(cfg.Outcomes))
	r.Get("/outcomes", listOutcomesHandler(cfg.Outcomes))

	return r
}
