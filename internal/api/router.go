package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carebridge/practice-scheduling/internal/appointment"
	"github.com/carebridge/practice-scheduling/internal/availability"
)

type RouterConfig struct {
	Availability *availability.Service
	Materializer *availability.Materializer
	Appointments *appointment.Service
	Zones        viewerZoneResolver
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Logger       zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability: mutations plus the materialized calendar read.
	r.Post("/clinicians/{clinicianID}/availability/weekly", addWeeklyHandler(cfg.Availability))
	r.Put("/availability/weekly/{ruleID}", updateWeeklyHandler(cfg.Availability))
	r.Delete("/availability/weekly/{ruleID}", removeWeeklyHandler(cfg.Availability))
	r.Post("/clinicians/{clinicianID}/availability/overrides", addOverrideHandler(cfg.Availability))
	r.Delete("/availability/overrides/{overrideID}", removeOverrideHandler(cfg.Availability))
	r.Get("/clinicians/{clinicianID}/availability", materializeHandler(cfg.Materializer, cfg.Zones))

	// Appointments: booking lifecycle plus the per-viewer projection read.
	r.Post("/appointments", bookAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments, cfg.Zones))

	return r
}
