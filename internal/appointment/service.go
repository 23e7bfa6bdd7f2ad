package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/practice-scheduling/internal/civiltime"
)

var (
	ErrInvalidTimeRange = errors.New("appointment must end after it starts")
	ErrTerminalStatus   = errors.New("appointment is already completed or cancelled")
	ErrStatusTransition = errors.New("invalid status transition")
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Book creates a scheduled appointment. Boundaries are normalized to UTC
// before persisting; sourceZone is recorded as authoring metadata only.
func (s *Service) Book(ctx context.Context, clientID, clinicianID uuid.UUID, startsAt, endsAt time.Time, sourceZone, apptType string) (*Appointment, error) {
	if err := validateInstants(startsAt, endsAt); err != nil {
		return nil, err
	}
	if _, err := civiltime.LoadZone(sourceZone); err != nil {
		return nil, err
	}

	a := Appointment{
		ID:          uuid.New(),
		ClientID:    clientID,
		ClinicianID: clinicianID,
		StartsAt:    startsAt.UTC(),
		EndsAt:      endsAt.UTC(),
		SourceZone:  sourceZone,
		Type:        apptType,
		Status:      StatusScheduled,
	}

	created, err := s.repo.Insert(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("clinician_id", clinicianID.String()).
		Time("starts_at", created.StartsAt).
		Msg("appointment booked")

	return created, nil
}

// Reschedule replaces both instants. Completed and cancelled appointments
// cannot move.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, startsAt, endsAt time.Time) (*Appointment, error) {
	if err := validateInstants(startsAt, endsAt); err != nil {
		return nil, err
	}

	current, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	updated, err := s.repo.UpdateTimes(ctx, id, startsAt.UTC(), endsAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("reschedule appointment: %w", err)
	}

	s.log.Info().Str("appointment_id", id.String()).Time("starts_at", updated.StartsAt).Msg("appointment rescheduled")
	return updated, nil
}

// Cancel moves a scheduled appointment to cancelled. Cancelled is terminal.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCancelled)
}

// Complete moves a scheduled appointment to completed. Completed is terminal.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	current, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, id, StatusScheduled, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Row existed a moment ago: a concurrent transition won the
			// compare-and-set.
			return nil, ErrStatusTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.log.Info().Str("appointment_id", id.String()).Str("status", string(to)).Msg("appointment status changed")
	return updated, nil
}

// Get retrieves an appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func validateInstants(startsAt, endsAt time.Time) error {
	if !startsAt.Before(endsAt) {
		return fmt.Errorf("%w: %s..%s", ErrInvalidTimeRange, startsAt.Format(time.RFC3339), endsAt.Format(time.RFC3339))
	}
	return nil
}
