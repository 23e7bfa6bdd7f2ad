package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.ClinicianID,
		&a.StartsAt,
		&a.EndsAt,
		&a.SourceZone,
		&a.Type,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	// pgx returns timestamptz in the session zone; canonical form is UTC.
	a.StartsAt = a.StartsAt.UTC()
	a.EndsAt = a.EndsAt.UTC()
	return &a, nil
}

// Interface methods

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, client_id, clinician_id, starts_at, ends_at, source_zone, type, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) Insert(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, client_id, clinician_id, starts_at, ends_at, source_zone, type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, client_id, clinician_id, starts_at, ends_at, source_zone, type, status, created_at, updated_at
	`, a.ID, a.ClientID, a.ClinicianID, a.StartsAt, a.EndsAt, a.SourceZone, a.Type, a.Status)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateTimes(ctx context.Context, id uuid.UUID, startsAt, endsAt time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET starts_at = $2, ends_at = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, client_id, clinician_id, starts_at, ends_at, source_zone, type, status, created_at, updated_at
	`, id, startsAt, endsAt)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING id, client_id, clinician_id, starts_at, ends_at, source_zone, type, status, created_at, updated_at
	`, id, from, to)
	return scanAppointment(row)
}
