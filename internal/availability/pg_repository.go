package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/practice-scheduling/internal/civiltime"
)

const pgUniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanWeeklyRule(row pgx.Row) (*WeeklyRule, error) {
	var (
		r          WeeklyRule
		start, end string
	)

	err := row.Scan(
		&r.ID,
		&r.ClinicianID,
		&r.DayOfWeek,
		&start,
		&end,
		&r.Zone,
		&r.Recurrence,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	if r.Start, err = civiltime.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("rule %s start: %w", r.ID, err)
	}
	if r.End, err = civiltime.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("rule %s end: %w", r.ID, err)
	}
	return &r, nil
}

func scanOverride(row pgx.Row) (*SingleDayOverride, error) {
	var (
		o          SingleDayOverride
		date       time.Time
		start, end string
	)

	err := row.Scan(
		&o.ID,
		&o.ClinicianID,
		&date,
		&start,
		&end,
		&o.Zone,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOverrideNotFound
		}
		return nil, err
	}

	o.Date = civiltime.DateOf(date)
	if o.Start, err = civiltime.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("override %s start: %w", o.ID, err)
	}
	if o.End, err = civiltime.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("override %s end: %w", o.ID, err)
	}
	return &o, nil
}

// Interface methods

func (r *PgRepository) ListWeeklyRules(ctx context.Context, clinicianID uuid.UUID) ([]WeeklyRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, clinician_id, day_of_week, start_time, end_time, zone, recurrence, created_at, updated_at
		FROM availability_weekly_rules
		WHERE clinician_id = $1
		ORDER BY day_of_week, start_time
	`, clinicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []WeeklyRule
	for rows.Next() {
		rule, err := scanWeeklyRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func (r *PgRepository) GetWeeklyRule(ctx context.Context, id uuid.UUID) (*WeeklyRule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, clinician_id, day_of_week, start_time, end_time, zone, recurrence, created_at, updated_at
		FROM availability_weekly_rules
		WHERE id = $1
	`, id)
	return scanWeeklyRule(row)
}

func (r *PgRepository) InsertWeeklyRule(ctx context.Context, rule WeeklyRule) (*WeeklyRule, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO availability_weekly_rules
			(id, clinician_id, day_of_week, start_time, end_time, zone, recurrence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, clinician_id, day_of_week, start_time, end_time, zone, recurrence, created_at, updated_at
	`, rule.ID, rule.ClinicianID, rule.DayOfWeek, rule.Start.String(), rule.End.String(), rule.Zone, rule.Recurrence)
	return scanWeeklyRule(row)
}

func (r *PgRepository) UpdateWeeklyRule(ctx context.Context, id uuid.UUID, start, end civiltime.TimeOfDay) (*WeeklyRule, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE availability_weekly_rules
		SET start_time = $2, end_time = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, clinician_id, day_of_week, start_time, end_time, zone, recurrence, created_at, updated_at
	`, id, start.String(), end.String())
	return scanWeeklyRule(row)
}

func (r *PgRepository) DeleteWeeklyRule(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM availability_weekly_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *PgRepository) GetOverride(ctx context.Context, clinicianID uuid.UUID, date civiltime.Date) (*SingleDayOverride, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, clinician_id, date, start_time, end_time, zone, created_at
		FROM availability_overrides
		WHERE clinician_id = $1 AND date = $2::date
	`, clinicianID, date.String())
	return scanOverride(row)
}

func (r *PgRepository) ListOverridesInRange(ctx context.Context, clinicianID uuid.UUID, from, to civiltime.Date) ([]SingleDayOverride, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, clinician_id, date, start_time, end_time, zone, created_at
		FROM availability_overrides
		WHERE clinician_id = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date
	`, clinicianID, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []SingleDayOverride
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, *o)
	}
	return overrides, rows.Err()
}

// InsertOverride relies on the unique index on (clinician_id, date) to close
// the check-then-insert race in the service; a violation surfaces as
// ErrDuplicateOverride.
func (r *PgRepository) InsertOverride(ctx context.Context, o SingleDayOverride) (*SingleDayOverride, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO availability_overrides
			(id, clinician_id, date, start_time, end_time, zone, created_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, now())
		RETURNING id, clinician_id, date, start_time, end_time, zone, created_at
	`, o.ID, o.ClinicianID, o.Date.String(), o.Start.String(), o.End.String(), o.Zone)

	created, err := scanOverride(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOverride, o.Date)
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) DeleteOverride(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM availability_overrides WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOverrideNotFound
	}
	return nil
}
