package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/practice-scheduling/internal/civiltime"
	"github.com/carebridge/practice-scheduling/internal/recurrence"
)

var (
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrInvalidDayIndex  = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")
)

// Service is the only write surface for a clinician's availability. It
// validates business invariants before touching storage and performs no
// timezone conversion beyond validating that the authoring zone exists;
// converting windows for display is the Materializer's job at read time.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// AddWeekly creates a recurring weekly availability window.
func (s *Service) AddWeekly(ctx context.Context, clinicianID uuid.UUID, dayOfWeek int, start, end civiltime.TimeOfDay, zone string) (*WeeklyRule, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDayIndex, dayOfWeek)
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if _, err := civiltime.LoadZone(zone); err != nil {
		return nil, err
	}

	rrule, err := recurrence.EncodeWeekly([]int{dayOfWeek})
	if err != nil {
		return nil, fmt.Errorf("encode recurrence: %w", err)
	}

	rule := WeeklyRule{
		ID:          uuid.New(),
		ClinicianID: clinicianID,
		DayOfWeek:   dayOfWeek,
		Start:       start,
		End:         end,
		Zone:        zone,
		Recurrence:  rrule,
	}

	created, err := s.repo.InsertWeeklyRule(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("insert weekly rule: %w", err)
	}

	s.log.Info().
		Str("clinician_id", clinicianID.String()).
		Str("rule_id", created.ID.String()).
		Int("day_of_week", dayOfWeek).
		Msg("weekly availability added")

	return created, nil
}

// UpdateWeekly changes the time range of an existing rule in place.
func (s *Service) UpdateWeekly(ctx context.Context, ruleID uuid.UUID, start, end civiltime.TimeOfDay) (*WeeklyRule, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateWeeklyRule(ctx, ruleID, start, end)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update weekly rule: %w", err)
	}

	s.log.Info().Str("rule_id", ruleID.String()).Msg("weekly availability updated")
	return updated, nil
}

// RemoveWeekly deletes a rule. Removing an id that does not exist reports
// ErrRuleNotFound so callers can tell "already gone" from "succeeded".
func (s *Service) RemoveWeekly(ctx context.Context, ruleID uuid.UUID) error {
	if err := s.repo.DeleteWeeklyRule(ctx, ruleID); err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			return err
		}
		return fmt.Errorf("delete weekly rule: %w", err)
	}
	s.log.Info().Str("rule_id", ruleID.String()).Msg("weekly availability removed")
	return nil
}

// AddSingleDay creates an override that replaces all recurring windows for
// one calendar date.
//
// The existence check and the insert are separate statements, so two
// concurrent calls for the same (clinician, date) can both pass the check.
// The availability_overrides table carries a unique index on
// (clinician_id, date) and the repository maps the resulting violation to
// ErrDuplicateOverride, which is the invariant callers may rely on.
func (s *Service) AddSingleDay(ctx context.Context, clinicianID uuid.UUID, date civiltime.Date, start, end civiltime.TimeOfDay, zone string) (*SingleDayOverride, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if _, err := civiltime.LoadZone(zone); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetOverride(ctx, clinicianID, date)
	if err != nil && !errors.Is(err, ErrOverrideNotFound) {
		return nil, fmt.Errorf("check existing override: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOverride, date)
	}

	o := SingleDayOverride{
		ID:          uuid.New(),
		ClinicianID: clinicianID,
		Date:        date,
		Start:       start,
		End:         end,
		Zone:        zone,
	}

	created, err := s.repo.InsertOverride(ctx, o)
	if err != nil {
		if errors.Is(err, ErrDuplicateOverride) {
			return nil, err
		}
		return nil, fmt.Errorf("insert override: %w", err)
	}

	s.log.Info().
		Str("clinician_id", clinicianID.String()).
		Str("date", date.String()).
		Msg("single-day override added")

	return created, nil
}

// RemoveSingleDay deletes an override, reporting ErrOverrideNotFound for an
// unknown id.
func (s *Service) RemoveSingleDay(ctx context.Context, overrideID uuid.UUID) error {
	if err := s.repo.DeleteOverride(ctx, overrideID); err != nil {
		if errors.Is(err, ErrOverrideNotFound) {
			return err
		}
		return fmt.Errorf("delete override: %w", err)
	}
	s.log.Info().Str("override_id", overrideID.String()).Msg("single-day override removed")
	return nil
}

func validateRange(start, end civiltime.TimeOfDay) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: %s..%s", ErrInvalidTimeRange, start, end)
	}
	return nil
}
