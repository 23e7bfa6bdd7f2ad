package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/carebridge/practice-scheduling/internal/civiltime"
)

var (
	ErrRuleNotFound      = errors.New("weekly rule not found")
	ErrOverrideNotFound  = errors.New("single-day override not found")
	ErrDuplicateOverride = errors.New("override already exists for that date")
)

// Repository contains all storage interactions needed by the mutation
// service and the materializer. Implementations must report not-found and
// duplicate conditions through the sentinel errors above, distinctly from
// storage failures.
type Repository interface {
	ListWeeklyRules(ctx context.Context, clinicianID uuid.UUID) ([]WeeklyRule, error)
	GetWeeklyRule(ctx context.Context, id uuid.UUID) (*WeeklyRule, error)
	InsertWeeklyRule(ctx context.Context, rule WeeklyRule) (*WeeklyRule, error)
	UpdateWeeklyRule(ctx context.Context, id uuid.UUID, start, end civiltime.TimeOfDay) (*WeeklyRule, error)
	DeleteWeeklyRule(ctx context.Context, id uuid.UUID) error

	GetOverride(ctx context.Context, clinicianID uuid.UUID, date civiltime.Date) (*SingleDayOverride, error)
	ListOverridesInRange(ctx context.Context, clinicianID uuid.UUID, from, to civiltime.Date) ([]SingleDayOverride, error)
	InsertOverride(ctx context.Context, o SingleDayOverride) (*SingleDayOverride, error)
	DeleteOverride(ctx context.Context, id uuid.UUID) error
}
