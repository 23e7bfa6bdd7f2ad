package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/practice-scheduling/internal/civiltime"
)

// WeeklyRule is a recurring availability window: every week on DayOfWeek,
// between Start and End as read on a clock in the authoring Zone. A rule
// never spans midnight; Start < End on the same civil day.
type WeeklyRule struct {
	ID          uuid.UUID
	ClinicianID uuid.UUID
	DayOfWeek   int // 0=Sunday..6=Saturday
	Start       civiltime.TimeOfDay
	End         civiltime.TimeOfDay
	Zone        string
	Recurrence  string // FREQ=WEEKLY;BYDAY=... mirror of DayOfWeek
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SingleDayOverride replaces every WeeklyRule window for its clinician on
// one specific calendar date. At most one override per (clinician, date).
type SingleDayOverride struct {
	ID          uuid.UUID
	ClinicianID uuid.UUID
	Date        civiltime.Date
	Start       civiltime.TimeOfDay
	End         civiltime.TimeOfDay
	Zone        string
	CreatedAt   time.Time
}

// Window is one concrete bookable interval, projected into the viewer's
// zone. Date, Start and End are viewer-local; Date is derived from the
// converted start instant, so a window authored late in the evening may be
// attributed to a different calendar date than it was authored on.
type Window struct {
	Date       civiltime.Date      `json:"date"`
	Start      civiltime.TimeOfDay `json:"start_time"`
	End        civiltime.TimeOfDay `json:"end_time"`
	StartsAt   time.Time           `json:"starts_at"`
	EndsAt     time.Time           `json:"ends_at"`
	IsOverride bool                `json:"is_override"`
	InDST      bool                `json:"in_dst"`
}
