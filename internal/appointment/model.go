package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/practice-scheduling/internal/civiltime"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment is an independent aggregate keyed by its own id, referenced by
// both client and clinician. StartsAt/EndsAt are the canonical truth, stored
// as UTC instants; SourceZone only records which zone the appointment was
// authored in and never overrides the instants.
type Appointment struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	ClinicianID uuid.UUID
	StartsAt    time.Time
	EndsAt      time.Time
	SourceZone  string
	Type        string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Projection is a display-ready view of an appointment for one viewer zone.
// Derived, never persisted. Two viewers in different zones may legitimately
// see different calendar dates for the same appointment.
type Projection struct {
	Date  civiltime.Date      `json:"date"`
	Start civiltime.TimeOfDay `json:"start_time"`
	End   civiltime.TimeOfDay `json:"end_time"`
	InDST bool                `json:"in_dst"`
}
