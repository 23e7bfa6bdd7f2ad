package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Insert(ctx context.Context, a Appointment) (*Appointment, error)

	// UpdateTimes replaces both instants on a reschedule.
	UpdateTimes(ctx context.Context, id uuid.UUID, startsAt, endsAt time.Time) (*Appointment, error)

	// UpdateStatus is a compare-and-set: the row is only updated when its
	// current status equals from, so a concurrent transition loses cleanly.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
}
