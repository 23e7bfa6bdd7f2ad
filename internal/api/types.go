package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/practice-scheduling/internal/appointment"
	"github.com/carebridge/practice-scheduling/internal/availability"
)

type AddWeeklyRequest struct {
	DayOfWeek int    `json:"day_of_week"` // 0=Sunday..6=Saturday
	StartTime string `json:"start_time"`  // "HH:MM"
	EndTime   string `json:"end_time"`    // "HH:MM"
	Timezone  string `json:"timezone"`    // IANA zone name
}

type UpdateWeeklyRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type WeeklyRuleResponse struct {
	ID          uuid.UUID `json:"id"`
	ClinicianID uuid.UUID `json:"clinician_id"`
	DayOfWeek   int       `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Timezone    string    `json:"timezone"`
	Recurrence  string    `json:"recurrence"`
}

func newWeeklyRuleResponse(r *availability.WeeklyRule) WeeklyRuleResponse {
	return WeeklyRuleResponse{
		ID:          r.ID,
		ClinicianID: r.ClinicianID,
		DayOfWeek:   r.DayOfWeek,
		StartTime:   r.Start.String(),
		EndTime:     r.End.String(),
		Timezone:    r.Zone,
		Recurrence:  r.Recurrence,
	}
}

type AddOverrideRequest struct {
	Date      string `json:"date"` // "YYYY-MM-DD"
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
}

type OverrideResponse struct {
	ID          uuid.UUID `json:"id"`
	ClinicianID uuid.UUID `json:"clinician_id"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Timezone    string    `json:"timezone"`
}

func newOverrideResponse(o *availability.SingleDayOverride) OverrideResponse {
	return OverrideResponse{
		ID:          o.ID,
		ClinicianID: o.ClinicianID,
		Date:        o.Date.String(),
		StartTime:   o.Start.String(),
		EndTime:     o.End.String(),
		Timezone:    o.Zone,
	}
}

type AvailabilityResponse struct {
	ClinicianID    uuid.UUID             `json:"clinician_id"`
	From           string                `json:"from"`
	To             string                `json:"to"`
	ViewerTimezone string                `json:"viewer_timezone"`
	Windows        []availability.Window `json:"windows"`
}

type BookAppointmentRequest struct {
	ClientID    string    `json:"client_id"`
	ClinicianID string    `json:"clinician_id"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Timezone    string    `json:"timezone"` // zone the booking was authored in
	Type        string    `json:"type"`
}

type RescheduleRequest struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type AppointmentResponse struct {
	ID          uuid.UUID               `json:"id"`
	ClientID    uuid.UUID               `json:"client_id"`
	ClinicianID uuid.UUID               `json:"clinician_id"`
	StartsAt    time.Time               `json:"starts_at"`
	EndsAt      time.Time               `json:"ends_at"`
	Timezone    string                  `json:"timezone"`
	Type        string                  `json:"type"`
	Status      string                  `json:"status"`
	Display     *appointment.Projection `json:"display,omitempty"`
}

func newAppointmentResponse(a *appointment.Appointment, display *appointment.Projection) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		ClientID:    a.ClientID,
		ClinicianID: a.ClinicianID,
		StartsAt:    a.StartsAt,
		EndsAt:      a.EndsAt,
		Timezone:    a.SourceZone,
		Type:        a.Type,
		Status:      string(a.Status),
		Display:     display,
	}
}
