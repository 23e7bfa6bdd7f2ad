package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/practice-scheduling/internal/appointment"
	"github.com/carebridge/practice-scheduling/internal/civiltime"
	"github.com/carebridge/practice-scheduling/internal/tzpref"
)

// viewerZoneResolver maps a user id to their stored timezone preference.
type viewerZoneResolver interface {
	TimezoneFor(ctx context.Context, userID uuid.UUID) (string, error)
}

// resolveViewerZone picks the zone a response should be rendered in: the
// explicit viewer_tz query parameter wins, otherwise the stored preference
// of the X-User-ID caller. No guessing beyond that.
func resolveViewerZone(w http.ResponseWriter, r *http.Request, zones viewerZoneResolver) (string, bool) {
	if zone := r.URL.Query().Get("viewer_tz"); zone != "" {
		return zone, true
	}

	userHeader := r.Header.Get("X-User-ID")
	if userHeader == "" {
		writeError(w, http.StatusBadRequest, "invalid_timezone", "provide viewer_tz or X-User-ID")
		return "", false
	}

	userID, err := uuid.Parse(userHeader)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "X-User-ID must be a valid UUID")
		return "", false
	}

	zone, err := zones.TimezoneFor(r.Context(), userID)
	if err != nil {
		if errors.Is(err, tzpref.ErrPreferenceNotFound) {
			writeError(w, http.StatusBadRequest, "invalid_timezone", "no stored timezone preference for user")
			return "", false
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return "", false
	}
	return zone, true
}

func bookAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_client_id", "client_id must be a valid UUID")
			return
		}
		clinicianID, err := uuid.Parse(req.ClinicianID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinician_id", "clinician_id must be a valid UUID")
			return
		}

		appt, err := svc.Book(r.Context(), clientID, clinicianID, req.StartsAt, req.EndsAt, req.Timezone, req.Type)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newAppointmentResponse(appt, nil))
	}
}

func rescheduleAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		var req RescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Reschedule(r.Context(), id, req.StartsAt, req.EndsAt)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt, nil))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.Cancel(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt, nil))
	}
}

func completeAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.Complete(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt, nil))
	}
}

// getAppointmentHandler returns the stored appointment together with its
// projection into the viewer's zone.
func getAppointmentHandler(svc *appointment.Service, zones viewerZoneResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		zone, ok := resolveViewerZone(w, r, zones)
		if !ok {
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		display, err := appointment.Project(*appt, zone)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt, &display))
	}
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrInvalidTimeRange):
		writeError(w, http.StatusBadRequest, "invalid_time_range", err.Error())
	case errors.Is(err, civiltime.ErrInvalidTimezone):
		writeError(w, http.StatusBadRequest, "invalid_timezone", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrTerminalStatus):
		writeError(w, http.StatusConflict, "terminal_status", err.Error())
	case errors.Is(err, appointment.ErrStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
