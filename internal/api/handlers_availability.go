package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/practice-scheduling/internal/availability"
	"github.com/carebridge/practice-scheduling/internal/civiltime"
)

func addWeeklyHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicianID, err := uuid.Parse(chi.URLParam(r, "clinicianID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinician_id", "clinicianID must be a valid UUID")
			return
		}

		var req AddWeeklyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, end, ok := parseTimeRange(w, req.StartTime, req.EndTime)
		if !ok {
			return
		}

		rule, err := svc.AddWeekly(r.Context(), clinicianID, req.DayOfWeek, start, end, req.Timezone)
		if err != nil {
			handleAvailabilityError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newWeeklyRuleResponse(rule))
	}
}

func updateWeeklyHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := uuid.Parse(chi.URLParam(r, "ruleID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_rule_id", "ruleID must be a valid UUID")
			return
		}

		var req UpdateWeeklyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, end, ok := parseTimeRange(w, req.StartTime, req.EndTime)
		if !ok {
			return
		}

		rule, err := svc.UpdateWeekly(r.Context(), ruleID, start, end)
		if err != nil {
			handleAvailabilityError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newWeeklyRuleResponse(rule))
	}
}

func removeWeeklyHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := uuid.Parse(chi.URLParam(r, "ruleID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_rule_id", "ruleID must be a valid UUID")
			return
		}

		if err := svc.RemoveWeekly(r.Context(), ruleID); err != nil {
			handleAvailabilityError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func addOverrideHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicianID, err := uuid.Parse(chi.URLParam(r, "clinicianID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinician_id", "clinicianID must be a valid UUID")
			return
		}

		var req AddOverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := civiltime.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		start, end, ok := parseTimeRange(w, req.StartTime, req.EndTime)
		if !ok {
			return
		}

		o, err := svc.AddSingleDay(r.Context(), clinicianID, date, start, end, req.Timezone)
		if err != nil {
			handleAvailabilityError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newOverrideResponse(o))
	}
}

func removeOverrideHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overrideID, err := uuid.Parse(chi.URLParam(r, "overrideID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_override_id", "overrideID must be a valid UUID")
			return
		}

		if err := svc.RemoveSingleDay(r.Context(), overrideID); err != nil {
			handleAvailabilityError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func materializeHandler(mat *availability.Materializer, zones viewerZoneResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicianID, err := uuid.Parse(chi.URLParam(r, "clinicianID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinician_id", "clinicianID must be a valid UUID")
			return
		}

		from, err := civiltime.ParseDate(r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
			return
		}
		to, err := civiltime.ParseDate(r.URL.Query().Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
			return
		}

		zone, ok := resolveViewerZone(w, r, zones)
		if !ok {
			return
		}

		cal, err := mat.Materialize(r.Context(), clinicianID, from, to, zone)
		if err != nil {
			handleAvailabilityError(w, err)
			return
		}

		windows := cal.Windows()
		if windows == nil {
			windows = []availability.Window{}
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			ClinicianID:    clinicianID,
			From:           from.String(),
			To:             to.String(),
			ViewerTimezone: zone,
			Windows:        windows,
		})
	}
}

func parseTimeRange(w http.ResponseWriter, startStr, endStr string) (start, end civiltime.TimeOfDay, ok bool) {
	start, err := civiltime.ParseTimeOfDay(startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", "start_time must be HH:MM")
		return start, end, false
	}
	end, err = civiltime.ParseTimeOfDay(endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", "end_time must be HH:MM")
		return start, end, false
	}
	return start, end, true
}

func handleAvailabilityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidTimeRange):
		writeError(w, http.StatusBadRequest, "invalid_time_range", err.Error())
	case errors.Is(err, availability.ErrInvalidDayIndex):
		writeError(w, http.StatusBadRequest, "invalid_day_index", err.Error())
	case errors.Is(err, civiltime.ErrInvalidTimezone):
		writeError(w, http.StatusBadRequest, "invalid_timezone", err.Error())
	case errors.Is(err, availability.ErrRuleNotFound):
		writeError(w, http.StatusNotFound, "rule_not_found", err.Error())
	case errors.Is(err, availability.ErrOverrideNotFound):
		writeError(w, http.StatusNotFound, "override_not_found", err.Error())
	case errors.Is(err, availability.ErrDuplicateOverride):
		writeError(w, http.StatusConflict, "duplicate_override", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
