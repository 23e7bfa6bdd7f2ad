package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/practice-scheduling/internal/appointment"
	"github.com/carebridge/practice-scheduling/internal/availability"
	"github.com/carebridge/practice-scheduling/internal/civiltime"
	"github.com/carebridge/practice-scheduling/internal/tzpref"
)

// ---------- fakes ----------

type memAvailabilityRepo struct {
	rules     map[uuid.UUID]availability.WeeklyRule
	overrides map[uuid.UUID]availability.SingleDayOverride
}

func newMemAvailabilityRepo() *memAvailabilityRepo {
	return &memAvailabilityRepo{
		rules:     make(map[uuid.UUID]availability.WeeklyRule),
		overrides: make(map[uuid.UUID]availability.SingleDayOverride),
	}
}

func (m *memAvailabilityRepo) ListWeeklyRules(_ context.Context, clinicianID uuid.UUID) ([]availability.WeeklyRule, error) {
	var out []availability.WeeklyRule
	for _, r := range m.rules {
		if r.ClinicianID == clinicianID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAvailabilityRepo) GetWeeklyRule(_ context.Context, id uuid.UUID) (*availability.WeeklyRule, error) {
	r, ok := m.rules[id]
	if !ok {
		return nil, availability.ErrRuleNotFound
	}
	return &r, nil
}

func (m *memAvailabilityRepo) InsertWeeklyRule(_ context.Context, rule availability.WeeklyRule) (*availability.WeeklyRule, error) {
	m.rules[rule.ID] = rule
	return &rule, nil
}

func (m *memAvailabilityRepo) UpdateWeeklyRule(_ context.Context, id uuid.UUID, start, end civiltime.TimeOfDay) (*availability.WeeklyRule, error) {
	r, ok := m.rules[id]
	if !ok {
		return nil, availability.ErrRuleNotFound
	}
	r.Start, r.End = start, end
	m.rules[id] = r
	return &r, nil
}

func (m *memAvailabilityRepo) DeleteWeeklyRule(_ context.Context, id uuid.UUID) error {
	if _, ok := m.rules[id]; !ok {
		return availability.ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *memAvailabilityRepo) GetOverride(_ context.Context, clinicianID uuid.UUID, date civiltime.Date) (*availability.SingleDayOverride, error) {
	for _, o := range m.overrides {
		if o.ClinicianID == clinicianID && o.Date == date {
			return &o, nil
		}
	}
	return nil, availability.ErrOverrideNotFound
}

func (m *memAvailabilityRepo) ListOverridesInRange(_ context.Context, clinicianID uuid.UUID, from, to civiltime.Date) ([]availability.SingleDayOverride, error) {
	var out []availability.SingleDayOverride
	for _, o := range m.overrides {
		if o.ClinicianID == clinicianID && !o.Date.Before(from) && !o.Date.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memAvailabilityRepo) InsertOverride(_ context.Context, o availability.SingleDayOverride) (*availability.SingleDayOverride, error) {
	for _, existing := range m.overrides {
		if existing.ClinicianID == o.ClinicianID && existing.Date == o.Date {
			return nil, availability.ErrDuplicateOverride
		}
	}
	m.overrides[o.ID] = o
	return &o, nil
}

func (m *memAvailabilityRepo) DeleteOverride(_ context.Context, id uuid.UUID) error {
	if _, ok := m.overrides[id]; !ok {
		return availability.ErrOverrideNotFound
	}
	delete(m.overrides, id)
	return nil
}

type memAppointmentRepo struct {
	appointments map[uuid.UUID]appointment.Appointment
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{appointments: make(map[uuid.UUID]appointment.Appointment)}
}

func (m *memAppointmentRepo) GetAppointment(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *memAppointmentRepo) Insert(_ context.Context, a appointment.Appointment) (*appointment.Appointment, error) {
	m.appointments[a.ID] = a
	return &a, nil
}

func (m *memAppointmentRepo) UpdateTimes(_ context.Context, id uuid.UUID, startsAt, endsAt time.Time) (*appointment.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	a.StartsAt, a.EndsAt = startsAt, endsAt
	m.appointments[id] = a
	return &a, nil
}

func (m *memAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to appointment.Status) (*appointment.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok || a.Status != from {
		return nil, appointment.ErrAppointmentNotFound
	}
	a.Status = to
	m.appointments[id] = a
	return &a, nil
}

type memZoneResolver struct {
	zones map[uuid.UUID]string
}

func (m *memZoneResolver) TimezoneFor(_ context.Context, userID uuid.UUID) (string, error) {
	zone, ok := m.zones[userID]
	if !ok {
		return "", tzpref.ErrPreferenceNotFound
	}
	return zone, nil
}

// ---------- helpers ----------

type testEnv struct {
	handler   http.Handler
	availRepo *memAvailabilityRepo
	apptRepo  *memAppointmentRepo
	zones     *memZoneResolver
}

func newTestEnv() *testEnv {
	availRepo := newMemAvailabilityRepo()
	apptRepo := newMemAppointmentRepo()
	zones := &memZoneResolver{zones: make(map[uuid.UUID]string)}

	logger := zerolog.Nop()

	router := NewRouter(RouterConfig{
		Availability: availability.NewService(availRepo, logger),
		Materializer: availability.NewMaterializer(availRepo),
		Appointments: appointment.NewService(apptRepo, logger),
		Zones:        zones,
		Logger:       logger,
		Env:          "test",
		Version:      "test",
	})

	return &testEnv{handler: router, availRepo: availRepo, apptRepo: apptRepo, zones: zones}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

// ---------- availability handlers ----------

func TestAddWeeklyHandler(t *testing.T) {
	env := newTestEnv()
	clinicianID := uuid.New()

	rec := env.do(t, http.MethodPost, "/clinicians/"+clinicianID.String()+"/availability/weekly",
		`{"day_of_week":1,"start_time":"09:00","end_time":"17:00","timezone":"America/New_York"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp WeeklyRuleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.DayOfWeek != 1 || resp.StartTime != "09:00" || resp.EndTime != "17:00" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Recurrence != "FREQ=WEEKLY;BYDAY=MO" {
		t.Errorf("recurrence: got %q", resp.Recurrence)
	}
}

func TestAddWeeklyHandler_ErrorCodes(t *testing.T) {
	env := newTestEnv()
	clinicianID := uuid.New()
	path := "/clinicians/" + clinicianID.String() + "/availability/weekly"

	cases := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "inverted range",
			body:     `{"day_of_week":1,"start_time":"17:00","end_time":"09:00","timezone":"America/New_York"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_time_range",
		},
		{
			name:     "bad day index",
			body:     `{"day_of_week":9,"start_time":"09:00","end_time":"17:00","timezone":"America/New_York"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_day_index",
		},
		{
			name:     "abbreviation rejected",
			body:     `{"day_of_week":1,"start_time":"09:00","end_time":"17:00","timezone":"EST"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_timezone",
		},
		{
			name:     "bad time format",
			body:     `{"day_of_week":1,"start_time":"9am","end_time":"17:00","timezone":"America/New_York"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_time",
		},
		{
			name:     "not json",
			body:     `{{{`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_request_body",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, path, tc.body)
			if rec.Code != tc.wantCode {
				t.Fatalf("status: got %d, want %d", rec.Code, tc.wantCode)
			}
			if resp := decodeError(t, rec); resp.Error != tc.wantErr {
				t.Errorf("error code: got %q, want %q", resp.Error, tc.wantErr)
			}
		})
	}
}

func TestOverrideHandlers(t *testing.T) {
	env := newTestEnv()
	clinicianID := uuid.New()
	path := "/clinicians/" + clinicianID.String() + "/availability/overrides"
	body := `{"date":"2025-11-03","start_time":"12:00","end_time":"14:00","timezone":"America/New_York"}`

	rec := env.do(t, http.MethodPost, path, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}

	var created OverrideResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	// Duplicate date for the same clinician conflicts.
	rec = env.do(t, http.MethodPost, path, body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "duplicate_override" {
		t.Errorf("error code: got %q", resp.Error)
	}

	rec = env.do(t, http.MethodDelete, "/availability/overrides/"+created.ID.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/availability/overrides/"+created.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d", rec.Code)
	}
}

func TestMaterializeHandler(t *testing.T) {
	env := newTestEnv()
	clinicianID := uuid.New()

	rec := env.do(t, http.MethodPost, "/clinicians/"+clinicianID.String()+"/availability/weekly",
		`{"day_of_week":1,"start_time":"09:00","end_time":"17:00","timezone":"America/New_York"}`)
	if rec.Code != http.StatusCreated {
		t.Fatal(rec.Body.String())
	}

	rec = env.do(t, http.MethodGet,
		fmt.Sprintf("/clinicians/%s/availability?from=2025-07-07&to=2025-07-13&viewer_tz=%s",
			clinicianID, "America/Los_Angeles"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Windows) != 1 {
		t.Fatalf("windows: got %d", len(resp.Windows))
	}
	w := resp.Windows[0]
	if w.Start.Hour != 6 || w.End.Hour != 14 {
		t.Errorf("pacific times: got %v..%v", w.Start, w.End)
	}
}

func TestMaterializeHandler_ZoneFromPreference(t *testing.T) {
	env := newTestEnv()
	clinicianID := uuid.New()
	userID := uuid.New()
	env.zones.zones[userID] = "America/Los_Angeles"

	rec := env.do(t, http.MethodPost, "/clinicians/"+clinicianID.String()+"/availability/weekly",
		`{"day_of_week":1,"start_time":"09:00","end_time":"17:00","timezone":"America/New_York"}`)
	if rec.Code != http.StatusCreated {
		t.Fatal(rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet,
		"/clinicians/"+clinicianID.String()+"/availability?from=2025-07-07&to=2025-07-13", nil)
	req.Header.Set("X-User-ID", userID.String())
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", res.Code, res.Body.String())
	}

	var resp AvailabilityResponse
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ViewerTimezone != "America/Los_Angeles" {
		t.Errorf("viewer zone: got %q", resp.ViewerTimezone)
	}

	// Neither viewer_tz nor a stored preference: reject.
	req = httptest.NewRequest(http.MethodGet,
		"/clinicians/"+clinicianID.String()+"/availability?from=2025-07-07&to=2025-07-13", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("no preference: got %d", res.Code)
	}
}

// ---------- appointment handlers ----------

func TestAppointmentLifecycleHandlers(t *testing.T) {
	env := newTestEnv()
	clientID := uuid.New()
	clinicianID := uuid.New()

	rec := env.do(t, http.MethodPost, "/appointments", fmt.Sprintf(
		`{"client_id":%q,"clinician_id":%q,"starts_at":"2025-07-07T13:00:00Z","ends_at":"2025-07-07T14:00:00Z","timezone":"America/New_York","type":"therapy"}`,
		clientID, clinicianID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: got %d, body %s", rec.Code, rec.Body.String())
	}

	var booked AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &booked); err != nil {
		t.Fatal(err)
	}
	if booked.Status != "scheduled" {
		t.Errorf("status: got %q", booked.Status)
	}

	// Viewer in Tokyo sees the next calendar date.
	rec = env.do(t, http.MethodGet, "/appointments/"+booked.ID.String()+"?viewer_tz=Asia/Tokyo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d, body %s", rec.Code, rec.Body.String())
	}
	var fetched AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.Display == nil {
		t.Fatal("missing display projection")
	}
	if got := fetched.Display.Date.String(); got != "2025-07-07" {
		// 13:00 UTC is 22:00 JST, still the 7th.
		t.Errorf("display date: got %s", got)
	}
	if fetched.Display.Start.Hour != 22 {
		t.Errorf("display start: got %v", fetched.Display.Start)
	}

	rec = env.do(t, http.MethodPost, "/appointments/"+booked.ID.String()+"/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/appointments/"+booked.ID.String()+"/complete", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("complete after cancel: got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "terminal_status" {
		t.Errorf("error code: got %q", resp.Error)
	}
}

func TestGetAppointmentHandler_NotFound(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/appointments/"+uuid.NewString()+"?viewer_tz=UTC", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "appointment_not_found" {
		t.Errorf("error code: got %q", resp.Error)
	}
}
