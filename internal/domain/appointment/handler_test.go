package appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

func setupHandler(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()
	e := echo.New()
	svc := NewService(newFakeApptRepo(), &fakeSlotSource{slots: []*availability.ScheduleSlot{
		slot(540, 720, 5, true),
	}}, nil)
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))
	return e, svc
}

func doRequest(e *echo.Echo, method, path, body string, userID uuid.UUID, roles ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seedBooking(t *testing.T, svc *Service) *Appointment {
	t.Helper()
	appt, err := svc.Book(context.Background(), asPatient(), booking("2024-05-06", "09:00", "09:30"))
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return appt
}

func TestBookEndpoint(t *testing.T) {
	e, _ := setupHandler(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/appointments",
		`{"provider_id": "`+providerID.String()+`", "date": "2024-05-06", "start_time": "09:00", "end_time": "09:30"}`,
		patientID, "patient")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Omitted patient_id defaults to the authenticated subject.
	if appt.PatientID != patientID {
		t.Errorf("patient_id = %s, want subject", appt.PatientID)
	}
}

func TestBookEndpoint_ForAnotherPatient(t *testing.T) {
	e, _ := setupHandler(t)

	body := `{"provider_id": "` + providerID.String() + `", "patient_id": "` + patientID.String() +
		`", "date": "2024-05-06", "start_time": "09:00", "end_time": "09:30"}`

	rec := doRequest(e, http.MethodPost, "/api/v1/appointments", body, otherPatientID, "patient")
	if rec.Code != http.StatusForbidden {
		t.Errorf("patient booking for someone else: status = %d, want 403: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(e, http.MethodPost, "/api/v1/appointments", body, otherPatientID, "staff")
	if rec.Code != http.StatusCreated {
		t.Errorf("staff booking on behalf: status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestBookEndpoint_NoSlot(t *testing.T) {
	e, _ := setupHandler(t)
	rec := doRequest(e, http.MethodPost, "/api/v1/appointments",
		`{"provider_id": "`+providerID.String()+`", "date": "2024-05-06", "start_time": "13:00", "end_time": "13:30"}`,
		patientID, "patient")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestGetEndpoint_ForeignIsNotFound(t *testing.T) {
	e, svc := setupHandler(t)
	appt := seedBooking(t, svc)

	rec := doRequest(e, http.MethodGet, "/api/v1/appointments/"+appt.ID.String(), "", otherPatientID, "patient")
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign get: status = %d, want 404: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(e, http.MethodGet, "/api/v1/appointments/"+appt.ID.String(), "", patientID, "patient")
	if rec.Code != http.StatusOK {
		t.Errorf("own get: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestCancelEndpoint(t *testing.T) {
	e, svc := setupHandler(t)
	appt := seedBooking(t, svc)

	rec := doRequest(e, http.MethodPost, "/api/v1/appointments/"+appt.ID.String()+"/cancel", "", patientID, "patient")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var cancelled Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &cancelled); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
}

func TestCancelEndpoint_ForeignIsNotFound(t *testing.T) {
	e, svc := setupHandler(t)
	appt := seedBooking(t, svc)

	rec := doRequest(e, http.MethodPost, "/api/v1/appointments/"+appt.ID.String()+"/cancel", "", otherPatientID, "patient")
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign cancel: status = %d, want 404: %s", rec.Code, rec.Body.String())
	}

	got, err := svc.Get(context.Background(), asPatient(), appt.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != StatusBooked {
		t.Errorf("status changed by rejected cancel: %q", got.Status)
	}
}

func TestPatientHistoryEndpoint_OwnOnly(t *testing.T) {
	e, svc := setupHandler(t)
	seedBooking(t, svc)

	path := "/api/v1/patients/" + patientID.String() + "/appointments"

	rec := doRequest(e, http.MethodGet, path, "", otherPatientID, "patient")
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign history: status = %d, want 403: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(e, http.MethodGet, path, "", patientID, "patient")
	if rec.Code != http.StatusOK {
		t.Fatalf("own history: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}

	rec = doRequest(e, http.MethodGet, path, "", otherPatientID, "staff")
	if rec.Code != http.StatusOK {
		t.Errorf("staff history: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestProviderDayEndpoint_OwnDayOnly(t *testing.T) {
	e, svc := setupHandler(t)
	seedBooking(t, svc)

	path := "/api/v1/providers/" + providerID.String() + "/appointments?date=2024-05-06"

	rec := doRequest(e, http.MethodGet, path, "", uuid.New(), "doctor")
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign provider day: status = %d, want 403: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(e, http.MethodGet, path, "", providerID, "doctor")
	if rec.Code != http.StatusOK {
		t.Errorf("own provider day: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}
