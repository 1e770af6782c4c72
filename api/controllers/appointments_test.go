package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/clinicdesk-backend/internal/appointments"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
)

type stubAppointmentService struct {
	listInput *appointments.ListInput
}

func (s *stubAppointmentService) ListAppointments(_ context.Context, _ uuid.UUID, input appointments.ListInput) (*types.Page[appointments.AppointmentDTO], error) {
	s.listInput = &input
	return &types.Page[appointments.AppointmentDTO]{Items: []appointments.AppointmentDTO{}}, nil
}

func (s *stubAppointmentService) GetAppointment(_ context.Context, _, _ uuid.UUID) (*appointments.AppointmentDTO, error) {
	return nil, nil
}

func (s *stubAppointmentService) CreateAppointment(_ context.Context, _ uuid.UUID, _ appointments.CreateInput) (*appointments.AppointmentDTO, error) {
	return nil, nil
}

func (s *stubAppointmentService) UpdateAppointment(_ context.Context, _, _ uuid.UUID, _ appointments.UpdateInput) (*appointments.AppointmentDTO, error) {
	return nil, nil
}

func (s *stubAppointmentService) DeleteAppointment(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func TestAppointmentListRejectsHalfSpecifiedWindow(t *testing.T) {
	for _, target := range []string{
		"/api/v1/appointments?start=2026-05-01",
		"/api/v1/appointments?end=2026-05-08",
	} {
		svc := &stubAppointmentService{}
		handler := AppointmentList(svc, nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodGet, target, nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d body=%s", target, rec.Code, rec.Body.String())
		}
		if svc.listInput != nil {
			t.Fatalf("%s: service must not be reached", target)
		}
	}
}

func TestAppointmentListPassesFullWindow(t *testing.T) {
	svc := &stubAppointmentService{}
	handler := AppointmentList(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/appointments?start=2026-05-01&end=2026-05-08", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.listInput == nil || svc.listInput.Filter.Start == nil || svc.listInput.Filter.End == nil {
		t.Fatalf("expected both bounds forwarded, got %+v", svc.listInput)
	}
}
