package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/clinicdesk-backend/api/middleware"
	"github.com/angelmondragon/clinicdesk-backend/internal/patients"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
)

type stubPatientService struct {
	created *patients.CreateInput
	dto     *patients.PatientDTO
	err     error
}

func (s *stubPatientService) ListPatients(ctx context.Context, clinicID uuid.UUID, input patients.ListInput) (*types.Page[patients.PatientDTO], error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.Page[patients.PatientDTO]{Items: []patients.PatientDTO{*s.dto}}, nil
}

func (s *stubPatientService) GetPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*patients.PatientDTO, error) {
	return s.dto, s.err
}

func (s *stubPatientService) CreatePatient(ctx context.Context, clinicID uuid.UUID, input patients.CreateInput) (*patients.PatientDTO, error) {
	s.created = &input
	return s.dto, s.err
}

func (s *stubPatientService) UpdatePatient(ctx context.Context, clinicID, patientID uuid.UUID, input patients.UpdateInput) (*patients.PatientDTO, error) {
	return s.dto, s.err
}

func (s *stubPatientService) DeletePatient(ctx context.Context, clinicID, patientID uuid.UUID) error {
	return s.err
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithTenantID(req.Context(), uuid.NewString())
	ctx = middleware.WithUserID(ctx, uuid.NewString())
	ctx = middleware.WithRole(ctx, "admin")
	return req.WithContext(ctx)
}

func TestPatientCreateSuccess(t *testing.T) {
	svc := &stubPatientService{dto: &patients.PatientDTO{ID: uuid.New(), Name: "Jordan Pax"}}
	handler := PatientCreate(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/patients", []byte(`{"name":"Jordan Pax","date_of_birth":"1990-04-12"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.created == nil {
		t.Fatalf("service never called")
	}
	if svc.created.DOB == nil || !svc.created.DOB.Equal(time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date_of_birth not parsed, got %v", svc.created.DOB)
	}

	var envelope types.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope")
	}
}

func TestPatientCreateRejectsBadDate(t *testing.T) {
	svc := &stubPatientService{dto: &patients.PatientDTO{}}
	handler := PatientCreate(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/patients", []byte(`{"name":"Jordan Pax","date_of_birth":"12/04/1990"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.created != nil {
		t.Fatalf("service should not be called on invalid payload")
	}
}

func TestPatientCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubPatientService{dto: &patients.PatientDTO{}}
	handler := PatientCreate(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/patients", []byte(`{"name":"Jordan Pax","favorite_color":"red"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field got %d", rec.Code)
	}
}

func TestPatientGetRequiresTenantContext(t *testing.T) {
	svc := &stubPatientService{dto: &patients.PatientDTO{}}
	handler := PatientGet(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without tenant context got %d", rec.Code)
	}
}

func TestPatientListMapsTypedErrors(t *testing.T) {
	svc := &stubPatientService{err: pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")}
	handler := PatientList(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
