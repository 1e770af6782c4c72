package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubAppointmentStore struct {
	appointments map[uuid.UUID]*models.Appointment
	lastFilter   ListFilter
	deleted      []uuid.UUID
}

func newStubAppointmentStore() *stubAppointmentStore {
	return &stubAppointmentStore{appointments: map[uuid.UUID]*models.Appointment{}}
}

func (s *stubAppointmentStore) List(_ context.Context, clinicID uuid.UUID, filter ListFilter, _ pagination.Params) ([]models.Appointment, int64, error) {
	s.lastFilter = filter
	var rows []models.Appointment
	for _, appt := range s.appointments {
		if appt.ClinicID != clinicID {
			continue
		}
		if filter.Start != nil && filter.End != nil {
			if !(appt.StartTime.Before(*filter.End) && appt.EndTime.After(*filter.Start)) {
				continue
			}
		}
		rows = append(rows, *appt)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubAppointmentStore) FindByID(_ context.Context, clinicID, id uuid.UUID) (*models.Appointment, error) {
	appt, ok := s.appointments[id]
	if !ok || appt.ClinicID != clinicID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *appt
	return &copied, nil
}

func (s *stubAppointmentStore) Create(_ context.Context, appt *models.Appointment) (*models.Appointment, error) {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	s.appointments[appt.ID] = appt
	return appt, nil
}

func (s *stubAppointmentStore) Save(_ context.Context, appt *models.Appointment) (*models.Appointment, error) {
	s.appointments[appt.ID] = appt
	return appt, nil
}

func (s *stubAppointmentStore) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.appointments, id)
	return nil
}

func (s *stubAppointmentStore) PatientNames(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	for _, id := range ids {
		names[id] = "Patient"
	}
	return names, nil
}

func (s *stubAppointmentStore) StaffNames(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	for _, id := range ids {
		names[id] = "Doctor"
	}
	return names, nil
}

type stubPatientLoader struct {
	patients map[uuid.UUID]*models.Patient
}

func (s *stubPatientLoader) FindByID(_ context.Context, clinicID, id uuid.UUID) (*models.Patient, error) {
	patient, ok := s.patients[id]
	if !ok || patient.ClinicID != clinicID {
		return nil, gorm.ErrRecordNotFound
	}
	return patient, nil
}

type stubStaffLoader struct {
	users map[uuid.UUID]*models.User
}

func (s *stubStaffLoader) FindByID(_ context.Context, clinicID, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok || user.ClinicID != clinicID {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fixture struct {
	svc      Service
	store    *stubAppointmentStore
	clinicID uuid.UUID
	patient  *models.Patient
	doctor   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clinicID := uuid.New()
	patient := &models.Patient{ID: uuid.New(), ClinicID: clinicID, Name: "Ana Torres"}
	doctor := &models.User{ID: uuid.New(), ClinicID: clinicID, Name: "Dr. Rivera", Role: enums.StaffRoleDoctor, IsActive: true}

	store := newStubAppointmentStore()
	svc, err := NewService(
		store,
		&stubPatientLoader{patients: map[uuid.UUID]*models.Patient{patient.ID: patient}},
		&stubStaffLoader{users: map[uuid.UUID]*models.User{doctor.ID: doctor}},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, store: store, clinicID: clinicID, patient: patient, doctor: doctor}
}

func TestCreateAppointmentDefaultsTitle(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	appt, err := f.svc.CreateAppointment(context.Background(), f.clinicID, CreateInput{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if appt.Title != DefaultTitle {
		t.Fatalf("expected default title, got %q", appt.Title)
	}
	if appt.Status != enums.AppointmentStatusScheduled {
		t.Fatalf("expected scheduled status, got %s", appt.Status)
	}
}

func TestCreateAppointmentRejectsInvertedInterval(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateAppointment(context.Background(), f.clinicID, CreateInput{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   start,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero-length slot, got %v", err)
	}
}

func TestCreateAppointmentRequiresDoctorRole(t *testing.T) {
	f := newFixture(t)
	f.doctor.Role = enums.StaffRoleReception
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateAppointment(context.Background(), f.clinicID, CreateInput{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("non-doctor staff must read as not found, got %v", err)
	}
}

func TestCreateAppointmentRejectsCrossTenantPatient(t *testing.T) {
	f := newFixture(t)
	f.patient.ClinicID = uuid.New()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateAppointment(context.Background(), f.clinicID, CreateInput{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant patient must read as not found, got %v", err)
	}
}

func TestListAppointmentsOverlapIsHalfOpen(t *testing.T) {
	f := newFixture(t)
	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	// Ends exactly at the window start: touching, not overlapping.
	f.store.appointments[uuid.New()] = &models.Appointment{
		ID: uuid.New(), ClinicID: f.clinicID, PatientID: f.patient.ID, DoctorID: f.doctor.ID,
		StartTime: dayStart.Add(-time.Hour), EndTime: dayStart,
	}
	// Straddles the window start.
	inside := &models.Appointment{
		ID: uuid.New(), ClinicID: f.clinicID, PatientID: f.patient.ID, DoctorID: f.doctor.ID,
		StartTime: dayStart.Add(-time.Hour), EndTime: dayStart.Add(time.Hour),
	}
	f.store.appointments[inside.ID] = inside
	// Starts exactly at the window end: touching, not overlapping.
	f.store.appointments[uuid.New()] = &models.Appointment{
		ID: uuid.New(), ClinicID: f.clinicID, PatientID: f.patient.ID, DoctorID: f.doctor.ID,
		StartTime: dayEnd, EndTime: dayEnd.Add(time.Hour),
	}

	page, err := f.svc.ListAppointments(context.Background(), f.clinicID, ListInput{
		Filter: ListFilter{Start: &dayStart, End: &dayEnd},
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected exactly the straddling appointment, got %d", len(page.Items))
	}
	if page.Items[0].ID != inside.ID {
		t.Fatalf("unexpected appointment in window")
	}
	if page.Items[0].PatientName == "" || page.Items[0].DoctorName == "" {
		t.Fatalf("expected joined display names")
	}
}

func TestUpdateAppointmentRevalidatesInterval(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{
		ID: uuid.New(), ClinicID: f.clinicID, PatientID: f.patient.ID, DoctorID: f.doctor.ID,
		Title: DefaultTitle, StartTime: start, EndTime: start.Add(time.Hour),
		Status: enums.AppointmentStatusScheduled,
	}
	f.store.appointments[appt.ID] = appt

	// Drag-and-drop reschedule sends only the new start, past the current end.
	badStart := start.Add(2 * time.Hour)
	_, err := f.svc.UpdateAppointment(context.Background(), f.clinicID, appt.ID, UpdateInput{StartTime: &badStart})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	newStart := start.Add(30 * time.Minute)
	updated, err := f.svc.UpdateAppointment(context.Background(), f.clinicID, appt.ID, UpdateInput{StartTime: &newStart})
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if !updated.StartTime.Equal(newStart) {
		t.Fatalf("start not updated")
	}
}

func TestUpdateAppointmentRejectsEmptyPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateAppointment(context.Background(), f.clinicID, uuid.New(), UpdateInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
