package patients

import (
	"context"
	"testing"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubPatientStore struct {
	patients map[uuid.UUID]*models.Patient
	saved    *models.Patient
	deleted  []uuid.UUID
	listErr  error
}

func newStubPatientStore() *stubPatientStore {
	return &stubPatientStore{patients: map[uuid.UUID]*models.Patient{}}
}

func (s *stubPatientStore) List(_ context.Context, clinicID uuid.UUID, _ string, _ pagination.Params) ([]models.Patient, int64, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	var rows []models.Patient
	for _, patient := range s.patients {
		if patient.ClinicID == clinicID {
			rows = append(rows, *patient)
		}
	}
	return rows, int64(len(rows)), nil
}

func (s *stubPatientStore) FindByID(_ context.Context, clinicID, id uuid.UUID) (*models.Patient, error) {
	patient, ok := s.patients[id]
	if !ok || patient.ClinicID != clinicID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *patient
	return &copied, nil
}

func (s *stubPatientStore) Create(_ context.Context, patient *models.Patient) (*models.Patient, error) {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	s.patients[patient.ID] = patient
	return patient, nil
}

func (s *stubPatientStore) Save(_ context.Context, patient *models.Patient) (*models.Patient, error) {
	s.saved = patient
	s.patients[patient.ID] = patient
	return patient, nil
}

func (s *stubPatientStore) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.patients, id)
	return nil
}

func TestGetPatientCrossTenantIsNotFound(t *testing.T) {
	store := newStubPatientStore()
	clinicA := uuid.New()
	clinicB := uuid.New()
	patient := &models.Patient{ID: uuid.New(), ClinicID: clinicA, Name: "Ana Torres"}
	store.patients[patient.ID] = patient

	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.GetPatient(context.Background(), clinicB, patient.ID); err == nil {
		t.Fatalf("expected error for cross-tenant read")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := svc.GetPatient(context.Background(), clinicA, patient.ID); err != nil {
		t.Fatalf("same-tenant read failed: %v", err)
	}
}

func TestUpdatePatientRejectsEmptyPayload(t *testing.T) {
	store := newStubPatientStore()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.UpdatePatient(context.Background(), uuid.New(), uuid.New(), UpdateInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.saved != nil {
		t.Fatalf("no save should happen on empty payload")
	}
}

func TestUpdatePatientAppliesOnlyProvidedFields(t *testing.T) {
	store := newStubPatientStore()
	clinicID := uuid.New()
	email := "ana@example.com"
	patient := &models.Patient{ID: uuid.New(), ClinicID: clinicID, Name: "Ana Torres", Email: &email}
	store.patients[patient.ID] = patient

	svc, _ := NewService(store)

	newName := "Ana M. Torres"
	updated, err := svc.UpdatePatient(context.Background(), clinicID, patient.ID, UpdateInput{Name: &newName})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.Email == nil || *updated.Email != email {
		t.Fatalf("email should be untouched, got %v", updated.Email)
	}
}

func TestDeletePatientChecksExistenceFirst(t *testing.T) {
	store := newStubPatientStore()
	svc, _ := NewService(store)

	err := svc.DeletePatient(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("delete should not run for a missing row")
	}
}
