package patients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes patient record management operations.
type Service interface {
	ListPatients(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[PatientDTO], error)
	GetPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*PatientDTO, error)
	CreatePatient(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*PatientDTO, error)
	UpdatePatient(ctx context.Context, clinicID, patientID uuid.UUID, input UpdateInput) (*PatientDTO, error)
	DeletePatient(ctx context.Context, clinicID, patientID uuid.UUID) error
}

// ListInput carries list filters alongside paging.
type ListInput struct {
	Search string
	Page   pagination.Params
}

// CreateInput holds the validated payload to register a patient.
type CreateInput struct {
	Name       string
	Email      *string
	Phone      *string
	DOB        *time.Time
	Gender     *string
	Address    *string
	BloodGroup *string
	Notes      *string
}

// UpdateInput holds optional mutation values for a patient.
type UpdateInput struct {
	Name       *string
	Email      *string
	Phone      *string
	DOB        *time.Time
	Gender     *string
	Address    *string
	BloodGroup *string
	Notes      *string
}

func (u UpdateInput) empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.DOB == nil &&
		u.Gender == nil && u.Address == nil && u.BloodGroup == nil && u.Notes == nil
}

type patientStore interface {
	List(ctx context.Context, clinicID uuid.UUID, search string, params pagination.Params) ([]models.Patient, int64, error)
	FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	Save(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
}

type service struct {
	repo patientStore
}

// NewService constructs a patient service instance.
func NewService(repo patientStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("patient repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListPatients(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[PatientDTO], error) {
	rows, total, err := s.repo.List(ctx, clinicID, strings.TrimSpace(input.Search), input.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list patients")
	}

	items := make([]PatientDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *toDTO(&rows[i]))
	}
	return &types.Page[PatientDTO]{
		Items:      items,
		Pagination: input.Page.PageInfo(total),
	}, nil
}

func (s *service) GetPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*PatientDTO, error) {
	patient, err := s.findPatient(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}
	return toDTO(patient), nil
}

func (s *service) CreatePatient(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*PatientDTO, error) {
	patient := &models.Patient{
		ClinicID:   clinicID,
		Name:       strings.TrimSpace(input.Name),
		Email:      input.Email,
		Phone:      input.Phone,
		DOB:        input.DOB,
		Gender:     input.Gender,
		Address:    input.Address,
		BloodGroup: input.BloodGroup,
		Notes:      input.Notes,
	}

	created, err := s.repo.Create(ctx, patient)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert patient")
	}
	return toDTO(created), nil
}

func (s *service) UpdatePatient(ctx context.Context, clinicID, patientID uuid.UUID, input UpdateInput) (*PatientDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	patient, err := s.findPatient(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		patient.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		patient.Email = input.Email
	}
	if input.Phone != nil {
		patient.Phone = input.Phone
	}
	if input.DOB != nil {
		patient.DOB = input.DOB
	}
	if input.Gender != nil {
		patient.Gender = input.Gender
	}
	if input.Address != nil {
		patient.Address = input.Address
	}
	if input.BloodGroup != nil {
		patient.BloodGroup = input.BloodGroup
	}
	if input.Notes != nil {
		patient.Notes = input.Notes
	}

	saved, err := s.repo.Save(ctx, patient)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update patient")
	}
	return toDTO(saved), nil
}

func (s *service) DeletePatient(ctx context.Context, clinicID, patientID uuid.UUID) error {
	if _, err := s.findPatient(ctx, clinicID, patientID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, clinicID, patientID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete patient")
	}
	return nil
}

func (s *service) findPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error) {
	patient, err := s.repo.FindByID(ctx, clinicID, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load patient")
	}
	return patient, nil
}
