package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTitle is used when a booking arrives without one.
const DefaultTitle = "Consultation"

// Service exposes calendar management operations.
type Service interface {
	ListAppointments(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[AppointmentDTO], error)
	GetAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID) (*AppointmentDTO, error)
	CreateAppointment(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*AppointmentDTO, error)
	UpdateAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID, input UpdateInput) (*AppointmentDTO, error)
	DeleteAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID) error
}

// ListInput carries calendar filters alongside paging.
type ListInput struct {
	Filter ListFilter
	Page   pagination.Params
}

// CreateInput holds the validated payload to book an appointment.
type CreateInput struct {
	PatientID      uuid.UUID
	DoctorID       uuid.UUID
	ReceptionistID *uuid.UUID
	Title          string
	StartTime      time.Time
	EndTime        time.Time
	Status         *enums.AppointmentStatus
	Notes          *string
}

// UpdateInput holds optional mutation values. Reschedules send only the
// times; status changes send only the status.
type UpdateInput struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Status    *enums.AppointmentStatus
	Notes     *string
}

func (u UpdateInput) empty() bool {
	return u.PatientID == nil && u.DoctorID == nil && u.Title == nil &&
		u.StartTime == nil && u.EndTime == nil && u.Status == nil && u.Notes == nil
}

type appointmentStore interface {
	List(ctx context.Context, clinicID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Appointment, int64, error)
	FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	Save(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	PatientNames(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error)
	StaffNames(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type patientLoader interface {
	FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Patient, error)
}

type staffLoader interface {
	FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo     appointmentStore
	patients patientLoader
	staff    staffLoader
}

// NewService constructs an appointment service instance.
func NewService(repo appointmentStore, patients patientLoader, staff staffLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("appointment repository required")
	}
	if patients == nil {
		return nil, fmt.Errorf("patient loader required")
	}
	if staff == nil {
		return nil, fmt.Errorf("staff loader required")
	}
	return &service{repo: repo, patients: patients, staff: staff}, nil
}

func (s *service) ListAppointments(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[AppointmentDTO], error) {
	rows, total, err := s.repo.List(ctx, clinicID, input.Filter, input.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list appointments")
	}

	patientIDs := make([]uuid.UUID, 0, len(rows))
	doctorIDs := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		patientIDs = append(patientIDs, rows[i].PatientID)
		doctorIDs = append(doctorIDs, rows[i].DoctorID)
	}

	patientNames, err := s.repo.PatientNames(ctx, clinicID, patientIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve patient names")
	}
	doctorNames, err := s.repo.StaffNames(ctx, clinicID, doctorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve doctor names")
	}

	items := make([]AppointmentDTO, 0, len(rows))
	for i := range rows {
		appt := &rows[i]
		items = append(items, *toDTO(appt, patientNames[appt.PatientID], doctorNames[appt.DoctorID]))
	}
	return &types.Page[AppointmentDTO]{
		Items:      items,
		Pagination: input.Page.PageInfo(total),
	}, nil
}

func (s *service) GetAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID) (*AppointmentDTO, error) {
	appt, err := s.findAppointment(ctx, clinicID, appointmentID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, clinicID, appt)
}

func (s *service) CreateAppointment(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*AppointmentDTO, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_time must be after start_time")
	}
	if err := s.ensurePatient(ctx, clinicID, input.PatientID); err != nil {
		return nil, err
	}
	if err := s.ensureDoctor(ctx, clinicID, input.DoctorID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultTitle
	}

	status := enums.AppointmentStatusScheduled
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid appointment status")
		}
		status = *input.Status
	}

	appt := &models.Appointment{
		ClinicID:       clinicID,
		PatientID:      input.PatientID,
		DoctorID:       input.DoctorID,
		ReceptionistID: input.ReceptionistID,
		Title:          title,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Status:         status,
		Notes:          input.Notes,
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert appointment")
	}
	return s.decorate(ctx, clinicID, created)
}

func (s *service) UpdateAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID, input UpdateInput) (*AppointmentDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	appt, err := s.findAppointment(ctx, clinicID, appointmentID)
	if err != nil {
		return nil, err
	}

	if input.PatientID != nil && *input.PatientID != appt.PatientID {
		if err := s.ensurePatient(ctx, clinicID, *input.PatientID); err != nil {
			return nil, err
		}
		appt.PatientID = *input.PatientID
	}
	if input.DoctorID != nil && *input.DoctorID != appt.DoctorID {
		if err := s.ensureDoctor(ctx, clinicID, *input.DoctorID); err != nil {
			return nil, err
		}
		appt.DoctorID = *input.DoctorID
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			title = DefaultTitle
		}
		appt.Title = title
	}
	if input.StartTime != nil {
		appt.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		appt.EndTime = *input.EndTime
	}
	if !appt.EndTime.After(appt.StartTime) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_time must be after start_time")
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid appointment status")
		}
		appt.Status = *input.Status
	}
	if input.Notes != nil {
		appt.Notes = input.Notes
	}

	saved, err := s.repo.Save(ctx, appt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update appointment")
	}
	return s.decorate(ctx, clinicID, saved)
}

func (s *service) DeleteAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID) error {
	if _, err := s.findAppointment(ctx, clinicID, appointmentID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, clinicID, appointmentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete appointment")
	}
	return nil
}

func (s *service) findAppointment(ctx context.Context, clinicID, appointmentID uuid.UUID) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, clinicID, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load appointment")
	}
	return appt, nil
}

func (s *service) ensurePatient(ctx context.Context, clinicID, patientID uuid.UUID) error {
	if _, err := s.patients.FindByID(ctx, clinicID, patientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load patient")
	}
	return nil
}

func (s *service) ensureDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) error {
	doctor, err := s.staff.FindByID(ctx, clinicID, doctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "doctor not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load doctor")
	}
	if doctor.Role != enums.StaffRoleDoctor {
		return pkgerrors.New(pkgerrors.CodeNotFound, "doctor not found")
	}
	return nil
}

func (s *service) decorate(ctx context.Context, clinicID uuid.UUID, appt *models.Appointment) (*AppointmentDTO, error) {
	patientNames, err := s.repo.PatientNames(ctx, clinicID, []uuid.UUID{appt.PatientID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve patient names")
	}
	doctorNames, err := s.repo.StaffNames(ctx, clinicID, []uuid.UUID{appt.DoctorID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve doctor names")
	}
	return toDTO(appt, patientNames[appt.PatientID], doctorNames[appt.DoctorID]), nil
}
