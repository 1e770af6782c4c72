package appointments

import (
	"context"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the appointment list query.
type ListFilter struct {
	// Start/End select every appointment overlapping the half-open
	// window [Start, End). Both must be set for the window to apply.
	Start     *time.Time
	End       *time.Time
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    *enums.AppointmentStatus
}

// Repository wires appointment persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns one page of appointments for the clinic. The range filter is
// an interval overlap test: exact-touching appointments do not match.
func (r *Repository) List(ctx context.Context, clinicID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Appointment, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("clinic_id = ?", clinicID)
	if filter.Start != nil && filter.End != nil {
		query = query.Where("start_time < ? AND end_time > ?", *filter.End, *filter.Start)
	}
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Appointment
	err := query.
		Order("start_time ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads one appointment scoped by clinic.
func (r *Repository) FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).
		First(&appt, "clinic_id = ? AND id = ?", clinicID, id).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Create inserts the appointment row.
func (r *Repository) Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	if err := r.db.WithContext(ctx).Create(appt).Error; err != nil {
		return nil, err
	}
	return appt, nil
}

// Save persists all fields of the appointment row.
func (r *Repository) Save(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	if err := r.db.WithContext(ctx).Save(appt).Error; err != nil {
		return nil, err
	}
	return appt, nil
}

// Delete removes the appointment row scoped by clinic.
func (r *Repository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&models.Appointment{}).Error
}

// PatientNames resolves the display names of the given patients in one query.
func (r *Repository) PatientNames(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return namesByID(ctx, r.db, &models.Patient{}, clinicID, ids)
}

// StaffNames resolves the display names of the given staff members in one query.
func (r *Repository) StaffNames(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return namesByID(ctx, r.db, &models.User{}, clinicID, ids)
}

func namesByID(ctx context.Context, db *gorm.DB, model any, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	err := db.WithContext(ctx).
		Model(model).
		Select("id", "name").
		Where("clinic_id = ? AND id IN ?", clinicID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
