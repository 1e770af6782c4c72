package patients

import (
	"context"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires patient persistence helpers.
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

// List returns one page of patients for the clinic, optionally filtered by a
// name/email substring.
func (r *Repository) List(ctx context.Context, clinicID uuid.UUID, search string, params pagination.Params) ([]models.Patient, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Patient{}).Where("clinic_id = ?", clinicID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Patient
	err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads one patient scoped by clinic.
func (r *Repository) FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		First(&patient, "clinic_id = ? AND id = ?", clinicID, id).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// Create inserts the patient row.
func (r *Repository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return nil, err
	}
	return patient, nil
}

// Save persists all fields of the patient row.
func (r *Repository) Save(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if err := r.db.WithContext(ctx).Save(patient).Error; err != nil {
		return nil, err
	}
	return patient, nil
}

// Delete removes the patient row scoped by clinic.
func (r *Repository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&models.Patient{}).Error
}
