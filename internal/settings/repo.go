package settings

import (
	"context"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires settings persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find loads the settings row for the clinic.
func (r *Repository) Find(ctx context.Context, clinicID uuid.UUID) (*models.ClinicSettings, error) {
	var settings models.ClinicSettings
	err := r.db.WithContext(ctx).First(&settings, "clinic_id = ?", clinicID).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// FindClinic loads the tenant row itself, used to seed defaults.
func (r *Repository) FindClinic(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error) {
	var clinic models.Clinic
	err := r.db.WithContext(ctx).First(&clinic, "id = ?", clinicID).Error
	if err != nil {
		return nil, err
	}
	return &clinic, nil
}

// Create inserts a fresh settings row.
func (r *Repository) Create(ctx context.Context, settings *models.ClinicSettings) (*models.ClinicSettings, error) {
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Save persists all columns of the settings row.
func (r *Repository) Save(ctx context.Context, settings *models.ClinicSettings) (*models.ClinicSettings, error) {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
