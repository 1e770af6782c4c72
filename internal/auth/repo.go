package auth

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires the persistence helpers backing login and registration.
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

// CreateClinic inserts the tenant root row.
func (r *Repository) CreateClinic(ctx context.Context, clinic *models.Clinic) (*models.Clinic, error) {
	if err := r.db.WithContext(ctx).Create(clinic).Error; err != nil {
		return nil, err
	}
	return clinic, nil
}

// CreateUser inserts a staff row.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSettings inserts the per-tenant settings row.
func (r *Repository) CreateSettings(ctx context.Context, settings *models.ClinicSettings) (*models.ClinicSettings, error) {
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// FindUsersByEmail returns every user matching the normalized email. Email is
// only unique per clinic, so login verifies each candidate.
func (r *Repository) FindUsersByEmail(ctx context.Context, email string) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindActiveUser loads one active staff member scoped by clinic.
func (r *Repository) FindActiveUser(ctx context.Context, clinicID, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "clinic_id = ? AND id = ? AND is_active = ?", clinicID, userID, true).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin stamps the last successful login time.
func (r *Repository) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
}
