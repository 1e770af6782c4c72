package users

import (
	"context"
	"strings"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires staff persistence helpers.
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

// List returns one page of staff for the clinic with optional role and
// substring filters.
func (r *Repository) List(ctx context.Context, clinicID uuid.UUID, role *enums.StaffRole, search string, params pagination.Params) ([]models.User, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.User{}).Where("clinic_id = ?", clinicID)
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.User
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

// FindByID loads one staff member scoped by clinic.
func (r *Repository) FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "clinic_id = ? AND id = ?", clinicID, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByID loads one active staff member scoped by clinic.
func (r *Repository) FindActiveByID(ctx context.Context, clinicID, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "clinic_id = ? AND id = ? AND is_active = ?", clinicID, id, true).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail resolves users by normalized email across all clinics. Email is
// only unique per clinic, so login has to consider every match.
func (r *Repository) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
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

// Create inserts the staff row.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Save persists all fields of the staff row.
func (r *Repository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the staff row scoped by clinic.
func (r *Repository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&models.User{}).Error
}
