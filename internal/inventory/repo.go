package inventory

import (
	"context"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the inventory list query.
type ListFilter struct {
	Search   string
	Category *string
	LowStock bool
}

// Repository wires inventory persistence helpers.
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

// List returns one page of inventory items for the clinic.
func (r *Repository) List(ctx context.Context, clinicID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.InventoryItem, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("clinic_id = ?", clinicID)
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.LowStock {
		query = query.Where("quantity <= low_stock_threshold")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryItem
	err := query.
		Order("name ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads one item scoped by clinic.
func (r *Repository) FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		First(&item, "clinic_id = ? AND id = ?", clinicID, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new inventory item.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Save persists all columns of the item.
func (r *Repository) Save(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item scoped by clinic.
func (r *Repository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&models.InventoryItem{}).Error
}

// CountLowStock reports how many items sit at or below their threshold.
func (r *Repository) CountLowStock(ctx context.Context, clinicID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("clinic_id = ? AND quantity <= low_stock_threshold", clinicID).
		Count(&total).Error
	return total, err
}
