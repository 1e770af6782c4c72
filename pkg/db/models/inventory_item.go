package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryItem tracks on-hand stock. Quantity is only ever mutated through
// the dedicated adjustment path, never through the general update.
type InventoryItem struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClinicID          uuid.UUID  `gorm:"column:clinic_id;type:uuid;not null;index;uniqueIndex:idx_inventory_clinic_name"`
	Name              string     `gorm:"column:name;not null;uniqueIndex:idx_inventory_clinic_name"`
	Category          *string    `gorm:"column:category"`
	Quantity          int        `gorm:"column:quantity;not null;default:0"`
	LowStockThreshold int        `gorm:"column:low_stock_threshold;not null;default:0"`
	Supplier          *string    `gorm:"column:supplier"`
	LastRestockDate   *time.Time `gorm:"column:last_restock_date"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *InventoryItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
