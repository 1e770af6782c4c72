package inventory

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ItemDTO is the API representation of an inventory item.
type ItemDTO struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Category          *string    `json:"category,omitempty"`
	Quantity          int        `json:"quantity"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	LowStock          bool       `json:"low_stock"`
	Supplier          *string    `json:"supplier,omitempty"`
	LastRestockDate   *time.Time `json:"last_restock_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toDTO(item *models.InventoryItem) *ItemDTO {
	if item == nil {
		return nil
	}
	return &ItemDTO{
		ID:                item.ID,
		Name:              item.Name,
		Category:          item.Category,
		Quantity:          item.Quantity,
		LowStockThreshold: item.LowStockThreshold,
		LowStock:          item.Quantity <= item.LowStockThreshold,
		Supplier:          item.Supplier,
		LastRestockDate:   item.LastRestockDate,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}
