package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgdb "github.com/angelmondragon/clinicdesk-backend/pkg/db"
	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes stock management operations.
type Service interface {
	ListItems(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[ItemDTO], error)
	GetItem(ctx context.Context, clinicID, itemID uuid.UUID) (*ItemDTO, error)
	CreateItem(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, clinicID, itemID uuid.UUID, input UpdateInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, clinicID, itemID uuid.UUID) error
	AdjustStock(ctx context.Context, clinicID, itemID uuid.UUID, amount int) (*ItemDTO, error)
}

// ListInput carries list filters alongside paging.
type ListInput struct {
	Filter ListFilter
	Page   pagination.Params
}

// CreateInput holds the validated payload to register an item.
type CreateInput struct {
	Name              string
	Category          *string
	Quantity          int
	LowStockThreshold int
	Supplier          *string
}

// UpdateInput holds optional mutation values. Quantity is deliberately
// absent; stock moves only through AdjustStock.
type UpdateInput struct {
	Name              *string
	Category          *string
	LowStockThreshold *int
	Supplier          *string
}

func (u UpdateInput) empty() bool {
	return u.Name == nil && u.Category == nil && u.LowStockThreshold == nil && u.Supplier == nil
}

type itemStore interface {
	List(ctx context.Context, clinicID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.InventoryItem, int64, error)
	FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	Save(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	Bind(tx *gorm.DB) itemStore
}

// Bind adapts WithTx to the store interface used by the service.
func (r *Repository) Bind(tx *gorm.DB) itemStore {
	return r.WithTx(tx)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo itemStore
	db   txRunner
	now  func() time.Time
}

// NewService constructs an inventory service instance.
func NewService(repo itemStore, db txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, db: db, now: time.Now}, nil
}

func (s *service) ListItems(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[ItemDTO], error) {
	rows, total, err := s.repo.List(ctx, clinicID, input.Filter, input.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory")
	}

	items := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *toDTO(&rows[i]))
	}
	return &types.Page[ItemDTO]{
		Items:      items,
		Pagination: input.Page.PageInfo(total),
	}, nil
}

func (s *service) GetItem(ctx context.Context, clinicID, itemID uuid.UUID) (*ItemDTO, error) {
	item, err := s.findItem(ctx, clinicID, itemID)
	if err != nil {
		return nil, err
	}
	return toDTO(item), nil
}

func (s *service) CreateItem(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if input.LowStockThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold must not be negative")
	}

	item := &models.InventoryItem{
		ClinicID:          clinicID,
		Name:              name,
		Category:          input.Category,
		Quantity:          input.Quantity,
		LowStockThreshold: input.LowStockThreshold,
		Supplier:          input.Supplier,
	}
	if input.Quantity > 0 {
		now := s.now().UTC()
		item.LastRestockDate = &now
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_inventory_clinic_name", "inventory_items.name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an item with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inventory item")
	}
	return toDTO(created), nil
}

func (s *service) UpdateItem(ctx context.Context, clinicID, itemID uuid.UUID, input UpdateInput) (*ItemDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	item, err := s.findItem(ctx, clinicID, itemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		item.Name = name
	}
	if input.Category != nil {
		item.Category = input.Category
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold must not be negative")
		}
		item.LowStockThreshold = *input.LowStockThreshold
	}
	if input.Supplier != nil {
		item.Supplier = input.Supplier
	}

	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_inventory_clinic_name", "inventory_items.name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an item with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inventory item")
	}
	return toDTO(saved), nil
}

func (s *service) DeleteItem(ctx context.Context, clinicID, itemID uuid.UUID) error {
	if _, err := s.findItem(ctx, clinicID, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, clinicID, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory item")
	}
	return nil
}

// AdjustStock applies a signed delta to the on-hand quantity. The
// read-modify-write runs in one transaction so concurrent adjustments
// cannot lose updates.
func (s *service) AdjustStock(ctx context.Context, clinicID, itemID uuid.UUID, amount int) (*ItemDTO, error) {
	if amount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be zero")
	}

	var adjusted *models.InventoryItem
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.Bind(tx)

		item, err := txRepo.FindByID(ctx, clinicID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
		}

		next := item.Quantity + amount
		if next < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock for adjustment")
		}
		item.Quantity = next
		if amount > 0 {
			now := s.now().UTC()
			item.LastRestockDate = &now
		}

		adjusted, err = txRepo.Save(ctx, item)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: adjust inventory item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDTO(adjusted), nil
}

func (s *service) findItem(ctx context.Context, clinicID, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, clinicID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
	}
	return item, nil
}
