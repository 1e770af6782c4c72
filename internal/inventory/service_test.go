package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubItemStore struct {
	items     map[uuid.UUID]*models.InventoryItem
	createErr error
	saveErr   error
}

func newStubItemStore() *stubItemStore {
	return &stubItemStore{items: map[uuid.UUID]*models.InventoryItem{}}
}

func (s *stubItemStore) List(_ context.Context, clinicID uuid.UUID, filter ListFilter, _ pagination.Params) ([]models.InventoryItem, int64, error) {
	var rows []models.InventoryItem
	for _, item := range s.items {
		if item.ClinicID != clinicID {
			continue
		}
		if filter.LowStock && item.Quantity > item.LowStockThreshold {
			continue
		}
		rows = append(rows, *item)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubItemStore) FindByID(_ context.Context, clinicID, id uuid.UUID) (*models.InventoryItem, error) {
	item, ok := s.items[id]
	if !ok || item.ClinicID != clinicID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubItemStore) Create(_ context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubItemStore) Save(_ context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubItemStore) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

func (s *stubItemStore) Bind(_ *gorm.DB) itemStore {
	return s
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newInventoryService(t *testing.T, store *stubItemStore) *service {
	t.Helper()
	svc, err := NewService(store, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC) }
	return impl
}

func TestAdjustStockAppliesDelta(t *testing.T) {
	store := newStubItemStore()
	svc := newInventoryService(t, store)
	clinicID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), ClinicID: clinicID, Name: "Gauze", Quantity: 10}
	store.items[item.ID] = item

	adjusted, err := svc.AdjustStock(context.Background(), clinicID, item.ID, -4)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if adjusted.Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", adjusted.Quantity)
	}
	if adjusted.LastRestockDate != nil {
		t.Fatalf("consumption must not stamp a restock date")
	}
}

func TestAdjustStockStampsRestockOnIncrease(t *testing.T) {
	store := newStubItemStore()
	svc := newInventoryService(t, store)
	clinicID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), ClinicID: clinicID, Name: "Gauze", Quantity: 2}
	store.items[item.ID] = item

	adjusted, err := svc.AdjustStock(context.Background(), clinicID, item.ID, 8)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if adjusted.Quantity != 10 {
		t.Fatalf("expected quantity 10, got %d", adjusted.Quantity)
	}
	if adjusted.LastRestockDate == nil {
		t.Fatalf("restock must stamp last_restock_date")
	}
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	store := newStubItemStore()
	svc := newInventoryService(t, store)
	clinicID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), ClinicID: clinicID, Name: "Gauze", Quantity: 3}
	store.items[item.ID] = item

	_, err := svc.AdjustStock(context.Background(), clinicID, item.ID, -5)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.items[item.ID].Quantity != 3 {
		t.Fatalf("failed adjustment must not change stock")
	}
}

func TestAdjustStockRejectsZeroAmount(t *testing.T) {
	store := newStubItemStore()
	svc := newInventoryService(t, store)

	_, err := svc.AdjustStock(context.Background(), uuid.New(), uuid.New(), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateItemMapsDuplicateNameToConflict(t *testing.T) {
	driverErrs := map[string]error{
		"sqlite":   errors.New("UNIQUE constraint failed: inventory_items.clinic_id, inventory_items.name"),
		"postgres": errors.New(`duplicate key value violates unique constraint "idx_inventory_clinic_name"`),
	}
	for name, driverErr := range driverErrs {
		t.Run(name, func(t *testing.T) {
			store := newStubItemStore()
			store.createErr = driverErr
			svc := newInventoryService(t, store)

			_, err := svc.CreateItem(context.Background(), uuid.New(), CreateInput{Name: "Gauze"})
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
				t.Fatalf("expected conflict error, got %v", err)
			}
		})
	}
}

func TestUpdateItemCannotTouchQuantity(t *testing.T) {
	store := newStubItemStore()
	svc := newInventoryService(t, store)
	clinicID := uuid.New()
	item := &models.InventoryItem{ID: uuid.New(), ClinicID: clinicID, Name: "Gauze", Quantity: 7}
	store.items[item.ID] = item

	threshold := 5
	updated, err := svc.UpdateItem(context.Background(), clinicID, item.ID, UpdateInput{LowStockThreshold: &threshold})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Quantity != 7 {
		t.Fatalf("general update must not change quantity, got %d", updated.Quantity)
	}
	if updated.LowStockThreshold != 5 {
		t.Fatalf("threshold not applied")
	}
}

func TestUpdateItemRejectsEmptyPayload(t *testing.T) {
	store := newStubItemStore()
	svc := newInventoryService(t, store)

	_, err := svc.UpdateItem(context.Background(), uuid.New(), uuid.New(), UpdateInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
