package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	"github.com/angelmondragon/clinicdesk-backend/api/validators"
	"github.com/angelmondragon/clinicdesk-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
)

// InventoryList returns the clinic's stock catalog.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := inventory.ListFilter{
			Search:   validators.ParseQueryString(r, "search", ""),
			LowStock: validators.ParseQueryString(r, "low_stock", "") == "true",
		}
		if raw := validators.ParseQueryString(r, "category", ""); raw != "" {
			filter.Category = &raw
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListItems(r.Context(), clinicID, inventory.ListInput{
			Filter: filter,
			Page:   pagination.Params{Page: page, Limit: limit},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "inventory", result)
	}
}

// InventoryGet returns one stock item.
func InventoryGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), clinicID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "inventory item", item)
	}
}

type inventoryCreateRequest struct {
	Name              string  `json:"name" validate:"required,min=1,max=200"`
	Category          *string `json:"category,omitempty"`
	Quantity          int     `json:"quantity" validate:"gte=0"`
	LowStockThreshold int     `json:"low_stock_threshold" validate:"gte=0"`
	Supplier          *string `json:"supplier,omitempty"`
}

func (req inventoryCreateRequest) toInput() inventory.CreateInput {
	return inventory.CreateInput{
		Name:              req.Name,
		Category:          req.Category,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		Supplier:          req.Supplier,
	}
}

// InventoryCreate registers a new stock item with its opening quantity.
func InventoryCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload inventoryCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), clinicID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "inventory item created", item)
	}
}

// inventoryUpdateRequest deliberately has no quantity field; unknown fields
// are rejected at decode time, so a payload trying to set quantity through
// the general update fails validation.
type inventoryUpdateRequest struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category          *string `json:"category,omitempty"`
	LowStockThreshold *int    `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	Supplier          *string `json:"supplier,omitempty"`
}

func (req inventoryUpdateRequest) toInput() inventory.UpdateInput {
	return inventory.UpdateInput{
		Name:              req.Name,
		Category:          req.Category,
		LowStockThreshold: req.LowStockThreshold,
		Supplier:          req.Supplier,
	}
}

// InventoryUpdate patches item metadata.
func InventoryUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload inventoryUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), clinicID, itemID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "inventory item updated", item)
	}
}

// InventoryDelete removes a stock item.
func InventoryDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), clinicID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "inventory item deleted", nil)
	}
}

type stockAdjustRequest struct {
	Amount int     `json:"amount" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// InventoryAdjustStock applies a signed delta to the on-hand quantity. This
// is the only write path for stock levels.
func InventoryAdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AdjustStock(r.Context(), clinicID, itemID, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Adjustment notes are not persisted on the item; they land in the
		// request log for audit trails.
		if logg != nil && payload.Notes != nil && *payload.Notes != "" {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"item_id": itemID.String(),
				"amount":  payload.Amount,
				"notes":   *payload.Notes,
			})
			logg.Info(ctx, "stock adjustment note")
		}

		responses.WriteSuccess(w, "stock adjusted", item)
	}
}
