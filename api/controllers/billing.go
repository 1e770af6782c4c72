package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	"github.com/angelmondragon/clinicdesk-backend/api/validators"
	"github.com/angelmondragon/clinicdesk-backend/internal/billing"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
)

// InvoiceList returns the clinic's invoices with optional status and patient
// filters.
func InvoiceList(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter billing.ListFilter
		if raw := validators.ParseQueryString(r, "status", ""); raw != "" {
			status, perr := enums.ParseInvoiceStatus(raw)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status"))
				return
			}
			filter.Status = &status
		}
		if raw := validators.ParseQueryString(r, "patient_id", ""); raw != "" {
			patientID, err := validators.ParsePathUUID(raw, "patient_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.PatientID = &patientID
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

		result, err := svc.ListInvoices(r.Context(), clinicID, billing.ListInput{
			Filter: filter,
			Page:   pagination.Params{Page: page, Limit: limit},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "invoices", result)
	}
}

// InvoiceGet returns one invoice with its line items.
func InvoiceGet(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoiceID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GetInvoice(r.Context(), clinicID, invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "invoice", invoice)
	}
}

type invoiceItemRequest struct {
	Description string `json:"description" validate:"required,min=1,max=300"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	UnitPrice   string `json:"unit_price" validate:"required"`
}

func (req invoiceItemRequest) toInput() (billing.ItemInput, error) {
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return billing.ItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be a decimal string")
	}
	return billing.ItemInput{
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   price,
	}, nil
}

type invoiceCreateRequest struct {
	PatientID string               `json:"patient_id" validate:"required,uuid"`
	IssueDate string               `json:"issue_date" validate:"required"`
	DueDate   string               `json:"due_date" validate:"required"`
	Status    *string              `json:"status,omitempty"`
	Notes     *string              `json:"notes,omitempty"`
	Items     []invoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (req invoiceCreateRequest) toInput() (billing.CreateInput, error) {
	patientID, err := validators.ParsePathUUID(req.PatientID, "patient_id")
	if err != nil {
		return billing.CreateInput{}, err
	}
	issue, err := parseOptionalDate(&req.IssueDate, "issue_date")
	if err != nil {
		return billing.CreateInput{}, err
	}
	due, err := parseOptionalDate(&req.DueDate, "due_date")
	if err != nil {
		return billing.CreateInput{}, err
	}

	input := billing.CreateInput{
		PatientID: patientID,
		IssueDate: *issue,
		DueDate:   *due,
		Notes:     req.Notes,
	}
	if req.Status != nil {
		status, perr := enums.ParseInvoiceStatus(*req.Status)
		if perr != nil {
			return billing.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status")
		}
		input.Status = &status
	}
	for _, item := range req.Items {
		parsed, err := item.toInput()
		if err != nil {
			return billing.CreateInput{}, err
		}
		input.Items = append(input.Items, parsed)
	}
	return input, nil
}

// InvoiceCreate issues a new invoice with its line items.
func InvoiceCreate(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload invoiceCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.CreateInvoice(r.Context(), clinicID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "invoice created", invoice)
	}
}

type invoiceUpdateRequest struct {
	IssueDate *string               `json:"issue_date,omitempty"`
	DueDate   *string               `json:"due_date,omitempty"`
	Status    *string               `json:"status,omitempty"`
	Notes     *string               `json:"notes,omitempty"`
	Items     *[]invoiceItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

func (req invoiceUpdateRequest) toInput() (billing.UpdateInput, error) {
	var input billing.UpdateInput

	issue, err := parseOptionalDate(req.IssueDate, "issue_date")
	if err != nil {
		return billing.UpdateInput{}, err
	}
	input.IssueDate = issue
	due, err := parseOptionalDate(req.DueDate, "due_date")
	if err != nil {
		return billing.UpdateInput{}, err
	}
	input.DueDate = due

	if req.Status != nil {
		status, perr := enums.ParseInvoiceStatus(*req.Status)
		if perr != nil {
			return billing.UpdateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status")
		}
		input.Status = &status
	}
	input.Notes = req.Notes

	if req.Items != nil {
		items := make([]billing.ItemInput, 0, len(*req.Items))
		for _, item := range *req.Items {
			parsed, err := item.toInput()
			if err != nil {
				return billing.UpdateInput{}, err
			}
			items = append(items, parsed)
		}
		input.Items = &items
	}
	return input, nil
}

// InvoiceUpdate patches invoice fields; sending items replaces the full line
// set and recomputes the total.
func InvoiceUpdate(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoiceID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload invoiceUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.UpdateInvoice(r.Context(), clinicID, invoiceID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "invoice updated", invoice)
	}
}

// InvoiceDelete removes an invoice and its items.
func InvoiceDelete(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoiceID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteInvoice(r.Context(), clinicID, invoiceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "invoice deleted", nil)
	}
}

// InvoicePDF streams the printable invoice document.
func InvoicePDF(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoiceID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, filename, err := svc.RenderInvoicePDF(r.Context(), clinicID, invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil && logg != nil {
			logg.Error(r.Context(), "stream invoice pdf", err)
		}
	}
}
