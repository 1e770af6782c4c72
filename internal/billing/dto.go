package billing

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceDTO is the API representation of an invoice.
type InvoiceDTO struct {
	ID            uuid.UUID           `json:"id"`
	PatientID     uuid.UUID           `json:"patient_id"`
	PatientName   string              `json:"patient_name,omitempty"`
	InvoiceNumber string              `json:"invoice_number"`
	IssueDate     time.Time           `json:"issue_date"`
	DueDate       time.Time           `json:"due_date"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Status        enums.InvoiceStatus `json:"status"`
	Notes         *string             `json:"notes,omitempty"`
	Items         []InvoiceItemDTO    `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// InvoiceItemDTO is one billable line on an invoice.
type InvoiceItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

func toDTO(invoice *models.Invoice, patientName string, includeItems bool) *InvoiceDTO {
	if invoice == nil {
		return nil
	}
	dto := &InvoiceDTO{
		ID:            invoice.ID,
		PatientID:     invoice.PatientID,
		PatientName:   patientName,
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     invoice.IssueDate,
		DueDate:       invoice.DueDate,
		TotalAmount:   invoice.TotalAmount,
		Status:        invoice.Status,
		Notes:         invoice.Notes,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
	if includeItems {
		dto.Items = make([]InvoiceItemDTO, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			dto.Items = append(dto.Items, InvoiceItemDTO{
				ID:          item.ID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Total:       item.Total,
			})
		}
	}
	return dto
}
