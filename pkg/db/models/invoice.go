package models

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice carries a per-tenant-per-year sequential number and a total that
// must always equal the sum of its item totals.
type Invoice struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ClinicID      uuid.UUID           `gorm:"column:clinic_id;type:uuid;not null;index;uniqueIndex:idx_invoices_clinic_number"`
	PatientID     uuid.UUID           `gorm:"column:patient_id;type:uuid;not null;index"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null;uniqueIndex:idx_invoices_clinic_number"`
	IssueDate     time.Time           `gorm:"column:issue_date;not null"`
	DueDate       time.Time           `gorm:"column:due_date;not null"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:decimal(12,2);not null"`
	Status        enums.InvoiceStatus `gorm:"column:status;not null;default:'pending'"`
	Notes         *string             `gorm:"column:notes"`
	Items         []InvoiceItem       `gorm:"foreignKey:InvoiceID"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
