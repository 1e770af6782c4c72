package dashboard

import (
	"context"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceRow is the slim projection used for revenue aggregation.
type InvoiceRow struct {
	IssueDate   time.Time
	TotalAmount decimal.Decimal
}

// Repository runs the read-only aggregate queries behind the dashboard.
// Sums and day buckets are computed in Go so the same SQL runs unchanged
// on SQLite and Postgres.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CountPatients returns the tenant's total patient count.
func (r *Repository) CountPatients(ctx context.Context, clinicID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("clinic_id = ?", clinicID).
		Count(&total).Error
	return total, err
}

// CountAppointmentsBetween counts appointments starting in [start, end).
func (r *Repository) CountAppointmentsBetween(ctx context.Context, clinicID uuid.UUID, start, end time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("clinic_id = ? AND start_time >= ? AND start_time < ?", clinicID, start, end).
		Count(&total).Error
	return total, err
}

// AppointmentStartsBetween returns the start times of appointments in [start, end).
func (r *Repository) AppointmentStartsBetween(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]time.Time, error) {
	var rows []struct {
		StartTime time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("start_time").
		Where("clinic_id = ? AND start_time >= ? AND start_time < ?", clinicID, start, end).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	starts := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		starts = append(starts, row.StartTime)
	}
	return starts, nil
}

// PaidInvoicesBetween returns paid invoices issued in [start, end).
func (r *Repository) PaidInvoicesBetween(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]InvoiceRow, error) {
	var rows []InvoiceRow
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("issue_date", "total_amount").
		Where("clinic_id = ? AND status = ? AND issue_date >= ? AND issue_date < ?",
			clinicID, enums.InvoiceStatusPaid, start, end).
		Find(&rows).Error
	return rows, err
}

// PendingInvoices returns the open invoice rows awaiting payment, overdue
// included.
func (r *Repository) PendingInvoices(ctx context.Context, clinicID uuid.UUID) ([]InvoiceRow, error) {
	var rows []InvoiceRow
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("issue_date", "total_amount").
		Where("clinic_id = ? AND status IN ?",
			clinicID, []enums.InvoiceStatus{enums.InvoiceStatusPending, enums.InvoiceStatusOverdue}).
		Find(&rows).Error
	return rows, err
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
