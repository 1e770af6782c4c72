package billing

import (
	"context"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the invoice list query.
type ListFilter struct {
	Status    *enums.InvoiceStatus
	PatientID *uuid.UUID
}

// Repository wires invoice persistence helpers.
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

// List returns one page of invoices for the clinic without their items.
func (r *Repository) List(ctx context.Context, clinicID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Invoice, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("clinic_id = ?", clinicID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Invoice
	err := query.
		Order("invoice_number DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads one invoice with its items, scoped by clinic.
func (r *Repository) FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&invoice, "clinic_id = ? AND id = ?", clinicID, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MaxInvoiceNumber returns the lexicographically-last invoice number with the
// given prefix, or empty when the tenant has none for the year yet.
func (r *Repository) MaxInvoiceNumber(ctx context.Context, clinicID uuid.UUID, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("invoice_number").
		Where("clinic_id = ? AND invoice_number LIKE ?", clinicID, prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Scan(&number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

// Create inserts the invoice row together with its item rows.
func (r *Repository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Save persists the invoice scalar columns; item rows are managed separately.
func (r *Repository) Save(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// ReplaceItems removes every existing item and inserts the new set.
func (r *Repository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []models.InvoiceItem) error {
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// Delete removes the invoice scoped by clinic; items cascade via schema.
func (r *Repository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&models.Invoice{}).Error
}

// MarkOverdue flips pending invoices past their due date, across all tenants.
func (r *Repository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", enums.InvoiceStatusPending, now).
		Update("status", enums.InvoiceStatusOverdue)
	return result.RowsAffected, result.Error
}

// FindPatient loads the invoice's patient scoped by clinic.
func (r *Repository) FindPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		First(&patient, "clinic_id = ? AND id = ?", clinicID, patientID).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// PatientNames resolves the display names of the given patients in one query.
func (r *Repository) PatientNames(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	err := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Select("id", "name").
		Where("clinic_id = ? AND id IN ?", clinicID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// FindClinicDetails loads the settings row for the clinic, falling back to
// the clinic row when settings were never materialized.
func (r *Repository) FindClinicDetails(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, *models.ClinicSettings, error) {
	var clinic models.Clinic
	if err := r.db.WithContext(ctx).First(&clinic, "id = ?", clinicID).Error; err != nil {
		return nil, nil, err
	}

	var settings models.ClinicSettings
	err := r.db.WithContext(ctx).First(&settings, "clinic_id = ?", clinicID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &clinic, nil, nil
		}
		return nil, nil, err
	}
	return &clinic, &settings, nil
}
