package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	pkgdb "github.com/angelmondragon/clinicdesk-backend/pkg/db"
	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pdf"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes invoice management operations.
type Service interface {
	ListInvoices(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[InvoiceDTO], error)
	GetInvoice(ctx context.Context, clinicID, invoiceID uuid.UUID) (*InvoiceDTO, error)
	CreateInvoice(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*InvoiceDTO, error)
	UpdateInvoice(ctx context.Context, clinicID, invoiceID uuid.UUID, input UpdateInput) (*InvoiceDTO, error)
	DeleteInvoice(ctx context.Context, clinicID, invoiceID uuid.UUID) error
	RenderInvoicePDF(ctx context.Context, clinicID, invoiceID uuid.UUID) ([]byte, string, error)
}

// ListInput carries list filters alongside paging.
type ListInput struct {
	Filter ListFilter
	Page   pagination.Params
}

// ItemInput is one billable line in a create/replace payload.
type ItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateInput holds the validated payload to issue an invoice.
type CreateInput struct {
	PatientID uuid.UUID
	IssueDate time.Time
	DueDate   time.Time
	Status    *enums.InvoiceStatus
	Notes     *string
	Items     []ItemInput
}

// UpdateInput holds optional mutation values. A non-nil Items slice fully
// replaces the existing items and recomputes the total.
type UpdateInput struct {
	IssueDate *time.Time
	DueDate   *time.Time
	Status    *enums.InvoiceStatus
	Notes     *string
	Items     *[]ItemInput
}

func (u UpdateInput) empty() bool {
	return u.IssueDate == nil && u.DueDate == nil && u.Status == nil && u.Notes == nil && u.Items == nil
}

type invoiceStore interface {
	List(ctx context.Context, clinicID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Invoice, int64, error)
	FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Invoice, error)
	MaxInvoiceNumber(ctx context.Context, clinicID uuid.UUID, prefix string) (string, error)
	Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	Save(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []models.InvoiceItem) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	FindPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error)
	PatientNames(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error)
	FindClinicDetails(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, *models.ClinicSettings, error)
	Bind(tx *gorm.DB) invoiceStore
}

// Bind adapts WithTx to the store interface used by the service.
func (r *Repository) Bind(tx *gorm.DB) invoiceStore {
	return r.WithTx(tx)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo invoiceStore
	db   txRunner
	now  func() time.Time
}

// NewService constructs a billing service instance.
func NewService(repo invoiceStore, db txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, db: db, now: time.Now}, nil
}

func (s *service) ListInvoices(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[InvoiceDTO], error) {
	rows, total, err := s.repo.List(ctx, clinicID, input.Filter, input.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list invoices")
	}

	patientIDs := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		patientIDs = append(patientIDs, rows[i].PatientID)
	}
	names, err := s.repo.PatientNames(ctx, clinicID, patientIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve patient names")
	}

	items := make([]InvoiceDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *toDTO(&rows[i], names[rows[i].PatientID], false))
	}
	return &types.Page[InvoiceDTO]{
		Items:      items,
		Pagination: input.Page.PageInfo(total),
	}, nil
}

func (s *service) GetInvoice(ctx context.Context, clinicID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, clinicID, invoiceID)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.PatientNames(ctx, clinicID, []uuid.UUID{invoice.PatientID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve patient names")
	}
	return toDTO(invoice, names[invoice.PatientID], true), nil
}

func (s *service) CreateInvoice(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*InvoiceDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if input.DueDate.Before(input.IssueDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due_date must not precede issue_date")
	}

	items, total, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	status := enums.InvoiceStatusPending
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status")
		}
		status = *input.Status
	}

	if _, err := s.repo.FindPatient(ctx, clinicID, input.PatientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load patient")
	}

	var created *models.Invoice
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.Bind(tx)

		number, err := s.nextInvoiceNumber(ctx, txRepo, clinicID)
		if err != nil {
			return err
		}

		invoice := &models.Invoice{
			ClinicID:      clinicID,
			PatientID:     input.PatientID,
			InvoiceNumber: number,
			IssueDate:     input.IssueDate,
			DueDate:       input.DueDate,
			TotalAmount:   total,
			Status:        status,
			Notes:         input.Notes,
			Items:         items,
		}

		created, err = txRepo.Create(ctx, invoice)
		if err != nil {
			// Two concurrent creates can race on the same number; the
			// unique index turns the loser into a conflict.
			if pkgdb.IsUniqueViolation(err, "idx_invoices_clinic_number", "invoices.invoice_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "invoice number already taken, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert invoice")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names, err := s.repo.PatientNames(ctx, clinicID, []uuid.UUID{created.PatientID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve patient names")
	}
	return toDTO(created, names[created.PatientID], true), nil
}

func (s *service) UpdateInvoice(ctx context.Context, clinicID, invoiceID uuid.UUID, input UpdateInput) (*InvoiceDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status")
	}
	if input.Items != nil && len(*input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	invoice, err := s.findInvoice(ctx, clinicID, invoiceID)
	if err != nil {
		return nil, err
	}

	if input.IssueDate != nil {
		invoice.IssueDate = *input.IssueDate
	}
	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	}
	if input.Status != nil {
		invoice.Status = *input.Status
	}
	if input.Notes != nil {
		invoice.Notes = input.Notes
	}

	var newItems []models.InvoiceItem
	if input.Items != nil {
		items, total, err := buildItems(*input.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		newItems = items
		invoice.TotalAmount = total
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.Bind(tx)
		if newItems != nil {
			if err := txRepo.ReplaceItems(ctx, invoice.ID, newItems); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace invoice items")
			}
		}
		if _, err := txRepo.Save(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update invoice")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetInvoice(ctx, clinicID, invoiceID)
}

func (s *service) DeleteInvoice(ctx context.Context, clinicID, invoiceID uuid.UUID) error {
	if _, err := s.findInvoice(ctx, clinicID, invoiceID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, clinicID, invoiceID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete invoice")
	}
	return nil
}

// RenderInvoicePDF produces the printable document plus a download filename.
func (s *service) RenderInvoicePDF(ctx context.Context, clinicID, invoiceID uuid.UUID) ([]byte, string, error) {
	invoice, err := s.findInvoice(ctx, clinicID, invoiceID)
	if err != nil {
		return nil, "", err
	}

	patient, err := s.repo.FindPatient(ctx, clinicID, invoice.PatientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load patient")
	}

	clinic, settings, err := s.repo.FindClinicDetails(ctx, clinicID)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load clinic details")
	}

	doc := pdf.InvoiceDocument{
		ClinicName:     clinic.Name,
		CurrencySymbol: "$",
		InvoiceNumber:  invoice.InvoiceNumber,
		IssueDate:      invoice.IssueDate,
		DueDate:        invoice.DueDate,
		Status:         invoice.Status.String(),
		PatientName:    patient.Name,
		TotalAmount:    invoice.TotalAmount,
	}
	if clinic.Address != nil {
		doc.ClinicAddress = *clinic.Address
	}
	if clinic.Phone != nil {
		doc.ClinicPhone = *clinic.Phone
	}
	if settings != nil {
		doc.ClinicName = settings.ClinicName
		doc.CurrencySymbol = settings.CurrencySymbol
	}
	if patient.Email != nil {
		doc.PatientEmail = *patient.Email
	}
	if patient.Phone != nil {
		doc.PatientPhone = *patient.Phone
	}
	if invoice.Notes != nil {
		doc.Notes = *invoice.Notes
	}
	for _, item := range invoice.Items {
		doc.Lines = append(doc.Lines, pdf.InvoiceLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}

	rendered, err := pdf.RenderInvoice(doc)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice pdf")
	}
	return rendered, invoice.InvoiceNumber + ".pdf", nil
}

func (s *service) findInvoice(ctx context.Context, clinicID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, clinicID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load invoice")
	}
	return invoice, nil
}

// nextInvoiceNumber scans the tenant's current year sequence and increments
// it. Not safe under concurrent writers; the unique index backstops the race.
func (s *service) nextInvoiceNumber(ctx context.Context, repo invoiceStore, clinicID uuid.UUID) (string, error) {
	year := s.now().UTC().Year()
	prefix := fmt.Sprintf("INV-%d-", year)

	last, err := repo.MaxInvoiceNumber(ctx, clinicID, prefix)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: scan invoice numbers")
	}

	seq := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(last[len(prefix):]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func buildItems(inputs []ItemInput) ([]models.InvoiceItem, decimal.Decimal, error) {
	items := make([]models.InvoiceItem, 0, len(inputs))
	total := decimal.Zero
	for _, input := range inputs {
		description := strings.TrimSpace(input.Description)
		if description == "" {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item description is required")
		}
		if input.Quantity <= 0 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if input.UnitPrice.IsNegative() || input.UnitPrice.IsZero() {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item unit_price must be positive")
		}

		lineTotal := input.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(2)
		items = append(items, models.InvoiceItem{
			Description: description,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice.Round(2),
			Total:       lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total.Round(2), nil
}
