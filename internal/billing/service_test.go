package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubInvoiceStore struct {
	invoices  map[uuid.UUID]*models.Invoice
	patients  map[uuid.UUID]*models.Patient
	clinic    *models.Clinic
	settings  *models.ClinicSettings
	createErr error
}

func newStubInvoiceStore() *stubInvoiceStore {
	return &stubInvoiceStore{
		invoices: map[uuid.UUID]*models.Invoice{},
		patients: map[uuid.UUID]*models.Patient{},
	}
}

func (s *stubInvoiceStore) List(_ context.Context, clinicID uuid.UUID, filter ListFilter, _ pagination.Params) ([]models.Invoice, int64, error) {
	var rows []models.Invoice
	for _, inv := range s.invoices {
		if inv.ClinicID != clinicID {
			continue
		}
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		if filter.PatientID != nil && inv.PatientID != *filter.PatientID {
			continue
		}
		rows = append(rows, *inv)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubInvoiceStore) FindByID(_ context.Context, clinicID, id uuid.UUID) (*models.Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok || inv.ClinicID != clinicID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *inv
	return &copied, nil
}

func (s *stubInvoiceStore) MaxInvoiceNumber(_ context.Context, clinicID uuid.UUID, prefix string) (string, error) {
	var max string
	for _, inv := range s.invoices {
		if inv.ClinicID != clinicID {
			continue
		}
		if len(inv.InvoiceNumber) >= len(prefix) && inv.InvoiceNumber[:len(prefix)] == prefix && inv.InvoiceNumber > max {
			max = inv.InvoiceNumber
		}
	}
	return max, nil
}

func (s *stubInvoiceStore) Create(_ context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	for i := range invoice.Items {
		if invoice.Items[i].ID == uuid.Nil {
			invoice.Items[i].ID = uuid.New()
		}
		invoice.Items[i].InvoiceID = invoice.ID
	}
	s.invoices[invoice.ID] = invoice
	return invoice, nil
}

func (s *stubInvoiceStore) Save(_ context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	stored, ok := s.invoices[invoice.ID]
	if ok {
		items := stored.Items
		copied := *invoice
		copied.Items = items
		s.invoices[invoice.ID] = &copied
		return &copied, nil
	}
	s.invoices[invoice.ID] = invoice
	return invoice, nil
}

func (s *stubInvoiceStore) ReplaceItems(_ context.Context, invoiceID uuid.UUID, items []models.InvoiceItem) error {
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	inv.Items = items
	return nil
}

func (s *stubInvoiceStore) Delete(_ context.Context, clinicID, id uuid.UUID) error {
	delete(s.invoices, id)
	return nil
}

func (s *stubInvoiceStore) FindPatient(_ context.Context, clinicID, patientID uuid.UUID) (*models.Patient, error) {
	patient, ok := s.patients[patientID]
	if !ok || patient.ClinicID != clinicID {
		return nil, gorm.ErrRecordNotFound
	}
	return patient, nil
}

func (s *stubInvoiceStore) PatientNames(_ context.Context, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	for _, id := range ids {
		if patient, ok := s.patients[id]; ok && patient.ClinicID == clinicID {
			names[id] = patient.Name
		}
	}
	return names, nil
}

func (s *stubInvoiceStore) FindClinicDetails(_ context.Context, _ uuid.UUID) (*models.Clinic, *models.ClinicSettings, error) {
	if s.clinic == nil {
		return nil, nil, gorm.ErrRecordNotFound
	}
	return s.clinic, s.settings, nil
}

func (s *stubInvoiceStore) Bind(_ *gorm.DB) invoiceStore {
	return s
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type billingFixture struct {
	svc      *service
	store    *stubInvoiceStore
	clinicID uuid.UUID
	patient  *models.Patient
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	clinicID := uuid.New()
	patient := &models.Patient{ID: uuid.New(), ClinicID: clinicID, Name: "Ana Torres"}

	store := newStubInvoiceStore()
	store.patients[patient.ID] = patient
	store.clinic = &models.Clinic{ID: clinicID, Name: "Centro Salud"}

	svc, err := NewService(store, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC) }
	return &billingFixture{svc: impl, store: store, clinicID: clinicID, patient: patient}
}

func (f *billingFixture) createInput() CreateInput {
	return CreateInput{
		PatientID: f.patient.ID,
		IssueDate: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
		Items: []ItemInput{
			{Description: "Consultation", Quantity: 1, UnitPrice: decimal.RequireFromString("50.00")},
			{Description: "Blood panel", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
		},
	}
}

func TestCreateInvoiceNumbersSequentially(t *testing.T) {
	f := newBillingFixture(t)

	first, err := f.svc.CreateInvoice(context.Background(), f.clinicID, f.createInput())
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.InvoiceNumber != "INV-2026-0001" {
		t.Fatalf("expected INV-2026-0001, got %s", first.InvoiceNumber)
	}

	second, err := f.svc.CreateInvoice(context.Background(), f.clinicID, f.createInput())
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if second.InvoiceNumber != "INV-2026-0002" {
		t.Fatalf("expected INV-2026-0002, got %s", second.InvoiceNumber)
	}
}

func TestCreateInvoiceTotalsItems(t *testing.T) {
	f := newBillingFixture(t)

	created, err := f.svc.CreateInvoice(context.Background(), f.clinicID, f.createInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// 50.00 + 2 * 19.99
	if !created.TotalAmount.Equal(decimal.RequireFromString("89.98")) {
		t.Fatalf("expected total 89.98, got %s", created.TotalAmount)
	}
	if created.Status != enums.InvoiceStatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.PatientName != f.patient.Name {
		t.Fatalf("expected joined patient name")
	}
}

func TestCreateInvoiceRejectsEmptyItems(t *testing.T) {
	f := newBillingFixture(t)
	input := f.createInput()
	input.Items = nil

	_, err := f.svc.CreateInvoice(context.Background(), f.clinicID, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateInvoiceMapsNumberRaceToConflict(t *testing.T) {
	// Both drivers report the duplicate differently; the race has to land on
	// 409 either way.
	driverErrs := map[string]error{
		"sqlite":   errors.New("UNIQUE constraint failed: invoices.clinic_id, invoices.invoice_number"),
		"postgres": errors.New(`duplicate key value violates unique constraint "idx_invoices_clinic_number"`),
	}
	for name, driverErr := range driverErrs {
		t.Run(name, func(t *testing.T) {
			f := newBillingFixture(t)
			f.store.createErr = driverErr

			_, err := f.svc.CreateInvoice(context.Background(), f.clinicID, f.createInput())
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
				t.Fatalf("expected conflict error, got %v", err)
			}
		})
	}
}

func TestUpdateInvoiceReplacesItemsAndRecomputesTotal(t *testing.T) {
	f := newBillingFixture(t)
	created, err := f.svc.CreateInvoice(context.Background(), f.clinicID, f.createInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	items := []ItemInput{{Description: "X-ray", Quantity: 3, UnitPrice: decimal.RequireFromString("12.50")}}
	updated, err := f.svc.UpdateInvoice(context.Background(), f.clinicID, created.ID, UpdateInput{Items: &items})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.TotalAmount.Equal(decimal.RequireFromString("37.50")) {
		t.Fatalf("expected recomputed total 37.50, got %s", updated.TotalAmount)
	}
	if len(updated.Items) != 1 || updated.Items[0].Description != "X-ray" {
		t.Fatalf("expected replaced items, got %+v", updated.Items)
	}
	if updated.InvoiceNumber != created.InvoiceNumber {
		t.Fatalf("invoice number must not change on update")
	}
}

func TestUpdateInvoiceRejectsEmptyPayload(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.UpdateInvoice(context.Background(), f.clinicID, uuid.New(), UpdateInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetInvoiceHidesOtherTenants(t *testing.T) {
	f := newBillingFixture(t)
	created, err := f.svc.CreateInvoice(context.Background(), f.clinicID, f.createInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = f.svc.GetInvoice(context.Background(), uuid.New(), created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant invoice must read as not found, got %v", err)
	}
}

func TestRenderInvoicePDFNamesFile(t *testing.T) {
	f := newBillingFixture(t)
	created, err := f.svc.CreateInvoice(context.Background(), f.clinicID, f.createInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	data, filename, err := f.svc.RenderInvoicePDF(context.Background(), f.clinicID, created.ID)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected rendered bytes")
	}
	if filename != created.InvoiceNumber+".pdf" {
		t.Fatalf("unexpected filename %s", filename)
	}
}
