package dashboard

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxSeriesDays caps the chart window so a single request cannot scan an
// unbounded range.
const MaxSeriesDays = 366

// Service exposes the dashboard read models.
type Service interface {
	Overview(ctx context.Context, clinicID uuid.UUID, input SeriesInput) (*OverviewDTO, error)
	Summary(ctx context.Context, clinicID uuid.UUID) (*SummaryDTO, error)
	Series(ctx context.Context, clinicID uuid.UUID, input SeriesInput) (*SeriesDTO, error)
}

// SeriesInput bounds the chart window. Nil endpoints default to the last
// seven days.
type SeriesInput struct {
	From *time.Time
	To   *time.Time
}

type metricsStore interface {
	CountPatients(ctx context.Context, clinicID uuid.UUID) (int64, error)
	CountAppointmentsBetween(ctx context.Context, clinicID uuid.UUID, start, end time.Time) (int64, error)
	AppointmentStartsBetween(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]time.Time, error)
	PaidInvoicesBetween(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]InvoiceRow, error)
	PendingInvoices(ctx context.Context, clinicID uuid.UUID) ([]InvoiceRow, error)
	CountLowStock(ctx context.Context, clinicID uuid.UUID) (int64, error)
}

type service struct {
	repo metricsStore
	now  func() time.Time
}

// NewService constructs a dashboard service instance.
func NewService(repo metricsStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Overview(ctx context.Context, clinicID uuid.UUID, input SeriesInput) (*OverviewDTO, error) {
	summary, err := s.Summary(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	series, err := s.Series(ctx, clinicID, input)
	if err != nil {
		return nil, err
	}
	return &OverviewDTO{Summary: *summary, Series: *series}, nil
}

func (s *service) Summary(ctx context.Context, clinicID uuid.UUID) (*SummaryDTO, error) {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	patients, err := s.repo.CountPatients(ctx, clinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count patients")
	}
	today, err := s.repo.CountAppointmentsBetween(ctx, clinicID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count appointments")
	}
	paid, err := s.repo.PaidInvoicesBetween(ctx, clinicID, monthStart, monthEnd)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load paid invoices")
	}
	pending, err := s.repo.PendingInvoices(ctx, clinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load pending invoices")
	}
	lowStock, err := s.repo.CountLowStock(ctx, clinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count low stock")
	}

	revenue := decimal.Zero
	for _, row := range paid {
		revenue = revenue.Add(row.TotalAmount)
	}
	pendingAmount := decimal.Zero
	for _, row := range pending {
		pendingAmount = pendingAmount.Add(row.TotalAmount)
	}

	return &SummaryDTO{
		TotalPatients:     patients,
		AppointmentsToday: today,
		MonthRevenue:      revenue,
		PendingInvoices:   int64(len(pending)),
		PendingAmount:     pendingAmount,
		LowStockItems:     lowStock,
	}, nil
}

func (s *service) Series(ctx context.Context, clinicID uuid.UUID, input SeriesInput) (*SeriesDTO, error) {
	from, to, err := s.window(input)
	if err != nil {
		return nil, err
	}

	starts, err := s.repo.AppointmentStartsBetween(ctx, clinicID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load appointment starts")
	}
	invoices, err := s.repo.PaidInvoicesBetween(ctx, clinicID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load paid invoices")
	}

	// Day buckets are built here rather than with SQL date functions so the
	// queries stay portable across drivers.
	days := int(to.Sub(from).Hours() / 24)
	buckets := make([]DayBucket, days)
	index := map[string]int{}
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format("2006-01-02")
		buckets[i] = DayBucket{Date: date, Revenue: decimal.Zero}
		index[date] = i
	}
	for _, start := range starts {
		if i, ok := index[start.UTC().Format("2006-01-02")]; ok {
			buckets[i].Appointments++
		}
	}
	for _, row := range invoices {
		if i, ok := index[row.IssueDate.UTC().Format("2006-01-02")]; ok {
			buckets[i].Revenue = buckets[i].Revenue.Add(row.TotalAmount)
		}
	}

	return &SeriesDTO{From: from, To: to, Days: buckets}, nil
}

func (s *service) window(input SeriesInput) (time.Time, time.Time, error) {
	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	if input.To != nil {
		t := input.To.UTC()
		to = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
	from := to.AddDate(0, 0, -7)
	if input.From != nil {
		t := input.From.UTC()
		from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	if !to.After(from) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}
	if to.Sub(from) > MaxSeriesDays*24*time.Hour {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date window too large")
	}
	return from, to, nil
}
