package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryDTO carries the headline tiles for the landing screen.
type SummaryDTO struct {
	TotalPatients     int64           `json:"total_patients"`
	AppointmentsToday int64           `json:"appointments_today"`
	MonthRevenue      decimal.Decimal `json:"month_revenue"`
	PendingInvoices   int64           `json:"pending_invoices"`
	PendingAmount     decimal.Decimal `json:"pending_amount"`
	LowStockItems     int64           `json:"low_stock_items"`
}

// DayBucket is one day of chart data.
type DayBucket struct {
	Date         string          `json:"date"`
	Appointments int64           `json:"appointments"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// SeriesDTO is the per-day chart payload for a date window.
type SeriesDTO struct {
	From time.Time   `json:"from"`
	To   time.Time   `json:"to"`
	Days []DayBucket `json:"days"`
}

// OverviewDTO bundles the tiles and the chart window into one payload.
type OverviewDTO struct {
	Summary SummaryDTO `json:"summary"`
	Series  SeriesDTO  `json:"series"`
}
