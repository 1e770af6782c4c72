package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
)

// overdueMarker flips pending invoices past their due date.
type overdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// InvoiceOverdueJobParams configure the overdue invoice sweep.
type InvoiceOverdueJobParams struct {
	Logger   *logger.Logger
	Invoices overdueMarker
}

// NewInvoiceOverdueJob builds the cron job that marks unpaid invoices as
// overdue once their due date has passed.
func NewInvoiceOverdueJob(params InvoiceOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Invoices == nil {
		return nil, fmt.Errorf("invoice marker required")
	}
	return &invoiceOverdueJob{
		logg:     params.Logger,
		invoices: params.Invoices,
		now:      time.Now,
	}, nil
}

type invoiceOverdueJob struct {
	logg     *logger.Logger
	invoices overdueMarker
	now      func() time.Time
}

func (j *invoiceOverdueJob) Name() string { return "invoice-overdue" }

func (j *invoiceOverdueJob) Run(ctx context.Context) error {
	flipped, err := j.invoices.MarkOverdue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("mark overdue invoices: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": flipped})
	j.logg.Info(logCtx, "overdue invoice sweep complete")
	return nil
}
