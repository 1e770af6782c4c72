package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/rs/zerolog"
)

type stubOverdueMarker struct {
	flipped int64
	err     error
	seen    time.Time
}

func (s *stubOverdueMarker) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	s.seen = now
	return s.flipped, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func TestInvoiceOverdueJobSweeps(t *testing.T) {
	marker := &stubOverdueMarker{flipped: 3}
	job, err := NewInvoiceOverdueJob(InvoiceOverdueJobParams{Logger: testLogger(), Invoices: marker})
	if err != nil {
		t.Fatalf("NewInvoiceOverdueJob: %v", err)
	}
	fixed := time.Date(2026, 5, 10, 3, 0, 0, 0, time.UTC)
	job.(*invoiceOverdueJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !marker.seen.Equal(fixed) {
		t.Fatalf("expected sweep at %v, got %v", fixed, marker.seen)
	}
}

func TestInvoiceOverdueJobPropagatesError(t *testing.T) {
	marker := &stubOverdueMarker{err: errors.New("boom")}
	job, err := NewInvoiceOverdueJob(InvoiceOverdueJobParams{Logger: testLogger(), Invoices: marker})
	if err != nil {
		t.Fatalf("NewInvoiceOverdueJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestServiceRunsJobsUnderNoopLock(t *testing.T) {
	marker := &stubOverdueMarker{flipped: 1}
	job, err := NewInvoiceOverdueJob(InvoiceOverdueJobParams{Logger: testLogger(), Invoices: marker})
	if err != nil {
		t.Fatalf("NewInvoiceOverdueJob: %v", err)
	}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     NoopLock{},
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if marker.seen.IsZero() {
		t.Fatalf("job did not run")
	}
}
