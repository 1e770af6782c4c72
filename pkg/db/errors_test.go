package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolationSQLite(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: users.clinic_id, users.email")
	if !IsUniqueViolation(err) {
		t.Fatal("expected sqlite unique violation to match")
	}
	if !IsUniqueViolation(err, "users.email") {
		t.Fatal("expected column hint match")
	}
	if IsUniqueViolation(err, "invoices.invoice_number") {
		t.Fatal("expected mismatch for unrelated column")
	}
}

func TestIsUniqueViolationPostgres(t *testing.T) {
	err := errors.New(`duplicate key value violates unique constraint "idx_invoices_clinic_number"`)
	if !IsUniqueViolation(err, "idx_invoices_clinic_number") {
		t.Fatal("expected postgres unique violation to match")
	}
}

func TestIsUniqueViolationMatchesAnyHint(t *testing.T) {
	// Each call site passes the postgres index name plus the sqlite column
	// text; either driver's message has to satisfy the same call.
	sqlite := errors.New("UNIQUE constraint failed: invoices.clinic_id, invoices.invoice_number")
	postgres := errors.New(`duplicate key value violates unique constraint "idx_invoices_clinic_number"`)
	for _, err := range []error{sqlite, postgres} {
		if !IsUniqueViolation(err, "idx_invoices_clinic_number", "invoices.invoice_number") {
			t.Fatalf("expected match for %q", err)
		}
	}
	if IsUniqueViolation(sqlite, "idx_users_clinic_email", "users.email") {
		t.Fatal("expected mismatch when no hint appears")
	}
}

func TestIsUniqueViolationOther(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatal("nil error must not match")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Fatal("unrelated error must not match")
	}
}
