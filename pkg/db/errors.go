package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. Covers both driver message shapes: SQLite names the
// violated columns ("UNIQUE constraint failed: invoices.clinic_id,
// invoices.invoice_number") while Postgres names the index ("duplicate key
// value violates unique constraint \"idx_invoices_clinic_number\""). Callers
// pass one hint per dialect; the violation matches when any hint appears in
// the message. With no hints, any unique violation matches.
func IsUniqueViolation(err error, hints ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	unique := strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
	if !unique {
		return false
	}
	if len(hints) == 0 {
		return true
	}
	for _, hint := range hints {
		if hint != "" && strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
