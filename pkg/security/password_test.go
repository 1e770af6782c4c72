package security

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal plaintext")
	}
	if !VerifyPassword("s3cret-pass", hash) {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := GenerateTempPassword(16)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("expected 16 chars got %d", len(pw))
	}
	if _, err := GenerateTempPassword(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}
