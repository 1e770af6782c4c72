package auth

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/config"
	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubCredentialStore struct {
	byEmail map[string][]models.User
	touched []uuid.UUID
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{byEmail: map[string][]models.User{}}
}

func (s *stubCredentialStore) FindUsersByEmail(_ context.Context, email string) ([]models.User, error) {
	return s.byEmail[email], nil
}

func (s *stubCredentialStore) FindActiveUser(_ context.Context, clinicID, userID uuid.UUID) (*models.User, error) {
	for _, rows := range s.byEmail {
		for i := range rows {
			if rows[i].ID == userID && rows[i].ClinicID == clinicID && rows[i].IsActive {
				copied := rows[i]
				return &copied, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCredentialStore) TouchLastLogin(_ context.Context, userID uuid.UUID, _ time.Time) error {
	s.touched = append(s.touched, userID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "clinicdesk", ExpirationMinutes: 60}
}

func seedUser(t *testing.T, store *stubCredentialStore, email, password string, active bool) models.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:           uuid.New(),
		ClinicID:     uuid.New(),
		Name:         "Dr. Rivera",
		Email:        email,
		PasswordHash: hash,
		Role:         enums.StaffRoleDoctor,
		IsActive:     active,
	}
	store.byEmail[email] = append(store.byEmail[email], user)
	return user
}

func TestLoginIssuesTokenAndStampsLastLogin(t *testing.T) {
	store := newStubCredentialStore()
	user := seedUser(t, store, "dr@clinic.test", "correct-horse", true)

	svc, err := NewService(store, testJWTConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	session, err := svc.Login(context.Background(), LoginInput{Email: "dr@clinic.test", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected a signed token")
	}
	if session.User.ID != user.ID {
		t.Fatalf("unexpected user in session")
	}
	if len(store.touched) != 1 || store.touched[0] != user.ID {
		t.Fatalf("last login not stamped")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	store := newStubCredentialStore()
	seedUser(t, store, "dr@clinic.test", "correct-horse", true)

	svc, _ := NewService(store, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginInput{Email: "dr@clinic.test", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginSkipsInactiveAccounts(t *testing.T) {
	store := newStubCredentialStore()
	seedUser(t, store, "dr@clinic.test", "correct-horse", false)

	svc, _ := NewService(store, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginInput{Email: "dr@clinic.test", Password: "correct-horse"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive account, got %v", err)
	}
}

func TestProfileNotFoundForMissingUser(t *testing.T) {
	svc, _ := NewService(newStubCredentialStore(), testJWTConfig())

	_, err := svc.Profile(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
