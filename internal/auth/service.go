package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/auth"
	"github.com/angelmondragon/clinicdesk-backend/pkg/config"
	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes session issuance and profile reads.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*SessionDTO, error)
	Profile(ctx context.Context, clinicID, userID uuid.UUID) (*UserProfile, error)
}

// LoginInput is the validated login payload.
type LoginInput struct {
	Email    string
	Password string
}

type credentialStore interface {
	FindUsersByEmail(ctx context.Context, email string) ([]models.User, error)
	FindActiveUser(ctx context.Context, clinicID, userID uuid.UUID) (*models.User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type service struct {
	repo   credentialStore
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// NewService constructs an auth service instance.
func NewService(repo credentialStore, jwtCfg config.JWTConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, now: time.Now}, nil
}

// Login verifies credentials against every clinic the email is registered in
// and issues a token for the first active match.
func (s *service) Login(ctx context.Context, input LoginInput) (*SessionDTO, error) {
	candidates, err := s.repo.FindUsersByEmail(ctx, input.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup user")
	}

	var match *models.User
	for i := range candidates {
		candidate := &candidates[i]
		if !candidate.IsActive {
			continue
		}
		if security.VerifyPassword(input.Password, candidate.PasswordHash) {
			match = candidate
			break
		}
	}
	if match == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID:   match.ID,
		ClinicID: match.ClinicID,
		Email:    match.Email,
		Role:     match.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	if err := s.repo.TouchLastLogin(ctx, match.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: stamp login")
	}
	match.LastLoginAt = &now

	return &SessionDTO{Token: token, User: toProfile(match)}, nil
}

// Profile returns the fresh DB row behind the authenticated principal.
func (s *service) Profile(ctx context.Context, clinicID, userID uuid.UUID) (*UserProfile, error) {
	user, err := s.repo.FindActiveUser(ctx, clinicID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load profile")
	}
	profile := toProfile(user)
	return &profile, nil
}
