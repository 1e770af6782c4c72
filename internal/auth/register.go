package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/clinicdesk-backend/pkg/auth"
	"github.com/angelmondragon/clinicdesk-backend/pkg/config"
	pkgdb "github.com/angelmondragon/clinicdesk-backend/pkg/db"
	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/security"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
	"gorm.io/gorm"
)

// RegisterService provisions a clinic tenant with its first admin.
type RegisterService interface {
	Register(ctx context.Context, input RegisterInput) (*SessionDTO, error)
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	ClinicName    string
	ClinicAddress *string
	ClinicPhone   *string
	AdminName     string
	Email         string
	Password      string
}

type registerService struct {
	repo     *Repository
	dbClient *pkgdb.Client
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewRegisterService constructs the registration service.
func NewRegisterService(repo *Repository, dbClient *pkgdb.Client, jwtCfg config.JWTConfig) (RegisterService, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &registerService{repo: repo, dbClient: dbClient, jwtCfg: jwtCfg, now: time.Now}, nil
}

// Register creates the clinic, its admin user, and the default settings row
// in one transaction, then issues the first session token.
func (s *registerService) Register(ctx context.Context, input RegisterInput) (*SessionDTO, error) {
	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	var admin *models.User
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		clinic, err := txRepo.CreateClinic(ctx, &models.Clinic{
			Name:    strings.TrimSpace(input.ClinicName),
			Address: input.ClinicAddress,
			Phone:   input.ClinicPhone,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert clinic")
		}

		admin, err = txRepo.CreateUser(ctx, &models.User{
			ClinicID:     clinic.ID,
			Name:         strings.TrimSpace(input.AdminName),
			Email:        strings.ToLower(strings.TrimSpace(input.Email)),
			PasswordHash: hash,
			Role:         enums.StaffRoleAdmin,
			IsActive:     true,
		})
		if err != nil {
			if pkgdb.IsUniqueViolation(err, "idx_users_clinic_email", "users.email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered for this clinic")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert admin user")
		}

		if _, err := txRepo.CreateSettings(ctx, &models.ClinicSettings{
			ClinicID:       clinic.ID,
			ClinicName:     clinic.Name,
			CurrencySymbol: "$",
			OpeningHours:   types.DefaultWeekSchedule(),
			Holidays:       types.DateList{},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert settings")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID:   admin.ID,
		ClinicID: admin.ClinicID,
		Email:    admin.Email,
		Role:     admin.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return &SessionDTO{Token: token, User: toProfile(admin)}, nil
}
