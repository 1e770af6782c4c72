package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgdb "github.com/angelmondragon/clinicdesk-backend/pkg/db"
	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
	"github.com/angelmondragon/clinicdesk-backend/pkg/security"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes staff management operations.
type Service interface {
	ListStaff(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[StaffDTO], error)
	GetStaff(ctx context.Context, clinicID, userID uuid.UUID) (*StaffDTO, error)
	CreateStaff(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*StaffDTO, error)
	UpdateStaff(ctx context.Context, clinicID, userID uuid.UUID, input UpdateInput) (*StaffDTO, error)
	DeleteStaff(ctx context.Context, clinicID, actorID, userID uuid.UUID) error
	ActivePrincipal(ctx context.Context, clinicID, userID uuid.UUID) (*PrincipalDTO, error)
}

// ListInput carries list filters alongside paging.
type ListInput struct {
	Role   *enums.StaffRole
	Search string
	Page   pagination.Params
}

// CreateInput holds the validated payload to invite a staff member.
type CreateInput struct {
	Name      string
	Email     string
	Password  string
	Role      enums.StaffRole
	Specialty *string
	Phone     *string
}

// UpdateInput holds optional mutation values for a staff member.
type UpdateInput struct {
	Name      *string
	Role      *enums.StaffRole
	Specialty *string
	Phone     *string
	IsActive  *bool
}

func (u UpdateInput) empty() bool {
	return u.Name == nil && u.Role == nil && u.Specialty == nil && u.Phone == nil && u.IsActive == nil
}

type staffStore interface {
	List(ctx context.Context, clinicID uuid.UUID, role *enums.StaffRole, search string, params pagination.Params) ([]models.User, int64, error)
	FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.User, error)
	FindActiveByID(ctx context.Context, clinicID, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
}

type service struct {
	repo staffStore
}

// NewService constructs a staff service instance.
func NewService(repo staffStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListStaff(ctx context.Context, clinicID uuid.UUID, input ListInput) (*types.Page[StaffDTO], error) {
	rows, total, err := s.repo.List(ctx, clinicID, input.Role, strings.TrimSpace(input.Search), input.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list staff")
	}

	items := make([]StaffDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *toDTO(&rows[i]))
	}
	return &types.Page[StaffDTO]{
		Items:      items,
		Pagination: input.Page.PageInfo(total),
	}, nil
}

func (s *service) GetStaff(ctx context.Context, clinicID, userID uuid.UUID) (*StaffDTO, error) {
	user, err := s.findStaff(ctx, clinicID, userID)
	if err != nil {
		return nil, err
	}
	return toDTO(user), nil
}

func (s *service) CreateStaff(ctx context.Context, clinicID uuid.UUID, input CreateInput) (*StaffDTO, error) {
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	user := &models.User{
		ClinicID:     clinicID,
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         input.Role,
		Specialty:    input.Specialty,
		Phone:        input.Phone,
		IsActive:     true,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_users_clinic_email", "users.email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered for this clinic")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert staff")
	}
	return toDTO(created), nil
}

func (s *service) UpdateStaff(ctx context.Context, clinicID, userID uuid.UUID, input UpdateInput) (*StaffDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}

	user, err := s.findStaff(ctx, clinicID, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Specialty != nil {
		user.Specialty = input.Specialty
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update staff")
	}
	return toDTO(saved), nil
}

func (s *service) DeleteStaff(ctx context.Context, clinicID, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete own account")
	}
	if _, err := s.findStaff(ctx, clinicID, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, clinicID, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete staff")
	}
	return nil
}

// ActivePrincipal resolves the active user row behind a token. Inactive and
// deleted accounts both come back as not found.
func (s *service) ActivePrincipal(ctx context.Context, clinicID, userID uuid.UUID) (*PrincipalDTO, error) {
	user, err := s.repo.FindActiveByID(ctx, clinicID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load principal")
	}
	return &PrincipalDTO{
		ID:       user.ID,
		ClinicID: user.ClinicID,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

func (s *service) findStaff(ctx context.Context, clinicID, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, clinicID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load staff")
	}
	return user, nil
}
