package users

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// StaffDTO is the API representation of a staff member. The password hash
// never leaves the service layer.
type StaffDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        enums.StaffRole `json:"role"`
	Specialty   *string         `json:"specialty,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PrincipalDTO is the minimal identity surface used by the auth middleware.
type PrincipalDTO struct {
	ID       uuid.UUID
	ClinicID uuid.UUID
	Email    string
	Role     enums.StaffRole
}

func toDTO(user *models.User) *StaffDTO {
	if user == nil {
		return nil
	}
	return &StaffDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Specialty:   user.Specialty,
		Phone:       user.Phone,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
