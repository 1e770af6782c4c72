package auth

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// UserProfile is the authenticated user's public representation.
type UserProfile struct {
	ID          uuid.UUID       `json:"id"`
	ClinicID    uuid.UUID       `json:"clinic_id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        enums.StaffRole `json:"role"`
	Specialty   *string         `json:"specialty,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SessionDTO is the login/register response payload.
type SessionDTO struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

func toProfile(user *models.User) UserProfile {
	return UserProfile{
		ID:          user.ID,
		ClinicID:    user.ClinicID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Specialty:   user.Specialty,
		Phone:       user.Phone,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
