package models

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a clinic staff member. Email is unique per clinic, not
// globally.
type User struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClinicID     uuid.UUID       `gorm:"column:clinic_id;type:uuid;not null;index;uniqueIndex:idx_users_clinic_email"`
	Name         string          `gorm:"column:name;not null"`
	Email        string          `gorm:"column:email;not null;uniqueIndex:idx_users_clinic_email"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.StaffRole `gorm:"column:role;not null"`
	Specialty    *string         `gorm:"column:specialty"`
	Phone        *string         `gorm:"column:phone"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
