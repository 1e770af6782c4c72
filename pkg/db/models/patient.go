package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient has an independent lifecycle; deleting one cascades to its
// appointments and invoices (schema-enforced).
type Patient struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClinicID   uuid.UUID  `gorm:"column:clinic_id;type:uuid;not null;index"`
	Name       string     `gorm:"column:name;not null"`
	Email      *string    `gorm:"column:email"`
	Phone      *string    `gorm:"column:phone"`
	DOB        *time.Time `gorm:"column:dob"`
	Gender     *string    `gorm:"column:gender"`
	Address    *string    `gorm:"column:address"`
	BloodGroup *string    `gorm:"column:blood_group"`
	Notes      *string    `gorm:"column:notes"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Patient) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
