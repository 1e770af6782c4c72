package models

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment holds a half-open [start,end) slot on a doctor's calendar.
// Nothing prevents two appointments for the same doctor from overlapping.
type Appointment struct {
	ID             uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ClinicID       uuid.UUID               `gorm:"column:clinic_id;type:uuid;not null;index"`
	PatientID      uuid.UUID               `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID       uuid.UUID               `gorm:"column:doctor_id;type:uuid;not null;index"`
	ReceptionistID *uuid.UUID              `gorm:"column:receptionist_id;type:uuid"`
	Title          string                  `gorm:"column:title;not null"`
	StartTime      time.Time               `gorm:"column:start_time;not null;index"`
	EndTime        time.Time               `gorm:"column:end_time;not null;index"`
	Status         enums.AppointmentStatus `gorm:"column:status;not null;default:'scheduled'"`
	Notes          *string                 `gorm:"column:notes"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Appointment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
