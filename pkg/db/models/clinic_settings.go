package models

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
	"github.com/google/uuid"
)

// ClinicSettings is one row per tenant, created lazily on first access.
type ClinicSettings struct {
	ClinicID       uuid.UUID          `gorm:"column:clinic_id;type:uuid;primaryKey"`
	ClinicName     string             `gorm:"column:clinic_name;not null"`
	CurrencySymbol string             `gorm:"column:currency_symbol;not null;default:'$'"`
	OpeningHours   types.WeekSchedule `gorm:"column:opening_hours;type:text"`
	Holidays       types.DateList     `gorm:"column:holidays;type:text"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
