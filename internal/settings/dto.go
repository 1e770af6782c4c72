package settings

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
)

// SettingsDTO is the API representation of a clinic's settings row.
type SettingsDTO struct {
	ClinicName     string             `json:"clinic_name"`
	CurrencySymbol string             `json:"currency_symbol"`
	OpeningHours   types.WeekSchedule `json:"opening_hours"`
	Holidays       types.DateList     `json:"holidays"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func toDTO(settings *models.ClinicSettings) *SettingsDTO {
	if settings == nil {
		return nil
	}
	holidays := settings.Holidays
	if holidays == nil {
		holidays = types.DateList{}
	}
	return &SettingsDTO{
		ClinicName:     settings.ClinicName,
		CurrencySymbol: settings.CurrencySymbol,
		OpeningHours:   settings.OpeningHours,
		Holidays:       holidays,
		UpdatedAt:      settings.UpdatedAt,
	}
}
