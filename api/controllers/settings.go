package controllers

import (
	"net/http"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	"github.com/angelmondragon/clinicdesk-backend/api/validators"
	"github.com/angelmondragon/clinicdesk-backend/internal/settings"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
)

// SettingsGet returns the clinic's settings, creating defaults on first read.
func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetSettings(r.Context(), clinicID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "settings", result)
	}
}

type settingsUpdateRequest struct {
	ClinicName     *string            `json:"clinic_name,omitempty" validate:"omitempty,min=2,max=120"`
	CurrencySymbol *string            `json:"currency_symbol,omitempty" validate:"omitempty,min=1,max=5"`
	OpeningHours   types.WeekSchedule `json:"opening_hours,omitempty"`
	Holidays       types.DateList     `json:"holidays,omitempty"`
}

func (req settingsUpdateRequest) toInput() settings.UpdateInput {
	return settings.UpdateInput{
		ClinicName:     req.ClinicName,
		CurrencySymbol: req.CurrencySymbol,
		OpeningHours:   req.OpeningHours,
		Holidays:       req.Holidays,
	}
}

// SettingsUpdate patches the clinic's settings.
func SettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settingsUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateSettings(r.Context(), clinicID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "settings updated", result)
	}
}
