package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes clinic settings operations.
type Service interface {
	GetSettings(ctx context.Context, clinicID uuid.UUID) (*SettingsDTO, error)
	UpdateSettings(ctx context.Context, clinicID uuid.UUID, input UpdateInput) (*SettingsDTO, error)
}

// UpdateInput holds optional mutation values for the settings row.
type UpdateInput struct {
	ClinicName     *string
	CurrencySymbol *string
	OpeningHours   types.WeekSchedule
	Holidays       types.DateList
}

func (u UpdateInput) empty() bool {
	return u.ClinicName == nil && u.CurrencySymbol == nil && u.OpeningHours == nil && u.Holidays == nil
}

type settingsStore interface {
	Find(ctx context.Context, clinicID uuid.UUID) (*models.ClinicSettings, error)
	FindClinic(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error)
	Create(ctx context.Context, settings *models.ClinicSettings) (*models.ClinicSettings, error)
	Save(ctx context.Context, settings *models.ClinicSettings) (*models.ClinicSettings, error)
}

type service struct {
	repo settingsStore
}

// NewService constructs a settings service instance.
func NewService(repo settingsStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// GetSettings returns the tenant's settings, materializing a default row on
// first access so older tenants never see a missing resource.
func (s *service) GetSettings(ctx context.Context, clinicID uuid.UUID) (*SettingsDTO, error) {
	settings, err := s.loadOrSeed(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	return toDTO(settings), nil
}

func (s *service) UpdateSettings(ctx context.Context, clinicID uuid.UUID, input UpdateInput) (*SettingsDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	if input.OpeningHours != nil {
		if err := validateSchedule(input.OpeningHours); err != nil {
			return nil, err
		}
	}

	settings, err := s.loadOrSeed(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	if input.ClinicName != nil {
		name := strings.TrimSpace(*input.ClinicName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "clinic_name must not be empty")
		}
		settings.ClinicName = name
	}
	if input.CurrencySymbol != nil {
		symbol := strings.TrimSpace(*input.CurrencySymbol)
		if symbol == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency_symbol must not be empty")
		}
		settings.CurrencySymbol = symbol
	}
	if input.OpeningHours != nil {
		settings.OpeningHours = input.OpeningHours
	}
	if input.Holidays != nil {
		settings.Holidays = input.Holidays
	}

	saved, err := s.repo.Save(ctx, settings)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update settings")
	}
	return toDTO(saved), nil
}

func (s *service) loadOrSeed(ctx context.Context, clinicID uuid.UUID) (*models.ClinicSettings, error) {
	settings, err := s.repo.Find(ctx, clinicID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load settings")
	}

	clinic, err := s.repo.FindClinic(ctx, clinicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "clinic not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load clinic")
	}

	seeded, err := s.repo.Create(ctx, &models.ClinicSettings{
		ClinicID:       clinicID,
		ClinicName:     clinic.Name,
		CurrencySymbol: "$",
		OpeningHours:   types.DefaultWeekSchedule(),
		Holidays:       types.DateList{},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: seed settings")
	}
	return seeded, nil
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func validateSchedule(schedule types.WeekSchedule) error {
	for day, window := range schedule {
		if !weekdays[day] {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown weekday %q", day))
		}
		if window.Closed {
			continue
		}
		if window.Open == "" || window.Close == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("open day %q needs open and close times", day))
		}
		if window.Close <= window.Open {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("close must be after open on %q", day))
		}
	}
	return nil
}
