package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	"github.com/angelmondragon/clinicdesk-backend/api/validators"
	"github.com/angelmondragon/clinicdesk-backend/internal/patients"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
)

// PatientList returns the clinic's patient roster with optional search.
func PatientList(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListPatients(r.Context(), clinicID, patients.ListInput{
			Search: validators.ParseQueryString(r, "search", ""),
			Page:   pagination.Params{Page: page, Limit: limit},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "patients", result)
	}
}

// PatientGet returns one patient record.
func PatientGet(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patientID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patient, err := svc.GetPatient(r.Context(), clinicID, patientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "patient", patient)
	}
}

type patientCreateRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=120"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty"`
	DOB        *string `json:"date_of_birth,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	Address    *string `json:"address,omitempty"`
	BloodGroup *string `json:"blood_group,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (req patientCreateRequest) toInput() (patients.CreateInput, error) {
	dob, err := parseOptionalDate(req.DOB, "date_of_birth")
	if err != nil {
		return patients.CreateInput{}, err
	}
	return patients.CreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		DOB:        dob,
		Gender:     req.Gender,
		Address:    req.Address,
		BloodGroup: req.BloodGroup,
		Notes:      req.Notes,
	}, nil
}

// PatientCreate registers a new patient.
func PatientCreate(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload patientCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patient, err := svc.CreatePatient(r.Context(), clinicID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "patient created", patient)
	}
}

type patientUpdateRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty"`
	DOB        *string `json:"date_of_birth,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	Address    *string `json:"address,omitempty"`
	BloodGroup *string `json:"blood_group,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (req patientUpdateRequest) toInput() (patients.UpdateInput, error) {
	dob, err := parseOptionalDate(req.DOB, "date_of_birth")
	if err != nil {
		return patients.UpdateInput{}, err
	}
	return patients.UpdateInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		DOB:        dob,
		Gender:     req.Gender,
		Address:    req.Address,
		BloodGroup: req.BloodGroup,
		Notes:      req.Notes,
	}, nil
}

// PatientUpdate patches an existing patient record.
func PatientUpdate(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patientID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload patientUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patient, err := svc.UpdatePatient(r.Context(), clinicID, patientID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "patient updated", patient)
	}
}

// PatientDelete removes a patient and their dependent records.
func PatientDelete(svc patients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "patient service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patientID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePatient(r.Context(), clinicID, patientID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "patient deleted", nil)
	}
}

func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse("2006-01-02", *raw); err == nil {
		return &ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, *raw); err == nil {
		return &ts, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must use YYYY-MM-DD").WithDetails(map[string]any{"field": field})
}
