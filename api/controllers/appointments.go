package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	"github.com/angelmondragon/clinicdesk-backend/api/validators"
	"github.com/angelmondragon/clinicdesk-backend/internal/appointments"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
)

// AppointmentList returns the calendar entries matching the query filters.
// Passing both start and end returns every appointment overlapping that
// window; supplying only one of the two is rejected.
func AppointmentList(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := validators.ParseQueryTime(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryTime(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if (start == nil) != (end == nil) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "start and end must be provided together"))
			return
		}

		filter := appointments.ListFilter{Start: start, End: end}
		if raw := validators.ParseQueryString(r, "doctor_id", ""); raw != "" {
			doctorID, err := validators.ParsePathUUID(raw, "doctor_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.DoctorID = &doctorID
		}
		if raw := validators.ParseQueryString(r, "patient_id", ""); raw != "" {
			patientID, err := validators.ParsePathUUID(raw, "patient_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.PatientID = &patientID
		}
		if raw := validators.ParseQueryString(r, "status", ""); raw != "" {
			status, perr := enums.ParseAppointmentStatus(raw)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid appointment status"))
				return
			}
			filter.Status = &status
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

		result, err := svc.ListAppointments(r.Context(), clinicID, appointments.ListInput{
			Filter: filter,
			Page:   pagination.Params{Page: page, Limit: limit},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "appointments", result)
	}
}

// AppointmentGet returns one calendar entry.
func AppointmentGet(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appointmentID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.GetAppointment(r.Context(), clinicID, appointmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "appointment", appt)
	}
}

type appointmentCreateRequest struct {
	PatientID string  `json:"patient_id" validate:"required,uuid"`
	DoctorID  string  `json:"doctor_id" validate:"required,uuid"`
	Title     string  `json:"title,omitempty" validate:"omitempty,max=200"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	Status    *string `json:"status,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (req appointmentCreateRequest) toInput(receptionistID *uuid.UUID) (appointments.CreateInput, error) {
	patientID, _ := uuid.Parse(req.PatientID)
	doctorID, _ := uuid.Parse(req.DoctorID)

	start, err := parseTimestamp(req.StartTime, "start_time")
	if err != nil {
		return appointments.CreateInput{}, err
	}
	end, err := parseTimestamp(req.EndTime, "end_time")
	if err != nil {
		return appointments.CreateInput{}, err
	}

	input := appointments.CreateInput{
		PatientID:      patientID,
		DoctorID:       doctorID,
		ReceptionistID: receptionistID,
		Title:          req.Title,
		StartTime:      start,
		EndTime:        end,
		Notes:          req.Notes,
	}
	if req.Status != nil {
		status, perr := enums.ParseAppointmentStatus(*req.Status)
		if perr != nil {
			return appointments.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid appointment status")
		}
		input.Status = &status
	}
	return input, nil
}

// AppointmentCreate books a new appointment, recording the booking actor as
// the receptionist when applicable.
func AppointmentCreate(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload appointmentCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var receptionistID *uuid.UUID
		if roleFromRequest(r) == string(enums.StaffRoleReception) {
			receptionistID = &actorID
		}

		input, err := payload.toInput(receptionistID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), clinicID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "appointment booked", appt)
	}
}

type appointmentUpdateRequest struct {
	PatientID *string `json:"patient_id,omitempty" validate:"omitempty,uuid"`
	DoctorID  *string `json:"doctor_id,omitempty" validate:"omitempty,uuid"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=200"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Status    *string `json:"status,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (req appointmentUpdateRequest) toInput() (appointments.UpdateInput, error) {
	var input appointments.UpdateInput

	if req.PatientID != nil {
		id, _ := uuid.Parse(*req.PatientID)
		input.PatientID = &id
	}
	if req.DoctorID != nil {
		id, _ := uuid.Parse(*req.DoctorID)
		input.DoctorID = &id
	}
	input.Title = req.Title
	if req.StartTime != nil {
		start, err := parseTimestamp(*req.StartTime, "start_time")
		if err != nil {
			return appointments.UpdateInput{}, err
		}
		input.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := parseTimestamp(*req.EndTime, "end_time")
		if err != nil {
			return appointments.UpdateInput{}, err
		}
		input.EndTime = &end
	}
	if req.Status != nil {
		status, perr := enums.ParseAppointmentStatus(*req.Status)
		if perr != nil {
			return appointments.UpdateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid appointment status")
		}
		input.Status = &status
	}
	input.Notes = req.Notes
	return input, nil
}

// AppointmentUpdate reschedules or otherwise patches an appointment.
func AppointmentUpdate(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appointmentID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload appointmentUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.UpdateAppointment(r.Context(), clinicID, appointmentID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "appointment updated", appt)
	}
}

// AppointmentDelete cancels and removes a calendar entry.
func AppointmentDelete(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appointmentID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteAppointment(r.Context(), clinicID, appointmentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "appointment deleted", nil)
	}
}

func parseTimestamp(raw, field string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "timestamp must be RFC3339").WithDetails(map[string]any{"field": field})
}
