package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	"github.com/angelmondragon/clinicdesk-backend/api/validators"
	"github.com/angelmondragon/clinicdesk-backend/internal/users"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/angelmondragon/clinicdesk-backend/pkg/pagination"
)

// StaffList returns the clinic's staff roster with optional role filter.
func StaffList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := users.ListInput{Search: validators.ParseQueryString(r, "search", "")}
		if raw := validators.ParseQueryString(r, "role", ""); raw != "" {
			role, perr := enums.ParseStaffRole(raw)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role"))
				return
			}
			input.Role = &role
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
		input.Page = pagination.Params{Page: page, Limit: limit}

		result, err := svc.ListStaff(r.Context(), clinicID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "staff", result)
	}
}

// StaffGet returns one staff member.
func StaffGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		staff, err := svc.GetStaff(r.Context(), clinicID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "staff member", staff)
	}
}

type staffCreateRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Role      string  `json:"role" validate:"required,oneof=admin doctor reception"`
	Specialty *string `json:"specialty,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func (req staffCreateRequest) toInput() users.CreateInput {
	role, _ := enums.ParseStaffRole(req.Role)
	return users.CreateInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
		Specialty: req.Specialty,
		Phone:     req.Phone,
	}
}

// StaffCreate adds a staff member to the clinic.
func StaffCreate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload staffCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		staff, err := svc.CreateStaff(r.Context(), clinicID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "staff member created", staff)
	}
}

type staffUpdateRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=admin doctor reception"`
	Specialty *string `json:"specialty,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

func (req staffUpdateRequest) toInput() users.UpdateInput {
	input := users.UpdateInput{
		Name:      req.Name,
		Specialty: req.Specialty,
		Phone:     req.Phone,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role, _ := enums.ParseStaffRole(*req.Role)
		input.Role = &role
	}
	return input
}

// StaffUpdate patches a staff member, including activation state.
func StaffUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload staffUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		staff, err := svc.UpdateStaff(r.Context(), clinicID, userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "staff member updated", staff)
	}
}

// StaffDelete removes a staff member. Self-deletion is rejected.
func StaffDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable"))
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
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteStaff(r.Context(), clinicID, actorID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "staff member deleted", nil)
	}
}
