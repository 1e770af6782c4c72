package controllers

import (
	"net/http"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	"github.com/angelmondragon/clinicdesk-backend/api/validators"
	"github.com/angelmondragon/clinicdesk-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
)

type registerRequest struct {
	ClinicName    string  `json:"clinic_name" validate:"required,min=2,max=120"`
	ClinicAddress *string `json:"clinic_address,omitempty"`
	ClinicPhone   *string `json:"clinic_phone,omitempty"`
	AdminName     string  `json:"admin_name" validate:"required,min=2,max=120"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=8,max=72"`
}

func (r registerRequest) toInput() auth.RegisterInput {
	return auth.RegisterInput{
		ClinicName:    r.ClinicName,
		ClinicAddress: r.ClinicAddress,
		ClinicPhone:   r.ClinicPhone,
		AdminName:     r.AdminName,
		Email:         r.Email,
		Password:      r.Password,
	}
}

// Register provisions a new clinic with its first admin account.
func Register(svc auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "clinic registered", session)
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

// Login exchanges credentials for a session token.
func Login(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), auth.LoginInput{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "logged in", session)
	}
}

// Me returns the authenticated user's fresh profile.
func Me(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Profile(r.Context(), clinicID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "profile", profile)
	}
}
