package auth

import (
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	ClinicID uuid.UUID
	Email    string
	Role     enums.StaffRole
}

// AccessTokenClaims represents the typed JWT issued to clients. The token is
// a capability hint only; the auth middleware re-fetches the user row on
// every request.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"user_id"`
	ClinicID uuid.UUID       `json:"tenant_id"`
	Email    string          `json:"email"`
	Role     enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
