package patients

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// PatientDTO is the API representation of a patient record.
type PatientDTO struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      *string    `json:"email,omitempty"`
	Phone      *string    `json:"phone,omitempty"`
	DOB        *time.Time `json:"dob,omitempty"`
	Gender     *string    `json:"gender,omitempty"`
	Address    *string    `json:"address,omitempty"`
	BloodGroup *string    `json:"blood_group,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toDTO(patient *models.Patient) *PatientDTO {
	if patient == nil {
		return nil
	}
	return &PatientDTO{
		ID:         patient.ID,
		Name:       patient.Name,
		Email:      patient.Email,
		Phone:      patient.Phone,
		DOB:        patient.DOB,
		Gender:     patient.Gender,
		Address:    patient.Address,
		BloodGroup: patient.BloodGroup,
		Notes:      patient.Notes,
		CreatedAt:  patient.CreatedAt,
		UpdatedAt:  patient.UpdatedAt,
	}
}
