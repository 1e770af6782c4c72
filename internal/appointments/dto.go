package appointments

import (
	"time"

	"github.com/angelmondragon/clinicdesk-backend/pkg/db/models"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// AppointmentDTO is the API representation of a calendar slot, with the
// patient and doctor names joined in for display.
type AppointmentDTO struct {
	ID             uuid.UUID               `json:"id"`
	PatientID      uuid.UUID               `json:"patient_id"`
	PatientName    string                  `json:"patient_name,omitempty"`
	DoctorID       uuid.UUID               `json:"doctor_id"`
	DoctorName     string                  `json:"doctor_name,omitempty"`
	ReceptionistID *uuid.UUID              `json:"receptionist_id,omitempty"`
	Title          string                  `json:"title"`
	StartTime      time.Time               `json:"start_time"`
	EndTime        time.Time               `json:"end_time"`
	Status         enums.AppointmentStatus `json:"status"`
	Notes          *string                 `json:"notes,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

func toDTO(appt *models.Appointment, patientName, doctorName string) *AppointmentDTO {
	if appt == nil {
		return nil
	}
	return &AppointmentDTO{
		ID:             appt.ID,
		PatientID:      appt.PatientID,
		PatientName:    patientName,
		DoctorID:       appt.DoctorID,
		DoctorName:     doctorName,
		ReceptionistID: appt.ReceptionistID,
		Title:          appt.Title,
		StartTime:      appt.StartTime,
		EndTime:        appt.EndTime,
		Status:         appt.Status,
		Notes:          appt.Notes,
		CreatedAt:      appt.CreatedAt,
		UpdatedAt:      appt.UpdatedAt,
	}
}
