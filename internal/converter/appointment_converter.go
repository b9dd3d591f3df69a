package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
)

// AppointmentToResponse includes doctor and patient names when preloaded.
func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:                 a.ID,
		PatientID:          a.PatientID,
		DoctorID:           a.DoctorID,
		Date:               a.AppointmentDate.Format(entity.DateLayout),
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		DurationMinutes:    a.DurationMinutes,
		ConsultationType:   string(a.ConsultationType),
		Priority:           string(a.Priority),
		ReasonForVisit:     a.ReasonForVisit,
		Symptoms:           a.Symptoms,
		ContactPhone:       a.ContactPhone,
		PatientNotes:       a.PatientNotes,
		Status:             string(a.Status),
		BookingCode:        a.BookingCode,
		Fee:                a.Fee,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		CreatedAt:          a.CreatedAt,
	}

	if a.Doctor != nil {
		response.DoctorName = DoctorDisplayName(a.Doctor)
	}
	if a.Patient != nil {
		response.PatientName = a.Patient.User.FullName
	}

	return response
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, *AppointmentToResponse(&appointments[i]))
	}
	return responses
}
