package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
)

func TimeSlotToResponse(s *entity.TimeSlot) dto.TimeSlotResponse {
	return dto.TimeSlotResponse{
		ID:              s.ID,
		DoctorID:        s.DoctorID,
		DoctorName:      s.DoctorName,
		Date:            s.Date.Format(entity.DateLayout),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		IsAvailable:     s.IsAvailable,
		Status:          string(s.Status),
		Session:         string(s.Session),
		DurationMinutes: s.DurationMinutes,
	}
}

func TimeSlotsToResponses(slots []entity.TimeSlot) []dto.TimeSlotResponse {
	responses := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		responses = append(responses, TimeSlotToResponse(&slots[i]))
	}
	return responses
}
