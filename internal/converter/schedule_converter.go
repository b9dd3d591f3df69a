package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

func WeeklyEntryToResponse(e *entity.WeeklySchedule) dto.WeeklyScheduleEntryResponse {
	return dto.WeeklyScheduleEntryResponse{
		ID:                  e.ID,
		DayOfWeek:           int(e.DayOfWeek),
		DayName:             e.DayOfWeek.String(),
		IsAvailable:         e.IsAvailable,
		MorningStart:        e.MorningStart,
		MorningEnd:          e.MorningEnd,
		AfternoonStart:      e.AfternoonStart,
		AfternoonEnd:        e.AfternoonEnd,
		AppointmentDuration: e.AppointmentDuration,
	}
}

// WeekToResponse expects the seven entries of a full week in day order.
func WeekToResponse(doctorID uuid.UUID, entries []entity.WeeklySchedule) *dto.WeeklyScheduleResponse {
	response := &dto.WeeklyScheduleResponse{
		DoctorID: doctorID,
		Entries:  make([]dto.WeeklyScheduleEntryResponse, 0, len(entries)),
	}
	for i := range entries {
		response.Entries = append(response.Entries, WeeklyEntryToResponse(&entries[i]))
	}
	return response
}

func DayOffToResponse(d *entity.DayOff) *dto.DayOffResponse {
	if d == nil {
		return nil
	}
	return &dto.DayOffResponse{
		ID:               d.ID,
		DoctorID:         d.DoctorID,
		Date:             d.Date.Format(entity.DateLayout),
		Reason:           d.Reason,
		IsFullDay:        d.IsFullDay,
		UnavailableStart: d.UnavailableStart,
		UnavailableEnd:   d.UnavailableEnd,
		CreatedAt:        d.CreatedAt,
	}
}

func DaysOffToResponses(daysOff []entity.DayOff) []dto.DayOffResponse {
	responses := make([]dto.DayOffResponse, 0, len(daysOff))
	for i := range daysOff {
		responses = append(responses, *DayOffToResponse(&daysOff[i]))
	}
	return responses
}

func ExceptionalScheduleToResponse(s *entity.ExceptionalSchedule) *dto.ExceptionalScheduleResponse {
	if s == nil {
		return nil
	}
	return &dto.ExceptionalScheduleResponse{
		ID:                  s.ID,
		DoctorID:            s.DoctorID,
		Date:                s.Date.Format(entity.DateLayout),
		MorningStart:        s.MorningStart,
		MorningEnd:          s.MorningEnd,
		AfternoonStart:      s.AfternoonStart,
		AfternoonEnd:        s.AfternoonEnd,
		AppointmentDuration: s.AppointmentDuration,
		Reason:              s.Reason,
		CreatedAt:           s.CreatedAt,
	}
}

func ExceptionalSchedulesToResponses(schedules []entity.ExceptionalSchedule) []dto.ExceptionalScheduleResponse {
	responses := make([]dto.ExceptionalScheduleResponse, 0, len(schedules))
	for i := range schedules {
		responses = append(responses, *ExceptionalScheduleToResponse(&schedules[i]))
	}
	return responses
}
