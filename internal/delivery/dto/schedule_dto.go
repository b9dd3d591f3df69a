package dto

import (
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

// WeeklyScheduleEntryRequest is one day of a bulk replace. Times are
// "HH:MM" or "HH:MM:SS"; null or "" means unset.
type WeeklyScheduleEntryRequest struct {
	DayOfWeek           *int    `json:"day_of_week" validate:"required,gte=0,lte=6"`
	IsAvailable         bool    `json:"is_available"`
	MorningStart        *string `json:"morning_start" validate:"omitempty,timeofday"`
	MorningEnd          *string `json:"morning_end" validate:"omitempty,timeofday"`
	AfternoonStart      *string `json:"afternoon_start" validate:"omitempty,timeofday"`
	AfternoonEnd        *string `json:"afternoon_end" validate:"omitempty,timeofday"`
	AppointmentDuration int     `json:"appointment_duration" validate:"omitempty,gte=15,lte=120"`
}

type ReplaceWeeklyScheduleRequest struct {
	Entries []WeeklyScheduleEntryRequest `json:"entries" validate:"required,len=7,dive"`
}

type CreateDayOffRequest struct {
	Date             string  `json:"date" validate:"required,date"`
	Reason           string  `json:"reason" validate:"omitempty,max=100"`
	IsFullDay        *bool   `json:"is_full_day"`
	UnavailableStart *string `json:"unavailable_start" validate:"omitempty,timeofday"`
	UnavailableEnd   *string `json:"unavailable_end" validate:"omitempty,timeofday"`
}

type CreateExceptionalScheduleRequest struct {
	Date                string  `json:"date" validate:"required,date"`
	MorningStart        *string `json:"morning_start" validate:"omitempty,timeofday"`
	MorningEnd          *string `json:"morning_end" validate:"omitempty,timeofday"`
	AfternoonStart      *string `json:"afternoon_start" validate:"omitempty,timeofday"`
	AfternoonEnd        *string `json:"afternoon_end" validate:"omitempty,timeofday"`
	AppointmentDuration int     `json:"appointment_duration" validate:"omitempty,gte=15,lte=120"`
	Reason              string  `json:"reason" validate:"omitempty,max=200"`
}

// SlotQuery holds the parsed query string of the slot listing.
type SlotQuery struct {
	StartDate     string `validate:"omitempty,date"`
	EndDate       string `validate:"omitempty,date"`
	DaysAhead     int    `validate:"gte=0"`
	AvailableOnly bool
}

// Response DTOs

type WeeklyScheduleEntryResponse struct {
	ID                  int64             `json:"id,omitempty"`
	DayOfWeek           int               `json:"day_of_week"`
	DayName             string            `json:"day_name"`
	IsAvailable         bool              `json:"is_available"`
	MorningStart        *entity.TimeOfDay `json:"morning_start"`
	MorningEnd          *entity.TimeOfDay `json:"morning_end"`
	AfternoonStart      *entity.TimeOfDay `json:"afternoon_start"`
	AfternoonEnd        *entity.TimeOfDay `json:"afternoon_end"`
	AppointmentDuration int               `json:"appointment_duration"`
}

type WeeklyScheduleResponse struct {
	DoctorID uuid.UUID                     `json:"doctor_id"`
	Entries  []WeeklyScheduleEntryResponse `json:"entries"`
}

type DayOffResponse struct {
	ID               int64             `json:"id"`
	DoctorID         uuid.UUID         `json:"doctor_id"`
	Date             string            `json:"date"`
	Reason           string            `json:"reason,omitempty"`
	IsFullDay        bool              `json:"is_full_day"`
	UnavailableStart *entity.TimeOfDay `json:"unavailable_start,omitempty"`
	UnavailableEnd   *entity.TimeOfDay `json:"unavailable_end,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type DayOffListResponse struct {
	DaysOff []DayOffResponse `json:"days_off"`
	Total   int              `json:"total"`
}

type DayOffCheckResponse struct {
	Date     string          `json:"date"`
	IsDayOff bool            `json:"is_day_off"`
	DayOff   *DayOffResponse `json:"day_off,omitempty"`
}

type ExceptionalScheduleResponse struct {
	ID                  int64             `json:"id"`
	DoctorID            uuid.UUID         `json:"doctor_id"`
	Date                string            `json:"date"`
	MorningStart        *entity.TimeOfDay `json:"morning_start"`
	MorningEnd          *entity.TimeOfDay `json:"morning_end"`
	AfternoonStart      *entity.TimeOfDay `json:"afternoon_start"`
	AfternoonEnd        *entity.TimeOfDay `json:"afternoon_end"`
	AppointmentDuration int               `json:"appointment_duration"`
	Reason              string            `json:"reason,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

type ExceptionalScheduleListResponse struct {
	Schedules []ExceptionalScheduleResponse `json:"schedules"`
	Total     int                           `json:"total"`
}

type TimeSlotResponse struct {
	ID              string           `json:"id"`
	DoctorID        uuid.UUID        `json:"doctor_id"`
	DoctorName      string           `json:"doctor_name"`
	Date            string           `json:"date"`
	StartTime       entity.TimeOfDay `json:"start_time"`
	EndTime         entity.TimeOfDay `json:"end_time"`
	IsAvailable     bool             `json:"is_available"`
	Status          string           `json:"status"`
	Session         string           `json:"session"`
	DurationMinutes int              `json:"duration_minutes"`
}

type SlotListResponse struct {
	DoctorID  uuid.UUID          `json:"doctor_id"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Slots     []TimeSlotResponse `json:"slots"`
	Total     int                `json:"total"`
}

type CandidateTimesResponse struct {
	Session string   `json:"session"`
	Times   []string `json:"times"`
}
