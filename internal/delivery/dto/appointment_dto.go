package dto

import (
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// BookingRequest books one virtual slot. The patient comes from the token.
// IdempotencyKey lets a client safely resubmit after a lost response.
type BookingRequest struct {
	DoctorID         uuid.UUID  `json:"doctor_id" validate:"required"`
	Date             string     `json:"date" validate:"required,date"`
	StartTime        string     `json:"start_time" validate:"required,timeofday"`
	EndTime          string     `json:"end_time" validate:"required,timeofday"`
	ConsultationType string     `json:"consultation_type" validate:"required,oneof=general follow_up emergency routine_checkup specialist"`
	ReasonForVisit   string     `json:"reason_for_visit" validate:"required,min=3,max=500"`
	Symptoms         string     `json:"symptoms" validate:"omitempty,max=1000"`
	Priority         string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	ContactPhone     string     `json:"contact_phone" validate:"omitempty,max=20,phone"`
	PatientNotes     string     `json:"patient_notes" validate:"omitempty,max=1000"`
	IdempotencyKey   *uuid.UUID `json:"idempotency_key,omitempty"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed in_progress completed no_show"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uuid.UUID        `json:"id"`
	PatientID          uuid.UUID        `json:"patient_id"`
	PatientName        string           `json:"patient_name,omitempty"`
	DoctorID           uuid.UUID        `json:"doctor_id"`
	DoctorName         string           `json:"doctor_name,omitempty"`
	Date               string           `json:"date"`
	StartTime          entity.TimeOfDay `json:"start_time"`
	EndTime            entity.TimeOfDay `json:"end_time"`
	DurationMinutes    int              `json:"duration_minutes"`
	ConsultationType   string           `json:"consultation_type"`
	Priority           string           `json:"priority"`
	ReasonForVisit     string           `json:"reason_for_visit"`
	Symptoms           string           `json:"symptoms,omitempty"`
	ContactPhone       string           `json:"contact_phone,omitempty"`
	PatientNotes       string           `json:"patient_notes,omitempty"`
	Status             string           `json:"status"`
	BookingCode        string           `json:"booking_code"`
	Fee                decimal.Decimal  `json:"fee"`
	CancellationReason string           `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
