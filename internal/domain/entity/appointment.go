package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// OccupyingStatuses hold a slot. Must match the partial unique index in the migrations.
var OccupyingStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusInProgress,
}

type ConsultationType string

const (
	ConsultationGeneral        ConsultationType = "general"
	ConsultationFollowUp       ConsultationType = "follow_up"
	ConsultationEmergency      ConsultationType = "emergency"
	ConsultationRoutineCheckup ConsultationType = "routine_checkup"
	ConsultationSpecialist     ConsultationType = "specialist"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var ErrInvalidStatusTransition = errors.New("invalid appointment status transition")

// Appointment is a booked slot.
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	AppointmentDate    time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	StartTime          TimeOfDay         `gorm:"type:time;not null" json:"start_time"`
	EndTime            TimeOfDay         `gorm:"type:time;not null" json:"end_time"`
	DurationMinutes    int               `gorm:"not null" json:"duration_minutes"`
	ConsultationType   ConsultationType  `gorm:"type:varchar(30);not null;default:'general'" json:"consultation_type"`
	Priority           Priority          `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	ReasonForVisit     string            `gorm:"type:text;not null" json:"reason_for_visit"`
	Symptoms           string            `gorm:"type:text" json:"symptoms,omitempty"`
	ContactPhone       string            `gorm:"type:varchar(20)" json:"contact_phone,omitempty"`
	PatientNotes       string            `gorm:"type:text" json:"patient_notes,omitempty"`
	CancellationReason string            `gorm:"type:text" json:"cancellation_reason,omitempty"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	BookingCode        string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	Fee                decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"fee"`
	IdempotencyKey     *uuid.UUID        `gorm:"type:uuid;uniqueIndex" json:"idempotency_key,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *PatientProfile `gorm:"foreignKey:PatientID;references:UserID" json:"patient,omitempty"`
	Doctor  *DoctorProfile  `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Occupies reports whether the appointment still holds its slot.
func (a *Appointment) Occupies() bool {
	for _, s := range OccupyingStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is possible.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// StartsAt is the appointment start instant in loc.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.StartTime.On(a.AppointmentDate, loc)
}

// Window returns the natural key used to mark generated slots as booked.
func (a *Appointment) Window() BookedWindow {
	return BookedWindow{
		DoctorID:  a.DoctorID,
		Date:      a.AppointmentDate,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
	}
}

var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled:  {AppointmentStatusConfirmed, AppointmentStatusInProgress, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed:  {AppointmentStatusInProgress, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusInProgress: {AppointmentStatusCompleted},
}

// TransitionTo moves the appointment to next if the lifecycle allows it.
func (a *Appointment) TransitionTo(next AppointmentStatus) error {
	for _, s := range allowedTransitions[a.Status] {
		if s == next {
			a.Status = next
			return nil
		}
	}
	return ErrInvalidStatusTransition
}

// Cancel marks the appointment cancelled at now.
func (a *Appointment) Cancel(reason string, now time.Time) error {
	if err := a.TransitionTo(AppointmentStatusCancelled); err != nil {
		return err
	}
	a.CancellationReason = reason
	a.CancelledAt = &now
	return nil
}
