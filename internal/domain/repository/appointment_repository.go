package repository

import (
	"context"
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentFilter narrows appointment listings. Zero values match all.
type AppointmentFilter struct {
	Status   entity.AppointmentStatus
	FromDate *time.Time
	ToDate   *time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID, filter AppointmentFilter) ([]entity.Appointment, error)
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, filter AppointmentFilter) ([]entity.Appointment, error)
	// FindOccupied returns appointments still holding a slot between the two dates, inclusive.
	FindOccupied(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error)
	// FindOccupiedFrom is FindOccupied with no upper date bound.
	FindOccupiedFrom(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from time.Time) ([]entity.Appointment, error)
	// Cancel flips an occupying appointment to cancelled. Zero rows affected
	// means someone else already moved it out of an occupying status.
	Cancel(ctx context.Context, db *gorm.DB, id uuid.UUID, reason string, at time.Time) (int64, error)
	// UpdateStatus applies a lifecycle move guarded by the expected current status.
	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error)
}
