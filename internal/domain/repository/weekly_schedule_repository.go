package repository

import (
	"context"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WeeklyScheduleRepository interface {
	// FindByDoctorID returns the stored entries ordered Monday to Sunday.
	// Days never saved are simply absent.
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.WeeklySchedule, error)
	// ReplaceWeek swaps all of a doctor's entries in one transaction.
	ReplaceWeek(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, entries []entity.WeeklySchedule) error
}
