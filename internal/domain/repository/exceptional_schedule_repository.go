package repository

import (
	"context"
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExceptionalScheduleRepository interface {
	Create(ctx context.Context, db *gorm.DB, schedule *entity.ExceptionalSchedule) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.ExceptionalSchedule, error)
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to *time.Time) ([]entity.ExceptionalSchedule, error)
	Delete(ctx context.Context, db *gorm.DB, id int64, doctorID uuid.UUID) (int64, error)
}
