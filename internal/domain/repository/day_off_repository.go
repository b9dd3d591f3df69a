package repository

import (
	"context"
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DayOffRepository interface {
	Create(ctx context.Context, db *gorm.DB, dayOff *entity.DayOff) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.DayOff, error)
	FindByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) (*entity.DayOff, error)
	// FindByDoctorID lists days off in [from, to]; a nil bound is open.
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to *time.Time) ([]entity.DayOff, error)
	Delete(ctx context.Context, db *gorm.DB, id int64, doctorID uuid.UUID) (int64, error)
}
