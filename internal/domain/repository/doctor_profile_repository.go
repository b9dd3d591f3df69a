package repository

import (
	"context"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorFilter narrows the public doctor directory. Empty fields match all.
type DoctorFilter struct {
	Name           string
	Specialization string
}

type DoctorProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindActive(ctx context.Context, db *gorm.DB, filter DoctorFilter) ([]entity.DoctorProfile, error)
	Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
}
