package repository

import (
	"context"
	"errors"

	"clinic-scheduling/internal/domain/entity"
	domainRepo "clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindActive lists doctors whose account is active, optionally filtered by
// name and specialization.
func (r *doctorProfileRepository) FindActive(ctx context.Context, db *gorm.DB, filter domainRepo.DoctorFilter) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := db.WithContext(ctx).
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.is_active = ?", true)

	if filter.Name != "" {
		query = query.Where("users.full_name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Specialization != "" {
		query = query.Where("doctor_profiles.specialization ILIKE ?", "%"+filter.Specialization+"%")
	}

	err := query.Preload("User").Order("users.full_name ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.WithContext(ctx).Omit("User", "WeeklySchedule").Save(profile).Error
}
