package repository

import (
	"context"
	"errors"
	"time"

	"clinic-scheduling/internal/domain/entity"
	domainRepo "clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type exceptionalScheduleRepository struct{}

func NewExceptionalScheduleRepository() domainRepo.ExceptionalScheduleRepository {
	return &exceptionalScheduleRepository{}
}

func (r *exceptionalScheduleRepository) Create(ctx context.Context, db *gorm.DB, schedule *entity.ExceptionalSchedule) error {
	return db.WithContext(ctx).Create(schedule).Error
}

func (r *exceptionalScheduleRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.ExceptionalSchedule, error) {
	var schedule entity.ExceptionalSchedule
	err := db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *exceptionalScheduleRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to *time.Time) ([]entity.ExceptionalSchedule, error) {
	var schedules []entity.ExceptionalSchedule
	query := db.WithContext(ctx).Where("doctor_id = ?", doctorID)
	if from != nil {
		query = query.Where("date >= ?", from.Format(entity.DateLayout))
	}
	if to != nil {
		query = query.Where("date <= ?", to.Format(entity.DateLayout))
	}
	if err := query.Order("date ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *exceptionalScheduleRepository) Delete(ctx context.Context, db *gorm.DB, id int64, doctorID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID).Delete(&entity.ExceptionalSchedule{})
	return result.RowsAffected, result.Error
}
