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

type dayOffRepository struct{}

func NewDayOffRepository() domainRepo.DayOffRepository {
	return &dayOffRepository{}
}

func (r *dayOffRepository) Create(ctx context.Context, db *gorm.DB, dayOff *entity.DayOff) error {
	return db.WithContext(ctx).Create(dayOff).Error
}

func (r *dayOffRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.DayOff, error) {
	var dayOff entity.DayOff
	err := db.WithContext(ctx).Where("id = ?", id).First(&dayOff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dayOff, nil
}

func (r *dayOffRepository) FindByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) (*entity.DayOff, error) {
	var dayOff entity.DayOff
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND date = ?", doctorID, date.Format(entity.DateLayout)).
		First(&dayOff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dayOff, nil
}

func (r *dayOffRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to *time.Time) ([]entity.DayOff, error) {
	var daysOff []entity.DayOff
	query := db.WithContext(ctx).Where("doctor_id = ?", doctorID)
	if from != nil {
		query = query.Where("date >= ?", from.Format(entity.DateLayout))
	}
	if to != nil {
		query = query.Where("date <= ?", to.Format(entity.DateLayout))
	}
	if err := query.Order("date ASC").Find(&daysOff).Error; err != nil {
		return nil, err
	}
	return daysOff, nil
}

// Delete only removes rows owned by doctorID. Returns affected rows: 0 means
// missing or not owned.
func (r *dayOffRepository) Delete(ctx context.Context, db *gorm.DB, id int64, doctorID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID).Delete(&entity.DayOff{})
	return result.RowsAffected, result.Error
}
