package repository

import (
	"context"

	"clinic-scheduling/internal/domain/entity"
	domainRepo "clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type weeklyScheduleRepository struct{}

func NewWeeklyScheduleRepository() domainRepo.WeeklyScheduleRepository {
	return &weeklyScheduleRepository{}
}

func (r *weeklyScheduleRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.WeeklySchedule, error) {
	var entries []entity.WeeklySchedule
	err := db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day_of_week ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReplaceWeek deletes the doctor's rows and inserts the new set. Readers see
// either the old week or the new one.
func (r *weeklyScheduleRepository) ReplaceWeek(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, entries []entity.WeeklySchedule) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ?", doctorID).Delete(&entity.WeeklySchedule{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]entity.WeeklySchedule, len(entries))
		for i, e := range entries {
			e.ID = 0
			e.DoctorID = doctorID
			rows[i] = e
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		copy(entries, rows)
		return nil
	})
}
