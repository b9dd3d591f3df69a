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

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit("Patient", "Doctor").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor.User").Preload("Patient.User").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor.User").
		Where("idempotency_key = ?", key).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID, filter domainRepo.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := applyAppointmentFilter(db.WithContext(ctx).Where("patient_id = ?", patientID), filter)
	err := query.Preload("Doctor.User").
		Order("appointment_date DESC, start_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, filter domainRepo.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := applyAppointmentFilter(db.WithContext(ctx).Where("doctor_id = ?", doctorID), filter)
	err := query.Preload("Patient.User").
		Order("appointment_date ASC, start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindOccupied(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date BETWEEN ? AND ?", doctorID, from.Format(entity.DateLayout), to.Format(entity.DateLayout)).
		Where("status IN ?", entity.OccupyingStatuses).
		Order("appointment_date ASC, start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindOccupiedFrom(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date >= ?", doctorID, from.Format(entity.DateLayout)).
		Where("status IN ?", entity.OccupyingStatuses).
		Order("appointment_date ASC, start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Cancel only touches rows still holding their slot, so two concurrent
// cancels cannot both succeed.
func (r *appointmentRepository) Cancel(ctx context.Context, db *gorm.DB, id uuid.UUID, reason string, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, entity.OccupyingStatuses).
		Updates(map[string]interface{}{
			"status":              entity.AppointmentStatusCancelled,
			"cancellation_reason": reason,
			"cancelled_at":        at,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func applyAppointmentFilter(query *gorm.DB, filter domainRepo.AppointmentFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("appointment_date >= ?", filter.FromDate.Format(entity.DateLayout))
	}
	if filter.ToDate != nil {
		query = query.Where("appointment_date <= ?", filter.ToDate.Format(entity.DateLayout))
	}
	return query
}
