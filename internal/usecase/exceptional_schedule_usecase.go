package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/scheduling"
	"clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrExceptionalScheduleNotFound = errors.New("exceptional schedule not found")
	ErrExceptionalScheduleExists   = errors.New("an exceptional schedule already exists for this date")
	ErrExceptionalScheduleInPast   = errors.New("cannot change the schedule of a past date")
	ErrScheduleStrandsAppointments = errors.New("active appointments do not fit the new schedule")
)

type ExceptionalScheduleUsecase interface {
	ListMine(ctx context.Context, from, to string) (*dto.ExceptionalScheduleListResponse, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.ExceptionalScheduleListResponse, error)
	Create(ctx context.Context, req *dto.CreateExceptionalScheduleRequest) (*dto.ExceptionalScheduleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type exceptionalScheduleUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	exceptionalRepo   repository.ExceptionalScheduleRepository
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
	loc               *time.Location
	now               func() time.Time
}

func NewExceptionalScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	exceptionalRepo repository.ExceptionalScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
	loc *time.Location,
) ExceptionalScheduleUsecase {
	return &exceptionalScheduleUsecase{
		db:                db,
		log:               log,
		exceptionalRepo:   exceptionalRepo,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
		loc:               loc,
		now:               time.Now,
	}
}

func (u *exceptionalScheduleUsecase) ListMine(ctx context.Context, from, to string) (*dto.ExceptionalScheduleListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return u.list(ctx, doctorID, from, to)
}

func (u *exceptionalScheduleUsecase) ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.ExceptionalScheduleListResponse, error) {
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return u.list(ctx, doctorID, from, to)
}

func (u *exceptionalScheduleUsecase) list(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.ExceptionalScheduleListResponse, error) {
	fromDate, toDate, err := parseDateBounds(from, to)
	if err != nil {
		return nil, err
	}

	schedules, err := u.exceptionalRepo.FindByDoctorID(ctx, u.db.WithContext(ctx), doctorID, fromDate, toDate)
	if err != nil {
		u.log.Warnf("Failed to list exceptional schedules for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.ExceptionalScheduleListResponse{
		Schedules: converter.ExceptionalSchedulesToResponses(schedules),
		Total:     len(schedules),
	}, nil
}

// Create replaces the weekly pattern for one date. The sessions follow the
// weekly rules, and every active appointment on that date must still line
// up with one of the new windows.
func (u *exceptionalScheduleUsecase) Create(ctx context.Context, req *dto.CreateExceptionalScheduleRequest) (*dto.ExceptionalScheduleResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	date, err := entity.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	if date.Before(entity.DateOf(u.now().In(u.loc))) {
		return nil, ErrExceptionalScheduleInPast
	}

	schedule := &entity.ExceptionalSchedule{
		DoctorID:            doctorID,
		Date:                date,
		AppointmentDuration: entity.DefaultAppointmentDuration,
		Reason:              req.Reason,
	}
	if req.AppointmentDuration != 0 {
		schedule.AppointmentDuration = req.AppointmentDuration
	}
	for _, f := range []struct {
		dst **entity.TimeOfDay
		src *string
	}{
		{&schedule.MorningStart, req.MorningStart},
		{&schedule.MorningEnd, req.MorningEnd},
		{&schedule.AfternoonStart, req.AfternoonStart},
		{&schedule.AfternoonEnd, req.AfternoonEnd},
	} {
		if *f.dst, err = parseOptionalTime(f.src); err != nil {
			return nil, err
		}
	}

	day := entity.DayOfWeekFromTime(date)
	if err := scheduling.ValidateSessions(day, schedule.MorningStart, schedule.MorningEnd, schedule.AfternoonStart, schedule.AfternoonEnd); err != nil {
		return nil, err
	}
	if err := scheduling.ValidateDuration(day, schedule.AppointmentDuration); err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	occupied, err := u.appointmentRepo.FindOccupied(ctx, db, doctorID, date, date)
	if err != nil {
		u.log.Warnf("Failed to check appointments for doctor %s on %s: %+v", doctorID, req.Date, err)
		return nil, err
	}
	if len(occupied) > 0 {
		windows := scheduling.GenerateSlots(scheduling.Doctor{ID: doctorID}, schedule.AsWeekly(), date, nil, time.Time{})
		for i := range occupied {
			if _, ok := scheduling.FindWindow(windows, occupied[i].StartTime, occupied[i].EndTime); !ok {
				return nil, ErrScheduleStrandsAppointments
			}
		}
	}

	if err := u.exceptionalRepo.Create(ctx, db, schedule); err != nil {
		if isDuplicateKeyError(err, "exceptional_schedules") {
			return nil, ErrExceptionalScheduleExists
		}
		u.log.Warnf("Failed to create exceptional schedule: %+v", err)
		return nil, err
	}

	response := converter.ExceptionalScheduleToResponse(schedule)
	if err := u.auditService.LogCreate(ctx, nil, &doctorID, entity.AuditActionExceptionalCreate, "exceptional_schedule", int64String(schedule.ID), response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Exceptional schedule created: doctor=%s, date=%s", doctorID, req.Date)
	return response, nil
}

func (u *exceptionalScheduleUsecase) Delete(ctx context.Context, id int64) error {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	db := u.db.WithContext(ctx)
	schedule, err := u.exceptionalRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find exceptional schedule %d: %+v", id, err)
		return err
	}
	if schedule == nil || schedule.DoctorID != doctorID {
		return ErrExceptionalScheduleNotFound
	}

	affected, err := u.exceptionalRepo.Delete(ctx, db, id, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete exceptional schedule %d: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrExceptionalScheduleNotFound
	}

	if err := u.auditService.LogDelete(ctx, nil, &doctorID, entity.AuditActionExceptionalDelete, "exceptional_schedule", int64String(id), converter.ExceptionalScheduleToResponse(schedule)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return nil
}

func int64String(n int64) string {
	return strconv.FormatInt(n, 10)
}
