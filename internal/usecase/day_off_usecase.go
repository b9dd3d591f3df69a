package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDayOffNotFound        = errors.New("day off not found")
	ErrDayOffExists          = errors.New("a day off already exists for this date")
	ErrDayOffInPast          = errors.New("cannot add a day off in the past")
	ErrDayOffInvalidRange    = errors.New("partial day off needs unavailable_start before unavailable_end")
	ErrDayOffHasAppointments = errors.New("active appointments fall inside this day off")
)

type DayOffUsecase interface {
	ListMine(ctx context.Context, from, to string) (*dto.DayOffListResponse, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.DayOffListResponse, error)
	Create(ctx context.Context, req *dto.CreateDayOffRequest) (*dto.DayOffResponse, error)
	Delete(ctx context.Context, id int64) error
	CheckMine(ctx context.Context, date string) (*dto.DayOffCheckResponse, error)
}

type dayOffUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	dayOffRepo        repository.DayOffRepository
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
	loc               *time.Location
	now               func() time.Time
}

func NewDayOffUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	dayOffRepo repository.DayOffRepository,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
	loc *time.Location,
) DayOffUsecase {
	return &dayOffUsecase{
		db:                db,
		log:               log,
		dayOffRepo:        dayOffRepo,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
		loc:               loc,
		now:               time.Now,
	}
}

func (u *dayOffUsecase) ListMine(ctx context.Context, from, to string) (*dto.DayOffListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return u.list(ctx, doctorID, from, to)
}

func (u *dayOffUsecase) ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.DayOffListResponse, error) {
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

func (u *dayOffUsecase) list(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.DayOffListResponse, error) {
	fromDate, toDate, err := parseDateBounds(from, to)
	if err != nil {
		return nil, err
	}

	daysOff, err := u.dayOffRepo.FindByDoctorID(ctx, u.db.WithContext(ctx), doctorID, fromDate, toDate)
	if err != nil {
		u.log.Warnf("Failed to list days off for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.DayOffListResponse{
		DaysOff: converter.DaysOffToResponses(daysOff),
		Total:   len(daysOff),
	}, nil
}

// Create blocks a date or part of it. A day off that would swallow an
// active appointment is refused; the appointment has to be cancelled first.
func (u *dayOffUsecase) Create(ctx context.Context, req *dto.CreateDayOffRequest) (*dto.DayOffResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	date, err := entity.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	if date.Before(entity.DateOf(u.now().In(u.loc))) {
		return nil, ErrDayOffInPast
	}

	start, err := parseOptionalTime(req.UnavailableStart)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalTime(req.UnavailableEnd)
	if err != nil {
		return nil, err
	}

	dayOff := &entity.DayOff{
		DoctorID:  doctorID,
		Date:      date,
		Reason:    req.Reason,
		IsFullDay: start == nil && end == nil,
	}
	if req.IsFullDay != nil {
		dayOff.IsFullDay = *req.IsFullDay
	}
	if !dayOff.IsFullDay {
		if start == nil || end == nil || *start >= *end {
			return nil, ErrDayOffInvalidRange
		}
		dayOff.UnavailableStart, dayOff.UnavailableEnd = start, end
	}

	db := u.db.WithContext(ctx)
	occupied, err := u.appointmentRepo.FindOccupied(ctx, db, doctorID, date, date)
	if err != nil {
		u.log.Warnf("Failed to check appointments for doctor %s on %s: %+v", doctorID, req.Date, err)
		return nil, err
	}
	for i := range occupied {
		if dayOff.Blocks(occupied[i].StartTime, occupied[i].EndTime) {
			return nil, ErrDayOffHasAppointments
		}
	}

	if err := u.dayOffRepo.Create(ctx, db, dayOff); err != nil {
		if isDuplicateKeyError(err, "day_offs") {
			return nil, ErrDayOffExists
		}
		u.log.Warnf("Failed to create day off: %+v", err)
		return nil, err
	}

	response := converter.DayOffToResponse(dayOff)
	if err := u.auditService.LogCreate(ctx, nil, &doctorID, entity.AuditActionDayOffCreate, "day_off", int64String(dayOff.ID), response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Day off created: doctor=%s, date=%s, full_day=%v", doctorID, req.Date, dayOff.IsFullDay)
	return response, nil
}

func (u *dayOffUsecase) Delete(ctx context.Context, id int64) error {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	db := u.db.WithContext(ctx)
	dayOff, err := u.dayOffRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find day off %d: %+v", id, err)
		return err
	}
	if dayOff == nil || dayOff.DoctorID != doctorID {
		return ErrDayOffNotFound
	}

	affected, err := u.dayOffRepo.Delete(ctx, db, id, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete day off %d: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrDayOffNotFound
	}

	if err := u.auditService.LogDelete(ctx, nil, &doctorID, entity.AuditActionDayOffDelete, "day_off", int64String(id), converter.DayOffToResponse(dayOff)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return nil
}

func (u *dayOffUsecase) CheckMine(ctx context.Context, date string) (*dto.DayOffCheckResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	d, err := entity.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	dayOff, err := u.dayOffRepo.FindByDoctorAndDate(ctx, u.db.WithContext(ctx), doctorID, d)
	if err != nil {
		u.log.Warnf("Failed to check day off for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}

	return &dto.DayOffCheckResponse{
		Date:     d.Format(entity.DateLayout),
		IsDayOff: dayOff != nil,
		DayOff:   converter.DayOffToResponse(dayOff),
	}, nil
}

// parseDateBounds reads optional YYYY-MM-DD filters.
func parseDateBounds(from, to string) (*time.Time, *time.Time, error) {
	var fromDate, toDate *time.Time
	if from != "" {
		d, err := entity.ParseDate(from)
		if err != nil {
			return nil, nil, ErrInvalidDateFormat
		}
		fromDate = &d
	}
	if to != "" {
		d, err := entity.ParseDate(to)
		if err != nil {
			return nil, nil, ErrInvalidDateFormat
		}
		toDate = &d
	}
	if fromDate != nil && toDate != nil && toDate.Before(*fromDate) {
		return nil, nil, ErrInvalidDateRange
	}
	return fromDate, toDate, nil
}
