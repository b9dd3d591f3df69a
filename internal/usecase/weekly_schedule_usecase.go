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
	"clinic-scheduling/internal/scheduling"
	"clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrWeekAlreadyInitialized = errors.New("weekly schedule already exists")

type WeeklyScheduleUsecase interface {
	GetMyWeek(ctx context.Context) (*dto.WeeklyScheduleResponse, error)
	GetDoctorWeek(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error)
	ReplaceMyWeek(ctx context.Context, req *dto.ReplaceWeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error)
	InitializeMyWeek(ctx context.Context) (*dto.WeeklyScheduleResponse, error)
}

type weeklyScheduleUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	weeklyRepo        repository.WeeklyScheduleRepository
	doctorProfileRepo repository.DoctorProfileRepository
	appointmentRepo   repository.AppointmentRepository
	exceptionalRepo   repository.ExceptionalScheduleRepository
	auditService      service.AuditService
	loc               *time.Location
	now               func() time.Time
}

func NewWeeklyScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	weeklyRepo repository.WeeklyScheduleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	exceptionalRepo repository.ExceptionalScheduleRepository,
	auditService service.AuditService,
	loc *time.Location,
) WeeklyScheduleUsecase {
	return &weeklyScheduleUsecase{
		db:                db,
		log:               log,
		weeklyRepo:        weeklyRepo,
		doctorProfileRepo: doctorProfileRepo,
		appointmentRepo:   appointmentRepo,
		exceptionalRepo:   exceptionalRepo,
		auditService:      auditService,
		loc:               loc,
		now:               time.Now,
	}
}

func (u *weeklyScheduleUsecase) GetMyWeek(ctx context.Context) (*dto.WeeklyScheduleResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	week, err := u.loadWeek(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return converter.WeekToResponse(doctorID, week.Entries()), nil
}

func (u *weeklyScheduleUsecase) GetDoctorWeek(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	week, err := u.loadWeek(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return converter.WeekToResponse(doctorID, week.Entries()), nil
}

// ReplaceMyWeek validates and stores all seven days at once. Nothing is
// written when any day fails validation or when an upcoming appointment
// would no longer line up with a window of the new week.
func (u *weeklyScheduleUsecase) ReplaceMyWeek(ctx context.Context, req *dto.ReplaceWeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	entries := make([]entity.WeeklySchedule, 0, len(req.Entries))
	for i := range req.Entries {
		e, err := weeklyEntryFromRequest(doctorID, &req.Entries[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := scheduling.ValidateForSave(entries); err != nil {
		return nil, err
	}

	next, err := scheduling.NewWeekModel(doctorID, entries)
	if err != nil {
		return nil, err
	}
	if err := u.checkAppointmentsFit(ctx, doctorID, next); err != nil {
		return nil, err
	}

	previous, err := u.loadWeek(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if err := u.weeklyRepo.ReplaceWeek(ctx, u.db.WithContext(ctx), doctorID, entries); err != nil {
		u.log.Warnf("Failed to replace weekly schedule for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	response := converter.WeekToResponse(doctorID, next.Entries())

	if err := u.auditService.LogUpdate(ctx, nil, &doctorID, entity.AuditActionWeekReplace, "weekly_schedule", doctorID.String(),
		converter.WeekToResponse(doctorID, previous.Entries()).Entries, response.Entries); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Weekly schedule replaced: doctor=%s", doctorID)
	return response, nil
}

// checkAppointmentsFit regenerates every date that still holds an appointment
// from today on and requires each appointment to match a window exactly.
// Dates with an exceptional schedule keep it, so the new week does not apply.
func (u *weeklyScheduleUsecase) checkAppointmentsFit(ctx context.Context, doctorID uuid.UUID, week scheduling.WeekModel) error {
	db := u.db.WithContext(ctx)
	today := entity.DateOf(u.now().In(u.loc))

	occupied, err := u.appointmentRepo.FindOccupiedFrom(ctx, db, doctorID, today)
	if err != nil {
		u.log.Warnf("Failed to load appointments for doctor %s: %+v", doctorID, err)
		return err
	}
	if len(occupied) == 0 {
		return nil
	}

	exceptional, err := u.exceptionalRepo.FindByDoctorID(ctx, db, doctorID, &today, nil)
	if err != nil {
		u.log.Warnf("Failed to load exceptional schedules for doctor %s: %+v", doctorID, err)
		return err
	}
	ov := scheduling.Overrides{Exceptional: exceptional}

	doc := scheduling.Doctor{ID: doctorID}
	windows := make(map[time.Time][]entity.TimeSlot)
	for i := range occupied {
		date := entity.DateOf(occupied[i].AppointmentDate)
		slots, ok := windows[date]
		if !ok {
			slots = scheduling.GenerateSlots(doc, scheduling.EntryFor(week, ov, date), date, nil, time.Time{})
			windows[date] = slots
		}
		if _, ok := scheduling.FindWindow(slots, occupied[i].StartTime, occupied[i].EndTime); !ok {
			u.log.Infof("Weekly schedule change rejected: appointment %s on %s %s-%s no longer fits",
				occupied[i].ID, date.Format(entity.DateLayout), occupied[i].StartTime, occupied[i].EndTime)
			return ErrScheduleStrandsAppointments
		}
	}
	return nil
}

// InitializeMyWeek stores the default week for a doctor who has none yet.
func (u *weeklyScheduleUsecase) InitializeMyWeek(ctx context.Context) (*dto.WeeklyScheduleResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	existing, err := u.weeklyRepo.FindByDoctorID(ctx, u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to load weekly schedule for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrWeekAlreadyInitialized
	}

	entries := scheduling.SeedDefaults(doctorID).Entries()
	if err := u.weeklyRepo.ReplaceWeek(ctx, u.db.WithContext(ctx), doctorID, entries); err != nil {
		u.log.Warnf("Failed to initialize weekly schedule for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	response := converter.WeekToResponse(doctorID, entries)
	if err := u.auditService.LogCreate(ctx, nil, &doctorID, entity.AuditActionWeekInitialize, "weekly_schedule", doctorID.String(), response.Entries); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Weekly schedule initialized: doctor=%s", doctorID)
	return response, nil
}

func (u *weeklyScheduleUsecase) loadWeek(ctx context.Context, doctorID uuid.UUID) (scheduling.WeekModel, error) {
	entries, err := u.weeklyRepo.FindByDoctorID(ctx, u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to load weekly schedule for doctor %s: %+v", doctorID, err)
		return scheduling.WeekModel{}, err
	}
	return scheduling.NewWeekModel(doctorID, entries)
}

// weeklyEntryFromRequest parses one submitted day. Sessions of an
// unavailable day are dropped since they can never produce slots.
func weeklyEntryFromRequest(doctorID uuid.UUID, r *dto.WeeklyScheduleEntryRequest) (entity.WeeklySchedule, error) {
	day := entity.DayOfWeek(-1)
	if r.DayOfWeek != nil {
		day = entity.DayOfWeek(*r.DayOfWeek)
	}

	e := entity.DefaultWeeklySchedule(doctorID, day)
	e.IsAvailable = r.IsAvailable
	if r.AppointmentDuration != 0 {
		e.AppointmentDuration = r.AppointmentDuration
	}

	var err error
	if e.MorningStart, err = parseOptionalTime(r.MorningStart); err != nil {
		return e, err
	}
	if e.MorningEnd, err = parseOptionalTime(r.MorningEnd); err != nil {
		return e, err
	}
	if e.AfternoonStart, err = parseOptionalTime(r.AfternoonStart); err != nil {
		return e, err
	}
	if e.AfternoonEnd, err = parseOptionalTime(r.AfternoonEnd); err != nil {
		return e, err
	}

	if !e.IsAvailable {
		e.ClearSessions()
	}
	return e, nil
}

func parseOptionalTime(s *string) (*entity.TimeOfDay, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := entity.ParseTimeOfDay(*s)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	return &t, nil
}
