package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-scheduling/config"
	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/scheduling"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidDateRange  = errors.New("end_date must not be before start_date")
	ErrDateRangeTooLarge = errors.New("requested date range is too large")
	ErrUnknownSession    = errors.New("session must be morning or afternoon")
)

type SlotUsecase interface {
	GetDoctorSlots(ctx context.Context, doctorID uuid.UUID, query *dto.SlotQuery) (*dto.SlotListResponse, error)
	GetCandidateTimes(ctx context.Context, session string) (*dto.CandidateTimesResponse, error)
}

type slotUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	source            *slotSource
	cfg               config.BookingConfig
	loc               *time.Location
	now               func() time.Time
}

func NewSlotUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	weeklyRepo repository.WeeklyScheduleRepository,
	dayOffRepo repository.DayOffRepository,
	exceptionalRepo repository.ExceptionalScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
	cfg config.BookingConfig,
	loc *time.Location,
) SlotUsecase {
	return &slotUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		source: &slotSource{
			weeklyRepo:      weeklyRepo,
			dayOffRepo:      dayOffRepo,
			exceptionalRepo: exceptionalRepo,
			appointmentRepo: appointmentRepo,
		},
		cfg: cfg,
		loc: loc,
		now: time.Now,
	}
}

// GetDoctorSlots lists generated slots for an inclusive date range. Without
// start_date the range starts today in the clinic time zone; without
// end_date it spans days_ahead days.
func (u *slotUsecase) GetDoctorSlots(ctx context.Context, doctorID uuid.UUID, query *dto.SlotQuery) (*dto.SlotListResponse, error) {
	now := u.now().In(u.loc)

	from, to, err := u.resolveRange(query, now)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.User.Active() {
		return nil, ErrDoctorNotFound
	}

	slots, err := u.source.generate(ctx, db, doctor, from, to, now)
	if err != nil {
		u.log.Warnf("Failed to generate slots for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if query.AvailableOnly {
		slots = scheduling.Available(slots)
	}

	return &dto.SlotListResponse{
		DoctorID:  doctorID,
		StartDate: from.Format(entity.DateLayout),
		EndDate:   to.Format(entity.DateLayout),
		Slots:     converter.TimeSlotsToResponses(slots),
		Total:     len(slots),
	}, nil
}

func (u *slotUsecase) resolveRange(query *dto.SlotQuery, now time.Time) (time.Time, time.Time, error) {
	from := entity.DateOf(now)
	if query.StartDate != "" {
		d, err := entity.ParseDate(query.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDateFormat
		}
		from = d
	}

	daysAhead := u.cfg.DaysAhead
	if query.DaysAhead > 0 {
		daysAhead = query.DaysAhead
	}
	to := from.AddDate(0, 0, daysAhead-1)
	if query.EndDate != "" {
		d, err := entity.ParseDate(query.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDateFormat
		}
		to = d
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > u.cfg.MaxRangeDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d days, limit is %d", ErrDateRangeTooLarge, days, u.cfg.MaxRangeDays)
	}
	return from, to, nil
}

// GetCandidateTimes lists the bounds a schedule editor may offer.
func (u *slotUsecase) GetCandidateTimes(ctx context.Context, session string) (*dto.CandidateTimesResponse, error) {
	s := entity.Session(session)
	if !s.Valid() {
		return nil, ErrUnknownSession
	}

	times := scheduling.CandidateTimes(s)
	out := make([]string, 0, len(times))
	for _, t := range times {
		out = append(out, t.String())
	}
	return &dto.CandidateTimesResponse{Session: session, Times: out}, nil
}
