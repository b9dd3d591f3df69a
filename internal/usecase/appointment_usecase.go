package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"clinic-scheduling/config"
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
	ErrSlotTaken                 = errors.New("slot is already booked")
	ErrDoctorUnavailable         = errors.New("doctor is not available at the requested time")
	ErrAppointmentNotFound       = errors.New("appointment not found")
	ErrAppointmentNotOwned       = errors.New("appointment does not belong to you")
	ErrAppointmentNotCancellable = errors.New("appointment can no longer be cancelled")
	ErrCancelTooLate             = errors.New("appointment starts too soon to be cancelled")
	ErrStatusChanged             = errors.New("appointment status changed concurrently")
	ErrIdempotencyKeyReused      = errors.New("idempotency key was already used for a different booking")
)

// Constraint names from the migrations.
const (
	constraintActiveSlot     = "idx_appointments_active_slot"
	constraintIdempotencyKey = "idempotency_key"
	constraintBookingCode    = "idx_appointments_booking_code"
)

// bookingCodeEntropy feeds the random suffix of booking codes.
var bookingCodeEntropy io.Reader = rand.Reader

const releaseTimeout = 5 * time.Second

type AppointmentUsecase interface {
	BookVirtualSlot(ctx context.Context, req *dto.BookingRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context, status, from, to string) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	source            *slotSource
	slotLock          *service.SlotLockService
	auditService      service.AuditService
	cfg               config.BookingConfig
	loc               *time.Location
	now               func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	weeklyRepo repository.WeeklyScheduleRepository,
	dayOffRepo repository.DayOffRepository,
	exceptionalRepo repository.ExceptionalScheduleRepository,
	slotLock *service.SlotLockService,
	auditService service.AuditService,
	cfg config.BookingConfig,
	loc *time.Location,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                db,
		log:               log,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		source: &slotSource{
			weeklyRepo:      weeklyRepo,
			dayOffRepo:      dayOffRepo,
			exceptionalRepo: exceptionalRepo,
			appointmentRepo: appointmentRepo,
		},
		slotLock:     slotLock,
		auditService: auditService,
		cfg:          cfg,
		loc:          loc,
		now:          time.Now,
	}
}

// BookVirtualSlot turns a generated slot into an appointment.
//
// Flow:
// 1. Replay an earlier result for the same idempotency key
// 2. Regenerate the doctor's slots for the date; the window must exist and be free
// 3. Redis reservation for the slot (another request in flight -> SlotTaken)
// 4. Insert the appointment; the partial unique index is the final guard
// 5. Release the reservation
func (u *appointmentUsecase) BookVirtualSlot(ctx context.Context, req *dto.BookingRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	date, err := entity.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	start, err := entity.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	end, err := entity.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}

	db := u.db.WithContext(ctx)

	// Step 1: Idempotent replay
	if req.IdempotencyKey != nil {
		existing, err := u.replay(ctx, db, patientID, req, date, start)
		if err != nil || existing != nil {
			return existing, err
		}
	}

	// Step 2: The requested window must be one the engine generates right now
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.User.Active() {
		return nil, ErrDoctorNotFound
	}

	now := u.now().In(u.loc)
	slots, err := u.source.generate(ctx, db, doctor, date, date, now)
	if err != nil {
		u.log.Warnf("Failed to generate slots for doctor %s on %s: %+v", req.DoctorID, req.Date, err)
		return nil, err
	}
	slot, found := scheduling.FindWindow(slots, start, end)
	if !found {
		return nil, ErrDoctorUnavailable
	}
	if !slot.IsAvailable {
		return nil, ErrSlotTaken
	}

	// Step 3: Redis reservation
	reservation, err := u.slotLock.Reserve(ctx, doctor.UserID, date, start)
	if err != nil {
		if errors.Is(err, service.ErrSlotLocked) {
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed Redis slot reservation for %s: %+v", slot.ID, err)
		return nil, err
	}
	defer u.release(reservation)

	// Step 4: Insert
	code, err := generateBookingCode(date)
	if err != nil {
		u.log.Warnf("Failed to generate booking code: %+v", err)
		return nil, err
	}
	appointment := &entity.Appointment{
		PatientID:        patientID,
		DoctorID:         doctor.UserID,
		AppointmentDate:  date,
		StartTime:        slot.StartTime,
		EndTime:          slot.EndTime,
		DurationMinutes:  slot.DurationMinutes,
		ConsultationType: entity.ConsultationType(req.ConsultationType),
		Priority:         entity.PriorityMedium,
		ReasonForVisit:   req.ReasonForVisit,
		Symptoms:         req.Symptoms,
		ContactPhone:     req.ContactPhone,
		PatientNotes:     req.PatientNotes,
		Status:           entity.AppointmentStatusScheduled,
		BookingCode:      code,
		Fee:              doctor.ConsultationFee,
		IdempotencyKey:   req.IdempotencyKey,
	}
	if req.Priority != "" {
		appointment.Priority = entity.Priority(req.Priority)
	}

	err = u.appointmentRepo.Create(ctx, db, appointment)
	if isDuplicateKeyError(err, constraintBookingCode) {
		// The random suffix collided with another booking on the same date.
		if appointment.BookingCode, err = generateBookingCode(date); err == nil {
			err = u.appointmentRepo.Create(ctx, db, appointment)
		}
	}
	if err != nil {
		switch {
		case isDuplicateKeyError(err, constraintActiveSlot):
			return nil, ErrSlotTaken
		case req.IdempotencyKey != nil && isDuplicateKeyError(err, constraintIdempotencyKey):
			// Same key raced past step 1.
			existing, replayErr := u.replay(ctx, db, patientID, req, date, start)
			if replayErr != nil || existing != nil {
				return existing, replayErr
			}
		}
		u.log.Warnf("Failed to insert appointment for slot %s: %+v", slot.ID, err)
		return nil, err
	}
	appointment.Doctor = doctor

	response := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogCreate(ctx, nil, &patientID, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Appointment booked: id=%s, slot=%s, code=%s", appointment.ID, slot.ID, appointment.BookingCode)
	return response, nil
}

// replay returns the appointment an idempotency key already produced, nil
// when the key is unused, or ErrIdempotencyKeyReused when the key belongs to
// a different request.
func (u *appointmentUsecase) replay(ctx context.Context, db *gorm.DB, patientID uuid.UUID, req *dto.BookingRequest, date time.Time, start entity.TimeOfDay) (*dto.AppointmentResponse, error) {
	existing, err := u.appointmentRepo.FindByIdempotencyKey(ctx, db, *req.IdempotencyKey)
	if err != nil {
		u.log.Warnf("Failed to look up idempotency key %s: %+v", req.IdempotencyKey, err)
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if existing.PatientID != patientID ||
		existing.DoctorID != req.DoctorID ||
		!entity.DateOf(existing.AppointmentDate).Equal(date) ||
		existing.StartTime != start {
		return nil, ErrIdempotencyKeyReused
	}

	u.log.Infof("Replayed booking for idempotency key %s: id=%s", req.IdempotencyKey, existing.ID)
	return converter.AppointmentToResponse(existing), nil
}

func (u *appointmentUsecase) release(r *service.Reservation) {
	releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := u.slotLock.Release(releaseCtx, r); err != nil {
		// The reservation expires on its own.
		u.log.Warnf("Failed to release slot reservation %s (non-fatal): %+v", r.Key, err)
	}
}

// CancelAppointment frees the slot. Patients cancel their own appointments
// and must respect the notice period; doctors cancel their own schedule;
// admins cancel anything.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	db := u.db.WithContext(ctx)
	appointment, err := u.appointmentRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !canAccess(appointment, userID, roleID) {
		return nil, ErrAppointmentNotOwned
	}
	if !appointment.Occupies() {
		return nil, ErrAppointmentNotCancellable
	}

	now := u.now()
	if roleID == entity.RoleIDPatient && appointment.StartsAt(u.loc).Sub(now) < u.cfg.CancelNotice {
		return nil, ErrCancelTooLate
	}

	before := converter.AppointmentToResponse(appointment)
	affected, err := u.appointmentRepo.Cancel(ctx, db, id, req.Reason, now)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentNotCancellable
	}
	if err := appointment.Cancel(req.Reason, now); err != nil {
		return nil, err
	}

	response := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogUpdate(ctx, nil, &userID, entity.AuditActionAppointmentCancel, "appointment", id.String(), before, response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Appointment cancelled: id=%s, by=%s", id, userID)
	return response, nil
}

// UpdateStatus moves an appointment along its lifecycle. Only the treating
// doctor or an admin may do this; cancellation has its own operation.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	db := u.db.WithContext(ctx)
	appointment, err := u.appointmentRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if roleID == entity.RoleIDPatient || !canAccess(appointment, userID, roleID) {
		return nil, ErrAppointmentNotOwned
	}

	from := appointment.Status
	next := entity.AppointmentStatus(req.Status)
	if next == entity.AppointmentStatusCancelled {
		return nil, entity.ErrInvalidStatusTransition
	}
	if err := appointment.TransitionTo(next); err != nil {
		return nil, err
	}

	affected, err := u.appointmentRepo.UpdateStatus(ctx, db, id, from, next)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s status: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStatusChanged
	}

	response := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogUpdate(ctx, nil, &userID, entity.AuditActionAppointmentStatus, "appointment", id.String(),
		entity.JSON{"status": from}, entity.JSON{"status": next}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return response, nil
}

// GetMyAppointments lists the caller's appointments: as patient or as
// treating doctor depending on role.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, status, from, to string) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	fromDate, toDate, err := parseDateBounds(from, to)
	if err != nil {
		return nil, err
	}
	filter := repository.AppointmentFilter{
		Status:   entity.AppointmentStatus(status),
		FromDate: fromDate,
		ToDate:   toDate,
	}

	db := u.db.WithContext(ctx)
	var appointments []entity.Appointment
	if roleID == entity.RoleIDDoctor {
		appointments, err = u.appointmentRepo.FindByDoctorID(ctx, db, userID, filter)
	} else {
		appointments, err = u.appointmentRepo.FindByPatientID(ctx, db, userID, filter)
	}
	if err != nil {
		u.log.Warnf("Failed to list appointments for %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(ctx, u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !canAccess(appointment, userID, roleID) {
		return nil, ErrAppointmentNotOwned
	}
	return converter.AppointmentToResponse(appointment), nil
}

func canAccess(a *entity.Appointment, userID uuid.UUID, roleID int) bool {
	switch roleID {
	case entity.RoleIDAdmin:
		return true
	case entity.RoleIDDoctor:
		return a.DoctorID == userID
	default:
		return a.PatientID == userID
	}
}

// generateBookingCode generates a booking code: BK-YYYYMMDD-XXXXXX
func generateBookingCode(date time.Time) (string, error) {
	randomBytes := make([]byte, 3)
	if _, err := io.ReadFull(bookingCodeEntropy, randomBytes); err != nil {
		return "", fmt.Errorf("read booking code entropy: %w", err)
	}
	return fmt.Sprintf("BK-%s-%06X", date.Format("20060102"), randomBytes), nil
}
