// Package booking drives one patient's booking attempt from doctor choice
// to a confirmed or rejected appointment.
package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"clinic-scheduling/internal/client"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type State int

const (
	SelectingDoctor State = iota
	SelectingSlot
	EnteringDetails
	Submitting
	Confirmed
	Rejected
)

func (s State) String() string {
	switch s {
	case SelectingDoctor:
		return "selecting_doctor"
	case SelectingSlot:
		return "selecting_slot"
	case EnteringDetails:
		return "entering_details"
	case Submitting:
		return "submitting"
	case Confirmed:
		return "confirmed"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrWrongState      = errors.New("action not allowed in the current booking state")
	ErrSubmitting      = errors.New("a booking is being submitted")
	ErrStaleResponse   = errors.New("slot response superseded by a newer request")
	ErrSlotNotFound    = errors.New("slot is not in the fetched list")
	ErrSlotUnavailable = errors.New("slot is already booked")
	ErrNotRetryable    = errors.New("last submission cannot be retried")
)

// Backend is the part of the API the coordinator needs. *client.Client
// satisfies it.
type Backend interface {
	FetchAvailableSlots(ctx context.Context, doctorID uuid.UUID, r client.SlotRange) ([]dto.TimeSlotResponse, error)
	SubmitBooking(ctx context.Context, req *dto.BookingRequest) (*client.BookingResult, error)
}

// Details are the patient-entered fields of a booking.
type Details struct {
	ConsultationType string `json:"consultation_type" validate:"required,oneof=general follow_up emergency routine_checkup specialist"`
	ReasonForVisit   string `json:"reason_for_visit" validate:"required,min=3,max=500"`
	Symptoms         string `json:"symptoms" validate:"omitempty,max=1000"`
	Priority         string `json:"priority" validate:"required,oneof=low medium high urgent"`
	ContactPhone     string `json:"contact_phone" validate:"omitempty,max=20,phone"`
	PatientNotes     string `json:"patient_notes" validate:"omitempty,max=1000"`
}

// DetailsError lists the fields that failed validation, keyed by JSON name.
type DetailsError struct {
	Fields map[string]string
}

func (e *DetailsError) Error() string {
	return fmt.Sprintf("invalid booking details: %v", e.Fields)
}

// Outcome is the result of the last submission.
type Outcome struct {
	Confirmed     bool
	AppointmentID uuid.UUID
	BookingCode   string
	Reason        client.RejectReason
	Retryable     bool
	Message       string
	Fields        map[string]string
	// RefreshErr is set when slots could not be re-fetched after a conflict.
	RefreshErr error
}

// Coordinator is safe for concurrent use; a slot fetch may still be in
// flight when the user picks another doctor.
type Coordinator struct {
	backend   Backend
	validator *validator.CustomValidator
	log       *logrus.Logger
	newKey    func() uuid.UUID

	mu       sync.Mutex
	state    State
	seq      uint64
	doctorID uuid.UUID
	window   client.SlotRange
	slots    []dto.TimeSlotResponse
	slot     *dto.TimeSlotResponse
	details  *Details
	pending  *dto.BookingRequest
	outcome  *Outcome
}

func NewCoordinator(backend Backend, v *validator.CustomValidator, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		backend:   backend,
		validator: v,
		log:       log,
		newKey:    uuid.New,
		state:     SelectingDoctor,
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Slots returns the slots of the current doctor and window.
func (c *Coordinator) Slots() []dto.TimeSlotResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]dto.TimeSlotResponse, len(c.slots))
	copy(out, c.slots)
	return out
}

// Outcome returns the result of the last submission, or nil.
func (c *Coordinator) Outcome() *Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome == nil {
		return nil
	}
	o := *c.outcome
	return &o
}

// SelectDoctor fetches the slots of doctorID for the window [from, to].
// Only the newest request is applied; an older one that finishes later
// returns ErrStaleResponse and leaves the state alone.
func (c *Coordinator) SelectDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) error {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrSubmitting
	}
	c.resetLocked()
	c.seq++
	seq := c.seq
	c.doctorID = doctorID
	c.window = client.SlotRange{StartDate: from, EndDate: to}
	c.mu.Unlock()

	slots, err := c.backend.FetchAvailableSlots(ctx, doctorID, client.SlotRange{StartDate: from, EndDate: to})

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return ErrStaleResponse
	}
	if err != nil {
		c.log.Warnf("Failed to fetch slots for doctor %s: %v", doctorID, err)
		return err
	}
	c.slots = slots
	c.state = SelectingSlot
	return nil
}

// SelectSlot picks one of the fetched slots. Picking again while entering
// details switches the slot and keeps the details.
func (c *Coordinator) SelectSlot(slotID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != SelectingSlot && c.state != EnteringDetails {
		return c.stateErrLocked()
	}
	for i := range c.slots {
		if c.slots[i].ID != slotID {
			continue
		}
		if !c.slots[i].IsAvailable {
			return ErrSlotUnavailable
		}
		s := c.slots[i]
		c.slot = &s
		c.state = EnteringDetails
		return nil
	}
	return ErrSlotNotFound
}

// EnterDetails validates and stores the form. Invalid details return a
// *DetailsError and nothing is stored.
func (c *Coordinator) EnterDetails(d Details) error {
	if d.Priority == "" {
		d.Priority = "medium"
	}
	if err := c.validator.Validate(&d); err != nil {
		return &DetailsError{Fields: c.validator.FormatValidationErrors(err)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != EnteringDetails {
		return c.stateErrLocked()
	}
	c.details = &d
	return nil
}

// Submit books the selected slot. It always leaves Submitting before it
// returns: Confirmed, Rejected, or back to SelectingSlot or EnteringDetails
// when the server refused the slot or the details.
func (c *Coordinator) Submit(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	if c.state != EnteringDetails {
		err := c.stateErrLocked()
		c.mu.Unlock()
		return nil, err
	}
	if c.details == nil {
		c.mu.Unlock()
		return nil, &DetailsError{Fields: map[string]string{"reason_for_visit": "reason_for_visit is required"}}
	}
	key := c.newKey()
	c.pending = &dto.BookingRequest{
		DoctorID:         c.doctorID,
		Date:             c.slot.Date,
		StartTime:        c.slot.StartTime.Clock(),
		EndTime:          c.slot.EndTime.Clock(),
		ConsultationType: c.details.ConsultationType,
		ReasonForVisit:   c.details.ReasonForVisit,
		Symptoms:         c.details.Symptoms,
		Priority:         c.details.Priority,
		ContactPhone:     c.details.ContactPhone,
		PatientNotes:     c.details.PatientNotes,
		IdempotencyKey:   &key,
	}
	req := c.beginSubmitLocked()
	c.mu.Unlock()

	return c.send(ctx, req)
}

// Retry resubmits the last request with the same idempotency key, so a
// booking the server already made is returned instead of duplicated.
func (c *Coordinator) Retry(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	if c.state != Rejected || c.outcome == nil || !c.outcome.Retryable || c.pending == nil {
		c.mu.Unlock()
		return nil, ErrNotRetryable
	}
	req := c.beginSubmitLocked()
	c.mu.Unlock()

	return c.send(ctx, req)
}

// Cancel abandons the attempt and discards every selection. In-flight slot
// fetches are ignored when they return.
func (c *Coordinator) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return ErrSubmitting
	}
	c.resetLocked()
	c.seq++
	return nil
}

// submission is what one send needs, captured while the state moved to
// Submitting so no other call can change it underneath.
type submission struct {
	req      dto.BookingRequest
	doctorID uuid.UUID
	window   client.SlotRange
}

// beginSubmitLocked moves to Submitting. The caller holds c.mu and has
// checked that a submission may start.
func (c *Coordinator) beginSubmitLocked() submission {
	c.state = Submitting
	return submission{req: *c.pending, doctorID: c.doctorID, window: c.window}
}

func (c *Coordinator) send(ctx context.Context, sub submission) (*Outcome, error) {
	res, err := c.backend.SubmitBooking(ctx, &sub.req)

	outcome := &Outcome{}
	next := Rejected
	refetch := false
	switch {
	case err != nil:
		// The idempotency key makes a resend safe whatever happened server side.
		outcome.Reason = client.ReasonUnknown
		outcome.Retryable = true
		outcome.Message = err.Error()
	case res.Confirmed:
		next = Confirmed
		outcome.Confirmed = true
		outcome.AppointmentID = res.Appointment.ID
		outcome.BookingCode = res.Appointment.BookingCode
	default:
		outcome.Reason = res.Reason
		outcome.Message = res.Message
		outcome.Fields = res.Fields
		switch {
		case res.Reason == client.ReasonSlotTaken,
			res.Reason == client.ReasonDoctorUnavailable,
			res.Status == http.StatusNotFound:
			refetch = true
		case res.Reason == client.ReasonValidationFailed:
			next = EnteringDetails
		default:
			outcome.Retryable = res.Status >= http.StatusInternalServerError
		}
	}

	var slots []dto.TimeSlotResponse
	if refetch {
		slots, outcome.RefreshErr = c.backend.FetchAvailableSlots(ctx, sub.doctorID, sub.window)
		next = SelectingSlot
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcome = outcome
	c.state = next
	switch next {
	case Confirmed:
		c.log.Infof("Booking confirmed: appointment=%s code=%s", outcome.AppointmentID, outcome.BookingCode)
	case SelectingSlot:
		c.slots = slots
		c.slot = nil
		c.pending = nil
		c.seq++
		c.log.Infof("Booking rejected (%s), slots refreshed", outcome.Reason)
	case EnteringDetails:
		c.pending = nil
	}
	return outcome, nil
}

func (c *Coordinator) resetLocked() {
	c.state = SelectingDoctor
	c.doctorID = uuid.Nil
	c.window = client.SlotRange{}
	c.slots = nil
	c.slot = nil
	c.details = nil
	c.pending = nil
	c.outcome = nil
}

func (c *Coordinator) stateErrLocked() error {
	if c.state == Submitting {
		return ErrSubmitting
	}
	return fmt.Errorf("%w: %s", ErrWrongState, c.state)
}
