package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"

	"github.com/google/uuid"
)

// IdempotencyKeyHeader may carry the booking idempotency key instead of the body.
const IdempotencyKeyHeader = "Idempotency-Key"

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if writeCommonError(w, err) {
		return
	}
	switch {
	case errors.Is(err, usecase.ErrSlotTaken):
		response.Reject(w, http.StatusConflict, response.CodeSlotTaken, "Slot is no longer available")
	case errors.Is(err, usecase.ErrDoctorUnavailable):
		response.Reject(w, http.StatusConflict, response.CodeDoctorUnavailable, "Doctor is not available at the requested time")
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, "You do not have access to this appointment")
	case errors.Is(err, usecase.ErrAppointmentNotCancellable),
		errors.Is(err, usecase.ErrStatusChanged),
		errors.Is(err, usecase.ErrIdempotencyKeyReused),
		errors.Is(err, entity.ErrInvalidStatusTransition):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrCancelTooLate):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

// Book reserves a generated slot for the signed-in patient
// @Summary Book a slot
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated UUID"
// @Param request body dto.BookingRequest true "Booking"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments/book [post]
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req dto.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.IdempotencyKey == nil {
		if v := r.Header.Get(IdempotencyKeyHeader); v != "" {
			key, err := uuid.Parse(v)
			if err != nil {
				response.BadRequest(w, "Idempotency-Key must be a UUID")
				return
			}
			req.IdempotencyKey = &key
		}
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.BookVirtualSlot(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

// ListMine lists appointments of the signed-in patient or doctor
// @Summary List my appointments
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /appointments/me [get]
func (h *AppointmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.appointmentUsecase.GetMyAppointments(r.Context(), q.Get("status"), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", list)
}

// Get returns one appointment visible to the caller
// @Summary Get appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// Cancel cancels an appointment and frees its slot
// @Summary Cancel appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.CancelAppointmentRequest false "Reason"
// @Success 200 {object} response.Response
// @Router /appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	// The reason is optional so an empty body is fine.
	var req dto.CancelAppointmentRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.CancelAppointment(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

// UpdateStatus moves an appointment along its lifecycle (doctor or admin)
// @Summary Update appointment status
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.UpdateAppointmentStatusRequest true "Status"
// @Success 200 {object} response.Response
// @Router /appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}
	var req dto.UpdateAppointmentStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}
