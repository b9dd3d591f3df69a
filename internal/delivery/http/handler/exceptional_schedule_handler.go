package handler

import (
	"errors"
	"net/http"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"
)

type ExceptionalScheduleHandler struct {
	exceptionalUsecase usecase.ExceptionalScheduleUsecase
	validator          *validator.CustomValidator
}

func NewExceptionalScheduleHandler(exceptionalUsecase usecase.ExceptionalScheduleUsecase, validator *validator.CustomValidator) *ExceptionalScheduleHandler {
	return &ExceptionalScheduleHandler{
		exceptionalUsecase: exceptionalUsecase,
		validator:          validator,
	}
}

func (h *ExceptionalScheduleHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if writeCommonError(w, err) {
		return
	}
	switch {
	case errors.Is(err, usecase.ErrExceptionalScheduleNotFound):
		response.NotFound(w, "Exceptional schedule not found")
	case errors.Is(err, usecase.ErrExceptionalScheduleExists),
		errors.Is(err, usecase.ErrScheduleStrandsAppointments):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrExceptionalScheduleInPast):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

// ListMine lists the signed-in doctor's one-day overrides
// @Summary List my exceptional schedules
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /exceptional-schedules/me [get]
func (h *ExceptionalScheduleHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.exceptionalUsecase.ListMine(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeError(w, err, "Failed to get exceptional schedules")
		return
	}

	response.Success(w, http.StatusOK, "Exceptional schedules retrieved successfully", list)
}

// ListForDoctor lists a doctor's one-day overrides for patients
// @Summary List doctor exceptional schedules
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Router /doctors/{id}/exceptional-schedules [get]
func (h *ExceptionalScheduleHandler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	q := r.URL.Query()
	list, err := h.exceptionalUsecase.ListForDoctor(r.Context(), doctorID, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeError(w, err, "Failed to get exceptional schedules")
		return
	}

	response.Success(w, http.StatusOK, "Exceptional schedules retrieved successfully", list)
}

// Create overrides the weekly template for one date
// @Summary Create exceptional schedule
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateExceptionalScheduleRequest true "Override"
// @Success 201 {object} response.Response
// @Router /exceptional-schedules/me [post]
func (h *ExceptionalScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExceptionalScheduleRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	schedule, err := h.exceptionalUsecase.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create exceptional schedule")
		return
	}

	response.Success(w, http.StatusCreated, "Exceptional schedule created successfully", schedule)
}

// Delete removes an override
// @Summary Delete exceptional schedule
// @Tags Schedule
// @Security BearerAuth
// @Param id path int true "Exceptional schedule ID"
// @Success 200 {object} response.Response
// @Router /exceptional-schedules/{id} [delete]
func (h *ExceptionalScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", "exceptional schedule")
	if !ok {
		return
	}

	if err := h.exceptionalUsecase.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete exceptional schedule")
		return
	}

	response.Success(w, http.StatusOK, "Exceptional schedule deleted successfully", nil)
}
