package handler

import (
	"errors"
	"net/http"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"

	"github.com/gorilla/mux"
)

type DayOffHandler struct {
	dayOffUsecase usecase.DayOffUsecase
	validator     *validator.CustomValidator
}

func NewDayOffHandler(dayOffUsecase usecase.DayOffUsecase, validator *validator.CustomValidator) *DayOffHandler {
	return &DayOffHandler{
		dayOffUsecase: dayOffUsecase,
		validator:     validator,
	}
}

func (h *DayOffHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if writeCommonError(w, err) {
		return
	}
	switch {
	case errors.Is(err, usecase.ErrDayOffNotFound):
		response.NotFound(w, "Day off not found")
	case errors.Is(err, usecase.ErrDayOffExists),
		errors.Is(err, usecase.ErrDayOffHasAppointments):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrDayOffInPast),
		errors.Is(err, usecase.ErrDayOffInvalidRange):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

// ListMine lists the signed-in doctor's days off
// @Summary List my days off
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /days-off/me [get]
func (h *DayOffHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.dayOffUsecase.ListMine(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeError(w, err, "Failed to get days off")
		return
	}

	response.Success(w, http.StatusOK, "Days off retrieved successfully", list)
}

// ListForDoctor lists a doctor's days off for patients
// @Summary List doctor days off
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Router /doctors/{id}/days-off [get]
func (h *DayOffHandler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	q := r.URL.Query()
	list, err := h.dayOffUsecase.ListForDoctor(r.Context(), doctorID, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.writeError(w, err, "Failed to get days off")
		return
	}

	response.Success(w, http.StatusOK, "Days off retrieved successfully", list)
}

// Create adds a full or partial day off
// @Summary Create day off
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateDayOffRequest true "Day off"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /days-off/me [post]
func (h *DayOffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDayOffRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	dayOff, err := h.dayOffUsecase.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create day off")
		return
	}

	response.Success(w, http.StatusCreated, "Day off created successfully", dayOff)
}

// Delete removes one of the signed-in doctor's days off
// @Summary Delete day off
// @Tags Schedule
// @Security BearerAuth
// @Param id path int true "Day off ID"
// @Success 200 {object} response.Response
// @Router /days-off/{id} [delete]
func (h *DayOffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id", "day off")
	if !ok {
		return
	}

	if err := h.dayOffUsecase.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete day off")
		return
	}

	response.Success(w, http.StatusOK, "Day off deleted successfully", nil)
}

// CheckMine reports whether the signed-in doctor is off on a date
// @Summary Check day off
// @Tags Schedule
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /days-off/me/check/{date} [get]
func (h *DayOffHandler) CheckMine(w http.ResponseWriter, r *http.Request) {
	check, err := h.dayOffUsecase.CheckMine(r.Context(), mux.Vars(r)["date"])
	if err != nil {
		h.writeError(w, err, "Failed to check day off")
		return
	}

	response.Success(w, http.StatusOK, "Day off checked successfully", check)
}
