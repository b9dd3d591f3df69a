package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"
)

// ScheduleHandler serves the weekly template, generated slots and the
// time picker options.
type ScheduleHandler struct {
	weeklyUsecase usecase.WeeklyScheduleUsecase
	slotUsecase   usecase.SlotUsecase
	validator     *validator.CustomValidator
}

func NewScheduleHandler(weeklyUsecase usecase.WeeklyScheduleUsecase, slotUsecase usecase.SlotUsecase, validator *validator.CustomValidator) *ScheduleHandler {
	return &ScheduleHandler{
		weeklyUsecase: weeklyUsecase,
		slotUsecase:   slotUsecase,
		validator:     validator,
	}
}

func (h *ScheduleHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if writeCommonError(w, err) {
		return
	}
	switch {
	case errors.Is(err, usecase.ErrWeekAlreadyInitialized):
		response.Conflict(w, "Weekly schedule already exists")
	case errors.Is(err, usecase.ErrScheduleStrandsAppointments):
		response.Conflict(w, "Upcoming appointments do not fit the new weekly schedule")
	case errors.Is(err, usecase.ErrUnknownSession):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

// GetMyWeek returns the signed-in doctor's seven-day template
// @Summary Get my weekly schedule
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /weekly-schedule/me [get]
func (h *ScheduleHandler) GetMyWeek(w http.ResponseWriter, r *http.Request) {
	week, err := h.weeklyUsecase.GetMyWeek(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get weekly schedule")
		return
	}

	response.Success(w, http.StatusOK, "Weekly schedule retrieved successfully", week)
}

// ReplaceMyWeek validates and stores all seven days at once
// @Summary Replace my weekly schedule
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ReplaceWeeklyScheduleRequest true "Seven entries"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /weekly-schedule/me [put]
func (h *ScheduleHandler) ReplaceMyWeek(w http.ResponseWriter, r *http.Request) {
	var req dto.ReplaceWeeklyScheduleRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	week, err := h.weeklyUsecase.ReplaceMyWeek(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to save weekly schedule")
		return
	}

	response.Success(w, http.StatusOK, "Weekly schedule saved successfully", week)
}

// InitializeMyWeek stores the default template for a doctor without one
// @Summary Initialize my weekly schedule
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /weekly-schedule/me/initialize [post]
func (h *ScheduleHandler) InitializeMyWeek(w http.ResponseWriter, r *http.Request) {
	week, err := h.weeklyUsecase.InitializeMyWeek(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to initialize weekly schedule")
		return
	}

	response.Success(w, http.StatusCreated, "Weekly schedule initialized successfully", week)
}

// GetDoctorWeek returns a doctor's template for patients
// @Summary Get doctor weekly schedule
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Router /doctors/{id}/weekly-schedule [get]
func (h *ScheduleHandler) GetDoctorWeek(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	week, err := h.weeklyUsecase.GetDoctorWeek(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, err, "Failed to get weekly schedule")
		return
	}

	response.Success(w, http.StatusOK, "Weekly schedule retrieved successfully", week)
}

// GetDoctorSlots lists generated slots over a date range
// @Summary Get doctor slots
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param days_ahead query int false "Days from start_date"
// @Param available_only query bool false "Hide booked slots"
// @Success 200 {object} response.Response
// @Router /doctors/{id}/slots [get]
func (h *ScheduleHandler) GetDoctorSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	q := r.URL.Query()
	query := dto.SlotQuery{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if v := q.Get("days_ahead"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "days_ahead must be a number")
			return
		}
		query.DaysAhead = n
	}
	if v := q.Get("available_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "available_only must be true or false")
			return
		}
		query.AvailableOnly = b
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slots, err := h.slotUsecase.GetDoctorSlots(r.Context(), doctorID, &query)
	if err != nil {
		h.writeError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

// GetCandidateTimes lists the picker options of a session
// @Summary Candidate session times
// @Tags Schedule
// @Produce json
// @Param session query string true "morning or afternoon"
// @Success 200 {object} response.Response
// @Router /scheduling/candidate-times [get]
func (h *ScheduleHandler) GetCandidateTimes(w http.ResponseWriter, r *http.Request) {
	times, err := h.slotUsecase.GetCandidateTimes(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		h.writeError(w, err, "Failed to get candidate times")
		return
	}

	response.Success(w, http.StatusOK, "Candidate times retrieved successfully", times)
}
