package handler

import (
	"errors"
	"net/http"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorProfileUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

func (h *DoctorHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if writeCommonError(w, err) {
		return
	}
	switch {
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		response.Conflict(w, "Email already exists")
	case errors.Is(err, usecase.ErrLicenseAlreadyExists):
		response.Conflict(w, "License number already exists")
	case errors.Is(err, usecase.ErrNegativeFee):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

// ListDoctors returns active doctors, optionally filtered
// @Summary List doctors
// @Tags Doctors
// @Produce json
// @Param name query string false "Name contains"
// @Param specialization query string false "Specialization"
// @Success 200 {object} response.Response
// @Router /doctors [get]
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctors, err := h.doctorUsecase.ListDoctors(r.Context(), q.Get("name"), q.Get("specialization"))
	if err != nil {
		h.writeError(w, err, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

// GetDoctor returns one active doctor
// @Summary Get doctor
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id} [get]
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, err, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

// CreateDoctor creates a doctor account (admin only)
// @Summary Create doctor
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateDoctorRequest true "Doctor"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/doctors [post]
func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDoctorRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	doctor, err := h.doctorUsecase.CreateDoctor(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create doctor")
		return
	}

	response.Success(w, http.StatusCreated, "Doctor created successfully", doctor)
}

// SetDoctorActive activates or deactivates a doctor (admin only)
// @Summary Set doctor active flag
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param request body dto.SetDoctorActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Router /admin/doctors/{id}/active [patch]
func (h *DoctorHandler) SetDoctorActive(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}
	var req dto.SetDoctorActiveRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	doctor, err := h.doctorUsecase.SetDoctorActive(r.Context(), doctorID, *req.IsActive)
	if err != nil {
		h.writeError(w, err, "Failed to update doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor updated successfully", doctor)
}

// GetMyProfile returns the signed-in doctor's profile
// @Summary Get my doctor profile
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /doctors/me [get]
func (h *DoctorHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.doctorUsecase.GetMyProfile(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", doctor)
}

// UpdateMyProfile updates the signed-in doctor's profile
// @Summary Update my doctor profile
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateDoctorSelfRequest true "Profile"
// @Success 200 {object} response.Response
// @Router /doctors/me [put]
func (h *DoctorHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDoctorSelfRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	doctor, err := h.doctorUsecase.UpdateSelfProfile(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", doctor)
}
