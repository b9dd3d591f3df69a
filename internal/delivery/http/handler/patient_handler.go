package handler

import (
	"errors"
	"net/http"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"
)

type PatientHandler struct {
	patientUsecase usecase.PatientProfileUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientProfileUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func (h *PatientHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	if writeCommonError(w, err) {
		return
	}
	if errors.Is(err, usecase.ErrPatientNotFound) || errors.Is(err, usecase.ErrUserNotFound) {
		response.NotFound(w, "Patient profile not found")
		return
	}
	response.InternalServerError(w, fallback)
}

// GetMyProfile returns the signed-in patient with their profile
// @Summary Get my patient profile
// @Tags Patient
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /patients/me [get]
func (h *PatientHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patientUsecase.GetMyProfile(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", patient)
}

// UpdateMyProfile updates the signed-in patient's profile
// @Summary Update my patient profile
// @Tags Patient
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdatePatientProfileRequest true "Profile"
// @Success 200 {object} response.Response
// @Router /patients/me [put]
func (h *PatientHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePatientProfileRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	patient, err := h.patientUsecase.UpdateSelfProfile(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", patient)
}
