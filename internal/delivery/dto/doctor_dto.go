package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorRequest struct {
	Email             string          `json:"email" validate:"required,email"`
	Password          string          `json:"password" validate:"required,min=8"`
	FullName          string          `json:"full_name" validate:"required,min=2,max=255"`
	LicenseNumber     string          `json:"license_number" validate:"required,max=50"`
	Specialization    string          `json:"specialization" validate:"required,max=100"`
	Biography         string          `json:"biography" validate:"omitempty,max=2000"`
	YearsOfExperience int             `json:"years_of_experience" validate:"gte=0,lte=70"`
	ConsultationFee   decimal.Decimal `json:"consultation_fee"`
}

// UpdateDoctorSelfRequest is what a doctor may change on their own profile.
type UpdateDoctorSelfRequest struct {
	FullName          string           `json:"full_name" validate:"omitempty,min=2,max=255"`
	Specialization    string           `json:"specialization" validate:"omitempty,max=100"`
	Biography         *string          `json:"biography" validate:"omitempty,max=2000"`
	YearsOfExperience *int             `json:"years_of_experience" validate:"omitempty,gte=0,lte=70"`
	ConsultationFee   *decimal.Decimal `json:"consultation_fee"`
}

type SetDoctorActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// Response DTOs

type DoctorProfileResponse struct {
	LicenseNumber     string          `json:"license_number"`
	Specialization    string          `json:"specialization"`
	Biography         string          `json:"biography,omitempty"`
	YearsOfExperience int             `json:"years_of_experience"`
	ConsultationFee   decimal.Decimal `json:"consultation_fee"`
}

type DoctorResponse struct {
	ID                uuid.UUID       `json:"id"`
	Email             string          `json:"email,omitempty"`
	FullName          string          `json:"full_name"`
	DisplayName       string          `json:"display_name"`
	LicenseNumber     string          `json:"license_number"`
	Specialization    string          `json:"specialization"`
	Biography         string          `json:"biography,omitempty"`
	YearsOfExperience int             `json:"years_of_experience"`
	ConsultationFee   decimal.Decimal `json:"consultation_fee"`
	IsActive          bool            `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
