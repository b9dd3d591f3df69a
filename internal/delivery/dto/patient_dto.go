package dto

// Request DTOs

type UpdatePatientProfileRequest struct {
	FullName    string  `json:"full_name" validate:"omitempty,min=2,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20,phone"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,date"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=M F"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
}

// Response DTOs

type PatientProfileResponse struct {
	PhoneNumber string `json:"phone_number,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Address     string `json:"address,omitempty"`
}
