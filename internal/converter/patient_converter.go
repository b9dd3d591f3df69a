package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
)

func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil {
		return nil
	}

	response := &dto.PatientProfileResponse{
		PhoneNumber: profile.PhoneNumber,
		Gender:      profile.Gender,
		Address:     profile.Address,
	}
	if profile.DateOfBirth != nil {
		response.DateOfBirth = profile.DateOfBirth.Format(entity.DateLayout)
	}
	return response
}
