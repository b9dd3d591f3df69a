package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
)

// DoctorProfileToResponse flattens a doctor profile and its preloaded user.
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:                profile.UserID,
		Email:             profile.User.Email,
		FullName:          profile.User.FullName,
		DisplayName:       DoctorDisplayName(profile),
		LicenseNumber:     profile.LicenseNumber,
		Specialization:    profile.Specialization,
		Biography:         profile.Biography,
		YearsOfExperience: profile.YearsOfExperience,
		ConsultationFee:   profile.ConsultationFee,
		IsActive:          profile.User.Active(),
	}
}

// DoctorProfileToPublicResponse omits contact details for the public directory.
func DoctorProfileToPublicResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	resp := DoctorProfileToResponse(profile)
	if resp != nil {
		resp.Email = ""
	}
	return resp
}

func DoctorProfilesToPublicResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, *DoctorProfileToPublicResponse(&profiles[i]))
	}
	return responses
}

func DoctorProfileToProfileResponse(profile *entity.DoctorProfile) *dto.DoctorProfileResponse {
	if profile == nil {
		return nil
	}
	return &dto.DoctorProfileResponse{
		LicenseNumber:     profile.LicenseNumber,
		Specialization:    profile.Specialization,
		Biography:         profile.Biography,
		YearsOfExperience: profile.YearsOfExperience,
		ConsultationFee:   profile.ConsultationFee,
	}
}

// DoctorDisplayName falls back to the role prefix when the user row is not
// loaded with its role ID.
func DoctorDisplayName(profile *entity.DoctorProfile) string {
	if profile.User.FullName == "" {
		return ""
	}
	u := profile.User
	u.RoleID = entity.RoleIDDoctor
	return u.DisplayName()
}
