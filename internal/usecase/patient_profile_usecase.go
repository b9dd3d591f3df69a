package usecase

import (
	"context"
	"errors"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient profile not found")
)

type PatientProfileUsecase interface {
	GetMyProfile(ctx context.Context) (*dto.UserResponse, error)
	UpdateSelfProfile(ctx context.Context, req *dto.UpdatePatientProfileRequest) (*dto.UserResponse, error)
}

type patientProfileUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

func (u *patientProfileUsecase) GetMyProfile(ctx context.Context) (*dto.UserResponse, error) {
	profile, err := u.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return patientToResponse(profile), nil
}

// UpdateSelfProfile updates the patient's own profile. Nil fields are left
// alone; an empty string clears the field.
func (u *patientProfileUsecase) UpdateSelfProfile(ctx context.Context, req *dto.UpdatePatientProfileRequest) (*dto.UserResponse, error) {
	profile, err := u.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	oldValue := patientToResponse(profile)

	nameChanged := req.FullName != "" && req.FullName != profile.User.FullName
	if nameChanged {
		profile.User.FullName = req.FullName
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = *req.PhoneNumber
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			profile.DateOfBirth = nil
		} else {
			dob, err := entity.ParseDate(*req.DateOfBirth)
			if err != nil {
				return nil, ErrInvalidDateFormat
			}
			profile.DateOfBirth = &dob
		}
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if nameChanged {
			if err := u.userRepo.Update(ctx, tx, &profile.User); err != nil {
				return err
			}
		}
		return u.patientProfileRepo.Update(ctx, tx, profile)
	})
	if err != nil {
		u.log.Warnf("Failed to update patient profile: %+v", err)
		return nil, err
	}

	newValue := patientToResponse(profile)
	if err := u.auditService.LogUpdate(ctx, nil, &profile.UserID, entity.AuditActionPatientProfileUpdate, "patient_profile", profile.UserID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return newValue, nil
}

func (u *patientProfileUsecase) currentProfile(ctx context.Context) (*entity.PatientProfile, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	profile, err := u.patientProfileRepo.FindByUserID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}
	return profile, nil
}

func patientToResponse(profile *entity.PatientProfile) *dto.UserResponse {
	user := profile.User
	user.PatientProfile = profile
	return converter.UserToResponse(&user)
}
