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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrLicenseAlreadyExists = errors.New("license number already exists")
	ErrNegativeFee          = errors.New("consultation fee cannot be negative")
)

type DoctorProfileUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	ListDoctors(ctx context.Context, name, specialization string) (*dto.DoctorListResponse, error)
	GetMyProfile(ctx context.Context) (*dto.DoctorResponse, error)
	UpdateSelfProfile(ctx context.Context, req *dto.UpdateDoctorSelfRequest) (*dto.DoctorResponse, error)
	SetDoctorActive(ctx context.Context, doctorID uuid.UUID, active bool) (*dto.DoctorResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

// CreateDoctor is the admin path for doctor accounts; the user row and the
// profile are inserted together through the User association.
func (u *doctorProfileUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	if req.ConsultationFee.IsNegative() {
		return nil, ErrNegativeFee
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	doctorProfile := &entity.DoctorProfile{
		LicenseNumber:     req.LicenseNumber,
		Specialization:    req.Specialization,
		Biography:         req.Biography,
		YearsOfExperience: req.YearsOfExperience,
		ConsultationFee:   req.ConsultationFee,
		User: entity.User{
			Email:    req.Email,
			Password: string(hashedPassword),
			FullName: req.FullName,
			RoleID:   entity.RoleIDDoctor,
		},
	}
	if err := u.doctorProfileRepo.Create(ctx, u.db, doctorProfile); err != nil {
		switch {
		case isDuplicateKeyError(err, "email"):
			return nil, ErrEmailAlreadyExists
		case isDuplicateKeyError(err, "license"):
			return nil, ErrLicenseAlreadyExists
		case isForeignKeyError(err, "role"):
			return nil, ErrRoleNotFound
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	response := converter.DoctorProfileToResponse(doctorProfile)
	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogCreate(ctx, nil, &adminID, entity.AuditActionDoctorCreate, "doctor_profile", doctorProfile.UserID.String(), response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Doctor created: id=%s, license=%s", doctorProfile.UserID, doctorProfile.LicenseNumber)
	return response, nil
}

// GetDoctor is the public profile; deactivated doctors are hidden.
func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil || !profile.User.Active() {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorProfileToPublicResponse(profile), nil
}

func (u *doctorProfileUsecase) ListDoctors(ctx context.Context, name, specialization string) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindActive(ctx, u.db, repository.DoctorFilter{
		Name:           name,
		Specialization: specialization,
	})
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	doctors := converter.DoctorProfilesToPublicResponses(profiles)
	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *doctorProfileUsecase) GetMyProfile(ctx context.Context) (*dto.DoctorResponse, error) {
	profile, err := u.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return converter.DoctorProfileToResponse(profile), nil
}

// UpdateSelfProfile applies the fields a doctor may edit. The license
// number stays admin-managed.
func (u *doctorProfileUsecase) UpdateSelfProfile(ctx context.Context, req *dto.UpdateDoctorSelfRequest) (*dto.DoctorResponse, error) {
	profile, err := u.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	oldValue := converter.DoctorProfileToResponse(profile)

	if req.ConsultationFee != nil && req.ConsultationFee.IsNegative() {
		return nil, ErrNegativeFee
	}

	nameChanged := req.FullName != "" && req.FullName != profile.User.FullName
	if nameChanged {
		profile.User.FullName = req.FullName
	}
	if req.Specialization != "" {
		profile.Specialization = req.Specialization
	}
	if req.Biography != nil {
		profile.Biography = *req.Biography
	}
	if req.YearsOfExperience != nil {
		profile.YearsOfExperience = *req.YearsOfExperience
	}
	if req.ConsultationFee != nil {
		profile.ConsultationFee = *req.ConsultationFee
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if nameChanged {
			if err := u.userRepo.Update(ctx, tx, &profile.User); err != nil {
				return err
			}
		}
		return u.doctorProfileRepo.Update(ctx, tx, profile)
	})
	if err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	newValue := converter.DoctorProfileToResponse(profile)
	if err := u.auditService.LogUpdate(ctx, nil, &profile.UserID, entity.AuditActionDoctorProfileUpdate, "doctor_profile", profile.UserID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return newValue, nil
}

// SetDoctorActive hides or restores a doctor. A deactivated doctor keeps
// their schedule and appointments but generates no slots.
func (u *doctorProfileUsecase) SetDoctorActive(ctx context.Context, doctorID uuid.UUID, active bool) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	was := profile.User.Active()
	profile.User.IsActive = &active
	if err := u.userRepo.Update(ctx, u.db, &profile.User); err != nil {
		u.log.Warnf("Failed to update doctor %s active flag: %+v", doctorID, err)
		return nil, err
	}

	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogUpdate(ctx, nil, &adminID, entity.AuditActionDoctorActive, "doctor_profile", doctorID.String(),
		entity.JSON{"is_active": was}, entity.JSON{"is_active": active}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Doctor %s active=%t", doctorID, active)
	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) currentProfile(ctx context.Context) (*entity.DoctorProfile, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return profile, nil
}
