package usecase

import (
	"context"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminUsecase covers operator tasks run outside the HTTP API.
type AdminUsecase interface {
	CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error)
}

type adminUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	auditService service.AuditService
}

func NewAdminUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	auditService service.AuditService,
) AdminUsecase {
	return &adminUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		auditService: auditService,
	}
}

// CreateAdmin inserts an administrator. The admin role must have been
// seeded by the migrations.
func (u *adminUsecase) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	db := u.db.WithContext(ctx)

	role, err := u.roleRepo.FindByName(ctx, db, entity.RoleAdmin)
	if err != nil {
		u.log.Warnf("Failed to find admin role: %+v", err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	existing, err := u.userRepo.FindByEmail(ctx, db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:    req.Email,
		Password: string(hashedPassword),
		FullName: req.FullName,
		RoleID:   role.ID,
	}
	if err := u.userRepo.Create(ctx, db, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create admin: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, nil, &user.ID, entity.AuditActionUserRegister, entity.JSON{"email": user.Email, "role": entity.RoleAdmin}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Admin created: id=%s", user.ID)
	return converter.UserToResponse(user), nil
}
