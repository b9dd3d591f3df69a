package usecase

import (
	"context"
	"errors"
	"fmt"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/service"
	"clinic-scheduling/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrRoleNotFound       = errors.New("role not found")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, req *dto.LogoutRequest) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context) (*dto.UserResponse, error)
}

type authUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	jwtService         *jwt.JWTService
	redisClient        *redis.Client
	auditService       service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		jwtService:         jwtService,
		redisClient:        redisClient,
		auditService:       auditService,
	}
}

func accessTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
}

func refreshTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%s", userID.String(), tokenID)
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	patientProfile := &entity.PatientProfile{
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
		Address:     req.Address,
	}
	if req.DateOfBirth != "" {
		dob, err := entity.ParseDate(req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		patientProfile.DateOfBirth = &dob
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
		RoleID:   entity.RoleIDPatient,
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		patientProfile.UserID = user.ID
		return u.patientProfileRepo.Create(ctx, tx, patientProfile)
	})
	if err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isForeignKeyError(err, "role") {
			return nil, ErrRoleNotFound
		}
		u.log.Warnf("Failed to register patient: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, nil, &user.ID, entity.AuditActionUserRegister, entity.JSON{"email": user.Email, "role": entity.RolePatient}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	user.PatientProfile = patientProfile
	u.log.Infof("Patient registered: id=%s", user.ID)
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}

	tokens, err := u.issueTokens(ctx, user.ID, user.Email, user.RoleID)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, nil, &user.ID, entity.AuditActionUserLogin, entity.JSON{"email": user.Email}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return tokens, nil
}

// Logout revokes the access token of the current request and, when given,
// the caller's refresh token.
func (u *authUsecase) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	accessTokenID, _ := middleware.GetTokenIDFromContext(ctx)

	keys := []string{accessTokenKey(userID, accessTokenID)}
	if req != nil && req.RefreshToken != "" {
		claims, err := u.jwtService.ValidateToken(req.RefreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == userID {
			keys = append(keys, refreshTokenKey(userID, claims.TokenID))
		}
	}

	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}

	if err := u.auditService.LogEvent(ctx, nil, &userID, entity.AuditActionUserLogout, nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return nil
}

// RefreshToken rotates the pair: the presented refresh token is consumed.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Del doubles as the existence check so a token cannot be rotated twice.
	deleted, err := u.redisClient.Del(ctx, refreshTokenKey(claims.UserID, claims.TokenID)).Result()
	if err != nil {
		u.log.Warnf("Failed to consume refresh token: %+v", err)
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrTokenRevoked
	}

	return u.issueTokens(ctx, claims.UserID, claims.Email, claims.RoleID)
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string, roleID int) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	pipe := u.redisClient.TxPipeline()
	pipe.Set(ctx, accessTokenKey(userID, accessTokenID), "valid", u.jwtService.GetAccessExpiry())
	pipe.Set(ctx, refreshTokenKey(userID, refreshTokenID), "valid", u.jwtService.GetRefreshExpiry())
	if _, err := pipe.Exec(ctx); err != nil {
		u.log.Warnf("Failed to store tokens in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	switch user.RoleID {
	case entity.RoleIDDoctor:
		user.DoctorProfile, err = u.doctorProfileRepo.FindByUserID(ctx, u.db, userID)
	case entity.RoleIDPatient:
		user.PatientProfile, err = u.patientProfileRepo.FindByUserID(ctx, u.db, userID)
	}
	if err != nil {
		u.log.Warnf("Failed to load profile for user %s: %+v", userID, err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}
