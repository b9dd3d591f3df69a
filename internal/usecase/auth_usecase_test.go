package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-scheduling/config"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newMockUserRepo(users ...*entity.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, _ *gorm.DB, u *entity.User) error {
	u.ID = uuid.New()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, _ *gorm.DB, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) Update(_ context.Context, _ *gorm.DB, u *entity.User) error {
	m.users[u.ID] = u
	return nil
}

type authFixture struct {
	uc    AuthUsecase
	jwt   *jwt.JWTService
	mr    *miniredis.Miniredis
	user  *entity.User
	audit *mockAuditService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	client, mr := newTestRedis(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &entity.User{
		ID:       testPatientID,
		RoleID:   entity.RoleIDPatient,
		Email:    "pat@clinic.test",
		Password: string(hash),
		FullName: "Pat Doe",
	}

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
	audit := &mockAuditService{}
	uc := NewAuthUsecase(newTestDB(t), testLogger(), newMockUserRepo(user), newMockDoctorProfileRepo(),
		nil, jwtService, client, audit)

	return &authFixture{uc: uc, jwt: jwtService, mr: mr, user: user, audit: audit}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)

	tokens, err := f.uc.Login(context.Background(), &dto.LoginRequest{Email: "pat@clinic.test", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in = %d", tokens.ExpiresIn)
	}

	claims, err := f.jwt.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.RoleID != entity.RoleIDPatient || claims.UserID != testPatientID {
		t.Errorf("claims = %+v", claims)
	}
	if !f.mr.Exists(accessTokenKey(testPatientID, claims.TokenID)) {
		t.Error("access token not stored in redis")
	}
	if !f.audit.has(entity.AuditActionUserLogin) {
		t.Error("login was not audited")
	}
}

func TestLogin_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		inactive bool
		wantErr  error
	}{
		{"unknown email", "nobody@clinic.test", "correct-horse", false, ErrInvalidCredentials},
		{"wrong password", "pat@clinic.test", "wrong", false, ErrInvalidCredentials},
		{"deactivated", "pat@clinic.test", "correct-horse", true, ErrUserInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			if tt.inactive {
				off := false
				f.user.IsActive = &off
			}
			if _, err := f.uc.Login(context.Background(), &dto.LoginRequest{Email: tt.email, Password: tt.password}); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRefreshToken_RotatesOnce(t *testing.T) {
	f := newAuthFixture(t)
	tokens, err := f.uc.Login(context.Background(), &dto.LoginRequest{Email: "pat@clinic.test", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rotated, err := f.uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	if _, err := f.uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("reuse: err = %v, want ErrTokenRevoked", err)
	}
	if _, err := f.uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token as refresh: err = %v, want ErrInvalidToken", err)
	}
}

func TestLogout_RevokesBothTokens(t *testing.T) {
	f := newAuthFixture(t)
	tokens, err := f.uc.Login(context.Background(), &dto.LoginRequest{Email: "pat@clinic.test", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	access, _ := f.jwt.ValidateToken(tokens.AccessToken)
	refresh, _ := f.jwt.ValidateToken(tokens.RefreshToken)

	ctx := middleware.WithClaims(context.Background(), access)
	if err := f.uc.Logout(ctx, &dto.LogoutRequest{RefreshToken: tokens.RefreshToken}); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if f.mr.Exists(accessTokenKey(testPatientID, access.TokenID)) || f.mr.Exists(refreshTokenKey(testPatientID, refresh.TokenID)) {
		t.Error("tokens still present after logout")
	}
}
