package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/feedmill-backend/pkg/auth"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		CustomerSecret:    "customer-secret",
		Issuer:            "feedmill",
		ExpirationMinutes: 30,
	}
}

func TestAdminLoginIssuesTokenAndSession(t *testing.T) {
	password := "mill-secret"
	admin := newTestAdmin(t, password)
	cfg := testJWTConfig()

	svc, repo, sessions := buildTestService(t, admin, cfg)

	resp, err := svc.AdminLogin(context.Background(), LoginRequest{
		Email:    "  OWNER@mill.example ",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.AdminID != admin.ID {
		t.Fatalf("expected admin %s got %s", admin.ID, claims.AdminID)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
	if sessions.generated[claims.ID] != admin.ID {
		t.Fatalf("expected session registered under jti %s", claims.ID)
	}
	if repo.lastLogin == nil {
		t.Fatal("expected last login recorded")
	}
	if resp.Admin.Email != admin.Email || resp.Admin.LastLoginAt == nil {
		t.Fatalf("unexpected profile %+v", resp.Admin)
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %v", resp.ExpiresAt)
	}
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	admin := newTestAdmin(t, "right-password")
	svc, _, sessions := buildTestService(t, admin, testJWTConfig())

	cases := []LoginRequest{
		{Email: admin.Email, Password: "wrong-password"},
		{Email: "nobody@mill.example", Password: "right-password"},
		{Email: "", Password: "right-password"},
	}
	for _, req := range cases {
		_, err := svc.AdminLogin(context.Background(), req)
		assertCode(t, err, pkgerrors.CodeUnauthorized)
	}
	if len(sessions.generated) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions.generated))
	}
}

func TestAdminLoginRejectsInactiveAdmin(t *testing.T) {
	admin := newTestAdmin(t, "pw")
	admin.IsActive = false
	svc, _, _ := buildTestService(t, admin, testJWTConfig())

	_, err := svc.AdminLogin(context.Background(), LoginRequest{Email: admin.Email, Password: "pw"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestAdminLoginSessionFailure(t *testing.T) {
	admin := newTestAdmin(t, "pw")
	svc, _, sessions := buildTestService(t, admin, testJWTConfig())
	sessions.err = errors.New("redis down")

	_, err := svc.AdminLogin(context.Background(), LoginRequest{Email: admin.Email, Password: "pw"})
	assertCode(t, err, pkgerrors.CodeDependency)
}

func TestAdminLogoutRevokesSession(t *testing.T) {
	admin := newTestAdmin(t, "pw")
	svc, _, sessions := buildTestService(t, admin, testJWTConfig())

	if err := svc.AdminLogout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-1" {
		t.Fatalf("expected jti-1 revoked, got %v", sessions.revoked)
	}

	assertCode(t, svc.AdminLogout(context.Background(), " "), pkgerrors.CodeUnauthorized)
}

func TestAdminInfo(t *testing.T) {
	admin := newTestAdmin(t, "pw")
	svc, _, _ := buildTestService(t, admin, testJWTConfig())

	info, err := svc.AdminInfo(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.ID != admin.ID || info.Name != admin.Name || info.Role != enums.RoleAdmin {
		t.Fatalf("unexpected info %+v", info)
	}

	_, err = svc.AdminInfo(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.AdminInfo(context.Background(), uuid.Nil)
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{SessionManager: &stubSessionManager{}, JWTConfig: testJWTConfig()}); err == nil {
		t.Fatal("expected error without admin repo")
	}
	if _, err := NewService(ServiceParams{AdminRepo: &stubAdminRepo{}, JWTConfig: testJWTConfig()}); err == nil {
		t.Fatal("expected error without session manager")
	}
	if _, err := NewService(ServiceParams{AdminRepo: &stubAdminRepo{}, SessionManager: &stubSessionManager{}}); err == nil {
		t.Fatal("expected error without jwt secret")
	}
}

func buildTestService(t *testing.T, admin *models.AdminUser, cfg config.JWTConfig) (Service, *stubAdminRepo, *stubSessionManager) {
	t.Helper()
	repo := &stubAdminRepo{admin: admin}
	sessions := &stubSessionManager{generated: map[string]uuid.UUID{}}
	svc, err := NewService(ServiceParams{
		AdminRepo:      repo,
		SessionManager: sessions,
		JWTConfig:      cfg,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessions
}

func newTestAdmin(t *testing.T, password string) *models.AdminUser {
	t.Helper()
	hashed, err := security.NewHasher(config.PasswordConfig{}).Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.AdminUser{
		ID:           uuid.New(),
		Email:        "owner@mill.example",
		PasswordHash: hashed,
		Name:         "Mill Owner",
		Role:         enums.RoleAdmin,
		IsActive:     true,
	}
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != want {
		t.Fatalf("expected %s, got %v", want, err)
	}
}

type stubAdminRepo struct {
	admin     *models.AdminUser
	lastLogin *time.Time
}

func (s *stubAdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if s.admin == nil || s.admin.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.admin
	return &copy, nil
}

func (s *stubAdminRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	if s.admin == nil || s.admin.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.admin
	return &copy, nil
}

func (s *stubAdminRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

type stubSessionManager struct {
	generated map[string]uuid.UUID
	revoked   []string
	err       error
}

func (s *stubSessionManager) Open(ctx context.Context, accessID string, adminID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.generated[accessID] = adminID
	return nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}
