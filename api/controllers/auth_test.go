package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/feedmill-backend/api/middleware"
	"github.com/angelmondragon/feedmill-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
)

func TestAdminAuthLoginSetsCookie(t *testing.T) {
	stub := &stubAuthService{resp: &auth.AdminLoginResponse{AccessToken: "signed", ExpiresAt: time.Now().Add(time.Hour)}}

	rec := serve(t, AdminAuthLogin(stub, testJWTConfig(), testLogger()), http.MethodPost, "/api/admin/v1/auth/login",
		`{"email":"owner@mill.example","password":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "owner@mill.example", stub.login.Email)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.AdminTokenCookie, cookies[0].Name)
	assert.Equal(t, "signed", cookies[0].Value)
}

func TestAdminAuthLoginRejects(t *testing.T) {
	stub := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	rec := serve(t, AdminAuthLogin(stub, testJWTConfig(), testLogger()), http.MethodPost, "/api/admin/v1/auth/login",
		`{"email":"owner@mill.example","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = serve(t, AdminAuthLogin(&stubAuthService{}, testJWTConfig(), testLogger()), http.MethodPost, "/api/admin/v1/auth/login",
		`{"email":"not-an-email","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminAuthLogoutRevokesCurrentSession(t *testing.T) {
	stub := &stubAuthService{}

	rec := serve(t, AdminAuthLogout(stub, testJWTConfig(), testLogger()), http.MethodPost, "/api/admin/v1/auth/logout", "", withAdmin(uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jti", stub.loggedOut)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAdminMe(t *testing.T) {
	adminID := uuid.New()
	stub := &stubAuthService{}

	rec := serve(t, AdminMe(stub, testLogger()), http.MethodGet, "/api/admin/v1/me", "", withAdmin(adminID))
	require.Equal(t, http.StatusOK, rec.Code)
	var got auth.AdminDTO
	decodeData(t, rec, &got)
	assert.Equal(t, adminID, got.ID)

	rec = serve(t, AdminMe(stub, testLogger()), http.MethodGet, "/api/admin/v1/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubAuthService struct {
	login     auth.LoginRequest
	resp      *auth.AdminLoginResponse
	loggedOut string
	err       error
}

func (s *stubAuthService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.AdminLoginResponse, error) {
	s.login = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubAuthService) AdminLogout(ctx context.Context, accessID string) error {
	s.loggedOut = accessID
	return nil
}

func (s *stubAuthService) AdminInfo(ctx context.Context, adminID uuid.UUID) (*auth.AdminDTO, error) {
	return &auth.AdminDTO{ID: adminID}, nil
}
