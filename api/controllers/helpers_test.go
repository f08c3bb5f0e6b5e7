package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/api/middleware"
	pkgAuth "github.com/angelmondragon/feedmill-backend/pkg/auth"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                    "secret",
		CustomerSecret:            "customer-secret",
		Issuer:                    "feedmill",
		ExpirationMinutes:         60,
		CustomerExpirationMinutes: 60,
	}
}

type requestOption func(*http.Request) *http.Request

func withParam(key, value string) requestOption {
	return func(req *http.Request) *http.Request {
		routeCtx := chi.RouteContext(req.Context())
		if routeCtx == nil {
			routeCtx = chi.NewRouteContext()
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		}
		routeCtx.URLParams.Add(key, value)
		return req
	}
}

func withAdmin(id uuid.UUID) requestOption {
	return func(req *http.Request) *http.Request {
		return req.WithContext(middleware.WithAdmin(req.Context(), pkgAuth.Principal{ID: id, Role: enums.RoleAdmin}, "jti"))
	}
}

func withCustomer(id uuid.UUID) requestOption {
	return func(req *http.Request) *http.Request {
		return req.WithContext(middleware.WithCustomer(req.Context(), pkgAuth.Principal{ID: id, Role: enums.RoleCustomer}))
	}
}

func serve(t *testing.T, handler http.Handler, method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for _, opt := range opts {
		req = opt(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return payload.Error.Code
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}
