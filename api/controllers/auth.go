package controllers

import (
	"net/http"

	"github.com/angelmondragon/feedmill-backend/api/middleware"
	"github.com/angelmondragon/feedmill-backend/api/responses"
	"github.com/angelmondragon/feedmill-backend/api/validators"
	"github.com/angelmondragon/feedmill-backend/internal/auth"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

// AdminAuthLogin exchanges admin credentials for an access token, returned in
// the body and as the token cookie.
func AdminAuthLogin(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminLogin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AdminTokenCookie,
			Value:    result.AccessToken,
			Path:     "/",
			Expires:  result.ExpiresAt,
			HttpOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: http.SameSiteStrictMode,
		})
		responses.WriteSuccess(w, result)
	}
}

// AdminAuthLogout revokes the session behind the presented token and clears the cookie.
func AdminAuthLogout(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if err := svc.AdminLogout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AdminTokenCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: http.SameSiteStrictMode,
		})
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AdminMe returns the profile of the authenticated admin.
func AdminMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		adminID, err := requireAdmin(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := svc.AdminInfo(r.Context(), adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}
