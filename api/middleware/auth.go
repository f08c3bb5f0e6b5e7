package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/feedmill-backend/api/responses"
	pkgAuth "github.com/angelmondragon/feedmill-backend/pkg/auth"
	"github.com/angelmondragon/feedmill-backend/pkg/auth/session"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

const (
	// AdminTokenCookie carries the admin access token for browser clients.
	AdminTokenCookie = "token"
	// CustomerTokenCookie carries the customer token minted by the customer check.
	CustomerTokenCookie = "customer_token"
	// CustomerTokenHeader is the header alternative to CustomerTokenCookie.
	CustomerTokenHeader = "X-Customer-Token"
)

// Auth validates the admin token and seeds the request context with the principal.
func Auth(cfg config.JWTConfig, verifier session.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := adminToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.Active(r.Context(), claims.ID, claims.AdminID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			principal := claims.Principal()
			ctx := WithAdmin(r.Context(), principal, claims.ID)
			if logg != nil {
				ctx = logg.WithAdminID(ctx, principal.ID.String())
				ctx = logg.WithActorRole(ctx, string(principal.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerToken requires a valid customer token and places the customer on the context.
func CustomerToken(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(CustomerTokenHeader))
			if token == "" {
				token = cookieValue(r, CustomerTokenCookie)
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer token missing"))
				return
			}

			claims, err := pkgAuth.ParseCustomerToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid customer token"))
				return
			}

			principal := claims.Principal()
			ctx := WithCustomer(r.Context(), principal)
			if logg != nil {
				ctx = logg.WithCustomerID(ctx, principal.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			return strings.TrimSpace(raw[7:])
		}
		return raw
	}
	return cookieValue(r, AdminTokenCookie)
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
