package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/feedmill-backend/api/middleware"
	"github.com/angelmondragon/feedmill-backend/api/responses"
	"github.com/angelmondragon/feedmill-backend/api/validators"
	"github.com/angelmondragon/feedmill-backend/internal/customers"
	pkgAuth "github.com/angelmondragon/feedmill-backend/pkg/auth"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

type customerCheckRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required,max=300"`
}

type customerCheckResponse struct {
	customers.CheckResult
	CustomerToken string    `json:"customerToken"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// CustomersCheck finds or creates the customer and mints the customer token
// that order placement requires.
func CustomersCheck(svc customers.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		var body customerCheckRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrGet(r.Context(), customers.CheckInput{
			Name:    body.Name,
			Phone:   body.Phone,
			Address: body.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now().UTC()
		token, err := pkgAuth.MintCustomerToken(cfg, now, result.Customer.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint customer token"))
			return
		}
		expires := now.Add(cfg.CustomerTTL())

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.CustomerTokenCookie,
			Value:    token,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: http.SameSiteStrictMode,
		})

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, customerCheckResponse{
			CheckResult:   *result,
			CustomerToken: token,
			ExpiresAt:     expires,
		})
	}
}
