package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/api/middleware"
	"github.com/angelmondragon/feedmill-backend/api/validators"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/pagination"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func requireAdmin(r *http.Request) (uuid.UUID, error) {
	admin, ok := middleware.AdminFromContext(r.Context())
	if !ok || !admin.IsAdmin() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	return admin.ID, nil
}

func optionalString(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	trimmed := validators.SanitizeString(*value, maxLen)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
