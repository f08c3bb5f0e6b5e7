package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
)

// CORS lets the admin dashboard call the API with cookies. Origins come from
// FEEDMILL_CORS_ALLOWED_ORIGINS; an empty list allows none.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			CustomerTokenHeader,
			IdempotencyKeyHeader,
			requestIDHeader,
		},
		ExposedHeaders:   []string{requestIDHeader, IdempotentReplayHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	})
}
