package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/feedmill-backend/api/responses"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

const maxLoginBodyBytes = 64 << 10

// WindowLimiter counts hits per scope in fixed windows.
type WindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type loginLimit struct {
	scope string
	key   string
	limit int
}

// LoginRateLimit throttles admin login attempts per client IP and per
// submitted email. The email is hashed before it becomes part of a redis key.
// Client IPs are taken from RemoteAddr, so chi's RealIP must run first when
// the service sits behind a proxy.
func LoginRateLimit(cfg config.AuthRateLimitConfig, limiter WindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || cfg.LoginWindow <= 0 || (cfg.LoginIPLimit <= 0 && cfg.LoginEmailLimit <= 0) {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var limits []loginLimit
			if cfg.LoginIPLimit > 0 {
				if ip := remoteIP(r); ip != "" {
					limits = append(limits, loginLimit{scope: "ip", key: "login:ip:" + ip, limit: cfg.LoginIPLimit})
				}
			}
			if cfg.LoginEmailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBodyBytes))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if hash := emailHash(body); hash != "" {
					limits = append(limits, loginLimit{scope: "email", key: "login:email:" + hash, limit: cfg.LoginEmailLimit})
				}
			}

			for _, l := range limits {
				allowed, count, err := limiter.FixedWindowAllow(r.Context(), l.key, int64(l.limit), cfg.LoginWindow)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					if logg != nil {
						logg.Warn(logg.WithFields(r.Context(), map[string]any{
							"scope":    l.scope,
							"attempts": count,
							"limit":    l.limit,
						}), "login throttled")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(cfg.LoginWindow.Seconds())))
					responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func emailHash(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
