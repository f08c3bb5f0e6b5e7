package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/feedmill-backend/api/responses"
	"github.com/angelmondragon/feedmill-backend/api/validators"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/feedmill-backend/pkg/redis"
)

const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotentReplayHeader  = "Idempotent-Replayed"
	maxIdempotencyKeyLength = 128

	// OrderIdempotencyTTL covers a week of client retries for order placement.
	OrderIdempotencyTTL = 7 * 24 * time.Hour
	// StockIdempotencyTTL covers production and adjustment postings.
	StockIdempotencyTTL = 24 * time.Hour
)

// idempotencyEntry is stored as JSON under the key. A pending entry marks a
// request that is still running.
type idempotencyEntry struct {
	RequestHash string `json:"request_hash"`
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency requires an Idempotency-Key on the wrapped route. The first
// request claims the key and runs; repeats with the same body get the stored
// response back, repeats with another body are rejected. 5xx responses and
// panics release the key so the client can retry.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || ttl <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if clientKey == "" || len(clientKey) > maxIdempotencyKeyLength {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required").
					WithDetails(map[string]any{"maxLength": maxIdempotencyKeyLength}))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
						WithDetails(map[string]any{"limitBytes": tooLarge.Limit}))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := requestHash(r, body)
			key := store.IdempotencyKey(idempotencyScope(r), clientKey)

			claim, _ := json.Marshal(idempotencyEntry{RequestHash: hash, Pending: true})
			claimed, err := store.SetNX(ctx, key, string(claim), ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayEntry(w, r, store, key, hash, logg)
				return
			}

			// The outcome is recorded even if the client has gone away.
			storeCtx := context.WithoutCancel(ctx)

			var captured bytes.Buffer
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&captured)

			completed := false
			defer func() {
				if completed {
					return
				}
				if err := store.Del(storeCtx, key); err != nil && logg != nil {
					logg.Error(ctx, "release idempotency key", err)
				}
			}()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				return
			}

			final, _ := json.Marshal(idempotencyEntry{
				RequestHash: hash,
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        captured.Bytes(),
			})
			if err := store.Set(storeCtx, key, string(final), ttl); err != nil {
				if logg != nil {
					logg.Error(ctx, "store idempotent response", err)
				}
				return
			}
			completed = true
		})
	}
}

func replayEntry(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, hash string, logg *logger.Logger) {
	ctx := r.Context()
	raw, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// The first request failed and released the key between our claim and read.
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key was not completed, retry"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency entry"))
		return
	}

	var entry idempotencyEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode idempotency entry"))
		return
	}
	switch {
	case entry.RequestHash != hash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key already used with a different request"))
	case entry.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is still in progress"))
	default:
		if entry.ContentType != "" {
			w.Header().Set("Content-Type", entry.ContentType)
		}
		w.Header().Set(IdempotentReplayHeader, "true")
		w.WriteHeader(entry.Status)
		_, _ = w.Write(entry.Body)
	}
}

// idempotencyScope keeps keys from colliding across admins, customers and routes.
func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{
		AdminIDFromContext(r.Context()).String(),
		CustomerIDFromContext(r.Context()).String(),
		r.Method,
		r.URL.Path,
	}, "|")
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte{0})
	h.Write([]byte(r.URL.Path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
