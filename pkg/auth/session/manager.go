package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
)

var (
	ErrMissingAccessID = errors.New("session: access id is required")
	ErrMissingAdminID  = errors.New("session: admin id is required")
)

// Store is the slice of pkg/redis.Client the manager relies on.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(accessID string) string
}

// Verifier is the read side used by the admin auth middleware.
type Verifier interface {
	Active(ctx context.Context, accessID string, adminID uuid.UUID) (bool, error)
}

// Manager keeps one redis entry per issued admin token, keyed by jti and
// holding the admin id. Deleting the entry is how logout invalidates a token
// that has not expired yet.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	ttl := cfg.AccessTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("admin token ttl must be positive, got %s", ttl)
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// NewAccessID returns a fresh jti.
func NewAccessID() string {
	return uuid.NewString()
}

// Open registers the session for the lifetime of the admin token.
func (m *Manager) Open(ctx context.Context, accessID string, adminID uuid.UUID) error {
	accessID = strings.TrimSpace(accessID)
	switch {
	case accessID == "":
		return ErrMissingAccessID
	case adminID == uuid.Nil:
		return ErrMissingAdminID
	}
	return m.store.Set(ctx, m.store.SessionKey(accessID), adminID.String(), m.ttl)
}

// Revoke is idempotent; revoking an unknown jti is not an error.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	accessID = strings.TrimSpace(accessID)
	if accessID == "" {
		return ErrMissingAccessID
	}
	return m.store.Del(ctx, m.store.SessionKey(accessID))
}

// Active reports whether accessID is still open and was issued to adminID.
func (m *Manager) Active(ctx context.Context, accessID string, adminID uuid.UUID) (bool, error) {
	accessID = strings.TrimSpace(accessID)
	if accessID == "" {
		return false, ErrMissingAccessID
	}
	owner, err := m.store.Get(ctx, m.store.SessionKey(accessID))
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	return owner == adminID.String(), nil
}
