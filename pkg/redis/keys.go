package redis

import "strings"

const (
	keyNamespace = "fm"

	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	sessionPrefix     = "session"
)

// Keys builds the namespaced key layout shared by every process. Empty parts
// are dropped so a missing scope never produces "fm::x".
type Keys struct{}

func (Keys) IdempotencyKey(scope, id string) string {
	return join(idempotencyPrefix, scope, id)
}

func (Keys) RateLimitKey(scope string) string {
	return join(rateLimitPrefix, scope)
}

// SessionKey addresses the admin session registered under a token jti.
func (Keys) SessionKey(accessID string) string {
	return join(sessionPrefix, "access", accessID)
}

func join(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
