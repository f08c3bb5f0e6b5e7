package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/angelmondragon/feedmill-backend/pkg/auth"
)

type contextKey string

const (
	ctxAdmin    contextKey = "admin_principal"
	ctxAccessID contextKey = "access_id"
	ctxCustomer contextKey = "customer_principal"
)

// AdminFromContext returns the authenticated admin, if any.
func AdminFromContext(ctx context.Context) (pkgAuth.Principal, bool) {
	if ctx == nil {
		return pkgAuth.Principal{}, false
	}
	p, ok := ctx.Value(ctxAdmin).(pkgAuth.Principal)
	return p, ok
}

// AdminIDFromContext returns the admin id or uuid.Nil.
func AdminIDFromContext(ctx context.Context) uuid.UUID {
	p, _ := AdminFromContext(ctx)
	return p.ID
}

// AccessIDFromContext returns the jti of the admin token on the request.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// CustomerFromContext returns the customer identified by the customer token, if any.
func CustomerFromContext(ctx context.Context) (pkgAuth.Principal, bool) {
	if ctx == nil {
		return pkgAuth.Principal{}, false
	}
	p, ok := ctx.Value(ctxCustomer).(pkgAuth.Principal)
	return p, ok
}

// CustomerIDFromContext returns the customer id or uuid.Nil.
func CustomerIDFromContext(ctx context.Context) uuid.UUID {
	p, _ := CustomerFromContext(ctx)
	return p.ID
}

// WithAdmin injects the admin principal and its access id into the context.
func WithAdmin(ctx context.Context, principal pkgAuth.Principal, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAdmin, principal)
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// WithCustomer injects the customer principal into the context.
func WithCustomer(ctx context.Context, principal pkgAuth.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCustomer, principal)
}
