package auth

import "context"

type contextKey string

const identityKey contextKey = "auth.identity"

// Identity is the authenticated user and the company whose data they may see.
type Identity struct {
	UserID    string
	CompanyID string
}

// WithIdentity stores the identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity stored in ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.CompanyID != ""
}
