package auth

import "context"

type contextKey struct{}

// Identity is the per-request authentication result. A zero Identity means
// the caller is anonymous, which only happens under optional authentication.
type Identity struct {
	UserID  string
	IsAdmin bool
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the identity stored on ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || !id.Authenticated() {
		return Identity{}, false
	}
	return id, true
}
