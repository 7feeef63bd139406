package ownerctx

import (
	"context"
	"strings"
)

// OwnerContextKey is the request context key for the authenticated owner.
type OwnerContextKey struct{}

// WithOwner stores the owner identifier in the context.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, OwnerContextKey{}, owner)
}

// OwnerFromContext returns the owner identifier from context, if set.
// The identifier is opaque; it comes verbatim from the identity provider.
func OwnerFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	value, ok := ctx.Value(OwnerContextKey{}).(string)
	if !ok {
		return "", false
	}

	owner := strings.TrimSpace(value)
	if owner == "" {
		return "", false
	}
	return owner, true
}
