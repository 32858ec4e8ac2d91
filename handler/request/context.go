package request

import (
	"context"
)

type key int

const (
	ownerKey key = iota
)

// WithOwner context with the authenticated owner
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// Owner authenticated owner from context
func Owner(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey).(string)
	return owner, ok && owner != ""
}
