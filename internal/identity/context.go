// Package identity resolves the authenticated owner of a request.
package identity

import "context"

type ownerKey struct{}

// WithOwner returns a copy of ctx carrying the owner identifier.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFrom returns the owner stored in ctx, or "" when there is none.
func OwnerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}
