// Package authctx propagates the authenticated identity through a request's
// context. The identity is attached by the authentication middleware and
// lives only for the duration of that request.
package authctx

import (
	"context"
	"errors"

	"github.com/kbukum/studentms/internal/auth"
)

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

// identityKey is the single key used to store the identity in context.
var identityKey = contextKey{}

// ErrNoIdentity is returned when no identity is present in the context.
var ErrNoIdentity = errors.New("authctx: no identity in context")

// Set stores the authenticated identity in the context.
func Set(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Get retrieves the authenticated identity from the context.
// Returns the identity and true if present, or nil and false otherwise.
func Get(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

// MustGet retrieves the authenticated identity from the context.
// Panics if it is missing. Use in handlers where the authentication
// middleware guarantees an identity exists.
func MustGet(ctx context.Context) *auth.Identity {
	id, ok := Get(ctx)
	if !ok {
		panic("authctx: identity not found in context")
	}
	return id
}

// GetOrError retrieves the identity from the context.
// Returns ErrNoIdentity if it is missing.
func GetOrError(ctx context.Context) (*auth.Identity, error) {
	id, ok := Get(ctx)
	if !ok {
		return nil, ErrNoIdentity
	}
	return id, nil
}
