// Package contextkeys provides centralized context key definitions.
// All context keys used across the application are defined here so key
// usage stays discoverable and collision-free.
package contextkeys

import (
	"context"

	"github.com/renovapanel/renova/pkg/auth"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the authenticated *auth.User.
	// Set by: middleware.AuthMiddleware
	// Used by: protected API handlers
	UserKey Key = "user"

	// RequestIDKey contains the request ID string.
	// Set by: middleware.RequestID
	// Used by: api access logging
	RequestIDKey Key = "request_id"
)

// WithUser attaches the authenticated user to the context
func WithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFrom extracts the authenticated user, or nil if unauthenticated
func UserFrom(ctx context.Context) *auth.User {
	user, _ := ctx.Value(UserKey).(*auth.User)
	return user
}

// WithRequestID attaches a request ID to the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestIDFrom extracts the request ID, or "" if unset
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
