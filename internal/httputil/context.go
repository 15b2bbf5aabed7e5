package httputil

import (
	"context"

	"docsgraph/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userKey contextKey = "user"
)

// WithUser adds the authenticated user to ctx
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom retrieves the user from ctx, or nil for anonymous requests
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
