package services

import (
	"context"

	"docsgraph/internal/domain/models"
)

// OperationAuthorizer decides whether the caller in ctx may run a GraphQL
// root field.
//
// Resolvers call the authorizer before touching any loader or DSpace.
type OperationAuthorizer interface {
	// Authorize returns the caller, domain.ErrUnauthorized when a user is
	// required but absent, or domain.ErrForbidden when roles do not match.
	Authorize(ctx context.Context, operation string) (*models.User, error)
}
