package docsystem

import (
	"context"

	"docsgraph/internal/domain/models/docsystem"

	"github.com/google/uuid"
)

// RepositoryService manages DSpace communities and collections.
type RepositoryService interface {
	CommunitiesPage(ctx context.Context, page docsystem.PageOptions) (*docsystem.DSpaceResult, error)
	CollectionsPage(ctx context.Context, page docsystem.PageOptions) (*docsystem.DSpaceResult, error)
	InsertCommunity(ctx context.Context, name string, language *string) (*docsystem.DSpaceResult, error)
	InsertCollection(ctx context.Context, parentID uuid.UUID, name string, language *string) (*docsystem.DSpaceResult, error)
}
