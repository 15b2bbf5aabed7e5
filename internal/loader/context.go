package loader

import (
	"context"

	docsysRepo "docsgraph/internal/domain/repositories/docsystem"
)

// Loaders is the per-request loader set.
type Loaders struct {
	Documents *DocumentLoader
	Folders   *FolderLoader
}

// Factory builds a fresh Loaders for each request.
type Factory struct {
	documents docsysRepo.DocumentRepository
	folders   docsysRepo.FolderRepository
}

// NewFactory creates a factory over the repositories.
func NewFactory(documents docsysRepo.DocumentRepository, folders docsysRepo.FolderRepository) *Factory {
	return &Factory{documents: documents, folders: folders}
}

// New returns an empty loader set.
func (f *Factory) New() *Loaders {
	return &Loaders{
		Documents: NewDocumentLoader(f.documents),
		Folders:   NewFolderLoader(f.folders),
	}
}

type contextKey struct{}

// WithLoaders stores loaders in ctx.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// For returns the loaders stored in ctx, or nil.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(contextKey{}).(*Loaders)
	return l
}
