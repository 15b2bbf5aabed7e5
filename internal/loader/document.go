package loader

import (
	"context"
	"time"

	models "docsgraph/internal/domain/models/docsystem"
	docsysRepo "docsgraph/internal/domain/repositories/docsystem"

	"github.com/google/uuid"
)

// DocumentLoader caches documents by id and keeps the cache coherent with the
// writes it performs. Returned records are shared; Clone before mutating.
type DocumentLoader struct {
	*Loader[uuid.UUID, *models.Document]
	repo docsysRepo.DocumentRepository
}

// NewDocumentLoader creates a document loader over repo.
func NewDocumentLoader(repo docsysRepo.DocumentRepository) *DocumentLoader {
	batch := func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Document, error) {
		docs, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		found := make(map[uuid.UUID]*models.Document, len(docs))
		for i := range docs {
			found[docs[i].ID] = &docs[i]
		}
		return found, nil
	}
	return &DocumentLoader{
		Loader: New("document", batch),
		repo:   repo,
	}
}

// Page returns one page ordered by creation time.
func (l *DocumentLoader) Page(ctx context.Context, page models.PageOptions) ([]*models.Document, error) {
	docs, err := l.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return l.primeAll(docs), nil
}

// FilterBy returns documents whose field equals value.
func (l *DocumentLoader) FilterBy(ctx context.Context, field string, value any) ([]*models.Document, error) {
	docs, err := l.repo.FilterBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	return l.primeAll(docs), nil
}

// Insert creates doc and caches the stored record.
func (l *DocumentLoader) Insert(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if err := l.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	l.Set(doc.ID, doc)
	return doc, nil
}

// Update persists doc if its stored lastchange equals expected (nil skips the
// check) and caches the new record.
func (l *DocumentLoader) Update(ctx context.Context, doc *models.Document, expected *time.Time) (*models.Document, error) {
	if err := l.repo.Update(ctx, doc, expected); err != nil {
		return nil, err
	}
	l.Set(doc.ID, doc)
	return doc, nil
}

// Delete removes the row and evicts it.
func (l *DocumentLoader) Delete(ctx context.Context, id uuid.UUID) error {
	if err := l.repo.Delete(ctx, id); err != nil {
		return err
	}
	l.Clear(id)
	return nil
}

func (l *DocumentLoader) primeAll(docs []models.Document) []*models.Document {
	out := make([]*models.Document, len(docs))
	for i := range docs {
		out[i] = l.Prime(docs[i].ID, &docs[i])
	}
	return out
}
