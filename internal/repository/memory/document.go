package memory

import (
	"context"
	"fmt"
	"time"

	"docsgraph/internal/domain"
	models "docsgraph/internal/domain/models/docsystem"
	docsysRepo "docsgraph/internal/domain/repositories/docsystem"

	"github.com/google/uuid"
)

type documentRow struct {
	doc models.Document
}

// DocumentRepository is the in-memory DocumentRepository.
type DocumentRepository struct {
	store *Store
}

// NewDocumentRepository creates a document repository over store.
func NewDocumentRepository(store *Store) docsysRepo.DocumentRepository {
	return &DocumentRepository{store: store}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if _, exists := r.store.docs[doc.ID.String()]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("document %s already exists", doc.ID),
			ResourceType: "document",
			ResourceID:   doc.ID.String(),
		}
	}
	if doc.DSpaceID != nil {
		for _, row := range r.store.docs {
			if row.doc.DSpaceID != nil && *row.doc.DSpaceID == *doc.DSpaceID {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("dspace item %s is already linked", doc.DSpaceID),
					ResourceType: "document",
					ResourceID:   row.doc.ID.String(),
				}
			}
		}
	}
	if err := r.checkFolder(doc); err != nil {
		return err
	}

	now := r.store.tick()
	doc.Created = now
	doc.Lastchange = now
	r.store.docs[doc.ID.String()] = &documentRow{doc: *doc}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.docs[id.String()]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc := row.doc
	return &doc, nil
}

func (r *DocumentRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		if row, ok := r.store.docs[id.String()]; ok {
			docs = append(docs, row.doc)
		}
	}
	return docs, nil
}

func (r *DocumentRepository) List(ctx context.Context, page models.PageOptions) ([]models.Document, error) {
	page.ApplyDefaults()
	return window(r.sorted(func(models.Document) bool { return true }), page.Offset, page.Limit), nil
}

func (r *DocumentRepository) FilterBy(ctx context.Context, field string, value any) ([]models.Document, error) {
	if !models.DocumentFilterFields[field] {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("cannot filter documents by %q", field)}
	}
	return r.sorted(func(d models.Document) bool {
		return matches(documentField(d, field), value)
	}), nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document, expected *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.docs[doc.ID.String()]
	if !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	if expected != nil && !expected.Equal(row.doc.Lastchange) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("document %s was changed concurrently", doc.ID),
			ResourceType: "document",
			ResourceID:   doc.ID.String(),
		}
	}
	if err := r.checkFolder(doc); err != nil {
		return err
	}

	updated := row.doc
	updated.Name = doc.Name
	updated.Description = doc.Description
	updated.AuthorID = doc.AuthorID
	updated.GroupID = doc.GroupID
	updated.FolderID = doc.FolderID
	updated.DocumentType = doc.DocumentType
	updated.ChangedBy = doc.ChangedBy
	updated.Lastchange = r.store.tick()
	row.doc = updated

	*doc = updated
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.docs[id.String()]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.docs, id.String())
	return nil
}

// checkFolder mirrors the folder_id foreign key. Caller holds the lock.
func (r *DocumentRepository) checkFolder(doc *models.Document) error {
	if doc.FolderID == nil {
		return nil
	}
	if _, ok := r.store.folders[doc.FolderID.String()]; !ok {
		return &domain.ValidationError{Message: fmt.Sprintf("document %s references a missing folder", doc.ID)}
	}
	return nil
}

func (r *DocumentRepository) sorted(keep func(models.Document) bool) []models.Document {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := make([]models.Document, 0, len(r.store.docs))
	for _, row := range r.store.docs {
		if keep(row.doc) {
			docs = append(docs, row.doc)
		}
	}
	sortByCreated(docs,
		func(d models.Document) time.Time { return d.Created },
		func(d models.Document) string { return d.ID.String() },
	)
	return docs
}

func documentField(d models.Document, field string) any {
	switch field {
	case "folder_id":
		return d.FolderID
	case "group_id":
		return d.GroupID
	case "author_id":
		return d.AuthorID
	case "dspace_id":
		return d.DSpaceID
	case "document_type":
		return d.DocumentType
	case "name":
		return d.Name
	}
	return nil
}
