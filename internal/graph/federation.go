package graph

import (
	"context"
	"fmt"

	"docsgraph/internal/domain"

	"github.com/google/uuid"
)

// Representation is one `_Any` value passed to _entities.
type Representation struct {
	Typename string
	ID       string
}

func (Representation) ImplementsGraphQLType(name string) bool {
	return name == "_Any"
}

func (r *Representation) UnmarshalGraphQL(input interface{}) error {
	m, ok := input.(map[string]interface{})
	if !ok {
		return fmt.Errorf("_Any: expected an object, got %T", input)
	}
	typename, _ := m["__typename"].(string)
	if typename == "" {
		return fmt.Errorf("_Any: missing __typename")
	}
	id, _ := m["id"].(string)
	r.Typename = typename
	r.ID = id
	return nil
}

// EntityResolver resolves the _Entity union.
type EntityResolver struct {
	document *DocumentResolver
	folder   *FolderResolver
}

func (e *EntityResolver) ToDocument() (*DocumentResolver, bool) {
	return e.document, e.document != nil
}

func (e *EntityResolver) ToDocumentFolder() (*FolderResolver, bool) {
	return e.folder, e.folder != nil
}

// ServiceResolver exposes the subgraph SDL to the gateway.
type ServiceResolver struct{}

func (ServiceResolver) SDL() string { return SDL() }

func (r *Resolver) Service(ctx context.Context) (*ServiceResolver, error) {
	if _, err := r.authorize(ctx, "_service"); err != nil {
		return nil, err
	}
	return &ServiceResolver{}, nil
}

// Entities resolves references by id, loading each entity type in one batch.
// Unknown types are an error; unknown or malformed ids resolve to null.
func (r *Resolver) Entities(ctx context.Context, args struct{ Representations []Representation }) ([]*EntityResolver, error) {
	const field = "_entities"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}

	// positions of each parsable id, grouped by type
	batches := map[string]*entityBatch{
		"Document":       {},
		"DocumentFolder": {},
	}
	for i, rep := range args.Representations {
		batch, ok := batches[rep.Typename]
		if !ok {
			return nil, r.fail(field, fmt.Errorf("%w: unknown entity type %q", domain.ErrValidation, rep.Typename))
		}
		id, err := uuid.Parse(rep.ID)
		if err != nil {
			continue
		}
		batch.ids = append(batch.ids, id)
		batch.positions = append(batch.positions, i)
	}

	out := make([]*EntityResolver, len(args.Representations))
	if b := batches["Document"]; len(b.ids) > 0 {
		docs, err := r.documents.FindDocuments(ctx, b.ids)
		if err != nil {
			return nil, r.fail(field, err)
		}
		for j, doc := range docs {
			if doc != nil {
				out[b.positions[j]] = &EntityResolver{document: r.document(doc)}
			}
		}
	}
	if b := batches["DocumentFolder"]; len(b.ids) > 0 {
		folders, err := r.folders.FindFolders(ctx, b.ids)
		if err != nil {
			return nil, r.fail(field, err)
		}
		for j, folder := range folders {
			if folder != nil {
				out[b.positions[j]] = &EntityResolver{folder: r.folder(folder)}
			}
		}
	}
	return out, nil
}

type entityBatch struct {
	ids       []uuid.UUID
	positions []int
}
