package graph

import (
	"context"

	models "docsgraph/internal/domain/models/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"

	"github.com/graph-gophers/graphql-go"
)

// DocumentResolver maps a stored document to the Document type.
type DocumentResolver struct {
	r   *Resolver
	doc *models.Document
}

func (r *Resolver) document(doc *models.Document) *DocumentResolver {
	if doc == nil {
		return nil
	}
	return &DocumentResolver{r: r, doc: doc}
}

func (d *DocumentResolver) ID() graphql.ID           { return toID(d.doc.ID) }
func (d *DocumentResolver) DspaceID() *graphql.ID    { return toOptionalID(d.doc.DSpaceID) }
func (d *DocumentResolver) Name() string             { return d.doc.Name }
func (d *DocumentResolver) Description() *string     { return d.doc.Description }
func (d *DocumentResolver) AuthorID() *graphql.ID    { return toOptionalID(d.doc.AuthorID) }
func (d *DocumentResolver) GroupID() *graphql.ID     { return toOptionalID(d.doc.GroupID) }
func (d *DocumentResolver) FolderID() *graphql.ID    { return toOptionalID(d.doc.FolderID) }
func (d *DocumentResolver) DocumentType() *string    { return d.doc.DocumentType }
func (d *DocumentResolver) ChangedbyID() *graphql.ID { return toOptionalID(d.doc.ChangedBy) }
func (d *DocumentResolver) Created() graphql.Time    { return graphql.Time{Time: d.doc.Created} }
func (d *DocumentResolver) Lastchange() graphql.Time { return graphql.Time{Time: d.doc.Lastchange} }

// Folder resolves through the request's folder loader.
func (d *DocumentResolver) Folder(ctx context.Context) (*FolderResolver, error) {
	if d.doc.FolderID == nil {
		return nil, nil
	}
	folder, err := d.r.folders.GetFolder(ctx, *d.doc.FolderID)
	if err != nil {
		return nil, wrapError(err)
	}
	return d.r.folder(folder), nil
}

// DocumentResultResolver maps a DocumentResult.
type DocumentResultResolver struct {
	r   *Resolver
	res *models.DocumentResult
}

func (r *Resolver) documentResult(field string, res *models.DocumentResult) *DocumentResultResolver {
	r.observe(field, res.Msg)
	return &DocumentResultResolver{r: r, res: res}
}

func (d *DocumentResultResolver) ID() *graphql.ID             { return toOptionalID(d.res.ID) }
func (d *DocumentResultResolver) Msg() string                 { return d.res.Msg }
func (d *DocumentResultResolver) DspaceResponse() *string     { return d.res.DSpaceResponse }
func (d *DocumentResultResolver) Document() *DocumentResolver { return d.r.document(d.res.Document) }

type documentInsertInput struct {
	Name        string
	Description *string
	AuthorID    *graphql.ID
	GroupID     *graphql.ID
	FolderID    *graphql.ID
}

type documentUpdateInput struct {
	ID           graphql.ID
	Lastchange   *graphql.Time
	Name         *string
	Description  *string
	AuthorID     *graphql.ID
	GroupID      *graphql.ID
	FolderID     *graphql.ID
	DocumentType *string
}

type documentRefInput struct {
	ID         graphql.ID
	Lastchange *graphql.Time
}

func (in documentRefInput) ref() (*docsysSvc.DocumentRef, error) {
	id, err := parseID(in.ID)
	if err != nil {
		return nil, err
	}
	return &docsysSvc.DocumentRef{ID: id, Lastchange: toTime(in.Lastchange)}, nil
}

func (r *Resolver) DocumentByID(ctx context.Context, args struct{ ID graphql.ID }) (*DocumentResultResolver, error) {
	const field = "documentById"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(field, err)
	}
	res, err := r.documents.GetDocument(ctx, id)
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.documentResult(field, res), nil
}

func (r *Resolver) DocumentsPage(ctx context.Context, args struct {
	Skip  *int32
	Limit *int32
}) ([]*DocumentResolver, error) {
	const field = "documentsPage"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	docs, err := r.documents.ListDocuments(ctx, page(args.Skip, args.Limit))
	if err != nil {
		return nil, r.fail(field, err)
	}
	r.observe(field, models.MsgOk)

	out := make([]*DocumentResolver, len(docs))
	for i, doc := range docs {
		out[i] = r.document(doc)
	}
	return out, nil
}

func (r *Resolver) DocumentInsert(ctx context.Context, args struct {
	Document     documentInsertInput
	CollectionID graphql.ID
	Type         *string
	Language     *string
}) (*DocumentResultResolver, error) {
	const field = "documentInsert"
	user, err := r.authorize(ctx, field)
	if err != nil {
		return nil, err
	}

	req := &docsysSvc.InsertDocumentRequest{
		Name:        args.Document.Name,
		Description: args.Document.Description,
		Type:        args.Type,
		Language:    args.Language,
		UserID:      userID(user),
	}
	if req.CollectionID, err = parseID(args.CollectionID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.AuthorID, err = parseOptionalID(args.Document.AuthorID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.GroupID, err = parseOptionalID(args.Document.GroupID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.FolderID, err = parseOptionalID(args.Document.FolderID); err != nil {
		return nil, r.fail(field, err)
	}

	res, err := r.documents.InsertDocument(ctx, req)
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.documentResult(field, res), nil
}

func (r *Resolver) DocumentUpdate(ctx context.Context, args struct{ Document documentUpdateInput }) (*DocumentResultResolver, error) {
	const field = "documentUpdate"
	user, err := r.authorize(ctx, field)
	if err != nil {
		return nil, err
	}

	in := args.Document
	req := &docsysSvc.UpdateDocumentRequest{
		Lastchange:   toTime(in.Lastchange),
		Name:         in.Name,
		Description:  in.Description,
		DocumentType: in.DocumentType,
		UserID:       userID(user),
	}
	if req.ID, err = parseID(in.ID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.AuthorID, err = parseOptionalID(in.AuthorID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.GroupID, err = parseOptionalID(in.GroupID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.FolderID, err = parseOptionalID(in.FolderID); err != nil {
		return nil, r.fail(field, err)
	}

	res, err := r.documents.UpdateDocument(ctx, req)
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.documentResult(field, res), nil
}

func (r *Resolver) DocumentDelete(ctx context.Context, args struct{ Document documentRefInput }) (*DocumentResultResolver, error) {
	const field = "documentDelete"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	ref, err := args.Document.ref()
	if err != nil {
		return nil, r.fail(field, err)
	}
	res, err := r.documents.DeleteDocument(ctx, ref)
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.documentResult(field, res), nil
}
