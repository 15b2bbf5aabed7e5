package graph

import (
	"context"

	models "docsgraph/internal/domain/models/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"

	"github.com/graph-gophers/graphql-go"
)

// FolderResolver maps a stored folder to the DocumentFolder type.
type FolderResolver struct {
	r      *Resolver
	folder *models.Folder
}

func (r *Resolver) folder(f *models.Folder) *FolderResolver {
	if f == nil {
		return nil
	}
	return &FolderResolver{r: r, folder: f}
}

func (f *FolderResolver) ID() graphql.ID           { return toID(f.folder.ID) }
func (f *FolderResolver) Name() string             { return f.folder.Name }
func (f *FolderResolver) Description() *string     { return f.folder.Description }
func (f *FolderResolver) GroupID() *graphql.ID     { return toOptionalID(f.folder.GroupID) }
func (f *FolderResolver) ParentID() *graphql.ID    { return toOptionalID(f.folder.ParentID) }
func (f *FolderResolver) Created() graphql.Time    { return graphql.Time{Time: f.folder.Created} }
func (f *FolderResolver) Lastchange() graphql.Time { return graphql.Time{Time: f.folder.Lastchange} }

func (f *FolderResolver) Parent(ctx context.Context) (*FolderResolver, error) {
	if f.folder.ParentID == nil {
		return nil, nil
	}
	parent, err := f.r.folders.GetFolder(ctx, *f.folder.ParentID)
	if err != nil {
		return nil, wrapError(err)
	}
	return f.r.folder(parent), nil
}

func (f *FolderResolver) Documents(ctx context.Context) ([]*DocumentResolver, error) {
	docs, err := f.r.documents.DocumentsInFolder(ctx, f.folder.ID)
	if err != nil {
		return nil, wrapError(err)
	}
	out := make([]*DocumentResolver, len(docs))
	for i, doc := range docs {
		out[i] = f.r.document(doc)
	}
	return out, nil
}

func (f *FolderResolver) Subfolders(ctx context.Context) ([]*FolderResolver, error) {
	children, err := f.r.folders.Subfolders(ctx, f.folder.ID)
	if err != nil {
		return nil, wrapError(err)
	}
	return f.r.folderList(children), nil
}

func (r *Resolver) folderList(folders []*models.Folder) []*FolderResolver {
	out := make([]*FolderResolver, len(folders))
	for i, folder := range folders {
		out[i] = r.folder(folder)
	}
	return out
}

// FolderResultResolver maps a FolderResult.
type FolderResultResolver struct {
	r   *Resolver
	res *models.FolderResult
}

func (f *FolderResultResolver) ID() *graphql.ID         { return toOptionalID(f.res.ID) }
func (f *FolderResultResolver) Msg() string             { return f.res.Msg }
func (f *FolderResultResolver) Folder() *FolderResolver { return f.r.folder(f.res.Folder) }

type folderInsertInput struct {
	ID          *graphql.ID
	Name        string
	Description *string
	GroupID     *graphql.ID
	ParentID    *graphql.ID
}

type folderUpdateInput struct {
	ID          graphql.ID
	Lastchange  *graphql.Time
	Name        *string
	Description *string
	GroupID     *graphql.ID
	ParentID    *graphql.ID
}

func (r *Resolver) DocumentFolderByID(ctx context.Context, args struct{ ID graphql.ID }) (*FolderResolver, error) {
	const field = "documentFolderById"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(field, err)
	}
	folder, err := r.folders.GetFolder(ctx, id)
	if err != nil {
		return nil, r.fail(field, err)
	}
	if folder == nil {
		r.observe(field, models.MsgFail)
		return nil, nil
	}
	r.observe(field, models.MsgOk)
	return r.folder(folder), nil
}

func (r *Resolver) DocumentFoldersPage(ctx context.Context, args struct {
	Skip  *int32
	Limit *int32
}) ([]*FolderResolver, error) {
	const field = "documentFoldersPage"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	folders, err := r.folders.ListFolders(ctx, page(args.Skip, args.Limit))
	if err != nil {
		return nil, r.fail(field, err)
	}
	r.observe(field, models.MsgOk)
	return r.folderList(folders), nil
}

func (r *Resolver) DocumentFolderInsert(ctx context.Context, args struct{ Folder folderInsertInput }) (*FolderResultResolver, error) {
	const field = "documentFolderInsert"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}

	in := args.Folder
	req := &docsysSvc.CreateFolderRequest{Name: in.Name, Description: in.Description}
	var err error
	if req.ID, err = parseOptionalID(in.ID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.GroupID, err = parseOptionalID(in.GroupID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.ParentID, err = parseOptionalID(in.ParentID); err != nil {
		return nil, r.fail(field, err)
	}

	res, err := r.folders.CreateFolder(ctx, req)
	if err != nil {
		return nil, r.fail(field, err)
	}
	r.observe(field, res.Msg)
	return &FolderResultResolver{r: r, res: res}, nil
}

func (r *Resolver) DocumentFolderUpdate(ctx context.Context, args struct{ Folder folderUpdateInput }) (*FolderResultResolver, error) {
	const field = "documentFolderUpdate"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}

	in := args.Folder
	req := &docsysSvc.UpdateFolderRequest{
		Lastchange:  toTime(in.Lastchange),
		Name:        in.Name,
		Description: in.Description,
	}
	var err error
	if req.ID, err = parseID(in.ID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.GroupID, err = parseOptionalID(in.GroupID); err != nil {
		return nil, r.fail(field, err)
	}
	if req.ParentID, err = parseOptionalID(in.ParentID); err != nil {
		return nil, r.fail(field, err)
	}

	res, err := r.folders.UpdateFolder(ctx, req)
	if err != nil {
		return nil, r.fail(field, err)
	}
	r.observe(field, res.Msg)
	return &FolderResultResolver{r: r, res: res}, nil
}
