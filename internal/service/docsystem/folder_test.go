package docsystem

import (
	"testing"
	"time"

	models "docsgraph/internal/domain/models/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderService_CreateAndNavigate(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	root, err := f.folders.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{Name: "Faculty"})
	require.NoError(t, err)
	require.Equal(t, models.MsgOk, root.Msg)

	child, err := f.folders.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{Name: "Theses", ParentID: root.ID})
	require.NoError(t, err)
	require.Equal(t, models.MsgOk, child.Msg)

	subfolders, err := f.folders.Subfolders(ctx, *root.ID)
	require.NoError(t, err)
	require.Len(t, subfolders, 1)
	assert.Equal(t, "Theses", subfolders[0].Name)

	res, err := f.docs.InsertDocument(ctx, &docsysSvc.InsertDocumentRequest{
		Name:         "Thesis A",
		CollectionID: f.collection,
		FolderID:     child.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.MsgOk, res.Msg)

	docs, err := f.docs.DocumentsInFolder(ctx, *child.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Thesis A", docs[0].Name)

	all, err := f.folders.ListFolders(ctx, models.PageOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	missing, err := f.folders.GetFolder(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFolderService_CreateWithMissingParent(t *testing.T) {
	f := newFixture(t)
	parent := uuid.New()

	res, err := f.folders.CreateFolder(f.ctx(), &docsysSvc.CreateFolderRequest{Name: "orphan", ParentID: &parent})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)
	assert.Nil(t, res.ID)
}

func TestFolderService_CreateWithGivenID(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	res, err := f.folders.CreateFolder(f.ctx(), &docsysSvc.CreateFolderRequest{ID: &id, Name: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, id, *res.ID)

	dup, err := f.folders.CreateFolder(f.ctx(), &docsysSvc.CreateFolderRequest{ID: &id, Name: "again"})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, dup.Msg)
}

func TestFolderService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	a, err := f.folders.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{Name: "A"})
	require.NoError(t, err)
	b, err := f.folders.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{Name: "B"})
	require.NoError(t, err)
	before := b.Folder.Lastchange

	res, err := f.folders.UpdateFolder(ctx, &docsysSvc.UpdateFolderRequest{
		ID:         *b.ID,
		Lastchange: &before,
		Name:       strPtr("B2"),
		ParentID:   a.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.MsgOk, res.Msg)
	assert.Equal(t, "B2", res.Folder.Name)
	assert.Equal(t, a.ID, res.Folder.ParentID)
	assert.True(t, res.Folder.Lastchange.After(before))

	stale := before.Add(-time.Minute)
	res, err = f.folders.UpdateFolder(ctx, &docsysSvc.UpdateFolderRequest{ID: *b.ID, Lastchange: &stale, Name: strPtr("B3")})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)

	res, err = f.folders.UpdateFolder(ctx, &docsysSvc.UpdateFolderRequest{ID: *b.ID, ParentID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg, "a folder cannot be its own parent")

	res, err = f.folders.UpdateFolder(ctx, &docsysSvc.UpdateFolderRequest{ID: uuid.New(), Name: strPtr("ghost")})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)
}

func TestFindByIDs_KeepsOrderAndGaps(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	folder, err := f.folders.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{Name: "Faculty"})
	require.NoError(t, err)
	doc := f.insert(t, "Thesis A")
	requestsBefore := len(f.dspace.Requests())

	missing := uuid.New()
	folders, err := f.folders.FindFolders(ctx, []uuid.UUID{missing, *folder.ID})
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Nil(t, folders[0])
	assert.Equal(t, "Faculty", folders[1].Name)

	docs, err := f.docs.FindDocuments(ctx, []uuid.UUID{*doc.ID, missing, *doc.ID})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "Thesis A", docs[0].Name)
	assert.Nil(t, docs[1])
	assert.Same(t, docs[0], docs[2])
	assert.Len(t, f.dspace.Requests(), requestsBefore, "entity lookups stay local")
}
