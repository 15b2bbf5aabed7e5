package docsystem

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docsgraph/internal/domain"
	models "docsgraph/internal/domain/models/docsystem"
	docsysRepo "docsgraph/internal/domain/repositories/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"
	"docsgraph/internal/dspace"
	"docsgraph/internal/dspace/dspacetest"
	"docsgraph/internal/loader"
	"docsgraph/internal/repository/memory"
	"docsgraph/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	docs       docsysSvc.DocumentService
	folders    docsysSvc.FolderService
	repository docsysSvc.RepositoryService
	store      *memory.Store
	docRepo    docsysRepo.DocumentRepository
	folderRepo docsysRepo.FolderRepository
	dspace     *dspacetest.Server
	dir        string
	collection uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	docRepo := memory.NewDocumentRepository(store)
	folderRepo := memory.NewFolderRepository(store)
	factory := loader.NewFactory(docRepo, folderRepo)

	srv := dspacetest.NewServer(t)
	client := dspace.New(dspace.Config{
		BaseURL:  srv.BaseURL(),
		Username: dspacetest.Username,
		Password: dspacetest.Password,
		Logger:   logger,
	})
	dir := t.TempDir()

	return &fixture{
		docs:       NewDocumentService(factory, client, storage.NewDirSource(dir), logger),
		folders:    NewFolderService(factory, logger),
		repository: NewRepositoryService(client, logger),
		store:      store,
		docRepo:    docRepo,
		folderRepo: folderRepo,
		dspace:     srv,
		dir:        dir,
		collection: srv.AddCollection("Theses"),
	}
}

// ctx returns a fresh request context, as the GraphQL handler would.
func (f *fixture) ctx() context.Context {
	return context.Background()
}

func (f *fixture) insert(t *testing.T, name string) *models.DocumentResult {
	t.Helper()
	desc := name + " description"
	res, err := f.docs.InsertDocument(f.ctx(), &docsysSvc.InsertDocumentRequest{
		Name:         name,
		Description:  &desc,
		CollectionID: f.collection,
	})
	require.NoError(t, err)
	require.Equal(t, models.MsgOk, res.Msg)
	require.NotNil(t, res.ID)
	return res
}

func strPtr(s string) *string { return &s }

func TestInsertDocument(t *testing.T) {
	f := newFixture(t)
	author := uuid.New()
	kind := "thesis"

	res, err := f.docs.InsertDocument(f.ctx(), &docsysSvc.InsertDocumentRequest{
		Name:         "Thesis A",
		Description:  strPtr("about A"),
		AuthorID:     &author,
		CollectionID: f.collection,
		Type:         &kind,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, res.Msg)
	require.NotNil(t, res.ID)
	require.NotNil(t, res.DSpaceResponse)

	doc, err := f.docRepo.GetByID(f.ctx(), *res.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.DSpaceID)
	assert.Equal(t, "thesis", *doc.DocumentType)

	item, ok := f.dspace.Item(*doc.DSpaceID)
	require.True(t, ok)
	assert.Equal(t, "Thesis A", item.Title())
	assert.Equal(t, "about A", item.Description())
	assert.Equal(t, author.String(), item.Metadata["dc.contributor.author"][0].Value)
	assert.Len(t, item.Bundles, 1)
}

func TestInsertDocument_ExternalFailureCreatesNoRow(t *testing.T) {
	for _, status := range []int{400, 401, 403, 404, 422, 500} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t)
			f.dspace.Fail(http.MethodPost, "/core/items", status)

			res, err := f.docs.InsertDocument(f.ctx(), &docsysSvc.InsertDocumentRequest{
				Name:         "Thesis A",
				CollectionID: f.collection,
			})
			require.NoError(t, err)
			assert.Equal(t, models.MsgFail, res.Msg)
			assert.Nil(t, res.ID)
			assert.Equal(t, 0, f.store.DocumentCount())
		})
	}
}

func TestInsertDocument_BestEffortFollowUps(t *testing.T) {
	f := newFixture(t)
	f.dspace.Fail(http.MethodPatch, "/core/items", http.StatusForbidden)
	f.dspace.Fail(http.MethodPost, "/core/items/", http.StatusInternalServerError)

	res := f.insert(t, "Thesis A")

	doc, err := f.docRepo.GetByID(f.ctx(), *res.ID)
	require.NoError(t, err)
	item, ok := f.dspace.Item(*doc.DSpaceID)
	require.True(t, ok)
	assert.Empty(t, item.Description())
	assert.Empty(t, item.Bundles)
}

func TestInsertDocument_MissingFolder(t *testing.T) {
	f := newFixture(t)
	folder := uuid.New()

	res, err := f.docs.InsertDocument(f.ctx(), &docsysSvc.InsertDocumentRequest{
		Name:         "Thesis A",
		CollectionID: f.collection,
		FolderID:     &folder,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)
	assert.Equal(t, 0, f.dspace.Count(http.MethodPost, "/core/items"))
}

func TestInsertDocument_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.docs.InsertDocument(f.ctx(), &docsysSvc.InsertDocumentRequest{CollectionID: f.collection})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.docs.InsertDocument(f.ctx(), &docsysSvc.InsertDocumentRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.dspace.Requests())
}

func TestGetDocument(t *testing.T) {
	f := newFixture(t)
	inserted := f.insert(t, "Thesis A")

	res, err := f.docs.GetDocument(f.ctx(), *inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, res.Msg)
	assert.Equal(t, inserted.ID, res.ID)
	require.NotNil(t, res.DSpaceResponse)
	assert.Contains(t, *res.DSpaceResponse, "Thesis A")

	f.dspace.Fail(http.MethodGet, "/core/items", http.StatusUnauthorized)
	res, err = f.docs.GetDocument(f.ctx(), *inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MsgUnauthorized, res.Msg)

	res, err = f.docs.GetDocument(f.ctx(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)
	assert.Nil(t, res.ID)
}

func TestGetDocument_LocalOnly(t *testing.T) {
	f := newFixture(t)
	doc := &models.Document{Name: "imported"}
	require.NoError(t, f.docRepo.Create(f.ctx(), doc))

	res, err := f.docs.GetDocument(f.ctx(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, res.Msg)
	assert.Nil(t, res.DSpaceResponse)
	assert.Empty(t, f.dspace.Requests())
}

func TestUpdateDocument(t *testing.T) {
	f := newFixture(t)
	inserted := f.insert(t, "Thesis A")
	before := inserted.Document.Lastchange
	user := uuid.New()

	res, err := f.docs.UpdateDocument(f.ctx(), &docsysSvc.UpdateDocumentRequest{
		ID:          *inserted.ID,
		Lastchange:  &before,
		Name:        strPtr("Thesis B"),
		Description: strPtr("revised"),
		UserID:      &user,
	})
	require.NoError(t, err)
	require.Equal(t, models.MsgOk, res.Msg)
	assert.Equal(t, "Thesis B", res.Document.Name)
	assert.True(t, res.Document.Lastchange.After(before))
	assert.Equal(t, user, *res.Document.ChangedBy)

	item, _ := f.dspace.Item(*res.Document.DSpaceID)
	assert.Equal(t, "Thesis B", item.Title())
	assert.Equal(t, "revised", item.Description())

	got, err := f.docs.GetDocument(f.ctx(), *inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thesis B", got.Document.Name)
}

func TestUpdateDocument_StaleLastchange(t *testing.T) {
	f := newFixture(t)
	inserted := f.insert(t, "Thesis A")
	stale := inserted.Document.Lastchange.Add(-time.Second)
	patches := f.dspace.Count(http.MethodPatch, "/core/items")

	res, err := f.docs.UpdateDocument(f.ctx(), &docsysSvc.UpdateDocumentRequest{
		ID:         *inserted.ID,
		Lastchange: &stale,
		Name:       strPtr("Thesis B"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)
	assert.Nil(t, res.ID)
	assert.Equal(t, patches, f.dspace.Count(http.MethodPatch, "/core/items"))
}

func TestUpdateDocument_ExternalRejection(t *testing.T) {
	f := newFixture(t)
	inserted := f.insert(t, "Thesis A")
	f.dspace.Fail(http.MethodPatch, "/core/items", http.StatusForbidden)

	res, err := f.docs.UpdateDocument(f.ctx(), &docsysSvc.UpdateDocumentRequest{
		ID:   *inserted.ID,
		Name: strPtr("Thesis B"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MsgForbidden, res.Msg)

	doc, err := f.docRepo.GetByID(f.ctx(), *inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thesis A", doc.Name)
	assert.Equal(t, inserted.Document.Lastchange, doc.Lastchange)
}

func TestUpdateDocument_Missing(t *testing.T) {
	f := newFixture(t)

	res, err := f.docs.UpdateDocument(f.ctx(), &docsysSvc.UpdateDocumentRequest{ID: uuid.New(), Name: strPtr("x")})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)
	assert.Nil(t, res.ID)
}

func TestDeleteDocument(t *testing.T) {
	f := newFixture(t)
	inserted := f.insert(t, "Thesis A")
	itemID := *inserted.Document.DSpaceID

	res, err := f.docs.DeleteDocument(f.ctx(), &docsysSvc.DocumentRef{ID: *inserted.ID})
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, res.Msg)
	assert.Equal(t, 0, f.store.DocumentCount())

	item, ok := f.dspace.Item(itemID)
	require.True(t, ok)
	assert.True(t, item.Withdrawn)
}

func TestDeleteDocument_ExternalFailureKeepsRow(t *testing.T) {
	for _, status := range []int{401, 403, 404, 422, 500} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t)
			inserted := f.insert(t, "Thesis A")
			f.dspace.Fail(http.MethodPatch, "/core/items", status)

			res, err := f.docs.DeleteDocument(f.ctx(), &docsysSvc.DocumentRef{ID: *inserted.ID})
			require.NoError(t, err)
			assert.NotEqual(t, models.MsgOk, res.Msg)
			assert.Equal(t, StatusMessage(status), res.Msg)
			assert.Equal(t, inserted.ID, res.ID)
			assert.Equal(t, 1, f.store.DocumentCount())
		})
	}
}

func TestDeleteDocument_Missing(t *testing.T) {
	f := newFixture(t)

	res, err := f.docs.DeleteDocument(f.ctx(), &docsysSvc.DocumentRef{ID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)
	assert.Nil(t, res.ID)
	assert.Empty(t, f.dspace.Requests())
}

func TestBitstreams(t *testing.T) {
	f := newFixture(t)
	inserted := f.insert(t, "Thesis A")
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "thesis.txt"), []byte("chapter one"), 0o600))

	res, err := f.docs.GetBitstream(f.ctx(), *inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MsgNoContent, res.Msg)

	res, err = f.docs.AddBitstream(f.ctx(), &docsysSvc.AddBitstreamRequest{
		DocumentRef: docsysSvc.DocumentRef{ID: *inserted.ID},
		Filename:    "../thesis.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, res.Msg)

	res, err = f.docs.GetBitstream(f.ctx(), *inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, res.Msg)
	require.NotNil(t, res.Response)
	assert.Equal(t, "chapter one", *res.Response)
}

func TestBitstreams_BinaryContentIsBase64(t *testing.T) {
	f := newFixture(t)
	inserted := f.insert(t, "Scan")
	content := []byte{0x89, 'P', 'N', 'G', 0xff, 0x00}
	f.dspace.AddBitstream(*inserted.Document.DSpaceID, "scan.png", content)

	res, err := f.docs.GetBitstream(f.ctx(), *inserted.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Response)
	assert.Equal(t, base64.StdEncoding.EncodeToString(content), *res.Response)
}

func TestAddBitstream_CreatesBundleAndReportsMissingFile(t *testing.T) {
	f := newFixture(t)
	f.dspace.Fail(http.MethodPost, "/core/items/", http.StatusInternalServerError)
	inserted := f.insert(t, "Thesis A")
	f.dspace.Reset()

	_, err := f.docs.AddBitstream(f.ctx(), &docsysSvc.AddBitstreamRequest{
		DocumentRef: docsysSvc.DocumentRef{ID: *inserted.ID},
		Filename:    "missing.pdf",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	item, _ := f.dspace.Item(*inserted.Document.DSpaceID)
	assert.Len(t, item.Bundles, 1)

	res, err := f.docs.AddBitstream(f.ctx(), &docsysSvc.AddBitstreamRequest{
		DocumentRef: docsysSvc.DocumentRef{ID: uuid.New()},
		Filename:    "x.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MsgFail, res.Msg)
}
