package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docsgraph/internal/domain"
	models "docsgraph/internal/domain/models/docsystem"
	docsysRepo "docsgraph/internal/domain/repositories/docsystem"
	"docsgraph/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoData = `{
  "document_folders": [
    {"id": "2d9c5a3e-5c55-4f7b-9d1e-000000000002", "name": "2024", "parent_id": "2d9c5a3e-5c55-4f7b-9d1e-000000000001"},
    {"id": "2d9c5a3e-5c55-4f7b-9d1e-000000000001", "name": "Theses"}
  ],
  "documents": [
    {
      "id": "7a1f0c2b-8e3d-4c5a-b6f7-000000000001",
      "name": "Thesis A",
      "description": "about A",
      "folder_id": "2d9c5a3e-5c55-4f7b-9d1e-000000000002",
      "document_type": "thesis"
    }
  ]
}`

func newImporter() (*Importer, *memory.Store, docsysRepo.FolderRepository) {
	store := memory.NewStore()
	folders := memory.NewFolderRepository(store)
	importer := NewImporter(
		memory.NewDocumentRepository(store),
		folders,
		memory.NewTransactionManager(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return importer, store, folders
}

func TestImport(t *testing.T) {
	importer, store, folders := newImporter()
	data, err := Parse(strings.NewReader(demoData))
	require.NoError(t, err)

	summary, err := importer.Import(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, &Summary{FoldersCreated: 2, DocumentsCreated: 1}, summary)
	assert.Equal(t, 1, store.DocumentCount())

	child, err := folders.GetByID(context.Background(), uuid.MustParse("2d9c5a3e-5c55-4f7b-9d1e-000000000002"))
	require.NoError(t, err)
	assert.Equal(t, "2024", child.Name)

	summary, err = importer.Import(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, &Summary{FoldersSkipped: 2, DocumentsSkipped: 1}, summary)
	assert.Equal(t, 1, store.DocumentCount())
}

func TestImport_UnknownFolder(t *testing.T) {
	importer, _, _ := newImporter()
	missing := uuid.New()

	_, err := importer.Import(context.Background(), &Data{
		Documents: []models.Document{{Name: "orphan", FolderID: &missing}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrderFolders(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	external := uuid.New()

	ordered, err := orderFolders([]models.Folder{
		{ID: c, ParentID: &b},
		{ID: b, ParentID: &a},
		{ID: a, ParentID: &external},
	})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, []uuid.UUID{a, b, c}, []uuid.UUID{ordered[0].ID, ordered[1].ID, ordered[2].ID})

	_, err = orderFolders([]models.Folder{
		{ID: a, ParentID: &b},
		{ID: b, ParentID: &a},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "systemdata.json")
	require.NoError(t, os.WriteFile(path, []byte(demoData), 0o600))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, data.Folders, 2)
	assert.Len(t, data.Documents, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("{"))
	assert.Error(t, err)
}
