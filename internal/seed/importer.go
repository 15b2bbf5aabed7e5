package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"docsgraph/internal/domain"
	models "docsgraph/internal/domain/models/docsystem"
	"docsgraph/internal/domain/repositories"
	docsysRepo "docsgraph/internal/domain/repositories/docsystem"

	"github.com/google/uuid"
)

// Data is the layout of a demo data file.
type Data struct {
	Folders   []models.Folder   `json:"document_folders"`
	Documents []models.Document `json:"documents"`
}

// Parse decodes demo data from r.
func Parse(r io.Reader) (*Data, error) {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode demo data: %w", err)
	}
	return &data, nil
}

// Load reads demo data from path.
func Load(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open demo data: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Summary counts what an import did.
type Summary struct {
	FoldersCreated   int
	FoldersSkipped   int
	DocumentsCreated int
	DocumentsSkipped int
}

// Importer writes demo data through the repositories inside one transaction.
type Importer struct {
	documents docsysRepo.DocumentRepository
	folders   docsysRepo.FolderRepository
	tx        repositories.TransactionManager
	logger    *slog.Logger
}

// NewImporter creates a new importer
func NewImporter(
	documents docsysRepo.DocumentRepository,
	folders docsysRepo.FolderRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *Importer {
	return &Importer{
		documents: documents,
		folders:   folders,
		tx:        tx,
		logger:    logger,
	}
}

// Import inserts folders (parents first) and then documents. Rows whose id
// already exists are left untouched, so running it twice is harmless.
// Timestamps in the file are ignored; the store assigns its own.
func (i *Importer) Import(ctx context.Context, data *Data) (*Summary, error) {
	folders, err := orderFolders(data.Folders)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	err = i.tx.ExecTx(ctx, func(ctx context.Context) error {
		for _, folder := range folders {
			created, err := i.importFolder(ctx, folder)
			if err != nil {
				return err
			}
			if created {
				summary.FoldersCreated++
			} else {
				summary.FoldersSkipped++
			}
		}
		for _, doc := range data.Documents {
			created, err := i.importDocument(ctx, doc)
			if err != nil {
				return err
			}
			if created {
				summary.DocumentsCreated++
			} else {
				summary.DocumentsSkipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("demo data imported",
		"folders_created", summary.FoldersCreated,
		"folders_skipped", summary.FoldersSkipped,
		"documents_created", summary.DocumentsCreated,
		"documents_skipped", summary.DocumentsSkipped,
	)
	return summary, nil
}

func (i *Importer) importFolder(ctx context.Context, folder models.Folder) (bool, error) {
	if folder.ID != uuid.Nil {
		_, err := i.folders.GetByID(ctx, folder.ID)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
	}
	if err := i.folders.Create(ctx, &folder); err != nil {
		return false, fmt.Errorf("import folder %q: %w", folder.Name, err)
	}
	return true, nil
}

func (i *Importer) importDocument(ctx context.Context, doc models.Document) (bool, error) {
	if doc.ID != uuid.Nil {
		_, err := i.documents.GetByID(ctx, doc.ID)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
	}
	if err := i.documents.Create(ctx, &doc); err != nil {
		return false, fmt.Errorf("import document %q: %w", doc.Name, err)
	}
	return true, nil
}

// orderFolders sorts folders so every parent listed in the file comes before
// its children. Parents missing from the file are expected to exist already.
func orderFolders(folders []models.Folder) ([]models.Folder, error) {
	inFile := make(map[uuid.UUID]bool, len(folders))
	for _, f := range folders {
		if f.ID != uuid.Nil {
			inFile[f.ID] = true
		}
	}

	ordered := make([]models.Folder, 0, len(folders))
	placed := make(map[uuid.UUID]bool, len(folders))
	pending := folders
	for len(pending) > 0 {
		var next []models.Folder
		for _, f := range pending {
			if f.ParentID == nil || !inFile[*f.ParentID] || placed[*f.ParentID] {
				ordered = append(ordered, f)
				placed[f.ID] = true
				continue
			}
			next = append(next, f)
		}
		if len(next) == len(pending) {
			return nil, fmt.Errorf("%w: folder parents form a cycle (%d folders)", domain.ErrValidation, len(next))
		}
		pending = next
	}
	return ordered, nil
}
