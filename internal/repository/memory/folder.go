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

type folderRow struct {
	folder models.Folder
}

// FolderRepository is the in-memory FolderRepository.
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder repository over store.
func NewFolderRepository(store *Store) docsysRepo.FolderRepository {
	return &FolderRepository{store: store}
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if folder.ID == uuid.Nil {
		folder.ID = uuid.New()
	}
	if _, exists := r.store.folders[folder.ID.String()]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder %s already exists", folder.ID),
			ResourceType: "document_folder",
			ResourceID:   folder.ID.String(),
		}
	}
	if err := r.checkParent(folder); err != nil {
		return err
	}

	now := r.store.tick()
	folder.Created = now
	folder.Lastchange = now
	r.store.folders[folder.ID.String()] = &folderRow{folder: *folder}
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.folders[id.String()]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder := row.folder
	return &folder, nil
}

func (r *FolderRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Folder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	folders := make([]models.Folder, 0, len(ids))
	for _, id := range ids {
		if row, ok := r.store.folders[id.String()]; ok {
			folders = append(folders, row.folder)
		}
	}
	return folders, nil
}

func (r *FolderRepository) List(ctx context.Context, page models.PageOptions) ([]models.Folder, error) {
	page.ApplyDefaults()
	return window(r.sorted(func(models.Folder) bool { return true }), page.Offset, page.Limit), nil
}

func (r *FolderRepository) FilterBy(ctx context.Context, field string, value any) ([]models.Folder, error) {
	if !models.FolderFilterFields[field] {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("cannot filter folders by %q", field)}
	}
	return r.sorted(func(f models.Folder) bool {
		return matches(folderField(f, field), value)
	}), nil
}

func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder, expected *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.store.folders[folder.ID.String()]
	if !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	if expected != nil && !expected.Equal(row.folder.Lastchange) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder %s was changed concurrently", folder.ID),
			ResourceType: "document_folder",
			ResourceID:   folder.ID.String(),
		}
	}
	if err := r.checkParent(folder); err != nil {
		return err
	}

	updated := row.folder
	updated.Name = folder.Name
	updated.Description = folder.Description
	updated.GroupID = folder.GroupID
	updated.ParentID = folder.ParentID
	updated.Lastchange = r.store.tick()
	row.folder = updated

	*folder = updated
	return nil
}

// checkParent mirrors the parent_id foreign key. Caller holds the lock.
func (r *FolderRepository) checkParent(folder *models.Folder) error {
	if folder.ParentID == nil {
		return nil
	}
	if _, ok := r.store.folders[folder.ParentID.String()]; !ok {
		return &domain.ValidationError{Message: fmt.Sprintf("parent folder of %s does not exist", folder.ID)}
	}
	return nil
}

func (r *FolderRepository) sorted(keep func(models.Folder) bool) []models.Folder {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	folders := make([]models.Folder, 0, len(r.store.folders))
	for _, row := range r.store.folders {
		if keep(row.folder) {
			folders = append(folders, row.folder)
		}
	}
	sortByCreated(folders,
		func(f models.Folder) time.Time { return f.Created },
		func(f models.Folder) string { return f.ID.String() },
	)
	return folders
}

func folderField(f models.Folder, field string) any {
	switch field {
	case "parent_id":
		return f.ParentID
	case "group_id":
		return f.GroupID
	case "name":
		return f.Name
	}
	return nil
}
