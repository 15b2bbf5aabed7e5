package loader

import (
	"context"
	"time"

	models "docsgraph/internal/domain/models/docsystem"
	docsysRepo "docsgraph/internal/domain/repositories/docsystem"

	"github.com/google/uuid"
)

// FolderLoader caches folders by id.
type FolderLoader struct {
	*Loader[uuid.UUID, *models.Folder]
	repo docsysRepo.FolderRepository
}

// NewFolderLoader creates a folder loader over repo.
func NewFolderLoader(repo docsysRepo.FolderRepository) *FolderLoader {
	batch := func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Folder, error) {
		folders, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		found := make(map[uuid.UUID]*models.Folder, len(folders))
		for i := range folders {
			found[folders[i].ID] = &folders[i]
		}
		return found, nil
	}
	return &FolderLoader{
		Loader: New("document folder", batch),
		repo:   repo,
	}
}

// Page returns one page ordered by creation time.
func (l *FolderLoader) Page(ctx context.Context, page models.PageOptions) ([]*models.Folder, error) {
	folders, err := l.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return l.primeAll(folders), nil
}

// FilterBy returns folders whose field equals value.
func (l *FolderLoader) FilterBy(ctx context.Context, field string, value any) ([]*models.Folder, error) {
	folders, err := l.repo.FilterBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	return l.primeAll(folders), nil
}

func (l *FolderLoader) Insert(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	if err := l.repo.Create(ctx, folder); err != nil {
		return nil, err
	}
	l.Set(folder.ID, folder)
	return folder, nil
}

func (l *FolderLoader) Update(ctx context.Context, folder *models.Folder, expected *time.Time) (*models.Folder, error) {
	if err := l.repo.Update(ctx, folder, expected); err != nil {
		return nil, err
	}
	l.Set(folder.ID, folder)
	return folder, nil
}

func (l *FolderLoader) primeAll(folders []models.Folder) []*models.Folder {
	out := make([]*models.Folder, len(folders))
	for i := range folders {
		out[i] = l.Prime(folders[i].ID, &folders[i])
	}
	return out
}
