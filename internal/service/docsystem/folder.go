package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	models "docsgraph/internal/domain/models/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"
	"docsgraph/internal/loader"

	"github.com/google/uuid"
)

// folderService implements the FolderService interface
type folderService struct {
	loaders   *loader.Factory
	validator ResourceValidator
	logger    *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(loaders *loader.Factory, logger *slog.Logger) docsysSvc.FolderService {
	return &folderService{loaders: loaders, logger: logger}
}

func (s *folderService) GetFolder(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	folder, err := loadersFor(ctx, s.loaders).Folders.Load(ctx, id)
	if err != nil {
		if loader.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return folder, nil
}

func (s *folderService) FindFolders(ctx context.Context, ids []uuid.UUID) ([]*models.Folder, error) {
	return loadersFor(ctx, s.loaders).Folders.LoadMany(ctx, ids)
}

func (s *folderService) ListFolders(ctx context.Context, page models.PageOptions) ([]*models.Folder, error) {
	return loadersFor(ctx, s.loaders).Folders.Page(ctx, page)
}

func (s *folderService) Subfolders(ctx context.Context, parentID uuid.UUID) ([]*models.Folder, error) {
	return loadersFor(ctx, s.loaders).Folders.FilterBy(ctx, "parent_id", parentID)
}

func (s *folderService) CreateFolder(ctx context.Context, req *docsysSvc.CreateFolderRequest) (*models.FolderResult, error) {
	if err := validateCreateFolder(req); err != nil {
		return nil, err
	}
	l := loadersFor(ctx, s.loaders)

	if err := s.validator.ValidateFolder(ctx, l, req.ParentID); err != nil {
		if loader.IsNotFound(err) {
			return &models.FolderResult{Msg: models.MsgFail}, nil
		}
		return nil, err
	}

	folder := &models.Folder{
		Name:        req.Name,
		Description: req.Description,
		GroupID:     req.GroupID,
		ParentID:    req.ParentID,
	}
	if req.ID != nil {
		folder.ID = *req.ID
	}
	stored, err := l.Folders.Insert(ctx, folder)
	if err != nil {
		if isLocalFailure(err) {
			s.logger.Warn("folder not created", "name", req.Name, "error", err)
			return &models.FolderResult{Msg: models.MsgFail}, nil
		}
		return nil, fmt.Errorf("insert folder: %w", err)
	}
	return &models.FolderResult{ID: &stored.ID, Msg: models.MsgOk, Folder: stored}, nil
}

// UpdateFolder applies the non-nil fields. Moving a folder below one of its
// own descendants is not detected.
func (s *folderService) UpdateFolder(ctx context.Context, req *docsysSvc.UpdateFolderRequest) (*models.FolderResult, error) {
	if err := validateUpdateFolder(req); err != nil {
		return nil, err
	}
	l := loadersFor(ctx, s.loaders)

	current, err := l.Folders.Load(ctx, req.ID)
	if err != nil {
		if loader.IsNotFound(err) {
			return &models.FolderResult{Msg: models.MsgFail}, nil
		}
		return nil, err
	}
	if req.Lastchange != nil && !req.Lastchange.Equal(current.Lastchange) {
		return &models.FolderResult{Msg: models.MsgFail}, nil
	}
	if req.ParentID != nil && *req.ParentID == req.ID {
		return &models.FolderResult{Msg: models.MsgFail}, nil
	}
	if err := s.validator.ValidateFolder(ctx, l, req.ParentID); err != nil {
		if loader.IsNotFound(err) {
			return &models.FolderResult{Msg: models.MsgFail}, nil
		}
		return nil, err
	}

	folder := current.Clone()
	if req.Name != nil {
		folder.Name = *req.Name
	}
	if req.Description != nil {
		folder.Description = req.Description
	}
	if req.GroupID != nil {
		folder.GroupID = req.GroupID
	}
	if req.ParentID != nil {
		folder.ParentID = req.ParentID
	}

	expected := current.Lastchange
	stored, err := l.Folders.Update(ctx, folder, &expected)
	if err != nil {
		if isLocalFailure(err) {
			s.logger.Warn("folder update not saved", "id", req.ID, "error", err)
			return &models.FolderResult{Msg: models.MsgFail}, nil
		}
		return nil, fmt.Errorf("update folder: %w", err)
	}
	return &models.FolderResult{ID: &stored.ID, Msg: models.MsgOk, Folder: stored}, nil
}
