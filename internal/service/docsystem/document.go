package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docsgraph/internal/domain"
	models "docsgraph/internal/domain/models/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"
	"docsgraph/internal/dspace"
	"docsgraph/internal/loader"
	"docsgraph/internal/storage"

	"github.com/google/uuid"
)

// documentService implements the DocumentService interface
type documentService struct {
	loaders   *loader.Factory
	dspace    DSpace
	files     storage.Source
	validator ResourceValidator
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	loaders *loader.Factory,
	dspace DSpace,
	files storage.Source,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		loaders: loaders,
		dspace:  dspace,
		files:   files,
		logger:  logger,
	}
}

// loadersFor returns the request's loaders, or a fresh set outside a request.
func loadersFor(ctx context.Context, factory *loader.Factory) *loader.Loaders {
	if l := loader.For(ctx); l != nil {
		return l
	}
	return factory.New()
}

func failed() *models.DocumentResult {
	return &models.DocumentResult{Msg: models.MsgFail}
}

// isLocalFailure reports store outcomes that become a Fail result rather
// than an error: missing rows, stale versions and constraint violations.
func isLocalFailure(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrValidation)
}

func (s *documentService) GetDocument(ctx context.Context, id uuid.UUID) (*models.DocumentResult, error) {
	doc, err := loadersFor(ctx, s.loaders).Documents.Load(ctx, id)
	if err != nil {
		if loader.IsNotFound(err) {
			return failed(), nil
		}
		return nil, err
	}

	result := &models.DocumentResult{ID: &doc.ID, Msg: models.MsgOk, Document: doc}
	if doc.DSpaceID == nil {
		return result, nil
	}

	res, err := s.dspace.GetItem(ctx, *doc.DSpaceID)
	if err != nil {
		return nil, err
	}
	result.Msg = StatusMessage(res.Status)
	result.DSpaceResponse = bodyString(res)
	return result, nil
}

func (s *documentService) FindDocuments(ctx context.Context, ids []uuid.UUID) ([]*models.Document, error) {
	return loadersFor(ctx, s.loaders).Documents.LoadMany(ctx, ids)
}

func (s *documentService) ListDocuments(ctx context.Context, page models.PageOptions) ([]*models.Document, error) {
	return loadersFor(ctx, s.loaders).Documents.Page(ctx, page)
}

func (s *documentService) DocumentsInFolder(ctx context.Context, folderID uuid.UUID) ([]*models.Document, error) {
	return loadersFor(ctx, s.loaders).Documents.FilterBy(ctx, "folder_id", folderID)
}

// InsertDocument creates the DSpace item, then the local row. Description and
// bundle creation are best-effort. When the local insert fails the item stays
// in DSpace; the orphan is logged with its id.
func (s *documentService) InsertDocument(ctx context.Context, req *docsysSvc.InsertDocumentRequest) (*models.DocumentResult, error) {
	if err := validateInsertDocument(req); err != nil {
		return nil, err
	}
	l := loadersFor(ctx, s.loaders)

	if err := s.validator.ValidateFolder(ctx, l, req.FolderID); err != nil {
		if loader.IsNotFound(err) {
			s.logger.Debug("document insert rejected", "folder_id", req.FolderID, "error", err)
			return failed(), nil
		}
		return nil, err
	}

	in := dspace.ItemInput{Title: req.Name, Type: deref(req.Type), Language: deref(req.Language)}
	if req.AuthorID != nil {
		in.Author = req.AuthorID.String()
	}
	res, err := s.dspace.CreateItem(ctx, req.CollectionID, in)
	if err != nil {
		return nil, err
	}
	body := bodyString(res)
	itemID := res.UUID()
	if !res.OK() || itemID == nil {
		s.logger.Warn("dspace item not created",
			"collection_id", req.CollectionID,
			"status", res.Status,
		)
		return &models.DocumentResult{Msg: models.MsgFail, DSpaceResponse: body}, nil
	}

	if req.Description != nil {
		s.bestEffort(ctx, "add description", *itemID, func() (*dspace.Result, error) {
			return s.dspace.AddDescription(ctx, *itemID, *req.Description, in.Language)
		})
	}
	s.bestEffort(ctx, "create bundle", *itemID, func() (*dspace.Result, error) {
		return s.dspace.CreateBundle(ctx, *itemID)
	})

	doc := &models.Document{
		DSpaceID:     itemID,
		Name:         req.Name,
		Description:  req.Description,
		AuthorID:     req.AuthorID,
		GroupID:      req.GroupID,
		FolderID:     req.FolderID,
		DocumentType: req.Type,
		ChangedBy:    req.UserID,
	}
	stored, err := l.Documents.Insert(ctx, doc)
	if err != nil {
		s.logger.Error("dspace item has no local document",
			"dspace_id", itemID,
			"error", err,
		)
		if isLocalFailure(err) {
			return &models.DocumentResult{Msg: models.MsgFail, DSpaceResponse: body}, nil
		}
		return nil, fmt.Errorf("insert document: %w", err)
	}

	s.logger.Info("document created", "id", stored.ID, "dspace_id", itemID)
	return &models.DocumentResult{
		ID:             &stored.ID,
		Msg:            models.MsgOk,
		DSpaceResponse: body,
		Document:       stored,
	}, nil
}

// bestEffort runs a follow-up DSpace call whose failure does not abort the
// operation.
func (s *documentService) bestEffort(ctx context.Context, step string, itemID uuid.UUID, fn func() (*dspace.Result, error)) {
	res, err := fn()
	switch {
	case err != nil:
		s.logger.Warn("dspace follow-up failed", "step", step, "dspace_id", itemID, "error", err)
	case !res.OK():
		s.logger.Warn("dspace follow-up rejected", "step", step, "dspace_id", itemID, "status", res.Status)
	}
}

// UpdateDocument pushes title and description to DSpace before saving. A
// rejected DSpace change is reported with its mapped status and nothing is
// saved locally.
func (s *documentService) UpdateDocument(ctx context.Context, req *docsysSvc.UpdateDocumentRequest) (*models.DocumentResult, error) {
	if err := validateUpdateDocument(req); err != nil {
		return nil, err
	}
	l := loadersFor(ctx, s.loaders)

	current, err := l.Documents.Load(ctx, req.ID)
	if err != nil {
		if loader.IsNotFound(err) {
			return failed(), nil
		}
		return nil, err
	}
	if req.Lastchange != nil && !req.Lastchange.Equal(current.Lastchange) {
		s.logger.Debug("stale document update", "id", req.ID, "lastchange", current.Lastchange, "given", req.Lastchange)
		return failed(), nil
	}
	if err := s.validator.ValidateFolder(ctx, l, req.FolderID); err != nil {
		if loader.IsNotFound(err) {
			return failed(), nil
		}
		return nil, err
	}

	doc := current.Clone()
	var body *string
	if current.DSpaceID != nil {
		itemID := *current.DSpaceID
		if req.Name != nil {
			res, err := s.dspace.SetTitle(ctx, itemID, *req.Name, "")
			if err != nil {
				return nil, err
			}
			body = bodyString(res)
			if !res.OK() {
				return &models.DocumentResult{ID: &current.ID, Msg: StatusMessage(res.Status), DSpaceResponse: body}, nil
			}
		}
		if req.Description != nil {
			var res *dspace.Result
			if current.Description == nil {
				res, err = s.dspace.AddDescription(ctx, itemID, *req.Description, "")
			} else {
				res, err = s.dspace.SetDescription(ctx, itemID, *req.Description, "")
			}
			if err != nil {
				return nil, err
			}
			body = bodyString(res)
			if !res.OK() {
				return &models.DocumentResult{ID: &current.ID, Msg: StatusMessage(res.Status), DSpaceResponse: body}, nil
			}
		}
	}

	if req.Name != nil {
		doc.Name = *req.Name
	}
	if req.Description != nil {
		doc.Description = req.Description
	}
	if req.AuthorID != nil {
		doc.AuthorID = req.AuthorID
	}
	if req.GroupID != nil {
		doc.GroupID = req.GroupID
	}
	if req.FolderID != nil {
		doc.FolderID = req.FolderID
	}
	if req.DocumentType != nil {
		doc.DocumentType = req.DocumentType
	}
	if req.UserID != nil {
		doc.ChangedBy = req.UserID
	}

	expected := current.Lastchange
	stored, err := l.Documents.Update(ctx, doc, &expected)
	if err != nil {
		if isLocalFailure(err) {
			s.logger.Warn("document update not saved", "id", req.ID, "error", err)
			return &models.DocumentResult{Msg: models.MsgFail, DSpaceResponse: body}, nil
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	return &models.DocumentResult{
		ID:             &stored.ID,
		Msg:            models.MsgOk,
		DSpaceResponse: body,
		Document:       stored,
	}, nil
}

// DeleteDocument withdraws the DSpace item and deletes the local row only when
// DSpace accepted. A rejected withdrawal keeps the row and reports the mapped
// status with the document id.
func (s *documentService) DeleteDocument(ctx context.Context, req *docsysSvc.DocumentRef) (*models.DocumentResult, error) {
	l := loadersFor(ctx, s.loaders)

	doc, err := l.Documents.Load(ctx, req.ID)
	if err != nil {
		if loader.IsNotFound(err) {
			return failed(), nil
		}
		return nil, err
	}
	if req.Lastchange != nil && !req.Lastchange.Equal(doc.Lastchange) {
		return failed(), nil
	}

	var body *string
	if doc.DSpaceID != nil {
		res, err := s.dspace.SetWithdrawn(ctx, *doc.DSpaceID)
		if err != nil {
			return nil, err
		}
		body = bodyString(res)
		if !res.OK() {
			s.logger.Warn("dspace withdrawal rejected, document kept",
				"id", doc.ID,
				"dspace_id", doc.DSpaceID,
				"status", res.Status,
			)
			return &models.DocumentResult{ID: &doc.ID, Msg: StatusMessage(res.Status), DSpaceResponse: body}, nil
		}
	}

	if err := l.Documents.Delete(ctx, doc.ID); err != nil {
		if isLocalFailure(err) {
			return &models.DocumentResult{Msg: models.MsgFail, DSpaceResponse: body}, nil
		}
		return nil, fmt.Errorf("delete document: %w", err)
	}

	s.logger.Info("document deleted", "id", doc.ID, "dspace_id", doc.DSpaceID)
	return &models.DocumentResult{
		ID:             &doc.ID,
		Msg:            models.MsgOk,
		DSpaceResponse: body,
		Document:       doc,
	}, nil
}
