package docsystem

import (
	"context"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	models "docsgraph/internal/domain/models/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"
	"docsgraph/internal/dspace"
	"docsgraph/internal/loader"
	"docsgraph/internal/storage"

	"github.com/google/uuid"
)

// AddBitstream uploads a staged file into the document's first bundle,
// creating the ORIGINAL bundle when the item has none.
func (s *documentService) AddBitstream(ctx context.Context, req *docsysSvc.AddBitstreamRequest) (*models.DSpaceResult, error) {
	if err := validateAddBitstream(req); err != nil {
		return nil, err
	}
	itemID, result, err := s.itemOf(ctx, req.ID)
	if result != nil || err != nil {
		return result, err
	}

	bundleID, result, err := s.firstBundle(ctx, itemID, true)
	if result != nil || err != nil {
		return result, err
	}

	filename, err := storage.Clean(req.Filename)
	if err != nil {
		return nil, err
	}
	f, err := s.files.Open(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := s.dspace.UploadBitstream(ctx, bundleID, filename, f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bitstream uploaded", "document_id", req.ID, "bundle_id", bundleID, "filename", filename, "status", res.Status)
	return &models.DSpaceResult{Msg: StatusMessage(res.Status), Response: bodyString(res)}, nil
}

// GetBitstream returns the content of the first bitstream of the document's
// first bundle. Content that is not UTF-8 text is base64 encoded.
func (s *documentService) GetBitstream(ctx context.Context, id uuid.UUID) (*models.DSpaceResult, error) {
	itemID, result, err := s.itemOf(ctx, id)
	if result != nil || err != nil {
		return result, err
	}

	bundleID, result, err := s.firstBundle(ctx, itemID, false)
	if result != nil || err != nil {
		return result, err
	}

	res, err := s.dspace.GetBitstreams(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return &models.DSpaceResult{Msg: StatusMessage(res.Status), Response: bodyString(res)}, nil
	}
	streams := res.Objects("bitstreams")
	if len(streams) == 0 {
		return &models.DSpaceResult{Msg: models.MsgNoContent}, nil
	}

	res, err = s.dspace.DownloadBitstream(ctx, streams[0].UUID, streams[0].Name)
	if err != nil {
		return nil, err
	}
	content := encodeContent(res.Body)
	return &models.DSpaceResult{Msg: StatusMessage(res.Status), Response: &content}, nil
}

// itemOf resolves a document to its DSpace item. A non-nil result means the
// caller should return it as is.
func (s *documentService) itemOf(ctx context.Context, id uuid.UUID) (uuid.UUID, *models.DSpaceResult, error) {
	doc, err := loadersFor(ctx, s.loaders).Documents.Load(ctx, id)
	if err != nil {
		if loader.IsNotFound(err) {
			return uuid.Nil, &models.DSpaceResult{Msg: models.MsgFail}, nil
		}
		return uuid.Nil, nil, err
	}
	if doc.DSpaceID == nil {
		return uuid.Nil, &models.DSpaceResult{Msg: models.MsgFail}, nil
	}
	return *doc.DSpaceID, nil, nil
}

// firstBundle returns the item's first bundle. Without one it either creates
// the default bundle or reports No Content.
func (s *documentService) firstBundle(ctx context.Context, itemID uuid.UUID, create bool) (uuid.UUID, *models.DSpaceResult, error) {
	res, err := s.dspace.GetBundles(ctx, itemID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !res.OK() {
		return uuid.Nil, &models.DSpaceResult{Msg: StatusMessage(res.Status), Response: bodyString(res)}, nil
	}
	if bundles := res.Objects("bundles"); len(bundles) > 0 {
		return bundles[0].UUID, nil, nil
	}
	if !create {
		return uuid.Nil, &models.DSpaceResult{Msg: models.MsgNoContent}, nil
	}

	res, err = s.dspace.CreateBundle(ctx, itemID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !res.OK() {
		return uuid.Nil, &models.DSpaceResult{Msg: StatusMessage(res.Status), Response: bodyString(res)}, nil
	}
	bundleID := res.UUID()
	if bundleID == nil {
		return uuid.Nil, nil, fmt.Errorf("dspace %s bundle response has no uuid", dspace.DefaultBundle)
	}
	return *bundleID, nil, nil
}

func encodeContent(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	return base64.StdEncoding.EncodeToString(body)
}
