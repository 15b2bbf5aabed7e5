package docsystem

import (
	"context"
	"io"

	"docsgraph/internal/dspace"

	"github.com/google/uuid"
)

// DSpace is the subset of the DSpace client the services call.
type DSpace interface {
	Language() string

	CreateItem(ctx context.Context, collectionID uuid.UUID, in dspace.ItemInput) (*dspace.Result, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*dspace.Result, error)
	SetTitle(ctx context.Context, itemID uuid.UUID, title, language string) (*dspace.Result, error)
	AddDescription(ctx context.Context, itemID uuid.UUID, description, language string) (*dspace.Result, error)
	SetDescription(ctx context.Context, itemID uuid.UUID, description, language string) (*dspace.Result, error)
	SetWithdrawn(ctx context.Context, itemID uuid.UUID) (*dspace.Result, error)

	CreateBundle(ctx context.Context, itemID uuid.UUID) (*dspace.Result, error)
	GetBundles(ctx context.Context, itemID uuid.UUID) (*dspace.Result, error)
	GetBitstreams(ctx context.Context, bundleID uuid.UUID) (*dspace.Result, error)
	UploadBitstream(ctx context.Context, bundleID uuid.UUID, filename string, content io.Reader) (*dspace.Result, error)
	DownloadBitstream(ctx context.Context, bitstreamID uuid.UUID, filename string) (*dspace.Result, error)

	CreateCommunity(ctx context.Context, name, language string) (*dspace.Result, error)
	CreateCollection(ctx context.Context, parentID uuid.UUID, name, language string) (*dspace.Result, error)
	ListCommunities(ctx context.Context, page, size int) (*dspace.Result, error)
	ListCollections(ctx context.Context, page, size int) (*dspace.Result, error)
}

var _ DSpace = (*dspace.Client)(nil)

// bodyString returns the DSpace body for the dspaceResponse field.
func bodyString(res *dspace.Result) *string {
	if res == nil || len(res.Body) == 0 {
		return nil
	}
	s := res.String()
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
