package graph

import (
	"context"

	models "docsgraph/internal/domain/models/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"

	"github.com/graph-gophers/graphql-go"
)

// DspaceResultResolver maps a DSpaceResult.
type DspaceResultResolver struct {
	res *models.DSpaceResult
}

func (r *Resolver) dspaceResult(field string, res *models.DSpaceResult) *DspaceResultResolver {
	r.observe(field, res.Msg)
	return &DspaceResultResolver{res: res}
}

func (d *DspaceResultResolver) Msg() string       { return d.res.Msg }
func (d *DspaceResultResolver) Response() *string { return d.res.Response }
func (d *DspaceResultResolver) Total() *int32     { return d.res.Total }

func (d *DspaceResultResolver) Items() []*DspaceObjectResolver {
	out := make([]*DspaceObjectResolver, len(d.res.Items))
	for i := range d.res.Items {
		out[i] = &DspaceObjectResolver{obj: d.res.Items[i]}
	}
	return out
}

// DspaceObjectResolver maps a community or collection reference.
type DspaceObjectResolver struct {
	obj models.DSpaceObject
}

func (o *DspaceObjectResolver) UUID() graphql.ID { return toID(o.obj.UUID) }
func (o *DspaceObjectResolver) Name() string     { return o.obj.Name }

func (r *Resolver) CommunitiesPage(ctx context.Context, args struct {
	Skip  *int32
	Limit *int32
}) (*DspaceResultResolver, error) {
	const field = "communitiesPage"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	res, err := r.repository.CommunitiesPage(ctx, page(args.Skip, args.Limit))
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.dspaceResult(field, res), nil
}

func (r *Resolver) CollectionsPage(ctx context.Context, args struct {
	Skip  *int32
	Limit *int32
}) (*DspaceResultResolver, error) {
	const field = "collectionsPage"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	res, err := r.repository.CollectionsPage(ctx, page(args.Skip, args.Limit))
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.dspaceResult(field, res), nil
}

func (r *Resolver) DspaceGetBitstream(ctx context.Context, args struct{ ID graphql.ID }) (*DspaceResultResolver, error) {
	const field = "dspaceGetBitstream"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, r.fail(field, err)
	}
	res, err := r.documents.GetBitstream(ctx, id)
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.dspaceResult(field, res), nil
}

func (r *Resolver) DspaceAddBitstream(ctx context.Context, args struct {
	Document documentRefInput
	Filename string
}) (*DspaceResultResolver, error) {
	const field = "dspaceAddBitstream"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	ref, err := args.Document.ref()
	if err != nil {
		return nil, r.fail(field, err)
	}
	res, err := r.documents.AddBitstream(ctx, &docsysSvc.AddBitstreamRequest{DocumentRef: *ref, Filename: args.Filename})
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.dspaceResult(field, res), nil
}

func (r *Resolver) CommunityInsert(ctx context.Context, args struct {
	Name     string
	Language *string
}) (*DspaceResultResolver, error) {
	const field = "communityInsert"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	res, err := r.repository.InsertCommunity(ctx, args.Name, args.Language)
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.dspaceResult(field, res), nil
}

func (r *Resolver) CollectionInsert(ctx context.Context, args struct {
	ParentID graphql.ID
	Name     string
	Language *string
}) (*DspaceResultResolver, error) {
	const field = "collectionInsert"
	if _, err := r.authorize(ctx, field); err != nil {
		return nil, err
	}
	parentID, err := parseID(args.ParentID)
	if err != nil {
		return nil, r.fail(field, err)
	}
	res, err := r.repository.InsertCollection(ctx, parentID, args.Name, args.Language)
	if err != nil {
		return nil, r.fail(field, err)
	}
	return r.dspaceResult(field, res), nil
}
