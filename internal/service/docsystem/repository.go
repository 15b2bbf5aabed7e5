package docsystem

import (
	"context"
	"encoding/json"
	"log/slog"

	models "docsgraph/internal/domain/models/docsystem"
	docsysSvc "docsgraph/internal/domain/services/docsystem"
	"docsgraph/internal/dspace"

	"github.com/google/uuid"
)

// repositoryService implements RepositoryService over DSpace communities and
// collections. Nothing is stored locally.
type repositoryService struct {
	dspace DSpace
	logger *slog.Logger
}

// NewRepositoryService creates a new repository service
func NewRepositoryService(dspace DSpace, logger *slog.Logger) docsysSvc.RepositoryService {
	return &repositoryService{dspace: dspace, logger: logger}
}

func (s *repositoryService) CommunitiesPage(ctx context.Context, page models.PageOptions) (*models.DSpaceResult, error) {
	page.ApplyDefaults()
	res, err := s.dspace.ListCommunities(ctx, page.Offset/page.Limit, page.Limit)
	if err != nil {
		return nil, err
	}
	return listing(res, "communities"), nil
}

func (s *repositoryService) CollectionsPage(ctx context.Context, page models.PageOptions) (*models.DSpaceResult, error) {
	page.ApplyDefaults()
	res, err := s.dspace.ListCollections(ctx, page.Offset/page.Limit, page.Limit)
	if err != nil {
		return nil, err
	}
	return listing(res, "collections"), nil
}

func (s *repositoryService) InsertCommunity(ctx context.Context, name string, language *string) (*models.DSpaceResult, error) {
	if err := validateDSpaceName(name); err != nil {
		return nil, err
	}
	res, err := s.dspace.CreateCommunity(ctx, name, deref(language))
	if err != nil {
		return nil, err
	}
	s.logger.Info("community insert", "name", name, "status", res.Status)
	return created(res, name), nil
}

func (s *repositoryService) InsertCollection(ctx context.Context, parentID uuid.UUID, name string, language *string) (*models.DSpaceResult, error) {
	if err := validateDSpaceName(name); err != nil {
		return nil, err
	}
	res, err := s.dspace.CreateCollection(ctx, parentID, name, deref(language))
	if err != nil {
		return nil, err
	}
	s.logger.Info("collection insert", "parent_id", parentID, "name", name, "status", res.Status)
	return created(res, name), nil
}

// listing reduces a HAL page to uuid and name pairs plus the collection
// total. The response is the JSON array of those pairs; a rejected call
// carries the raw body instead.
func listing(res *dspace.Result, key string) *models.DSpaceResult {
	result := &models.DSpaceResult{Msg: StatusMessage(res.Status)}
	if !res.OK() {
		result.Response = bodyString(res)
		return result
	}

	total := int32(res.Total())
	result.Total = &total

	objects := res.Objects(key)
	result.Items = make([]models.DSpaceObject, len(objects))
	for i, o := range objects {
		result.Items[i] = models.DSpaceObject{UUID: o.UUID, Name: o.Name}
	}
	encoded, err := json.Marshal(result.Items)
	if err == nil {
		s := string(encoded)
		result.Response = &s
	}
	return result
}

func created(res *dspace.Result, name string) *models.DSpaceResult {
	result := &models.DSpaceResult{Msg: StatusMessage(res.Status), Response: bodyString(res)}
	if id := res.UUID(); res.OK() && id != nil {
		result.Items = []models.DSpaceObject{{UUID: *id, Name: name}}
	}
	return result
}
