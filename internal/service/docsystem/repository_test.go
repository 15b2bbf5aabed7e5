package docsystem

import (
	"encoding/json"
	"net/http"
	"testing"

	"docsgraph/internal/domain"
	models "docsgraph/internal/domain/models/docsystem"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryService_CommunityAndCollection(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctx()

	community, err := f.repository.InsertCommunity(ctx, "C1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, community.Msg)
	require.Len(t, community.Items, 1)
	require.NotNil(t, community.Response)

	collection, err := f.repository.InsertCollection(ctx, community.Items[0].UUID, "E1", strPtr("en"))
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, collection.Msg)

	page, err := f.repository.CommunitiesPage(ctx, models.PageOptions{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, models.MsgOk, page.Msg)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "C1", page.Items[0].Name)

	var listed []models.DSpaceObject
	require.NoError(t, json.Unmarshal([]byte(*page.Response), &listed))
	assert.Equal(t, page.Items, listed)

	// the fixture registers one collection up front
	collections, err := f.repository.CollectionsPage(ctx, models.PageOptions{})
	require.NoError(t, err)
	assert.Len(t, collections.Items, 2)
}

func TestRepositoryService_PageTranslation(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.dspace.AddCollection("E" + string(rune('a'+i)))
	}

	page, err := f.repository.CollectionsPage(f.ctx(), models.PageOptions{Offset: 4, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Ed", page.Items[0].Name)
	require.NotNil(t, page.Total)
	assert.EqualValues(t, 6, *page.Total)

	last := f.dspace.Requests()[len(f.dspace.Requests())-1]
	assert.Equal(t, "page=2&size=2", last.Query)
}

func TestRepositoryService_Rejections(t *testing.T) {
	f := newFixture(t)
	f.dspace.Fail(http.MethodPost, "/core/collections", http.StatusUnprocessableEntity)

	res, err := f.repository.InsertCollection(f.ctx(), uuid.New(), "E1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.MsgUnprocessableEntity, res.Msg)
	assert.Empty(t, res.Items)

	f.dspace.Fail(http.MethodGet, "/core/communities", http.StatusForbidden)
	page, err := f.repository.CommunitiesPage(f.ctx(), models.PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.MsgForbidden, page.Msg)
	assert.Nil(t, page.Items)

	_, err = f.repository.InsertCommunity(f.ctx(), "", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
