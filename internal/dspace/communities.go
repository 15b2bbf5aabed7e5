package dspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

type containerBody struct {
	Name     string                     `json:"name"`
	Metadata map[string][]MetadataValue `json:"metadata"`
}

func (c *Client) containerBody(name, language string) ([]byte, error) {
	return json.Marshal(containerBody{
		Name: name,
		Metadata: map[string][]MetadataValue{
			"dc.title": {metadataValue(name, c.lang(language))},
		},
	})
}

// CreateCommunity creates a top-level community.
func (c *Client) CreateCommunity(ctx context.Context, name, language string) (*Result, error) {
	body, err := c.containerBody(name, language)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{
		op:          "create_community",
		method:      http.MethodPost,
		path:        "/core/communities",
		body:        body,
		contentType: "application/json",
	})
}

// CreateCollection creates a collection inside community parentID.
func (c *Client) CreateCollection(ctx context.Context, parentID uuid.UUID, name, language string) (*Result, error) {
	body, err := c.containerBody(name, language)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{
		op:          "create_collection",
		method:      http.MethodPost,
		path:        "/core/collections",
		query:       url.Values{"parent": {parentID.String()}},
		body:        body,
		contentType: "application/json",
	})
}

// ListCommunities returns one page of communities.
func (c *Client) ListCommunities(ctx context.Context, page, size int) (*Result, error) {
	return c.do(ctx, call{op: "list_communities", method: http.MethodGet, path: "/core/communities", query: pageQuery(page, size)})
}

// ListCollections returns one page of collections.
func (c *Client) ListCollections(ctx context.Context, page, size int) (*Result, error) {
	return c.do(ctx, call{op: "list_collections", method: http.MethodGet, path: "/core/collections", query: pageQuery(page, size)})
}

func pageQuery(page, size int) url.Values {
	return url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
}
