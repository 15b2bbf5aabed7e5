package dspace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// ItemInput describes a new DSpace item.
type ItemInput struct {
	Title    string
	Author   string
	Type     string
	Language string // overrides the client language when set
}

type itemBody struct {
	Name         string                     `json:"name"`
	InArchive    bool                       `json:"inArchive"`
	Discoverable bool                       `json:"discoverable"`
	Withdrawn    bool                       `json:"withdrawn"`
	Type         string                     `json:"type"`
	Metadata     map[string][]MetadataValue `json:"metadata"`
}

// CreateItem creates an archived item in collectionID.
func (c *Client) CreateItem(ctx context.Context, collectionID uuid.UUID, in ItemInput) (*Result, error) {
	lang := c.lang(in.Language)
	metadata := map[string][]MetadataValue{
		"dc.title": {metadataValue(in.Title, lang)},
	}
	if in.Author != "" {
		metadata["dc.contributor.author"] = []MetadataValue{metadataValue(in.Author, lang)}
	}
	if in.Type != "" {
		metadata["dc.type"] = []MetadataValue{metadataValue(in.Type, lang)}
	}
	if lang != "" {
		metadata["dc.language.iso"] = []MetadataValue{metadataValue(lang, "")}
	}

	body, err := json.Marshal(itemBody{
		Name:         in.Title,
		InArchive:    true,
		Discoverable: true,
		Type:         "item",
		Metadata:     metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	return c.do(ctx, call{
		op:          "create_item",
		method:      http.MethodPost,
		path:        "/core/items",
		query:       url.Values{"owningCollection": {collectionID.String()}},
		body:        body,
		contentType: "application/json",
	})
}

// GetItem fetches an item.
func (c *Client) GetItem(ctx context.Context, itemID uuid.UUID) (*Result, error) {
	return c.do(ctx, call{op: "get_item", method: http.MethodGet, path: itemPath(itemID)})
}

// SetTitle replaces the first dc.title value.
func (c *Client) SetTitle(ctx context.Context, itemID uuid.UUID, title, language string) (*Result, error) {
	patch := Patch{}.Replace("/metadata/dc.title/0", metadataValue(title, c.lang(language)))
	return c.patchItem(ctx, "set_title", itemID, patch)
}

// AddDescription appends a dc.description value.
func (c *Client) AddDescription(ctx context.Context, itemID uuid.UUID, description, language string) (*Result, error) {
	patch := Patch{}.Add("/metadata/dc.description", []MetadataValue{metadataValue(description, c.lang(language))})
	return c.patchItem(ctx, "add_description", itemID, patch)
}

// SetDescription replaces the first dc.description value.
func (c *Client) SetDescription(ctx context.Context, itemID uuid.UUID, description, language string) (*Result, error) {
	patch := Patch{}.Replace("/metadata/dc.description/0", metadataValue(description, c.lang(language)))
	return c.patchItem(ctx, "set_description", itemID, patch)
}

// SetWithdrawn withdraws an item from the archive.
func (c *Client) SetWithdrawn(ctx context.Context, itemID uuid.UUID) (*Result, error) {
	return c.patchItem(ctx, "set_withdrawn", itemID, Patch{}.Replace("/withdrawn", true))
}

func (c *Client) patchItem(ctx context.Context, op string, itemID uuid.UUID, patch Patch) (*Result, error) {
	body, err := patch.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	return c.do(ctx, call{
		op:          op,
		method:      http.MethodPatch,
		path:        itemPath(itemID),
		body:        body,
		contentType: "application/json-patch+json",
	})
}

func (c *Client) lang(override string) string {
	if override != "" {
		return override
	}
	return c.language
}

func itemPath(itemID uuid.UUID) string {
	return "/core/items/" + itemID.String()
}
