package dspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
)

// DefaultBundle is the bundle DSpace shows as the item's content.
const DefaultBundle = "ORIGINAL"

// CreateBundle adds the ORIGINAL bundle to an item.
func (c *Client) CreateBundle(ctx context.Context, itemID uuid.UUID) (*Result, error) {
	body, err := json.Marshal(map[string]any{"name": DefaultBundle, "metadata": map[string]any{}})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call{
		op:          "create_bundle",
		method:      http.MethodPost,
		path:        itemPath(itemID) + "/bundles",
		body:        body,
		contentType: "application/json",
	})
}

// GetBundles lists an item's bundles.
func (c *Client) GetBundles(ctx context.Context, itemID uuid.UUID) (*Result, error) {
	return c.do(ctx, call{op: "get_bundles", method: http.MethodGet, path: itemPath(itemID) + "/bundles"})
}

// GetBitstreams lists the bitstreams of a bundle.
func (c *Client) GetBitstreams(ctx context.Context, bundleID uuid.UUID) (*Result, error) {
	return c.do(ctx, call{op: "get_bitstreams", method: http.MethodGet, path: bundlePath(bundleID) + "/bitstreams"})
}

// UploadBitstream uploads content as a new bitstream named filename.
func (c *Client) UploadBitstream(ctx context.Context, bundleID uuid.UUID, filename string, content io.Reader) (*Result, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	properties, err := json.Marshal(map[string]any{
		"name":       filename,
		"bundleName": DefaultBundle,
		"metadata": map[string][]MetadataValue{
			"dc.title": {metadataValue(filename, c.language)},
		},
	})
	if err != nil {
		return nil, err
	}
	if err := w.WriteField("properties", string(properties)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return c.do(ctx, call{
		op:          "upload_bitstream",
		method:      http.MethodPost,
		path:        bundlePath(bundleID) + "/bitstreams",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	})
}

// DownloadBitstream fetches the raw content of a bitstream.
func (c *Client) DownloadBitstream(ctx context.Context, bitstreamID uuid.UUID, filename string) (*Result, error) {
	c.logger.Debug("downloading bitstream", "bitstream_id", bitstreamID, "filename", filename)
	return c.do(ctx, call{
		op:     "download_bitstream",
		method: http.MethodGet,
		path:   "/core/bitstreams/" + bitstreamID.String() + "/content",
	})
}

func bundlePath(bundleID uuid.UUID) string {
	return "/core/bundles/" + bundleID.String()
}
