package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"backoffice-cli/internal/model"
)

// Create posts a new record. The backend responds with the created record;
// callers still refresh the list rather than patching it in locally.
func (c *Client) Create(ctx context.Context, resourcePath string, fields map[string]string) (model.Item, error) {
	var it model.Item
	if _, err := c.do(ctx, http.MethodPost, resourcePath, nil, fields, &it); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

// UpdateFields patches named fields of one record.
func (c *Client) UpdateFields(ctx context.Context, resourcePath, id string, fields map[string]string) error {
	_, err := c.do(ctx, http.MethodPatch, resourcePath+"/"+id, nil, fields, nil)
	return err
}

// UpdateStatus changes one record's status.
func (c *Client) UpdateStatus(ctx context.Context, resourcePath, id string, status model.Status) error {
	_, err := c.do(ctx, http.MethodPut, resourcePath+"/status/"+id, nil, map[string]string{
		"status": string(status),
	}, nil)
	return err
}

// BulkUpdateStatus changes the status of several records in one request.
func (c *Client) BulkUpdateStatus(ctx context.Context, resourcePath string, ids []string, status model.Status) error {
	_, err := c.do(ctx, http.MethodPut, resourcePath+"/bulk-status", nil, map[string]any{
		"ids":    ids,
		"status": string(status),
	}, nil)
	return err
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, resourcePath, id string) error {
	_, err := c.do(ctx, http.MethodDelete, resourcePath+"/"+id, nil, nil, nil)
	return err
}

// UploadImage replaces a record's image via multipart/form-data with a
// `file` field, per the backend's upload convention.
func (c *Client) UploadImage(ctx context.Context, resourcePath, id, filename string, r io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(resourcePath+"/image/"+id, nil), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, err = c.send(req, nil)
	return err
}
