package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/fruitsalade/sitedeck/pkg/models"
	"github.com/fruitsalade/sitedeck/pkg/protocol"
)

// SiteInfo fetches the site statistics.
func (c *Client) SiteInfo(ctx context.Context) (*models.SiteInfo, error) {
	var resp protocol.InfoResponse
	err := c.getJSON(ctx, OpSiteInfo, "/api/info", &resp, func() error {
		return checkEnvelope(OpSiteInfo, resp.Envelope)
	})
	if err != nil {
		return nil, err
	}
	c.logUnparsedDate(OpSiteInfo, "created_at", resp.Info.CreatedAt)
	c.logUnparsedDate(OpSiteInfo, "last_updated", resp.Info.LastUpdated)
	return &resp.Info, nil
}

func (c *Client) logUnparsedDate(op, field string, ts models.Timestamp) {
	if raw := ts.Unparsed(); raw != "" {
		c.log.Debug("unrecognised date from API",
			zap.String("op", op), zap.String("field", field), zap.String("value", raw))
	}
}

// List returns the immediate children of dir. An empty dir lists the root
// and omits the path parameter. The result is never nil on success.
func (c *Client) List(ctx context.Context, dir string) ([]models.FileEntry, error) {
	path := "/api/list"
	if dir != "" {
		path += "?path=" + escapeComponent(dir)
	}
	var resp protocol.ListResponse
	err := c.getJSON(ctx, OpList, path, &resp, func() error {
		return checkEnvelope(OpList, resp.Envelope)
	})
	if err != nil {
		return nil, err
	}
	if resp.Files == nil {
		return []models.FileEntry{}, nil
	}
	for _, f := range resp.Files {
		c.logUnparsedDate(OpList, f.Path, f.UpdatedAt)
	}
	return resp.Files, nil
}

// Read fetches the text content of the file at path.
func (c *Client) Read(ctx context.Context, path string) (string, error) {
	var resp protocol.DownloadResponse
	err := c.getJSON(ctx, OpRead, "/api/download/"+url.PathEscape(path), &resp, func() error {
		return checkEnvelope(OpRead, resp.Envelope)
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// CreateFile creates a text file named filename inside dir.
func (c *Client) CreateFile(ctx context.Context, filename, content, dir string) error {
	if filename == "" {
		return ErrEmptyFilename
	}
	req := protocol.CreateFileRequest{Filename: filename, Content: content, Path: dir}
	var resp protocol.Envelope
	return c.postJSON(ctx, OpCreateFile, "/api/create-file", req, &resp, func() error {
		return checkEnvelope(OpCreateFile, resp)
	})
}

// Delete removes the given paths in one call.
func (c *Client) Delete(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return ErrNoFiles
	}
	var resp protocol.Envelope
	return c.postJSON(ctx, OpDelete, "/api/delete", protocol.DeleteRequest{Filenames: paths}, &resp, func() error {
		return checkEnvelope(OpDelete, resp)
	})
}

// UploadFile is one part of a multipart upload. Name is the part filename;
// the server treats it as a path relative to the upload directory.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Upload sends all files in one multipart request. dir is sent as the
// optional "path" field when non-empty. The server answers with a single
// envelope for the whole batch.
func (c *Client) Upload(ctx context.Context, files []UploadFile, dir string) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(protocol.UploadFilesField, f.Name)
		if err != nil {
			return fmt.Errorf("%s build form: %w", OpUpload, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("%s read %s: %w", OpUpload, f.Name, err)
		}
	}
	if dir != "" {
		if err := mw.WriteField(protocol.UploadPathField, dir); err != nil {
			return fmt.Errorf("%s build form: %w", OpUpload, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s build form: %w", OpUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp protocol.Envelope
	return c.do(OpUpload, req, &resp, func() error {
		return checkEnvelope(OpUpload, resp)
	})
}

// SaveText re-uploads content as a single file addressed at path.
func (c *Client) SaveText(ctx context.Context, path, content string) error {
	return c.Upload(ctx, []UploadFile{{Name: path, Content: strings.NewReader(content)}}, "")
}

// escapeComponent escapes a query value the way a browser's
// encodeURIComponent does, with spaces as %20 rather than +.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
