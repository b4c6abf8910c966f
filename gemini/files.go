package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gemfiles/core"
	"gemfiles/internal/transport"
)

const defaultPollInterval = 2 * time.Second

// GetFile fetches a fresh descriptor for an uploaded file. The name may be
// given bare ("abc123") or fully qualified ("files/abc123").
func (c *Client) GetFile(ctx context.Context, name string) (*core.FileDescriptor, error) {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method:   http.MethodGet,
		Endpoint: apiVersionPath + "/" + qualifyFileName(name),
		Query:    c.apiQuery(),
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.NewRemoteError(resp.StatusCode, resp.Body)
	}
	// files.get returns the file object bare, unlike the wrapped upload response
	return core.NormalizeFile(resp.Body)
}

// ListFiles returns one page of uploaded files plus the token for the next
// page ("" when exhausted). pageSize <= 0 leaves the page size to the service.
func (c *Client) ListFiles(ctx context.Context, pageSize int, pageToken string) ([]*core.FileDescriptor, string, error) {
	query := c.apiQuery()
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	resp, err := c.transport.Do(ctx, transport.Request{
		Method:   http.MethodGet,
		Endpoint: apiVersionPath + "/files",
		Query:    query,
	})
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", core.NewRemoteError(resp.StatusCode, resp.Body)
	}
	return core.NormalizeFileList(resp.Body)
}

// DeleteFile removes an uploaded file from the service.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method:   http.MethodDelete,
		Endpoint: apiVersionPath + "/" + qualifyFileName(name),
		Query:    c.apiQuery(),
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return core.NewRemoteError(resp.StatusCode, resp.Body)
	}
	return nil
}

// WaitForFileActive polls the file until the service reports it ACTIVE.
// Returns an error if processing fails or ctx expires. interval <= 0 uses
// the default poll interval.
func (c *Client) WaitForFileActive(ctx context.Context, name string, interval time.Duration) (*core.FileDescriptor, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for {
		fd, err := c.GetFile(ctx, name)
		if err != nil {
			return nil, err
		}
		switch fd.State {
		case core.FileStateActive:
			return fd, nil
		case core.FileStateFailed:
			return nil, fmt.Errorf("file %s: processing failed", fd.Name)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// qualifyFileName ensures the service resource prefix is present and the
// name is safe to place in a URL path.
func qualifyFileName(name string) string {
	if strings.HasPrefix(name, "files/") {
		return "files/" + url.PathEscape(strings.TrimPrefix(name, "files/"))
	}
	return "files/" + url.PathEscape(name)
}
