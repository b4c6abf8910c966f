package gemini

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"gemfiles/core"
	"gemfiles/internal/transport"
)

const (
	uploadURLHeader = "X-Goog-Upload-URL"

	fallbackMIMEType = "application/octet-stream"
)

// UploadOptions overrides the defaults derived from the file path.
type UploadOptions struct {
	// MIMEType overrides extension-based detection
	MIMEType string
	// DisplayName overrides the base-name default
	DisplayName string
}

// initiateBody is the metadata envelope sent when starting a resumable upload.
type initiateBody struct {
	File initiateFile `json:"file"`
}

type initiateFile struct {
	DisplayName string `json:"display_name"`
}

// uploadSession drives the three-phase resumable protocol for one file. It
// lives for a single UploadFile call and is discarded afterwards; there is no
// cross-process resume.
type uploadSession struct {
	client      *Client
	id          string
	path        string
	mimeType    string
	displayName string
	size        int64
	uploadURL   string
}

// UploadFile uploads the file at path and returns its descriptor. The whole
// file is buffered in memory for the transfer; there is no chunked or
// resume-from-offset support, so very large files are bounded by available
// memory.
func (c *Client) UploadFile(ctx context.Context, path string, opts *UploadOptions) (*core.FileDescriptor, error) {
	session, err := c.newUploadSession(path, opts)
	if err != nil {
		return nil, err
	}
	return session.run(ctx)
}

// newUploadSession stats the file and resolves options. The stat happens
// before any network traffic so a missing file never costs a round trip.
func (c *Client) newUploadSession(path string, opts *UploadOptions) (*uploadSession, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, core.NewLocalIOError(path, err)
	}

	session := &uploadSession{
		client:      c,
		id:          uuid.NewString(),
		path:        path,
		size:        info.Size(),
		displayName: filepath.Base(path),
		mimeType:    detectMIMEType(path),
	}

	if opts != nil {
		if opts.MIMEType != "" {
			session.mimeType = opts.MIMEType
		}
		if opts.DisplayName != "" {
			session.displayName = opts.DisplayName
		}
	}

	return session, nil
}

// run executes the three phases strictly in order: initiate, transfer,
// finalize. Any failure short-circuits; a session yields a full descriptor
// or an error, never a partial result.
func (s *uploadSession) run(ctx context.Context) (*core.FileDescriptor, error) {
	logger := s.client.logger.With("upload_id", s.id, "path", s.path)

	uploadURL, err := s.initiate(ctx)
	if err != nil {
		logger.Warn("upload initiate failed", "error", err)
		return nil, err
	}
	s.uploadURL = uploadURL
	logger.Debug("upload session negotiated", "size_bytes", s.size, "mime_type", s.mimeType)

	body, err := s.transfer(ctx)
	if err != nil {
		logger.Warn("upload transfer failed", "error", err)
		return nil, err
	}

	fd, err := core.NormalizeWrappedFile(body)
	if err != nil {
		logger.Warn("upload response malformed", "error", err)
		return nil, err
	}
	logger.Debug("upload finalized", "name", fd.Name, "state", fd.State)
	return fd, nil
}

// initiate declares the upload and returns the negotiated single-use upload
// URL, which the service delivers out of band in a response header. Exactly
// one header value must be present.
func (s *uploadSession) initiate(ctx context.Context) (string, error) {
	resp, err := s.client.transport.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: uploadEndpoint,
		Query:    s.client.apiQuery(),
		Body:     initiateBody{File: initiateFile{DisplayName: s.displayName}},
		Headers: map[string]string{
			"X-Goog-Upload-Protocol":              "resumable",
			"X-Goog-Upload-Command":               "start",
			"X-Goog-Upload-Header-Content-Length": strconv.FormatInt(s.size, 10),
			"X-Goog-Upload-Header-Content-Type":   s.mimeType,
		},
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", core.NewRemoteError(resp.StatusCode, resp.Body)
	}

	urls := resp.Header.Values(uploadURLHeader)
	switch {
	case len(urls) == 0 || urls[0] == "":
		return "", core.NewProtocolViolationError("initiate response is missing the " + uploadURLHeader + " header")
	case len(urls) > 1:
		return "", core.NewProtocolViolationError("initiate response carries multiple " + uploadURLHeader + " headers")
	}
	return urls[0], nil
}

// transfer sends the whole file in a single request that also finalizes the
// upload. The upload URL is fully qualified and self-authenticating: the
// base endpoint, API key, and default headers of the initiate phase are
// deliberately not reused here. net/http emits the Content-Length header
// from the buffered body. The request is never retried since the service may
// have consumed bytes from a failed attempt.
func (s *uploadSession) transfer(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, core.NewLocalIOError(s.path, err)
	}

	resp, err := s.client.transport.DoOnce(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     s.uploadURL,
		RawBody: data,
		Headers: map[string]string{
			"X-Goog-Upload-Offset":  "0",
			"X-Goog-Upload-Command": "upload, finalize",
		},
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.NewRemoteError(resp.StatusCode, resp.Body)
	}
	return resp.Body, nil
}

// detectMIMEType resolves the payload MIME type from the path extension,
// falling back to content sniffing for unknown extensions and to
// application/octet-stream when both come up empty.
func detectMIMEType(path string) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}
	if mt, err := mimetype.DetectFile(path); err == nil {
		return mt.String()
	}
	return fallbackMIMEType
}
