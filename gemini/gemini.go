// Package gemini implements a client for the generative-language API:
// resumable file uploads, file management, and content generation that
// references uploaded files.
package gemini

import (
	"log/slog"
	"net/http"
	"net/url"

	"gemfiles/config"
	"gemfiles/internal/transport"
	"gemfiles/logging"
)

const (
	uploadEndpoint = "/upload/v1beta/files"
	apiVersionPath = "/v1beta"
)

// Client is a generative-language API client. It is safe for concurrent use;
// concurrent upload sessions share nothing but the transport.
type Client struct {
	cfg       *config.Config
	transport *transport.Client
	logger    *slog.Logger
}

// Option customizes a Client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient      *http.Client
	logger          *slog.Logger
	transportConfig *transport.Config
}

// WithHTTPClient sets a custom underlying *http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithLogger sets the logger for client operations. Defaults to a discard
// logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithTransportConfig overrides retry and circuit-breaker settings. The
// BaseURL field is ignored; the endpoint always comes from the Config.
func WithTransportConfig(tc transport.Config) Option {
	return func(o *clientOptions) {
		o.transportConfig = &tc
	}
}

// New creates a new client from the given configuration
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	tc := transport.DefaultConfig(cfg.BaseURL)
	if o.transportConfig != nil {
		tc = *o.transportConfig
		tc.BaseURL = cfg.BaseURL
	}

	var tr *transport.Client
	if o.httpClient != nil {
		tr = transport.NewWithHTTPClient(o.httpClient, tc)
	} else {
		tr = transport.New(tc)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		cfg:       cfg,
		transport: tr,
		logger:    logger,
	}, nil
}

// apiQuery returns the query parameters every metadata request carries.
// The native API authenticates via the "key" query parameter. The upload URL
// negotiated during a session is self-authenticating and never receives it.
func (c *Client) apiQuery() url.Values {
	return url.Values{"key": []string{c.cfg.APIKey}}
}
