package upload

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sportanalyzer/internal/logging"
)

const defaultEndpointPath = "/api/analyze-video"

// Config captures the runtime settings required to reach the analysis service.
type Config struct {
	BaseURL      string
	EndpointPath string
	// Timeout bounds the whole request including the upload. Zero disables it.
	Timeout time.Duration
}

// Client submits videos to the analysis service.
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger; the default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs an upload client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = defaultEndpointPath
	}
	client := &Client{
		cfg:        cfg,
		endpoint:   cfg.BaseURL + "/" + strings.TrimLeft(cfg.EndpointPath, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "upload")
	return client
}

// Endpoint returns the absolute analysis URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ResolveReference turns a relative processed-video reference into an absolute
// URL against the service base. Absolute references and unparsable input are
// returned unchanged.
func (c *Client) ResolveReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil || parsed.IsAbs() {
		return ref
	}
	base, err := url.Parse(c.cfg.BaseURL + "/")
	if err != nil || base.Host == "" {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
