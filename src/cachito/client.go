// Package cachito is a client for the Cachito remote-source service, which
// fetches a repository together with its package-manager dependencies and
// serves the result as a single archive.
package cachito

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
)

const (
	// DownloadFilename is the name the source archive is saved under.
	DownloadFilename = "remote-source.tar.gz"

	// CertFilename is the client certificate (PEM, certificate and key)
	// looked up inside the configured certificate directory.
	CertFilename = "cert"

	DefaultPollInterval = 5 * time.Second

	// DefaultRequestTimeout bounds each API call. Archive downloads are
	// bounded only by their context.
	DefaultRequestTimeout = 2 * time.Minute
)

// ClientConfig configures a Client.
type ClientConfig struct {
	APIURL string

	// CertsDir holds the client certificate. Empty disables client
	// certificate authentication.
	CertsDir string

	// HTTPClient overrides the transport. Its TLS settings are left alone.
	HTTPClient *http.Client

	// RequestTimeout bounds each JSON API call. Zero uses
	// DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// Client talks to one Cachito API endpoint.
type Client struct {
	base           string
	http           *http.Client
	requestTimeout time.Duration
}

// NewClient returns a client for cfg.APIURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, errors.New("cachito: api url is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.CertsDir != "" {
			certPath := filepath.Join(cfg.CertsDir, CertFilename)
			cert, err := tls.LoadX509KeyPair(certPath, certPath)
			if err != nil {
				return nil, fmt.Errorf("cachito: loading client certificate %s: %w", certPath, err)
			}
			transport.TLSClientConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
		}
		// Downloads run as long as ctx allows; doJSON bounds API calls.
		httpClient = &http.Client{Transport: transport}
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Client{
		base:           strings.TrimRight(cfg.APIURL, "/"),
		http:           httpClient,
		requestTimeout: timeout,
	}, nil
}

func (c *Client) requestURL(id int64, parts ...string) string {
	u := fmt.Sprintf("%s/api/v1/requests/%d", c.base, id)
	for _, p := range parts {
		u += "/" + p
	}
	return u
}

// RequestSources submits a new source request. The returned request carries
// the id the service assigned; its other fields reflect the initial state.
func (c *Client) RequestSources(ctx context.Context, params RequestParams) (*SourceRequest, error) {
	var req SourceRequest
	if err := c.doJSON(ctx, http.MethodPost, c.base+"/api/v1/requests", params, &req); err != nil {
		return nil, fmt.Errorf("cachito: requesting sources: %w", err)
	}
	if !req.Has("id") {
		return nil, errors.New("cachito: request response carries no id")
	}
	return &req, nil
}

// GetRequest returns the current state of request id.
func (c *Client) GetRequest(ctx context.Context, id int64) (*SourceRequest, error) {
	var req SourceRequest
	if err := c.doJSON(ctx, http.MethodGet, c.requestURL(id), nil, &req); err != nil {
		return nil, fmt.Errorf("cachito: getting request %d: %w", id, err)
	}
	return &req, nil
}

// WaitForRequest polls request id until it completes. A failed or stale
// request returns ErrRequestFailed; running past opts.Timeout returns
// ErrTimeout. Cancelling ctx stops the wait with ctx's error.
func (c *Client) WaitForRequest(ctx context.Context, id int64, opts WaitOptions) (*SourceRequest, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		req, err := c.GetRequest(waitCtx, id)
		if err != nil {
			if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w %d after %s", ErrTimeout, id, opts.Timeout)
			}
			return nil, err
		}

		switch req.State {
		case StateComplete:
			return req, nil
		case StateFailed, StateStale:
			return nil, fmt.Errorf("%w: request %d is %s: %s", ErrRequestFailed, id, req.State, req.StateReason)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w %d after %s (last state %q)", ErrTimeout, id, opts.Timeout, req.State)
		case <-ticker.C:
		}
	}
}

// AssembleDownloadURL returns the archive URL of req.
func (c *Client) AssembleDownloadURL(req *SourceRequest) string {
	return c.requestURL(req.ID, "download")
}

// DownloadSources saves the archive of req as DownloadFilename inside
// destDir and returns its path.
func (c *Client) DownloadSources(ctx context.Context, req *SourceRequest, destDir string) (string, error) {
	dest, err := securejoin.SecureJoin(destDir, DownloadFilename)
	if err != nil {
		return "", fmt.Errorf("cachito: resolving download path: %w", err)
	}

	resp, err := c.doRaw(ctx, http.MethodGet, c.AssembleDownloadURL(req))
	if err != nil {
		return "", fmt.Errorf("cachito: downloading sources: %w", err)
	}
	defer resp.Body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("cachito: creating %s: %w", dest, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("cachito: writing %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("cachito: writing %s: %w", dest, err)
	}
	return dest, nil
}

// RequestEnvVars returns the environment variables of request id.
func (c *Client) RequestEnvVars(ctx context.Context, id int64) (map[string]EnvVar, error) {
	vars := map[string]EnvVar{}
	if err := c.doJSON(ctx, http.MethodGet, c.requestURL(id, "environment-variables"), nil, &vars); err != nil {
		return nil, fmt.Errorf("cachito: getting environment variables of request %d: %w", id, err)
	}
	return vars, nil
}
