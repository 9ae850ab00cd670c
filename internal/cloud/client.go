// Package cloud is the HTTP client for the serverless backend's CLI API.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/conneroisu/cloudsync/internal/errors"
	"github.com/conneroisu/cloudsync/internal/logging"
)

const (
	saveCloudPath   = "/api/cli/savecloud"
	userServersPath = "/api/cli/userServers"

	// maxErrorBody bounds how much of a failed response is kept.
	maxErrorBody = 4 << 10
)

// SaveCloudRequest replaces the cloud functions of a server.
type SaveCloudRequest struct {
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
	Subdomain string `json:"subdomain"`
	Cloud     string `json:"cloud"`
	IsCli     bool   `json:"isCli"`
}

// Server is a server owned by the authenticated user.
type Server struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

type credentials struct {
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
}

type userServersResponse struct {
	Servers []Server `json:"servers"`
}

// Client talks to the backend API.
type Client struct {
	baseURI    string
	httpClient *http.Client
	userAgent  string
	logger     logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the API rooted at baseURI.
func NewClient(baseURI string, logger logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Client{
		baseURI:    strings.TrimRight(baseURI, "/"),
		httpClient: &http.Client{},
		logger:     logger.WithComponent("cloud"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SaveCloud uploads code as the server's active cloud functions. It makes a
// single attempt.
func (c *Client) SaveCloud(ctx context.Context, req SaveCloudRequest) error {
	req.IsCli = true

	if err := c.post(ctx, saveCloudPath, req, nil); err != nil {
		return errors.NewUploadError(errors.ErrCodeUploadFailed, "failed to save cloud functions", err).
			WithContext("subdomain", req.Subdomain)
	}

	c.logger.Info(ctx, "Cloud functions uploaded",
		"subdomain", req.Subdomain,
		"bytes", len(req.Cloud),
	)
	return nil
}

// UserServers lists the servers owned by the holder of the credentials.
func (c *Client) UserServers(ctx context.Context, apiKey, apiSecret string) ([]Server, error) {
	var resp userServersResponse
	if err := c.post(ctx, userServersPath, credentials{APIKey: apiKey, APISecret: apiSecret}, &resp); err != nil {
		return nil, err
	}
	return resp.Servers, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "failed to encode request", err)
	}

	url := c.baseURI + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug(ctx, "Sending request", "url", url, "bytes", len(payload))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeRequestFailed, "request to "+path+" failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.NewNetworkError(errors.ErrCodeRequestFailed,
			fmt.Sprintf("%s returned %s", path, resp.Status), remoteError(raw)).
			WithContext("status", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewNetworkError(errors.ErrCodeRequestFailed, "failed to decode response from "+path, err)
	}
	return nil
}

// remoteError extracts a message from an error response body.
func remoteError(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Message != "" {
			return fmt.Errorf("%s", parsed.Message)
		}
		if parsed.Error != "" {
			return fmt.Errorf("%s", parsed.Error)
		}
	}
	return fmt.Errorf("%s", strings.TrimSpace(string(body)))
}
