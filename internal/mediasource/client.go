// Package mediasource resolves remote program references into playable URLs.
// The remote media server itself is an external collaborator; this package is
// only the client glue in front of it.
package mediasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/stwalsh4118/telecast/internal/models"
)

// Resolver turns a remote program reference into a URL the encoder can read.
type Resolver interface {
	ResolveStreamURL(ctx context.Context, program *models.Program) (string, error)
}

// Common errors
var (
	ErrNotConfigured = errors.New("no media source configured")
	ErrNotRemote     = errors.New("program is not a remote media reference")
)

const resolveTimeout = 10 * time.Second

// Client is an HTTP client against a remote media server's resolve endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a media source client. An empty baseURL yields a client
// that fails resolution with ErrNotConfigured, which is fine for setups whose
// programs are all local files or direct URLs.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: resolveTimeout,
		},
	}
}

// ResolveStreamURL asks the media server for a playable URL for the program's
// rating key.
func (c *Client) ResolveStreamURL(ctx context.Context, program *models.Program) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}
	if program.SourceKind != models.SourceRemote {
		return "", ErrNotRemote
	}

	endpoint := fmt.Sprintf("%s/library/parts/%s/stream?token=%s",
		c.baseURL, url.PathEscape(program.RatingKey), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build resolve request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to resolve media reference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media server returned status %d for rating key %s", resp.StatusCode, program.RatingKey)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode resolve response: %w", err)
	}
	if payload.URL == "" {
		return "", fmt.Errorf("media server returned no stream URL for rating key %s", program.RatingKey)
	}

	return payload.URL, nil
}
