// Package remote implements the server-backed AssetStore and SnapshotStore
// over the invitation HTTP API. Callers see the same contracts as the
// embedded SQLite store.
// See docs/ARCHITECTURE.md § Remote Backend.
package remote

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/linkwed/linkwed/pkg/types"
)

// Client talks to a LinkWed backend. Requests rely on the transport's
// default timeouts; a slow upload delays only that asset's durability.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
	}
}

// Attach points the client at the base URL named in config. Returns a
// validation error when the URL is missing.
func (c *Client) Attach(config types.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if config.BaseURL == "" {
		return types.ErrBaseURLEmpty
	}
	c.base = strings.TrimRight(config.BaseURL, "/")
	return nil
}

// Detach drops idle connections. Idempotent.
func (c *Client) Detach() error {
	c.http.CloseIdleConnections()
	return nil
}

// url joins path onto the configured API base.
func (c *Client) url(path string) string {
	return c.base + path
}

// AssetURL returns the deterministic public URL for a stored asset id.
func (c *Client) AssetURL(id string) string {
	return c.url("/uploads/" + id)
}

// errStatus builds an error for an unexpected response status.
func errStatus(op string, resp *http.Response) error {
	return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
}
