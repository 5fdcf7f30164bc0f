package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/linkwed/linkwed/pkg/types"
)

// Load fetches the invitation document. The server seeds a default on the
// first read; the created flag relays its isNew marker.
func (c *Client) Load(ctx context.Context) (*types.Invitation, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/invitation"), nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("load invitation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, errStatus("load invitation", resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("load invitation: %w", err)
	}

	var marker struct {
		IsNew bool `json:"isNew"`
	}
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, false, fmt.Errorf("load invitation: decode response: %w", err)
	}
	inv, err := types.DecodeInvitation(data)
	if err != nil {
		return nil, false, fmt.Errorf("load invitation: %w", err)
	}
	return inv, marker.IsNew, nil
}

// Save posts the document and returns the server's canonical copy, which
// carries the authoritative UpdatedAt stamp.
func (c *Client) Save(ctx context.Context, inv *types.Invitation) (*types.Invitation, error) {
	payload, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("save invitation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/invitation"), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("save invitation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errStatus("save invitation", resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("save invitation: %w", err)
	}
	saved, err := types.DecodeInvitation(data)
	if err != nil {
		return nil, fmt.Errorf("save invitation: decode response: %w", err)
	}
	return saved, nil
}
