package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/linkwed/linkwed/pkg/types"
)

// uploadResult is the /api/upload response body.
type uploadResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Put uploads the blob under id via multipart form, then confirms the
// asset is actually retrievable before reporting success. A store that
// acknowledges writes it does not persist is treated as failed.
func (c *Client) Put(ctx context.Context, id string, blob types.Blob) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("fileId", id); err != nil {
		return fmt.Errorf("upload %s: %w", id, err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, escapeQuotes(blob.Name)))
	if blob.MIMEType != "" {
		header.Set("Content-Type", blob.MIMEType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("upload %s: %w", id, err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return fmt.Errorf("upload %s: %w", id, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", id, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/upload"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errStatus("upload "+id, resp)
	}

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("upload %s: decode response: %w", id, err)
	}

	// The write call succeeding is not enough; verify the bytes landed.
	if err := c.exists(ctx, result.ID); err != nil {
		return fmt.Errorf("upload %s: not retrievable after write: %w", id, err)
	}
	return nil
}

// exists issues a HEAD request for the asset.
func (c *Client) exists(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.AssetURL(id), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errStatus("head "+id, resp)
	}
	return nil
}

// Get downloads the blob for id. The served Content-Type becomes the MIME
// type; the original upload name lives in the document, so the id stands
// in as the name.
func (c *Client) Get(ctx context.Context, id string) (types.Blob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.AssetURL(id), nil)
	if err != nil {
		return types.Blob{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return types.Blob{}, fmt.Errorf("get asset %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return types.Blob{}, types.ErrAssetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return types.Blob{}, errStatus("get asset "+id, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Blob{}, fmt.Errorf("get asset %s: %w", id, err)
	}
	return types.Blob{
		Name:     id,
		MIMEType: resp.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

// Delete removes the stored asset. A missing asset counts as deleted.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url("/api/assets/"+id), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return errStatus("delete asset "+id, resp)
	}
}

// ListIDs returns every asset id known to the server.
func (c *Client) ListIDs(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/assets"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errStatus("list assets", resp)
	}

	var listing struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("list assets: decode response: %w", err)
	}
	return listing.IDs, nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
