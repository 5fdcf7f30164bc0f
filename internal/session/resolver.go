package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/linkwed/linkwed/pkg/types"
)

// ErrHandleReleased is returned when a handle is released twice.
var ErrHandleReleased = errors.New("handle already released")

// AssetURLer is implemented by asset stores whose blobs are reachable at a
// stable URL. When the store provides one, the resolver hands out URLs
// instead of materializing bytes on disk.
type AssetURLer interface {
	AssetURL(id string) string
}

// Handle is a resolved view of one asset: either a stable URL or a
// temporary file holding the bytes. Temporary handles must be released
// exactly once; the file is gone afterwards.
type Handle struct {
	id  string
	url string

	mu       sync.Mutex
	path     string
	released bool
	resolver *Resolver
}

// ID returns the asset id this handle resolves.
func (h *Handle) ID() string { return h.id }

// Source returns what a viewer should load: the stable URL when one
// exists, otherwise the temporary file path.
func (h *Handle) Source() string {
	if h.url != "" {
		return h.url
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path
}

// Release frees the temporary materialization. Releasing a URL handle is a
// no-op; releasing any handle twice is an error.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return fmt.Errorf("release %s: %w", h.id, ErrHandleReleased)
	}
	h.released = true
	if h.path == "" {
		return nil
	}
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release %s: %w", h.id, err)
	}
	h.path = ""
	h.resolver.drop(h)
	return nil
}

// Resolver turns asset references into displayable handles. Blobs that
// only exist in a store without public URLs are copied into a private
// temp directory for the lifetime of their handle.
type Resolver struct {
	assets types.AssetStore
	urler  AssetURLer

	mu   sync.Mutex
	dir  string
	open map[*Handle]struct{}
}

// NewResolver creates a resolver over the given asset store. If the store
// also implements AssetURLer, durable assets resolve to URLs.
func NewResolver(assets types.AssetStore) (*Resolver, error) {
	dir, err := os.MkdirTemp("", "linkwed-assets-*")
	if err != nil {
		return nil, fmt.Errorf("resolver temp dir: %w", err)
	}
	r := &Resolver{
		assets: assets,
		dir:    dir,
		open:   make(map[*Handle]struct{}),
	}
	if u, ok := assets.(AssetURLer); ok {
		r.urler = u
	}
	return r, nil
}

// HasURLs reports whether durable assets resolve to stable URLs rather
// than materialized files.
func (r *Resolver) HasURLs() bool { return r.urler != nil }

// Resolve returns a handle for a durably stored asset. Missing assets
// surface types.ErrAssetNotFound.
func (r *Resolver) Resolve(ctx context.Context, id string) (*Handle, error) {
	if r.urler != nil {
		return &Handle{id: id, url: r.urler.AssetURL(id), resolver: r}, nil
	}
	blob, err := r.assets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Materialize(id, blob.Data)
}

// Materialize writes raw bytes into the temp dir and returns a file
// handle. Used for payloads that are not durable yet.
func (r *Resolver) Materialize(id string, data []byte) (*Handle, error) {
	f, err := os.CreateTemp(r.dir, "blob-*")
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", id, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("materialize %s: %w", id, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("materialize %s: %w", id, err)
	}
	h := &Handle{id: id, path: f.Name(), resolver: r}
	r.mu.Lock()
	r.open[h] = struct{}{}
	r.mu.Unlock()
	return h, nil
}

// OpenHandles reports how many temporary materializations are still live.
func (r *Resolver) OpenHandles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

func (r *Resolver) drop(h *Handle) {
	r.mu.Lock()
	delete(r.open, h)
	r.mu.Unlock()
}

// Close removes the temp directory and everything still in it.
func (r *Resolver) Close() error {
	r.mu.Lock()
	r.open = make(map[*Handle]struct{})
	r.mu.Unlock()
	return os.RemoveAll(r.dir)
}
