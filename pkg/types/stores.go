package types

import (
	"context"
	"errors"
)

// Store lifecycle and lookup errors.
var (
	ErrStoreClosed   = errors.New("store is closed")
	ErrAlreadyOpen   = errors.New("store is already open")
	ErrAssetNotFound = errors.New("asset not found")
)

// Blob carries an asset payload together with the metadata needed to serve
// it back (original file name, MIME type).
type Blob struct {
	Name     string
	MIMEType string
	Data     []byte
}

// AssetStore is keyed blob storage. Ids are caller-supplied so a document
// can reference an asset before the write is confirmed. Put overwrites an
// existing id in place; a failed Put must leave other ids untouched.
//
// Two interchangeable implementations exist: the embedded SQLite store
// (internal/sqlite) and the HTTP client store (internal/remote). Callers
// must treat them identically through this interface.
type AssetStore interface {
	Put(ctx context.Context, id string, blob Blob) error
	Get(ctx context.Context, id string) (Blob, error)
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}

// SnapshotStore persists the single invitation document.
//
// Save fully replaces the stored document after merging the payload over
// the defaults, and returns the document as persisted. Load returns the
// stored document; on first-ever run it seeds the store with the default
// document and reports created=true so callers can tell a fresh install
// from existing data.
type SnapshotStore interface {
	Save(ctx context.Context, inv *Invitation) (*Invitation, error)
	Load(ctx context.Context) (inv *Invitation, created bool, err error)
}

// Store is a full backend: asset and snapshot storage behind a common
// attach/detach lifecycle. Attach initializes from a Config; Detach
// releases resources and is idempotent.
type Store interface {
	AssetStore
	SnapshotStore
	Attach(Config) error
	Detach() error
}
