package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/linkwed/linkwed/pkg/types"
)

// snapshotFileName is the document file inside the data directory.
const snapshotFileName = "invitation.json"

// FileSnapshot implements types.SnapshotStore as a single pretty-printed
// JSON file, replaced wholesale on every save.
type FileSnapshot struct {
	mu   sync.Mutex
	path string
}

// NewFileSnapshot creates the store, creating dataDir if needed.
func NewFileSnapshot(dataDir string) (*FileSnapshot, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileSnapshot{path: filepath.Join(dataDir, snapshotFileName)}, nil
}

// Save merges inv over the defaults, stamps it, and atomically replaces
// the document file. Returns the document as persisted.
func (f *FileSnapshot) Save(ctx context.Context, inv *types.Invitation) (*types.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeLocked(inv)
}

// Load returns the stored document, seeding the default on first run
// (created=true). An unreadable or malformed file yields the default
// document without touching the file, so the corrupt copy is preserved.
func (f *FileSnapshot) Load(ctx context.Context) (*types.Invitation, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		seeded, err := f.writeLocked(types.DefaultInvitation())
		if err != nil {
			return nil, false, fmt.Errorf("seed snapshot: %w", err)
		}
		return seeded, true, nil
	}
	if err != nil {
		return types.DefaultInvitation(), false, nil
	}

	inv, err := types.DecodeInvitation(data)
	if err != nil {
		return types.DefaultInvitation(), false, nil
	}
	return inv, false, nil
}

// writeLocked sanitizes, stamps, and writes the document via temp+rename.
// The caller must hold f.mu.
func (f *FileSnapshot) writeLocked(inv *types.Invitation) (*types.Invitation, error) {
	out := inv.Clone()
	out.Sanitize()
	out.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("replace snapshot: %w", err)
	}
	return out, nil
}
