package server

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/linkwed/linkwed/pkg/types"
)

// DiskAssets implements types.AssetStore over a flat directory of files,
// one file per asset id. The id doubles as the file name, so ids must not
// contain path separators.
type DiskAssets struct {
	dir string
}

// NewDiskAssets creates the store, creating dir if needed.
func NewDiskAssets(dir string) (*DiskAssets, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskAssets{dir: dir}, nil
}

// validID rejects ids that could escape the upload directory.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, `/\`) {
		return false
	}
	return true
}

// Put writes the blob to disk. The write goes through a temp file and
// rename so a failed Put never leaves a truncated asset behind.
func (d *DiskAssets) Put(ctx context.Context, id string, blob types.Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validID(id) {
		return fmt.Errorf("invalid asset id %q", id)
	}

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write asset %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close asset %s: %w", id, err)
	}
	if err := os.Rename(tmpName, filepath.Join(d.dir, id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store asset %s: %w", id, err)
	}
	return nil
}

// Get reads the blob for id. The MIME type is derived from the id's file
// extension; the original upload name lives in the invitation document,
// not on disk.
func (d *DiskAssets) Get(ctx context.Context, id string) (types.Blob, error) {
	if err := ctx.Err(); err != nil {
		return types.Blob{}, err
	}
	if !validID(id) {
		return types.Blob{}, types.ErrAssetNotFound
	}

	data, err := os.ReadFile(filepath.Join(d.dir, id))
	if os.IsNotExist(err) {
		return types.Blob{}, types.ErrAssetNotFound
	}
	if err != nil {
		return types.Blob{}, fmt.Errorf("read asset %s: %w", id, err)
	}
	return types.Blob{
		Name:     id,
		MIMEType: mime.TypeByExtension(filepath.Ext(id)),
		Data:     data,
	}, nil
}

// Delete removes the file for id. Missing files are treated as already
// deleted.
func (d *DiskAssets) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validID(id) {
		return nil
	}
	err := os.Remove(filepath.Join(d.dir, id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	return nil
}

// ListIDs returns every stored asset id, sorted. Temp files from in-flight
// writes are skipped.
func (d *DiskAssets) ListIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)
	return ids, nil
}
