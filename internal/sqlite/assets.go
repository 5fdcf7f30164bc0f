package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkwed/linkwed/pkg/types"
)

// Put stores blob under id, overwriting any existing row (last-write-wins).
// Each Put is a single statement, so a failure cannot disturb other ids.
func (s *Store) Put(ctx context.Context, id string, blob types.Blob) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("asset id must not be empty")
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO assets (asset_id, name, mime_type, data, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(asset_id) DO UPDATE SET
		   name = excluded.name,
		   mime_type = excluded.mime_type,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		id, blob.Name, blob.MIMEType, blob.Data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put asset %s: %w", id, err)
	}
	return nil
}

// Get returns the blob stored under id, or ErrAssetNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return types.Blob{}, err
	}

	var blob types.Blob
	var mime sql.NullString
	err = db.QueryRowContext(ctx,
		"SELECT name, mime_type, data FROM assets WHERE asset_id = ?", id,
	).Scan(&blob.Name, &mime, &blob.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Blob{}, types.ErrAssetNotFound
	}
	if err != nil {
		return types.Blob{}, fmt.Errorf("get asset %s: %w", id, err)
	}
	blob.MIMEType = mime.String
	return blob, nil
}

// Delete removes the blob stored under id. Deleting an absent id succeeds;
// the garbage collector treats missing rows as already collected.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM assets WHERE asset_id = ?", id); err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	return nil
}

// ListIDs returns every stored asset id.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT asset_id FROM assets ORDER BY asset_id")
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan asset id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
