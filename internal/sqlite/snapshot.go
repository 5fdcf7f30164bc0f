package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linkwed/linkwed/pkg/types"
)

// Save replaces the stored document with inv, sanitized, and returns the
// document as persisted. The write is a whole-row upsert; there are no
// partial-patch semantics.
func (s *Store) Save(ctx context.Context, inv *types.Invitation) (*types.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	return saveSnapshot(ctx, db, inv)
}

// Load returns the stored document. On first-ever run it seeds the store
// with the default document and reports created=true. A malformed or
// wrong-version row falls back to the default document without rewriting
// the stored row, so the corrupt entry stays inspectable.
func (s *Store) Load(ctx context.Context) (*types.Invitation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, false, err
	}

	var version int
	var document string
	err = db.QueryRowContext(ctx,
		"SELECT version, document FROM snapshot WHERE snapshot_key = ?", snapshotKey,
	).Scan(&version, &document)
	if errors.Is(err, sql.ErrNoRows) {
		seeded, err := saveSnapshot(ctx, db, types.DefaultInvitation())
		if err != nil {
			return nil, false, fmt.Errorf("seed snapshot: %w", err)
		}
		return seeded, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}

	if version != types.SnapshotVersion {
		return types.DefaultInvitation(), false, nil
	}
	inv, err := types.DecodeInvitation([]byte(document))
	if err != nil {
		return types.DefaultInvitation(), false, nil
	}
	return inv, false, nil
}

// saveSnapshot sanitizes, stamps, and upserts the document row. The caller
// must hold the store lock with the database open.
func saveSnapshot(ctx context.Context, db *sql.DB, inv *types.Invitation) (*types.Invitation, error) {
	out := inv.Clone()
	out.Sanitize()
	out.UpdatedAt = time.Now().UTC()

	document, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO snapshot (snapshot_key, version, document, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(snapshot_key) DO UPDATE SET
		   version = excluded.version,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		snapshotKey, types.SnapshotVersion, string(document), out.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	return out, nil
}
