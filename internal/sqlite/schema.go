package sqlite

// Schema DDL. The snapshot table holds exactly one row under the fixed
// key; the CHECK constraint makes the single-document assumption explicit
// so a future multi-document variant only needs to relax it.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS assets (
    asset_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    mime_type TEXT,
    data BLOB NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot (
    snapshot_key TEXT PRIMARY KEY CHECK (snapshot_key = 'invitation'),
    version INTEGER NOT NULL,
    document TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// snapshotKey is the fixed logical key of the single invitation document.
const snapshotKey = "invitation"
