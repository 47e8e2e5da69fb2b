package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS session_index (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    cwd                  TEXT,
    message_count        INTEGER,
    indexed_at           TEXT NOT NULL
);
`
