package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenDB opens the local SQLite store. It holds only what must
// survive a restart: session bindings (upstream bearer token plus
// profile snapshot) and the last known cart badge count per session.
// Everything else lives upstream.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Sessions: browser sid -> upstream bearer token + profile snapshot
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  token TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL DEFAULT '',
  name  TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);

-- Cart badges: last known item count so header chrome keeps working
-- when the upstream cart endpoint is down
CREATE TABLE IF NOT EXISTS cart_badges(
  session_id TEXT PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
  item_count INTEGER NOT NULL DEFAULT 0 CHECK (item_count >= 0),
  updated_at TEXT
);
`
	_, err := db.Exec(schema)
	return err
}
