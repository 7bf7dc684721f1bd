// Package store persists the bot's durable state in SQLite: user playlists,
// per-user listening stats and per-guild song-of-the-day channels.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS playlist_entries (
	user_id   TEXT NOT NULL,
	playlist  TEXT NOT NULL,
	position  INTEGER NOT NULL,
	song_id   INTEGER NOT NULL,
	title     TEXT NOT NULL,
	added_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, playlist, position)
);
CREATE INDEX IF NOT EXISTS idx_playlist_owner ON playlist_entries(user_id, playlist);

CREATE TABLE IF NOT EXISTS listens (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id   TEXT NOT NULL,
	guild_id  TEXT NOT NULL,
	song_id   INTEGER NOT NULL,
	title     TEXT NOT NULL,
	era       TEXT NOT NULL DEFAULT '',
	seconds   INTEGER NOT NULL DEFAULT 0,
	played_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_listens_user ON listens(user_id);

CREATE TABLE IF NOT EXISTS sotd_channels (
	guild_id   TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL,
	set_by     TEXT NOT NULL,
	set_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps the SQLite handle. database/sql serializes access; Store adds
// no locking of its own.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?journal_mode=WAL&synchronous=NORMAL&foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Info("store opened", zap.String("path", path))
	return &Store{db: db, logger: logger.With(zap.String("component", "store"))}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrNotConnected
	}
	return s.db.Close()
}
