package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PlaylistEntry is one saved song in a user playlist.
type PlaylistEntry struct {
	Position int
	SongID   int
	Title    string
	AddedAt  time.Time
}

// AddToPlaylist appends a song to the user's playlist, creating the playlist
// implicitly. Duplicate songs are rejected.
func (s *Store) AddToPlaylist(ctx context.Context, userID, playlist string, songID int, title string) (int, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlist_entries WHERE user_id = ? AND playlist = ? AND song_id = ?`,
		userID, playlist, songID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("checking playlist: %w", err)
	}
	if exists > 0 {
		return 0, ErrDuplicateSong
	}

	var next sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT MAX(position) FROM playlist_entries WHERE user_id = ? AND playlist = ?`,
		userID, playlist).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("finding playlist tail: %w", err)
	}
	position := int(next.Int64) + 1

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO playlist_entries (user_id, playlist, position, song_id, title) VALUES (?, ?, ?, ?, ?)`,
		userID, playlist, position, songID, title)
	if err != nil {
		return 0, fmt.Errorf("inserting playlist entry: %w", err)
	}
	return position, nil
}

// GetPlaylist returns the user's playlist in saved order.
func (s *Store) GetPlaylist(ctx context.Context, userID, playlist string) ([]PlaylistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, song_id, title, added_at FROM playlist_entries
		 WHERE user_id = ? AND playlist = ? ORDER BY position`,
		userID, playlist)
	if err != nil {
		return nil, fmt.Errorf("querying playlist: %w", err)
	}
	defer rows.Close()

	var entries []PlaylistEntry
	for rows.Next() {
		var e PlaylistEntry
		if err := rows.Scan(&e.Position, &e.SongID, &e.Title, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning playlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrPlaylistNotFound
	}
	return entries, nil
}

// ListPlaylists returns the names of the user's playlists with entry counts.
func (s *Store) ListPlaylists(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT playlist, COUNT(*) FROM playlist_entries WHERE user_id = ? GROUP BY playlist ORDER BY playlist`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		out[name] = count
	}
	return out, rows.Err()
}

// RemoveFromPlaylist deletes the entry at the given position and compacts
// the positions after it.
func (s *Store) RemoveFromPlaylist(ctx context.Context, userID, playlist string, position int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM playlist_entries WHERE user_id = ? AND playlist = ? AND position = ?`,
		userID, playlist, position)
	if err != nil {
		return fmt.Errorf("deleting playlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlaylistNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE playlist_entries SET position = position - 1
		 WHERE user_id = ? AND playlist = ? AND position > ?`,
		userID, playlist, position)
	if err != nil {
		return fmt.Errorf("compacting playlist: %w", err)
	}
	return tx.Commit()
}

// RenamePlaylist changes a playlist's name, refusing to clobber an existing
// one.
func (s *Store) RenamePlaylist(ctx context.Context, userID, from, to string) error {
	var clash int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlist_entries WHERE user_id = ? AND playlist = ?`,
		userID, to).Scan(&clash)
	if err != nil {
		return fmt.Errorf("checking target playlist: %w", err)
	}
	if clash > 0 {
		return fmt.Errorf("playlist %q already exists", to)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE playlist_entries SET playlist = ? WHERE user_id = ? AND playlist = ?`,
		to, userID, from)
	if err != nil {
		return fmt.Errorf("renaming playlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// DeletePlaylist removes the whole playlist.
func (s *Store) DeletePlaylist(ctx context.Context, userID, playlist string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM playlist_entries WHERE user_id = ? AND playlist = ?`,
		userID, playlist)
	if err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}
