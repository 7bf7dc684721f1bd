package store

import (
	"context"
	"fmt"
)

// UserStats aggregates one user's listening history.
type UserStats struct {
	TotalPlays   int
	TotalSeconds int64
	UniqueSongs  int
	TopSongs     []SongCount
	TopEras      []EraCount
}

// SongCount is a title with its play count.
type SongCount struct {
	Title string
	Plays int
}

// EraCount is an era name with its play count.
type EraCount struct {
	Era   string
	Plays int
}

// RecordListen logs one completed or skipped play for the stats tables.
func (s *Store) RecordListen(ctx context.Context, userID, guildID string, songID int, title, era string, seconds int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO listens (user_id, guild_id, song_id, title, era, seconds) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, guildID, songID, title, era, seconds)
	if err != nil {
		return fmt.Errorf("recording listen: %w", err)
	}
	return nil
}

// GetUserStats aggregates plays, listening time, and top songs and eras for
// one user. topN bounds both top lists.
func (s *Store) GetUserStats(ctx context.Context, userID string, topN int) (*UserStats, error) {
	stats := &UserStats{}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(seconds), 0), COUNT(DISTINCT song_id)
		 FROM listens WHERE user_id = ?`,
		userID).Scan(&stats.TotalPlays, &stats.TotalSeconds, &stats.UniqueSongs)
	if err != nil {
		return nil, fmt.Errorf("aggregating listens: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, COUNT(*) AS plays FROM listens
		 WHERE user_id = ? GROUP BY song_id, title ORDER BY plays DESC, title LIMIT ?`,
		userID, topN)
	if err != nil {
		return nil, fmt.Errorf("querying top songs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc SongCount
		if err := rows.Scan(&sc.Title, &sc.Plays); err != nil {
			return nil, err
		}
		stats.TopSongs = append(stats.TopSongs, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	eraRows, err := s.db.QueryContext(ctx,
		`SELECT era, COUNT(*) AS plays FROM listens
		 WHERE user_id = ? AND era != '' GROUP BY era ORDER BY plays DESC, era LIMIT ?`,
		userID, topN)
	if err != nil {
		return nil, fmt.Errorf("querying top eras: %w", err)
	}
	defer eraRows.Close()
	for eraRows.Next() {
		var ec EraCount
		if err := eraRows.Scan(&ec.Era, &ec.Plays); err != nil {
			return nil, err
		}
		stats.TopEras = append(stats.TopEras, ec)
	}
	return stats, eraRows.Err()
}
