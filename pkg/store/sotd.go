package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetSOTDChannel registers (or moves) the guild's song-of-the-day
// announcement channel.
func (s *Store) SetSOTDChannel(ctx context.Context, guildID, channelID, setBy string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sotd_channels (guild_id, channel_id, set_by) VALUES (?, ?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET channel_id = excluded.channel_id, set_by = excluded.set_by, set_at = CURRENT_TIMESTAMP`,
		guildID, channelID, setBy)
	if err != nil {
		return fmt.Errorf("setting sotd channel: %w", err)
	}
	return nil
}

// ClearSOTDChannel unregisters the guild from daily announcements.
func (s *Store) ClearSOTDChannel(ctx context.Context, guildID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sotd_channels WHERE guild_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("clearing sotd channel: %w", err)
	}
	return nil
}

// GetSOTDChannel returns the guild's announcement channel, or "" when none
// is configured.
func (s *Store) GetSOTDChannel(ctx context.Context, guildID string) (string, error) {
	var channelID string
	err := s.db.QueryRowContext(ctx,
		`SELECT channel_id FROM sotd_channels WHERE guild_id = ?`, guildID).Scan(&channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying sotd channel: %w", err)
	}
	return channelID, nil
}

// AllSOTDChannels returns guild to channel for every registered guild.
func (s *Store) AllSOTDChannels(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT guild_id, channel_id FROM sotd_channels`)
	if err != nil {
		return nil, fmt.Errorf("listing sotd channels: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var guildID, channelID string
		if err := rows.Scan(&guildID, &channelID); err != nil {
			return nil, err
		}
		out[guildID] = channelID
	}
	return out, rows.Err()
}
