package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPlaylistRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pos, err := s.AddToPlaylist(ctx, "user-1", "favs", 42, "Lucid Dreams")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = s.AddToPlaylist(ctx, "user-1", "favs", 43, "Bandit")
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	entries, err := s.GetPlaylist(ctx, "user-1", "favs")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Lucid Dreams", entries[0].Title)
	assert.Equal(t, "Bandit", entries[1].Title)
}

func TestPlaylistRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddToPlaylist(ctx, "user-1", "favs", 42, "Lucid Dreams")
	require.NoError(t, err)
	_, err = s.AddToPlaylist(ctx, "user-1", "favs", 42, "Lucid Dreams")
	assert.ErrorIs(t, err, ErrDuplicateSong)

	// Same song in a different playlist or for a different user is fine.
	_, err = s.AddToPlaylist(ctx, "user-1", "other", 42, "Lucid Dreams")
	assert.NoError(t, err)
	_, err = s.AddToPlaylist(ctx, "user-2", "favs", 42, "Lucid Dreams")
	assert.NoError(t, err)
}

func TestPlaylistsAreScopedPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddToPlaylist(ctx, "user-1", "favs", 42, "Lucid Dreams")
	require.NoError(t, err)

	_, err = s.GetPlaylist(ctx, "user-2", "favs")
	assert.ErrorIs(t, err, ErrPlaylistNotFound)
}

func TestRemoveFromPlaylistCompactsPositions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, title := range []string{"one", "two", "three"} {
		_, err := s.AddToPlaylist(ctx, "user-1", "favs", i+1, title)
		require.NoError(t, err)
	}

	require.NoError(t, s.RemoveFromPlaylist(ctx, "user-1", "favs", 2))

	entries, err := s.GetPlaylist(ctx, "user-1", "favs")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Title)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "three", entries[1].Title)
	assert.Equal(t, 2, entries[1].Position)

	err = s.RemoveFromPlaylist(ctx, "user-1", "favs", 99)
	assert.ErrorIs(t, err, ErrPlaylistNotFound)
}

func TestRenamePlaylist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddToPlaylist(ctx, "user-1", "old", 1, "one")
	require.NoError(t, err)

	require.NoError(t, s.RenamePlaylist(ctx, "user-1", "old", "new"))

	_, err = s.GetPlaylist(ctx, "user-1", "old")
	assert.ErrorIs(t, err, ErrPlaylistNotFound)
	entries, err := s.GetPlaylist(ctx, "user-1", "new")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Renaming onto an existing playlist is refused.
	_, err = s.AddToPlaylist(ctx, "user-1", "other", 2, "two")
	require.NoError(t, err)
	assert.Error(t, s.RenamePlaylist(ctx, "user-1", "new", "other"))
}

func TestDeletePlaylist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddToPlaylist(ctx, "user-1", "favs", 1, "one")
	require.NoError(t, err)

	require.NoError(t, s.DeletePlaylist(ctx, "user-1", "favs"))
	assert.ErrorIs(t, s.DeletePlaylist(ctx, "user-1", "favs"), ErrPlaylistNotFound)
}

func TestListPlaylists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lists, err := s.ListPlaylists(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, lists)

	_, err = s.AddToPlaylist(ctx, "user-1", "favs", 1, "one")
	require.NoError(t, err)
	_, err = s.AddToPlaylist(ctx, "user-1", "favs", 2, "two")
	require.NoError(t, err)
	_, err = s.AddToPlaylist(ctx, "user-1", "chill", 3, "three")
	require.NoError(t, err)

	lists, err = s.ListPlaylists(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"favs": 2, "chill": 1}, lists)
}

func TestUserStatsAggregation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordListen(ctx, "user-1", "guild-1", 42, "Lucid Dreams", "GGR", 240))
	require.NoError(t, s.RecordListen(ctx, "user-1", "guild-1", 42, "Lucid Dreams", "GGR", 240))
	require.NoError(t, s.RecordListen(ctx, "user-1", "guild-2", 43, "Bandit", "DRFL", 200))
	require.NoError(t, s.RecordListen(ctx, "user-2", "guild-1", 42, "Lucid Dreams", "GGR", 240))

	stats, err := s.GetUserStats(ctx, "user-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPlays)
	assert.Equal(t, int64(680), stats.TotalSeconds)
	assert.Equal(t, 2, stats.UniqueSongs)

	require.NotEmpty(t, stats.TopSongs)
	assert.Equal(t, "Lucid Dreams", stats.TopSongs[0].Title)
	assert.Equal(t, 2, stats.TopSongs[0].Plays)

	require.NotEmpty(t, stats.TopEras)
	assert.Equal(t, "GGR", stats.TopEras[0].Era)
}

func TestUserStatsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.GetUserStats(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPlays)
	assert.Empty(t, stats.TopSongs)
}

func TestSOTDChannelLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ch, err := s.GetSOTDChannel(ctx, "guild-1")
	require.NoError(t, err)
	assert.Empty(t, ch)

	require.NoError(t, s.SetSOTDChannel(ctx, "guild-1", "chan-1", "user-1"))
	ch, err = s.GetSOTDChannel(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, "chan-1", ch)

	// Setting again moves the channel.
	require.NoError(t, s.SetSOTDChannel(ctx, "guild-1", "chan-2", "user-2"))
	require.NoError(t, s.SetSOTDChannel(ctx, "guild-2", "chan-9", "user-1"))

	all, err := s.AllSOTDChannels(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"guild-1": "chan-2", "guild-2": "chan-9"}, all)

	require.NoError(t, s.ClearSOTDChannel(ctx, "guild-1"))
	ch, err = s.GetSOTDChannel(ctx, "guild-1")
	require.NoError(t, err)
	assert.Empty(t, ch)
}
