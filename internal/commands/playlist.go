package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/soracha/wrldbot/pkg/player"
)

// Playlists lists the caller's playlists.
func (c *Commands) Playlists(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := commandContext()
	defer cancel()

	lists, err := c.store.ListPlaylists(ctx, m.Author.ID)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	if len(lists) == 0 {
		c.sendEmbed(s, m.ChannelID, "📋 Playlists", "You have no playlists yet. Save one with `save <name>` or `playlist add <name> <song>`.", colorMuted)
		return
	}

	var b strings.Builder
	for name, count := range lists {
		b.WriteString(fmt.Sprintf("**%s** — %d songs\n", name, count))
	}
	c.sendEmbed(s, m.ChannelID, "📋 Your Playlists", b.String(), colorInfo)
}

// Playlist dispatches the playlist subcommands: show, play, add, remove,
// rename, delete.
func (c *Commands) Playlist(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 {
		c.replyError(s, m.ChannelID, "Usage: playlist show/play/add/remove/rename/delete <name> …")
		return
	}
	sub, name := args[0], args[1]
	rest := args[2:]

	switch sub {
	case "show":
		c.playlistShow(s, m, name)
	case "play":
		c.playlistPlay(s, m, name)
	case "add":
		c.playlistAdd(s, m, name, rest)
	case "remove":
		c.playlistRemove(s, m, name, rest)
	case "rename":
		c.playlistRename(s, m, name, rest)
	case "delete":
		c.playlistDelete(s, m, name)
	default:
		c.replyError(s, m.ChannelID, "Unknown playlist subcommand. Try show, play, add, remove, rename, or delete.")
	}
}

func (c *Commands) playlistShow(s *discordgo.Session, m *discordgo.MessageCreate, name string) {
	ctx, cancel := commandContext()
	defer cancel()

	entries, err := c.store.GetPlaylist(ctx, m.Author.ID, name)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%d. **%s** (`%d`)\n", e.Position, e.Title, e.SongID))
	}
	c.sendEmbed(s, m.ChannelID, "📋 "+name, b.String(), colorInfo)
}

// playlistPlay seeds the session queue with the whole playlist.
func (c *Commands) playlistPlay(s *discordgo.Session, m *discordgo.MessageCreate, name string) {
	ctx, cancel := commandContext()
	defer cancel()

	entries, err := c.store.GetPlaylist(ctx, m.Author.ID, name)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}

	sess, err := c.ensureSession(s, m)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}

	queued := 0
	for _, e := range entries {
		entry := player.Entry{
			SongID:      e.SongID,
			Title:       e.Title,
			RequestedBy: m.Author.Username,
			RequesterID: m.Author.ID,
			Provenance:  player.ProvenancePlaylist,
			AddedAt:     time.Now(),
		}
		if _, _, err := sess.Enqueue(entry, player.ModeAppend); err != nil {
			c.replyError(s, m.ChannelID, describeError(err))
			return
		}
		queued++
	}
	c.sendEmbed(s, m.ChannelID, "📋 Playlist Queued",
		fmt.Sprintf("Queued %d songs from **%s**.", queued, name), colorOK)
}

func (c *Commands) playlistAdd(s *discordgo.Session, m *discordgo.MessageCreate, name string, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	var songID int
	var title string
	if len(args) == 0 {
		// No song named: save whatever is playing right now.
		sess, ok := c.registry.Get(m.GuildID)
		if !ok {
			c.replyError(s, m.ChannelID, "Nothing is playing. Name a song to add.")
			return
		}
		_, song, playing := sess.NowPlaying()
		if !playing {
			c.replyError(s, m.ChannelID, "Nothing is playing. Name a song to add.")
			return
		}
		songID, title = song.ID, song.Title
	} else {
		song, err := c.resolveSongArg(ctx, args)
		if err != nil {
			c.replyError(s, m.ChannelID, describeError(err))
			return
		}
		songID, title = song.ID, song.Title
	}

	pos, err := c.store.AddToPlaylist(ctx, m.Author.ID, name, songID, title)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendEmbed(s, m.ChannelID, "📋 Added",
		fmt.Sprintf("**%s** saved to **%s** (position %d).", title, name, pos), colorOK)
}

func (c *Commands) playlistRemove(s *discordgo.Session, m *discordgo.MessageCreate, name string, args []string) {
	if len(args) < 1 {
		c.replyError(s, m.ChannelID, "Which position? Try playlist remove <name> <n>.")
		return
	}
	pos, ok := songIDArg(args[0])
	if !ok {
		c.replyError(s, m.ChannelID, "Playlist positions are numbers.")
		return
	}
	ctx, cancel := commandContext()
	defer cancel()

	if err := c.store.RemoveFromPlaylist(ctx, m.Author.ID, name, pos); err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendEmbed(s, m.ChannelID, "📋 Removed", fmt.Sprintf("Removed entry %d from **%s**.", pos, name), colorInfo)
}

func (c *Commands) playlistRename(s *discordgo.Session, m *discordgo.MessageCreate, name string, args []string) {
	if len(args) < 1 {
		c.replyError(s, m.ChannelID, "Rename to what? Try playlist rename <old> <new>.")
		return
	}
	ctx, cancel := commandContext()
	defer cancel()

	if err := c.store.RenamePlaylist(ctx, m.Author.ID, name, args[0]); err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendEmbed(s, m.ChannelID, "📋 Renamed", fmt.Sprintf("**%s** is now **%s**.", name, args[0]), colorOK)
}

func (c *Commands) playlistDelete(s *discordgo.Session, m *discordgo.MessageCreate, name string) {
	ctx, cancel := commandContext()
	defer cancel()

	if err := c.store.DeletePlaylist(ctx, m.Author.ID, name); err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendEmbed(s, m.ChannelID, "📋 Deleted", fmt.Sprintf("Playlist **%s** deleted.", name), colorInfo)
}

// Save snapshots the current track plus the pending queue into a playlist.
func (c *Commands) Save(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		c.replyError(s, m.ChannelID, "Save as what? Try save <name>.")
		return
	}
	name := args[0]

	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing to save; no session in this server.")
		return
	}

	var toSave []player.Entry
	if entry, _, playing := sess.NowPlaying(); playing {
		toSave = append(toSave, entry)
	}
	toSave = append(toSave, sess.QueueSnapshot()...)
	if len(toSave) == 0 {
		c.replyError(s, m.ChannelID, "Nothing to save; the queue is empty.")
		return
	}

	ctx, cancel := commandContext()
	defer cancel()
	saved := 0
	for _, e := range toSave {
		_, err := c.store.AddToPlaylist(ctx, m.Author.ID, name, e.SongID, e.Title)
		if err != nil {
			// Duplicates are fine when snapshotting; skip them quietly.
			continue
		}
		saved++
	}
	c.sendEmbed(s, m.ChannelID, "💾 Saved",
		fmt.Sprintf("Saved %d songs into **%s**.", saved, name), colorOK)
}
