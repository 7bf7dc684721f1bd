package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/soracha/wrldbot/pkg/player"
)

// Play appends a song to the queue, starting playback if the session is
// idle. Accepts a catalog ID or a search query.
func (c *Commands) Play(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	c.enqueue(s, m, args, player.ModeAppend)
}

// PlayNext inserts the song right after the current track.
func (c *Commands) PlayNext(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	c.enqueue(s, m, args, player.ModePlayNext)
}

// PlayNow interrupts the current track and plays the song immediately.
func (c *Commands) PlayNow(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	c.enqueue(s, m, args, player.ModePlayNow)
}

func (c *Commands) enqueue(s *discordgo.Session, m *discordgo.MessageCreate, args []string, mode player.EnqueueMode) {
	if len(args) < 1 {
		c.replyError(s, m.ChannelID, "Give me a song ID or something to search for.")
		return
	}

	ctx, cancel := commandContext()
	defer cancel()
	song, err := c.resolveSongArg(ctx, args)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	if !song.HasAudio() {
		c.replyError(s, m.ChannelID, "That song has no playable audio.")
		return
	}

	sess, err := c.ensureSession(s, m)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}

	entry := player.Entry{
		SongID:      song.ID,
		Title:       song.Title,
		RequestedBy: m.Author.Username,
		RequesterID: m.Author.ID,
		Provenance:  player.ProvenanceUser,
		AddedAt:     time.Now(),
	}
	pos, evicted, err := sess.Enqueue(entry, mode)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}

	c.logger.Info("song enqueued",
		zap.String("guild_id", m.GuildID), zap.Int("song_id", song.ID),
		zap.Int("position", pos))

	switch {
	case mode == player.ModePlayNow:
		c.sendEmbed(s, m.ChannelID, "⏭️ Playing Now", fmt.Sprintf("**%s** jumps the queue.", song.Title), colorOK)
	case pos == 0:
		// Went straight to loading; the now-playing announcement follows.
	case mode == player.ModePlayNext:
		c.sendEmbed(s, m.ChannelID, "🎵 Up Next", fmt.Sprintf("**%s** plays after the current track.", song.Title), colorOK)
	default:
		c.sendEmbed(s, m.ChannelID, "🎵 Song Added", fmt.Sprintf("Added **%s** to the queue (position %d).", song.Title, pos), colorOK)
	}

	if evicted != nil {
		c.sendEmbed(s, m.ChannelID, "⚠️ Queue Full",
			fmt.Sprintf("The queue hit its cap; dropped the oldest request, **%s**.", evicted.Title), colorMuted)
	}
}

// Radio toggles radio mode: with an empty queue the session keeps itself fed
// with random catalog picks.
func (c *Commands) Radio(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) > 0 && args[0] == "off" {
		sess, ok := c.registry.Get(m.GuildID)
		if !ok {
			c.replyError(s, m.ChannelID, "Nothing is playing.")
			return
		}
		if err := sess.SetRadio(false); err != nil {
			c.replyError(s, m.ChannelID, describeError(err))
			return
		}
		c.sendEmbed(s, m.ChannelID, "📻 Radio Off", "Radio mode disabled. The queue plays out and then I go quiet.", colorInfo)
		return
	}

	sess, err := c.ensureSession(s, m)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	if err := sess.SetRadio(true); err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendEmbed(s, m.ChannelID, "📻 Radio On", "Radio mode enabled. I pick random songs whenever the queue runs dry.", colorOK)
}
