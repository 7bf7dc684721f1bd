package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/soracha/wrldbot/pkg/catalog"
)

// Lyrics fetches lyrics for the current track, or for an explicit song given
// as an ID or search query. Misses are reported, never fatal.
func (c *Commands) Lyrics(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	song := c.currentOrArgSong(s, m, args)
	if song == nil {
		return
	}

	text, source, err := c.lyrics.Resolve(ctx, song)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}

	title := fmt.Sprintf("📝 %s", song.Title)
	if source == "genius" {
		title += " (via Genius)"
	}
	c.sendEmbed(s, m.ChannelID, title, text, colorInfo)
}

// currentOrArgSong picks the subject song: explicit args win, otherwise the
// track currently playing in this guild. Replies with the error itself and
// returns nil when there is no subject.
func (c *Commands) currentOrArgSong(s *discordgo.Session, m *discordgo.MessageCreate, args []string) *catalog.Song {
	if len(args) > 0 {
		ctx, cancel := commandContext()
		defer cancel()
		song, err := c.resolveSongArg(ctx, args)
		if err != nil {
			c.replyError(s, m.ChannelID, describeError(err))
			return nil
		}
		return song
	}

	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing. Name a song instead.")
		return nil
	}
	_, song, playing := sess.NowPlaying()
	if !playing {
		c.replyError(s, m.ChannelID, "Nothing is playing. Name a song instead.")
		return nil
	}
	return song
}
