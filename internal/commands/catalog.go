package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/soracha/wrldbot/pkg/catalog"
)

// Search shows the top catalog matches for a query, with IDs so the result
// can be fed straight into play or song.
func (c *Commands) Search(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		c.replyError(s, m.ChannelID, "Search for what? Give me a query.")
		return
	}
	ctx, cancel := commandContext()
	defer cancel()

	results, err := c.catalog.Search(ctx, strings.Join(args, " "))
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	if len(results) == 0 {
		c.sendEmbed(s, m.ChannelID, "🔍 Search", "No songs matched.", colorMuted)
		return
	}

	var b strings.Builder
	const maxShown = 10
	for i, song := range results {
		if i == maxShown {
			break
		}
		b.WriteString(fmt.Sprintf("`%d` **%s**", song.ID, song.Title))
		if song.Era.Name != "" {
			b.WriteString(fmt.Sprintf(" — %s", song.Era.Name))
		}
		if !song.HasAudio() {
			b.WriteString(" *(no audio)*")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nPlay one with `play <id>`.")
	c.sendEmbed(s, m.ChannelID, "🔍 Search Results", b.String(), colorInfo)
}

// Song shows the detail embed for one catalog entry.
func (c *Commands) Song(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		c.replyError(s, m.ChannelID, "Which song? Give me an ID or a query.")
		return
	}
	ctx, cancel := commandContext()
	defer cancel()

	song, err := c.resolveSongArg(ctx, args)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendSongDetail(s, m.ChannelID, "🎶 "+song.Title, song)
}

func (c *Commands) sendSongDetail(s *discordgo.Session, channelID, title string, song *catalog.Song) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("ID: `%d`\n", song.ID))
	if song.Artist != "" {
		b.WriteString(fmt.Sprintf("Artist: %s\n", song.Artist))
	}
	if song.Length != "" {
		b.WriteString(fmt.Sprintf("Length: `%s`\n", song.Length))
	}
	if song.Era.Name != "" {
		b.WriteString(fmt.Sprintf("Era: %s", song.Era.Name))
		if song.Era.TimeFrame != "" {
			b.WriteString(fmt.Sprintf(" (%s)", song.Era.TimeFrame))
		}
		b.WriteString("\n")
	}
	if song.LeakType != "" {
		b.WriteString(fmt.Sprintf("Leak: %s", song.LeakType))
		if song.LeakDate != "" {
			b.WriteString(fmt.Sprintf(", %s", song.LeakDate))
		}
		b.WriteString("\n")
	}
	if !song.HasAudio() {
		b.WriteString("*No playable audio.*\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: b.String(),
		Color:       colorInfo,
	}
	if song.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: song.ImageURL}
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		c.logger.Warn("failed to send song detail")
	}
}

// Eras lists the catalog's recording eras.
func (c *Commands) Eras(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := commandContext()
	defer cancel()

	eras, err := c.catalog.Eras(ctx)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	if len(eras) == 0 {
		c.sendEmbed(s, m.ChannelID, "📀 Eras", "The catalog lists no eras.", colorMuted)
		return
	}

	var b strings.Builder
	for _, era := range eras {
		b.WriteString(fmt.Sprintf("**%s**", era.Name))
		if era.TimeFrame != "" {
			b.WriteString(fmt.Sprintf(" (%s)", era.TimeFrame))
		}
		b.WriteString("\n")
		if era.Description != "" {
			b.WriteString(era.Description + "\n")
		}
	}
	c.sendEmbed(s, m.ChannelID, "📀 Eras", b.String(), colorInfo)
}

// Timeline renders the recent leak timeline, newest first.
func (c *Commands) Timeline(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := commandContext()
	defer cancel()

	entries, err := c.catalog.LeakTimeline(ctx)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	if len(entries) == 0 {
		c.sendEmbed(s, m.ChannelID, "📅 Leak Timeline", "Nothing on the timeline.", colorMuted)
		return
	}

	var b strings.Builder
	const maxShown = 12
	for i, entry := range entries {
		if i == maxShown {
			break
		}
		date := "unknown date"
		if !entry.Date.IsZero() {
			date = entry.Date.Format("2006-01-02")
		}
		b.WriteString(fmt.Sprintf("`%s` **%s**\n", date, entry.Song.Title))
	}
	c.sendEmbed(s, m.ChannelID, "📅 Leak Timeline", b.String(), colorInfo)
}

// SOTD shows the song of the day, or configures the daily announcement
// channel with "sotd here" / "sotd off".
func (c *Commands) SOTD(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	if len(args) > 0 {
		switch args[0] {
		case "here":
			if err := c.store.SetSOTDChannel(ctx, m.GuildID, m.ChannelID, m.Author.ID); err != nil {
				c.replyError(s, m.ChannelID, describeError(err))
				return
			}
			c.sendEmbed(s, m.ChannelID, "📅 Song of the Day", "Daily announcements land in this channel now.", colorOK)
			return
		case "off":
			if err := c.store.ClearSOTDChannel(ctx, m.GuildID); err != nil {
				c.replyError(s, m.ChannelID, describeError(err))
				return
			}
			c.sendEmbed(s, m.ChannelID, "📅 Song of the Day", "Daily announcements disabled for this server.", colorInfo)
			return
		}
	}

	song, err := c.catalog.SongOfTheDay(ctx)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendSongDetail(s, m.ChannelID, "🌅 Song of the Day: "+song.Title, song)
}

// songIDArg parses a bare numeric argument.
func songIDArg(arg string) (int, bool) {
	id, err := strconv.Atoi(arg)
	return id, err == nil
}
