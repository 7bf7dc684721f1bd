package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Queue handles the queue subcommands: bare queue lists, remove drops a
// 1-based position, clear empties the pending list. Adding goes through the
// play commands.
func (c *Commands) Queue(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}

	if len(args) == 0 || args[0] == "list" {
		c.listQueue(s, m)
		return
	}

	switch args[0] {
	case "remove":
		if len(args) < 2 {
			c.replyError(s, m.ChannelID, "Which position? Try queue remove 3.")
			return
		}
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			c.replyError(s, m.ChannelID, "Queue positions are numbers.")
			return
		}
		removed, err := sess.Remove(pos)
		if err != nil {
			c.replyError(s, m.ChannelID, describeError(err))
			return
		}
		c.sendEmbed(s, m.ChannelID, "🗑️ Removed", fmt.Sprintf("Removed **%s** from the queue.", removed.Title), colorInfo)
	case "clear":
		n := sess.ClearQueue()
		c.sendEmbed(s, m.ChannelID, "🗑️ Queue Cleared", fmt.Sprintf("Dropped %d pending songs.", n), colorInfo)
	default:
		c.replyError(s, m.ChannelID, "Unknown queue subcommand. Try queue, queue remove <n>, or queue clear.")
	}
}

func (c *Commands) listQueue(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}

	var b strings.Builder
	if entry, song, playing := sess.NowPlaying(); playing {
		b.WriteString(fmt.Sprintf("▶️ **%s**", song.Title))
		if entry.RequestedBy != "" {
			b.WriteString(fmt.Sprintf(" — %s", entry.RequestedBy))
		}
		b.WriteString("\n\n")
	}

	pending := sess.QueueSnapshot()
	if len(pending) == 0 {
		b.WriteString("The queue is empty.")
		if sess.RadioEnabled() {
			b.WriteString(" Radio keeps it rolling.")
		}
	} else {
		const maxShown = 15
		for i, e := range pending {
			if i == maxShown {
				b.WriteString(fmt.Sprintf("…and %d more.\n", len(pending)-maxShown))
				break
			}
			b.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, e.Title, e.Provenance))
		}
	}
	c.sendEmbed(s, m.ChannelID, "📜 Queue", b.String(), colorInfo)
}

// History lists the session's recently played tracks, newest first.
func (c *Commands) History(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "No session in this server.")
		return
	}
	entries := sess.History()
	if len(entries) == 0 {
		c.sendEmbed(s, m.ChannelID, "🕰️ History", "Nothing has played yet.", colorMuted)
		return
	}
	var b strings.Builder
	for i, e := range entries {
		b.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, e.Title, e.Provenance))
	}
	c.sendEmbed(s, m.ChannelID, "🕰️ History", b.String(), colorInfo)
}
