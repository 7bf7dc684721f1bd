package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Stats shows the caller's listening totals, top songs and top eras.
func (c *Commands) Stats(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := commandContext()
	defer cancel()

	stats, err := c.store.GetUserStats(ctx, m.Author.ID, 5)
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	if stats.TotalPlays == 0 {
		c.sendEmbed(s, m.ChannelID, "📊 Listening Stats", "You haven't played anything yet.", colorMuted)
		return
	}

	var b strings.Builder
	hours := stats.TotalSeconds / 3600
	minutes := (stats.TotalSeconds % 3600) / 60
	b.WriteString(fmt.Sprintf("Plays: **%d**\n", stats.TotalPlays))
	b.WriteString(fmt.Sprintf("Listening time: **%dh %dm**\n", hours, minutes))
	b.WriteString(fmt.Sprintf("Unique songs: **%d**\n", stats.UniqueSongs))

	if len(stats.TopSongs) > 0 {
		b.WriteString("\n**Top songs**\n")
		for i, sc := range stats.TopSongs {
			b.WriteString(fmt.Sprintf("%d. %s — %d plays\n", i+1, sc.Title, sc.Plays))
		}
	}
	if len(stats.TopEras) > 0 {
		b.WriteString("\n**Top eras**\n")
		for i, ec := range stats.TopEras {
			b.WriteString(fmt.Sprintf("%d. %s — %d plays\n", i+1, ec.Era, ec.Plays))
		}
	}
	c.sendEmbed(s, m.ChannelID, fmt.Sprintf("📊 Stats for %s", m.Author.Username), b.String(), colorInfo)
}
