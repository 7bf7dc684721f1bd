package commands

import "github.com/bwmarrin/discordgo"

const helpText = "**Playback**\n" +
	"`play <id|query>` — queue a song\n" +
	"`playnext <id|query>` — queue right after the current track\n" +
	"`playnow <id|query>` — interrupt and play immediately\n" +
	"`radio [off]` — auto-play random songs when the queue is empty\n" +
	"`pause` / `resume` / `skip` / `stop` / `shuffle`\n" +
	"`nowplaying` — what's on\n" +
	"`queue [remove <n>|clear]` — pending songs\n" +
	"`history` — recently played\n\n" +
	"**Catalog**\n" +
	"`search <query>` / `song <id|query>`\n" +
	"`eras` / `timeline` / `sotd [here|off]`\n" +
	"`lyrics [id|query]` — lyrics for the current or a named song\n\n" +
	"**Yours**\n" +
	"`playlists` / `playlist show|play|add|remove|rename|delete <name> …`\n" +
	"`save <name>` — snapshot the queue into a playlist\n" +
	"`stats` — your listening totals"

// Help lists every command.
func (c *Commands) Help(s *discordgo.Session, m *discordgo.MessageCreate) {
	c.sendEmbed(s, m.ChannelID, "🎧 Commands (prefix `!jw`)", helpText, colorInfo)
}
