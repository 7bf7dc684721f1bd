// Package handlers wires discordgo gateway events to the command layer and
// the player sessions.
package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/soracha/wrldbot/internal/commands"
)

const prefix = "!jw"

// NewMessageHandler dispatches prefix commands to the command layer.
func NewMessageHandler(c *commands.Commands) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author.ID == s.State.User.ID || m.Author.Bot {
			return
		}
		if m.GuildID == "" {
			return
		}
		if !strings.HasPrefix(m.Content, prefix) {
			return
		}

		fields := strings.Fields(strings.TrimPrefix(m.Content, prefix))
		if len(fields) == 0 {
			c.Help(s, m)
			return
		}
		command := strings.ToLower(fields[0])
		args := fields[1:]

		switch command {
		case "play":
			c.Play(s, m, args)
		case "playnext":
			c.PlayNext(s, m, args)
		case "playnow":
			c.PlayNow(s, m, args)
		case "radio":
			c.Radio(s, m, args)
		case "pause":
			c.Pause(s, m)
		case "resume":
			c.Resume(s, m)
		case "skip":
			c.Skip(s, m)
		case "stop", "leave":
			c.Stop(s, m)
		case "shuffle":
			c.Shuffle(s, m)
		case "queue", "q":
			c.Queue(s, m, args)
		case "nowplaying", "np":
			c.NowPlaying(s, m)
		case "lyrics":
			c.Lyrics(s, m, args)
		case "history":
			c.History(s, m)
		case "stats":
			c.Stats(s, m)
		case "search":
			c.Search(s, m, args)
		case "song":
			c.Song(s, m, args)
		case "eras":
			c.Eras(s, m)
		case "timeline":
			c.Timeline(s, m)
		case "sotd":
			c.SOTD(s, m, args)
		case "playlists":
			c.Playlists(s, m)
		case "playlist":
			c.Playlist(s, m, args)
		case "save":
			c.Save(s, m, args)
		case "help":
			c.Help(s, m)
		default:
			s.ChannelMessageSend(m.ChannelID, "Unknown command. Try `!jw help`.")
		}
	}
}
