package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/soracha/wrldbot/internal/presence"
	"github.com/soracha/wrldbot/pkg/catalog"
	"github.com/soracha/wrldbot/pkg/player"
	"github.com/soracha/wrldbot/pkg/store"
)

// Announcer receives session callbacks and turns them into channel messages,
// presence updates and listen records. It remembers, per guild, the text
// channel the last playback command came from.
type Announcer struct {
	session  *discordgo.Session
	store    *store.Store
	presence *presence.Manager
	logger   *zap.Logger

	mu       sync.Mutex
	channels map[string]string
}

// NewAnnouncer builds the announcer. The discord session must already exist;
// attach it to the registry before any session starts playing.
func NewAnnouncer(session *discordgo.Session, st *store.Store, pm *presence.Manager, logger *zap.Logger) *Announcer {
	return &Announcer{
		session:  session,
		store:    st,
		presence: pm,
		logger:   logger.With(zap.String("component", "announcer")),
		channels: make(map[string]string),
	}
}

// SetChannel records the guild's announcement channel.
func (a *Announcer) SetChannel(guildID, channelID string) {
	a.mu.Lock()
	a.channels[guildID] = channelID
	a.mu.Unlock()
}

func (a *Announcer) channel(guildID string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.channels[guildID]
}

// NowPlaying announces the started track, updates presence, and records the
// listen for the requesting user.
func (a *Announcer) NowPlaying(guildID string, entry player.Entry, song *catalog.Song) {
	a.presence.SetListening(song.Title)

	if entry.RequesterID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := a.store.RecordListen(ctx, entry.RequesterID, guildID, song.ID, song.Title, song.Era.Name, song.DurationSeconds())
		if err != nil {
			a.logger.Warn("failed to record listen", zap.Error(err))
		}
	}

	channelID := a.channel(guildID)
	if channelID == "" {
		return
	}
	desc := fmt.Sprintf("**%s**", song.Title)
	if song.Artist != "" {
		desc += fmt.Sprintf("\nby %s", song.Artist)
	}
	if song.Length != "" {
		desc += fmt.Sprintf("\n`%s`", song.Length)
	}
	if entry.Provenance == player.ProvenanceRadio {
		desc += "\n*radio pick*"
	} else if entry.RequestedBy != "" {
		desc += fmt.Sprintf("\nrequested by %s", entry.RequestedBy)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎵 Now Playing",
		Description: desc,
		Color:       colorOK,
	}
	if song.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: song.ImageURL}
	}
	if _, err := a.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		a.logger.Warn("failed to announce track", zap.String("guild_id", guildID), zap.Error(err))
	}
}

// PlaybackUnavailable tells the guild its session gave up. Fired at most
// once per session, when the consecutive-failure ceiling is hit.
func (a *Announcer) PlaybackUnavailable(guildID string, err error) {
	a.presence.ClearListening()
	channelID := a.channel(guildID)
	if channelID == "" {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🔇 Playback Unavailable",
		Description: "Too many songs failed in a row; playback has stopped. Try again later.",
		Color:       colorErr,
	}
	if _, err := a.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		a.logger.Warn("failed to announce playback failure", zap.String("guild_id", guildID), zap.Error(err))
	}
}
