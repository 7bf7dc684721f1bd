// Package sotd posts the catalog's song of the day to every guild that
// configured an announcement channel.
package sotd

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/soracha/wrldbot/pkg/catalog"
	"github.com/soracha/wrldbot/pkg/store"
)

// Announcer runs the daily cron job.
type Announcer struct {
	session *discordgo.Session
	catalog *catalog.Client
	store   *store.Store
	logger  *zap.Logger
	cron    *cron.Cron
}

func NewAnnouncer(session *discordgo.Session, cat *catalog.Client, st *store.Store, logger *zap.Logger) *Announcer {
	return &Announcer{
		session: session,
		catalog: cat,
		store:   st,
		logger:  logger.With(zap.String("component", "sotd")),
	}
}

// Start schedules the daily announcement on the given cron spec, e.g.
// "0 16 * * *".
func (a *Announcer) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, a.Announce); err != nil {
		return err
	}
	c.Start()
	a.cron = c
	return nil
}

// Stop halts the scheduler.
func (a *Announcer) Stop() {
	if a.cron != nil {
		a.cron.Stop()
	}
}

// Announce fetches today's song once and posts it to every registered guild.
func (a *Announcer) Announce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	song, err := a.catalog.SongOfTheDay(ctx)
	if err != nil {
		a.logger.Warn("failed to fetch song of the day", zap.Error(err))
		return
	}

	channels, err := a.store.AllSOTDChannels(ctx)
	if err != nil {
		a.logger.Warn("failed to load sotd channels", zap.Error(err))
		return
	}

	desc := fmt.Sprintf("**%s**", song.Title)
	if song.Era.Name != "" {
		desc += fmt.Sprintf("\nEra: %s", song.Era.Name)
	}
	if song.Length != "" {
		desc += fmt.Sprintf("\n`%s`", song.Length)
	}
	desc += fmt.Sprintf("\n\nPlay it with `!jw play %d`.", song.ID)

	embed := &discordgo.MessageEmbed{
		Title:       "🌅 Song of the Day",
		Description: desc,
		Color:       0x5865f2,
	}
	if song.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: song.ImageURL}
	}

	for guildID, channelID := range channels {
		if _, err := a.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
			a.logger.Warn("failed to announce song of the day",
				zap.String("guild_id", guildID), zap.Error(err))
		}
	}
	a.logger.Info("song of the day announced",
		zap.Int("song_id", song.ID), zap.Int("guilds", len(channels)))
}
