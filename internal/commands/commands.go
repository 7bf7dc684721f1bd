// Package commands implements the bot's prefix command surface. Each
// handler parses its arguments, drives the player or catalog, and replies
// with an embed.
package commands

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/soracha/wrldbot/pkg/catalog"
	"github.com/soracha/wrldbot/pkg/lyrics"
	"github.com/soracha/wrldbot/pkg/player"
	"github.com/soracha/wrldbot/pkg/store"
	"github.com/soracha/wrldbot/pkg/transport"
)

// Embed colors
const (
	colorOK    = 0x00ff00
	colorErr   = 0xff0000
	colorInfo  = 0x5865f2
	colorMuted = 0x808080
)

const commandTimeout = 15 * time.Second

// Commands bundles the dependencies every handler needs.
type Commands struct {
	registry  *player.Registry
	catalog   *catalog.Client
	lyrics    *lyrics.Chain
	store     *store.Store
	announcer *Announcer
	logger    *zap.Logger
}

// New wires the command layer.
func New(registry *player.Registry, cat *catalog.Client, chain *lyrics.Chain, st *store.Store, announcer *Announcer, logger *zap.Logger) *Commands {
	return &Commands{
		registry:  registry,
		catalog:   cat,
		lyrics:    chain,
		store:     st,
		announcer: announcer,
		logger:    logger.With(zap.String("component", "commands")),
	}
}

func (c *Commands) sendEmbed(s *discordgo.Session, channelID, title, description string, color int) {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		c.logger.Warn("failed to send embed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (c *Commands) replyError(s *discordgo.Session, channelID, message string) {
	c.sendEmbed(s, channelID, "❌ Error", message, colorErr)
}

// ensureSession returns the guild's session with a live voice transport,
// joining the requesting user's voice channel when needed. The invoking text
// channel becomes the session's announcement channel.
func (c *Commands) ensureSession(s *discordgo.Session, m *discordgo.MessageCreate) (*player.Session, error) {
	sess, created := c.registry.GetOrCreate(m.GuildID)
	c.announcer.SetChannel(m.GuildID, m.ChannelID)

	if !sess.HasTransport() {
		vc, err := transport.JoinUserVoiceChannel(s, m.Author.ID, m.GuildID, c.logger)
		if err != nil {
			if created {
				sess.Stop()
			}
			return nil, err
		}
		sess.AttachTransport(transport.NewVoiceTransport(vc, sess.HandleTransportEvent, c.logger))
	}
	return sess, nil
}

// resolveSongArg turns command arguments into a catalog song: a bare number
// is an ID lookup, anything else a search taking the top hit.
func (c *Commands) resolveSongArg(ctx context.Context, args []string) (*catalog.Song, error) {
	if len(args) == 1 {
		if id, err := strconv.Atoi(args[0]); err == nil {
			return c.catalog.Lookup(ctx, id)
		}
	}
	query := strings.Join(args, " ")
	results, err := c.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, catalog.ErrNotFound
	}
	return &results[0], nil
}

// describeError maps internal errors to the user-facing message.
func describeError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "No song matched that request."
	case errors.Is(err, catalog.ErrAudioUnavailable):
		return "That song has no playable audio."
	case errors.Is(err, catalog.ErrUnavailable):
		return "The catalog is unreachable right now. Try again in a bit."
	case errors.Is(err, transport.ErrNotInVoice):
		return "You must be in a voice channel to do that."
	case errors.Is(err, player.ErrNothingPlaying):
		return "Nothing is playing."
	case errors.Is(err, player.ErrAlreadyPaused):
		return "Playback is already paused."
	case errors.Is(err, player.ErrNotPaused):
		return "Playback is not paused."
	case errors.Is(err, player.ErrOutOfRange):
		return "That queue position does not exist."
	case errors.Is(err, player.ErrSessionStopped):
		return "This session has ended. Start a new one with play."
	case errors.Is(err, store.ErrPlaylistNotFound):
		return "No such playlist."
	case errors.Is(err, store.ErrDuplicateSong):
		return "That song is already in the playlist."
	case errors.Is(err, lyrics.ErrUnavailable):
		return "No lyrics found for this song."
	default:
		return "Something went wrong. Try again."
	}
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}
