package transport

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ErrNotInVoice is returned when the requesting user is not in any voice
// channel of the guild.
var ErrNotInVoice = fmt.Errorf("you must be in a voice channel to play music")

// JoinUserVoiceChannel finds the voice channel the user sits in and joins
// it, retrying transient gateway failures.
func JoinUserVoiceChannel(s *discordgo.Session, userID, guildID string, logger *zap.Logger) (*discordgo.VoiceConnection, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("looking up guild: %w", err)
	}

	var channelID string
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			channelID = vs.ChannelID
			break
		}
	}
	if channelID == "" {
		return nil, ErrNotInVoice
	}

	logger.Info("joining voice channel",
		zap.String("guild_id", guildID), zap.String("channel_id", channelID))

	var vc *discordgo.VoiceConnection
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		vc, err = s.ChannelVoiceJoin(guildID, channelID, false, true)
		if err == nil {
			break
		}
		logger.Warn("voice join failed",
			zap.Int("attempt", i+1), zap.Int("max", maxRetries), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("joining voice channel after %d attempts: %w", maxRetries, err)
	}

	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-timeout:
			vc.Disconnect()
			return nil, fmt.Errorf("voice connection timed out")
		case <-ticker.C:
			if vc.Ready {
				return vc, nil
			}
		}
	}
}
