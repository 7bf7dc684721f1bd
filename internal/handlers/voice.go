package handlers

import (
	"github.com/bwmarrin/discordgo"

	"github.com/soracha/wrldbot/pkg/player"
)

// NewVoiceStateHandler feeds listener counts to the guild's session on every
// voice state change. The count is the number of non-bot users sharing the
// bot's channel; the idle sweeper uses it to reap sessions playing to an
// empty room.
func NewVoiceStateHandler(registry *player.Registry) func(*discordgo.Session, *discordgo.VoiceStateUpdate) {
	return func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		sess, ok := registry.Get(v.GuildID)
		if !ok {
			return
		}

		guild, err := s.State.Guild(v.GuildID)
		if err != nil {
			return
		}

		var botChannelID string
		for _, vs := range guild.VoiceStates {
			if vs.UserID == s.State.User.ID {
				botChannelID = vs.ChannelID
				break
			}
		}
		if botChannelID == "" {
			sess.ListenersChanged(0)
			return
		}

		listeners := 0
		for _, vs := range guild.VoiceStates {
			if vs.ChannelID != botChannelID || vs.UserID == s.State.User.ID {
				continue
			}
			member, err := s.State.Member(v.GuildID, vs.UserID)
			if err == nil && member.User != nil && member.User.Bot {
				continue
			}
			listeners++
		}
		sess.ListenersChanged(listeners)
	}
}
