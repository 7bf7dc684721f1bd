package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/soracha/wrldbot/pkg/player"
)

// Pause suspends the current track.
func (c *Commands) Pause(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}
	if err := sess.Pause(); err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendEmbed(s, m.ChannelID, "⏸️ Paused", "Playback paused. Use resume to continue.", colorInfo)
}

// Resume continues a paused track.
func (c *Commands) Resume(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}
	if err := sess.Resume(); err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendEmbed(s, m.ChannelID, "▶️ Resumed", "Playback resumed.", colorOK)
}

// Skip abandons the current track and moves to the next queue entry.
func (c *Commands) Skip(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}
	skipped, err := sess.Skip()
	if err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	if skipped != nil {
		c.sendEmbed(s, m.ChannelID, "⏭️ Skipped", fmt.Sprintf("Skipped **%s**.", skipped.Title), colorInfo)
	} else {
		c.sendEmbed(s, m.ChannelID, "⏭️ Skipped", "Skipped ahead.", colorInfo)
	}
}

// Stop ends the session: queue cleared, voice disconnected.
func (c *Commands) Stop(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}
	sess.Stop()
	c.announcer.presence.ClearListening()
	c.sendEmbed(s, m.ChannelID, "⏹️ Stopped", "Playback stopped and queue cleared. See you next time.", colorInfo)
}

// Shuffle permutes the pending queue, leaving the current track alone.
func (c *Commands) Shuffle(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}
	if err := sess.Shuffle(); err != nil {
		c.replyError(s, m.ChannelID, describeError(err))
		return
	}
	c.sendEmbed(s, m.ChannelID, "🔀 Shuffled", fmt.Sprintf("Shuffled %d pending songs.", len(sess.QueueSnapshot())), colorOK)
}

// NowPlaying shows the current track with elapsed time.
func (c *Commands) NowPlaying(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := c.registry.Get(m.GuildID)
	if !ok {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}
	entry, song, playing := sess.NowPlaying()
	if !playing {
		c.replyError(s, m.ChannelID, "Nothing is playing.")
		return
	}

	elapsed := int(sess.Elapsed().Seconds())
	desc := fmt.Sprintf("**%s**", song.Title)
	if song.Artist != "" {
		desc += fmt.Sprintf("\nby %s", song.Artist)
	}
	if song.Length != "" {
		desc += fmt.Sprintf("\n`%d:%02d / %s`", elapsed/60, elapsed%60, song.Length)
	}
	if song.Era.Name != "" {
		desc += fmt.Sprintf("\nEra: %s", song.Era.Name)
	}
	if entry.Provenance == player.ProvenanceRadio {
		desc += "\n*radio pick*"
	} else if entry.RequestedBy != "" {
		desc += fmt.Sprintf("\nrequested by %s", entry.RequestedBy)
	}
	if sess.State() == player.StatePaused {
		desc += "\n*(paused)*"
	}
	c.sendEmbed(s, m.ChannelID, "🎵 Now Playing", desc, colorInfo)
}
