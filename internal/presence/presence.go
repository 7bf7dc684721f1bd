// Package presence keeps the bot's Discord status in sync with playback:
// a listening activity while any session streams, a rotating idle line
// otherwise.
package presence

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var idleLines = []string{
	"999 forever",
	"the leak timeline",
	"type !jw help",
}

// Manager serializes presence updates. Sessions in several guilds can race
// to set the listening line; the last writer wins and idle rotation never
// overwrites a listening line.
type Manager struct {
	session *discordgo.Session
	logger  *zap.Logger

	mu        sync.Mutex
	listening bool
	idleIdx   int
	stop      chan struct{}
}

func NewManager(session *discordgo.Session, logger *zap.Logger) *Manager {
	return &Manager{
		session: session,
		logger:  logger.With(zap.String("component", "presence")),
		stop:    make(chan struct{}),
	}
}

// SetListening shows the currently playing title.
func (m *Manager) SetListening(title string) {
	m.mu.Lock()
	m.listening = true
	m.mu.Unlock()
	m.update(&discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{{
			Name:  "to",
			Type:  discordgo.ActivityTypeListening,
			State: title,
		}},
	})
}

// ClearListening returns to the idle rotation.
func (m *Manager) ClearListening() {
	m.mu.Lock()
	m.listening = false
	m.mu.Unlock()
	m.setIdle()
}

func (m *Manager) setIdle() {
	m.mu.Lock()
	line := idleLines[m.idleIdx%len(idleLines)]
	m.idleIdx++
	m.mu.Unlock()
	m.update(&discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{{
			Name: line,
			Type: discordgo.ActivityTypeListening,
		}},
	})
}

func (m *Manager) update(data *discordgo.UpdateStatusData) {
	if err := m.session.UpdateStatusComplex(*data); err != nil {
		m.logger.Warn("presence update failed", zap.Error(err))
	}
}

// StartRotation rotates the idle line every few minutes. The listening line
// is left alone.
func (m *Manager) StartRotation() {
	m.setIdle()
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.mu.Lock()
				listening := m.listening
				m.mu.Unlock()
				if !listening {
					m.setIdle()
				}
			}
		}
	}()
}

// StopRotation halts the idle rotation goroutine.
func (m *Manager) StopRotation() {
	close(m.stop)
}
