package player

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/soracha/wrldbot/pkg/catalog"
)

// Registry owns at most one session per guild. Lookups are cheap and
// creation is atomic, so two commands racing in the same guild always end up
// on the same session.
type Registry struct {
	catalog     Catalog
	cache       *catalog.Cache
	notifier    Notifier
	cfg         Config
	idleTimeout time.Duration
	logger      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	cron *cron.Cron
}

// NewRegistry builds an empty registry. Call StartSweeper to begin reaping
// idle sessions.
func NewRegistry(cat Catalog, cache *catalog.Cache, notifier Notifier, cfg Config, idleTimeout time.Duration, logger *zap.Logger) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	return &Registry{
		catalog:     cat,
		cache:       cache,
		notifier:    notifier,
		cfg:         cfg,
		idleTimeout: idleTimeout,
		logger:      logger.With(zap.String("component", "registry")),
		sessions:    make(map[string]*Session),
	}
}

// Get returns the live session for the guild, if any.
func (r *Registry) Get(guildID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// GetOrCreate returns the guild's session, creating it if absent. The
// second return reports whether this call created it.
func (r *Registry) GetOrCreate(guildID string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[guildID]
	r.mu.RUnlock()
	if ok {
		return s, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[guildID]; ok {
		return s, false
	}
	s = NewSession(guildID, r.catalog, r.cache, r.notifier, r.cfg, r.logger)
	s.onStopped = r.Remove
	r.sessions[guildID] = s
	r.logger.Info("session created", zap.String("guild_id", guildID))
	return s, true
}

// Remove drops the guild's session from the registry. Idempotent; removing
// an absent guild is a no-op. The session itself is not stopped here, this
// is the bookkeeping half that stopped sessions call back into.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[guildID]; ok {
		delete(r.sessions, guildID)
		r.logger.Info("session removed", zap.String("guild_id", guildID))
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StartSweeper schedules the idle sweep on the given cron spec, e.g.
// "@every 1m".
func (r *Registry) StartSweeper(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, r.Sweep); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	return nil
}

// Sweep stops every session idle past the timeout. Sessions are checked
// outside the registry lock; an expiring session calls Remove itself.
func (r *Registry) Sweep() {
	now := time.Now()
	for _, s := range r.snapshot() {
		if s.MaybeExpire(now, r.idleTimeout) {
			r.logger.Info("idle session reaped", zap.String("guild_id", s.GuildID()))
		}
	}
}

// Shutdown stops the sweeper and drains every session.
func (r *Registry) Shutdown() {
	if r.cron != nil {
		r.cron.Stop()
	}
	for _, s := range r.snapshot() {
		s.Stop()
	}
}

func (r *Registry) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
