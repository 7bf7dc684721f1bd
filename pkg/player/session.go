// Package player implements the per-guild playback engine: the pending
// queue, the session state machine that drives resolution and streaming,
// and the registry that owns one session per guild.
package player

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soracha/wrldbot/pkg/catalog"
	"github.com/soracha/wrldbot/pkg/transport"
)

// Catalog is the slice of the catalog client a session needs to turn queue
// entries into playable songs.
type Catalog interface {
	Lookup(ctx context.Context, id int) (*catalog.Song, error)
	Random(ctx context.Context, excluding map[int]bool) (*catalog.Song, error)
}

// Notifier carries session announcements back to the chat layer. Calls
// arrive on session goroutines; implementations must tolerate that.
type Notifier interface {
	// NowPlaying fires once per track, when its stream actually starts.
	NowPlaying(guildID string, entry Entry, song *catalog.Song)
	// PlaybackUnavailable fires exactly once when a session gives up after
	// hitting its consecutive-failure ceiling.
	PlaybackUnavailable(guildID string, err error)
}

// Config tunes a session. Zero values fall back to workable defaults.
type Config struct {
	// FailureCeiling is the number of consecutive resolution or stream
	// failures after which the session stops itself.
	FailureCeiling int
	// QueueSoftCap bounds the pending queue; oldest non-priority entries
	// are evicted past it.
	QueueSoftCap int
	// HistorySize bounds the played-tracks ring.
	HistorySize int
	// ResolveTimeout bounds one catalog resolution.
	ResolveTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.FailureCeiling <= 0 {
		c.FailureCeiling = 3
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 25
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = 15 * time.Second
	}
	return c
}

// resolved is the completion of one async resolution. gen ties it to the
// resolution attempt that spawned it; a stale gen means the user skipped or
// stopped in the meantime and the result must be discarded.
type resolved struct {
	gen   uint64
	entry *Entry
	song  *catalog.Song
	err   error
}

// Session runs playback for one guild. All state transitions happen under
// mu; transport and resolver callbacks funnel through it, so transitions are
// strictly serialized.
type Session struct {
	guildID  string
	cfg      Config
	catalog  Catalog
	cache    *catalog.Cache
	notifier Notifier
	logger   *zap.Logger

	// onStopped tells the registry to drop this session. Set by the
	// registry at creation.
	onStopped func(guildID string)

	mu            sync.Mutex
	state         State
	queue         *Queue
	transport     transport.Transport
	current       *Entry
	currentSong   *catalog.Song
	pending       *Entry
	handle        transport.Handle
	gen           uint64
	failures      int
	radio         bool
	lastRadioID   int
	cancelResolve context.CancelFunc
	history       []Entry
	listeners     int
	lastActivity  time.Time
	startedAt     time.Time
}

// NewSession builds a session in StateIdle. The transport is attached later,
// once the bot has actually joined a voice channel.
func NewSession(guildID string, cat Catalog, cache *catalog.Cache, notifier Notifier, cfg Config, logger *zap.Logger) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		guildID:      guildID,
		cfg:          cfg,
		catalog:      cat,
		cache:        cache,
		notifier:     notifier,
		logger:       logger.With(zap.String("guild_id", guildID)),
		state:        StateIdle,
		queue:        NewQueue(cfg.QueueSoftCap),
		lastActivity: time.Now(),
	}
}

// GuildID returns the guild this session serves.
func (s *Session) GuildID() string { return s.guildID }

// AttachTransport wires the audio transport. Attaching twice is a no-op so
// concurrent commands racing to join voice stay safe.
func (s *Session) AttachTransport(t transport.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		s.transport = t
	} else if t != nil {
		t.Close()
	}
}

// HasTransport reports whether a transport is attached.
func (s *Session) HasTransport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport != nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NowPlaying returns the entry and song currently streaming, or ok=false.
func (s *Session) NowPlaying() (Entry, *catalog.Song, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || (s.state != StatePlaying && s.state != StatePaused) {
		return Entry{}, nil, false
	}
	return *s.current, s.currentSong, true
}

// Elapsed returns how long the current track has been playing.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// QueueSnapshot returns the pending entries in play order.
func (s *Session) QueueSnapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Snapshot()
}

// History returns played entries, newest first.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.history))
	for i, e := range s.history {
		out[len(s.history)-1-i] = e
	}
	return out
}

// RadioEnabled reports whether radio mode is on.
func (s *Session) RadioEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.radio
}

// Enqueue adds an entry and kicks playback if the session is idle. It
// returns the 1-based queue position of the entry (0 when it went straight
// to loading) and the entry evicted by the soft cap, if any.
func (s *Session) Enqueue(e Entry, mode EnqueueMode) (int, *Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return 0, nil, ErrSessionStopped
	}
	if s.transport == nil {
		return 0, nil, ErrNoTransport
	}

	entry := e
	evicted := s.queue.Enqueue(&entry, mode)
	if evicted != nil {
		s.logger.Warn("queue soft cap reached, dropping oldest request",
			zap.String("dropped", evicted.Title))
	}
	s.touchLocked()

	switch s.state {
	case StateIdle, StateRadioIdle:
		// RadioIdle: a real request preempts the pending auto-selection;
		// bumping the generation inside startNext discards it.
		s.startNextLocked()
		return 0, evicted, nil
	case StatePlaying, StatePaused:
		if mode == ModePlayNow {
			s.stopStreamLocked()
			s.startNextLocked()
			return 0, evicted, nil
		}
	case StateLoading:
		if mode == ModePlayNow {
			// An earlier entry is mid-resolution. Push it back behind the
			// interrupting one and restart loading from the head.
			if s.pending != nil {
				s.queue.insertAfterHead(s.pending)
				s.pending = nil
			}
			s.startNextLocked()
			return 0, evicted, nil
		}
	}

	pos := s.queuePositionLocked(&entry)
	return pos, evicted, nil
}

func (s *Session) queuePositionLocked(e *Entry) int {
	for i, pending := range s.queue.entries {
		if pending == e {
			return i + 1
		}
	}
	return s.queue.Len()
}

// SetRadio switches radio mode. Turning it on while idle starts playback
// immediately; turning it off lets the current track finish and then the
// session goes idle when the queue drains.
func (s *Session) SetRadio(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return ErrSessionStopped
	}
	if on && s.transport == nil {
		return ErrNoTransport
	}
	s.radio = on
	s.touchLocked()
	if on && s.state == StateIdle {
		s.startNextLocked()
	}
	if !on && s.state == StateRadioIdle {
		s.gen++ // discard the in-flight auto-selection
		s.cancelResolveLocked()
		s.setStateLocked(StateIdle)
	}
	return nil
}

// Pause suspends the current stream.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePaused:
		return ErrAlreadyPaused
	case StatePlaying:
	default:
		return ErrNothingPlaying
	}
	// State flips before the transport is told, so observers never see a
	// playing state with suspended audio.
	s.setStateLocked(StatePaused)
	s.transport.SetPaused(s.handle, true)
	s.touchLocked()
	return nil
}

// Resume continues a paused stream.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return ErrNotPaused
	}
	s.setStateLocked(StatePlaying)
	s.transport.SetPaused(s.handle, false)
	s.touchLocked()
	return nil
}

// Skip abandons the current track (or the in-flight resolution) and moves on
// to the next entry. It returns the entry that was skipped, if one was
// actually playing.
func (s *Session) Skip() (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePlaying, StatePaused:
		skipped := s.current
		s.pushHistoryLocked(skipped)
		s.stopStreamLocked()
		s.touchLocked()
		s.startNextLocked()
		return skipped, nil
	case StateLoading, StateRadioIdle:
		// Nothing streams yet; drop the in-flight resolution and retry.
		s.pending = nil
		s.touchLocked()
		s.startNextLocked()
		return nil, nil
	default:
		return nil, ErrNothingPlaying
	}
}

// Shuffle permutes the pending queue. The playing track is unaffected.
func (s *Session) Shuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return ErrSessionStopped
	}
	s.queue.Shuffle()
	s.touchLocked()
	return nil
}

// Remove deletes the pending entry at the 1-based position.
func (s *Session) Remove(position int) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return nil, ErrSessionStopped
	}
	removed, err := s.queue.Remove(position)
	if err == nil {
		s.touchLocked()
	}
	return removed, err
}

// ClearQueue drops all pending entries, leaving the current track alone.
func (s *Session) ClearQueue() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.queue.Len()
	s.queue.Clear()
	s.touchLocked()
	return n
}

// Stop terminates the session: stream torn down, queue cleared, voice
// disconnected, registry entry removed. Idempotent; a stopped session stays
// stopped.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.mu.Unlock()
}

func (s *Session) stopLocked() {
	s.setStateLocked(StateStopped)
	s.gen++
	s.cancelResolveLocked()
	s.stopStreamLocked()
	s.queue.Clear()
	s.current = nil
	s.currentSong = nil
	s.pending = nil
	if s.transport != nil {
		s.transport.Close()
	}
	if s.onStopped != nil {
		// Registry removal happens off this goroutine; the registry takes
		// its own lock and must not nest inside ours.
		go s.onStopped(s.guildID)
	}
	s.logger.Info("session stopped")
}

// ListenersChanged records how many non-bot users share the voice channel.
// The idle sweeper uses it to reap sessions playing to an empty room.
func (s *Session) ListenersChanged(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = count
	if count > 0 {
		s.touchLocked()
	}
}

// MaybeExpire stops the session if it has been inactive past the timeout.
// Playing to a non-empty channel counts as activity. Returns true when the
// session was reaped.
func (s *Session) MaybeExpire(now time.Time, idleTimeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return false
	}
	if (s.state == StatePlaying || s.state == StateLoading || s.state == StateRadioIdle) && s.listeners > 0 {
		s.touchLocked()
		return false
	}
	if now.Sub(s.lastActivity) < idleTimeout {
		return false
	}
	s.logger.Info("session idle past timeout, stopping",
		zap.Duration("idle", now.Sub(s.lastActivity)))
	s.stopLocked()
	return true
}

// HandleTransportEvent receives stream lifecycle events from the transport.
func (s *Session) HandleTransportEvent(ev transport.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped || ev.Handle != s.handle {
		return
	}

	switch ev.Type {
	case transport.EventFinished:
		s.failures = 0
		s.pushHistoryLocked(s.current)
		s.startNextLocked()
	case transport.EventErrored:
		s.logger.Warn("stream errored, skipping track",
			zap.String("title", s.titleLocked()), zap.Error(ev.Err))
		s.pushHistoryLocked(s.current)
		if s.recordFailureLocked(ev.Err) {
			return
		}
		s.startNextLocked()
	}
}

// startNextLocked pops the next entry and begins resolving it. With an empty
// queue it parks the session in StateIdle, or in StateRadioIdle with an
// auto-selection in flight when radio mode is on.
func (s *Session) startNextLocked() {
	s.current = nil
	s.currentSong = nil
	s.handle = 0
	s.startedAt = time.Time{}
	s.gen++
	s.cancelResolveLocked()

	entry, ok := s.queue.DequeueNext()
	if !ok {
		if s.radio {
			s.setStateLocked(StateRadioIdle)
			s.spawnRandomResolveLocked()
		} else {
			// The session lingers idle rather than stopping; the sweeper
			// reaps it if nobody comes back.
			s.setStateLocked(StateIdle)
		}
		return
	}

	s.pending = entry
	s.setStateLocked(StateLoading)
	s.spawnResolveLocked(entry)
}

func (s *Session) spawnResolveLocked(entry *Entry) {
	gen := s.gen
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ResolveTimeout)
	s.cancelResolve = cancel
	go func() {
		defer cancel()
		song, err := s.resolveSong(ctx, entry.SongID)
		s.deliverResolved(resolved{gen: gen, entry: entry, song: song, err: err})
	}()
}

func (s *Session) spawnRandomResolveLocked() {
	gen := s.gen
	exclude := map[int]bool{}
	if s.lastRadioID != 0 {
		exclude[s.lastRadioID] = true
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ResolveTimeout)
	s.cancelResolve = cancel
	go func() {
		defer cancel()
		song, err := s.catalog.Random(ctx, exclude)
		if err == nil && !song.HasAudio() {
			err = catalog.ErrAudioUnavailable
		}
		var entry *Entry
		if song != nil {
			entry = &Entry{
				SongID:     song.ID,
				Title:      song.Title,
				Provenance: ProvenanceRadio,
				AddedAt:    time.Now(),
			}
		}
		s.deliverResolved(resolved{gen: gen, entry: entry, song: song, err: err})
	}()
}

// resolveSong is the read-through path: cache, then catalog. Only songs with
// audio are cached so a cache hit is always playable.
func (s *Session) resolveSong(ctx context.Context, id int) (*catalog.Song, error) {
	if song := s.cache.Get(id); song != nil {
		return song, nil
	}
	song, err := s.catalog.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !song.HasAudio() {
		return nil, catalog.ErrAudioUnavailable
	}
	s.cache.Put(song)
	return song, nil
}

func (s *Session) deliverResolved(r resolved) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped || r.gen != s.gen {
		// Superseded by a skip, stop or newer request.
		return
	}
	s.pending = nil

	if r.err != nil {
		title := ""
		if r.entry != nil {
			title = r.entry.Title
		}
		s.logger.Warn("song resolution failed, skipping",
			zap.String("title", title), zap.Error(r.err))
		if s.recordFailureLocked(r.err) {
			return
		}
		s.startNextLocked()
		return
	}

	s.failures = 0
	s.current = r.entry
	s.currentSong = r.song
	if r.entry.Provenance == ProvenanceRadio {
		s.lastRadioID = r.song.ID
	}

	// State first, then the transport command.
	s.setStateLocked(StatePlaying)
	s.startedAt = time.Now()
	s.touchLocked()

	handle, err := s.transport.BeginStream(context.Background(), r.song.AudioURL)
	if err != nil {
		s.logger.Warn("stream start failed, skipping",
			zap.String("title", r.entry.Title), zap.Error(err))
		if s.recordFailureLocked(err) {
			return
		}
		s.startNextLocked()
		return
	}
	s.handle = handle

	entry, song := *r.entry, r.song
	go s.notifier.NowPlaying(s.guildID, entry, song)
}

// recordFailureLocked counts a consecutive failure and, at the ceiling,
// stops the session and surfaces a single PlaybackUnavailable notice.
// Returns true when the session stopped.
func (s *Session) recordFailureLocked(cause error) bool {
	s.failures++
	if s.failures < s.cfg.FailureCeiling {
		return false
	}
	s.logger.Error("failure ceiling reached, stopping playback",
		zap.Int("failures", s.failures), zap.Error(cause))
	go s.notifier.PlaybackUnavailable(s.guildID, ErrPlaybackUnavailable)
	s.stopLocked()
	return true
}

func (s *Session) stopStreamLocked() {
	if s.handle != 0 && s.transport != nil {
		s.transport.Stop(s.handle)
	}
	s.handle = 0
}

func (s *Session) cancelResolveLocked() {
	if s.cancelResolve != nil {
		s.cancelResolve()
		s.cancelResolve = nil
	}
}

func (s *Session) pushHistoryLocked(e *Entry) {
	if e == nil {
		return
	}
	s.history = append(s.history, *e)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[1:]
	}
}

func (s *Session) setStateLocked(next State) {
	if s.state == next {
		return
	}
	s.logger.Debug("state transition",
		zap.Stringer("from", s.state), zap.Stringer("to", next))
	s.state = next
}

func (s *Session) touchLocked() {
	s.lastActivity = time.Now()
}

func (s *Session) titleLocked() string {
	if s.current == nil {
		return ""
	}
	return s.current.Title
}
