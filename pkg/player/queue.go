package player

import (
	"math/rand"
	"time"
)

// Provenance records how an entry got into the queue.
type Provenance int

const (
	ProvenanceUser Provenance = iota
	ProvenanceRadio
	ProvenancePlaylist
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceUser:
		return "requested"
	case ProvenanceRadio:
		return "radio"
	case ProvenancePlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// EnqueueMode selects where a new entry lands.
type EnqueueMode int

const (
	ModeAppend EnqueueMode = iota
	ModePlayNext
	ModePlayNow
)

// Entry wraps a song reference plus provenance. The song itself lives in the
// catalog cache; entries never copy it.
type Entry struct {
	SongID      int
	Title       string
	RequestedBy string // display name, empty for radio picks
	RequesterID string // user ID for listening stats
	Provenance  Provenance
	AddedAt     time.Time

	// priority marks play-now/play-next inserts; they survive soft-cap
	// eviction.
	priority bool
}

// Queue is the ordered list of pending entries for one session. It is owned
// exclusively by that session and relies on the session's lock; it has no
// locking of its own. The currently playing entry is not in the queue (it is
// popped on dequeue), so shuffle can never relocate it.
type Queue struct {
	entries []*Entry
	softCap int
}

// NewQueue creates a queue with the given soft cap. Zero means no cap.
func NewQueue(softCap int) *Queue {
	return &Queue{softCap: softCap}
}

// Enqueue inserts the entry per mode and returns the entry evicted to keep
// the queue under its soft cap, if any. Enqueue itself never fails; an
// eviction is a warning for the caller to report, not an error.
func (q *Queue) Enqueue(e *Entry, mode EnqueueMode) *Entry {
	if e.AddedAt.IsZero() {
		e.AddedAt = time.Now()
	}

	switch mode {
	case ModePlayNow, ModePlayNext:
		// The playing entry is not in the queue, so "right after the
		// current track" is the queue head for both modes. Play-now
		// additionally interrupts; that part is the session's job.
		e.priority = true
		q.entries = append([]*Entry{e}, q.entries...)
	default:
		q.entries = append(q.entries, e)
	}

	if q.softCap > 0 && len(q.entries) > q.softCap {
		return q.evictOldestNonPriority(e)
	}
	return nil
}

// evictOldestNonPriority drops the oldest non-priority entry other than the
// one just added. If everything left is priority the queue simply runs over
// the cap; it is a soft limit.
func (q *Queue) evictOldestNonPriority(justAdded *Entry) *Entry {
	victim := -1
	for i, entry := range q.entries {
		if entry.priority || entry == justAdded {
			continue
		}
		if victim == -1 || entry.AddedAt.Before(q.entries[victim].AddedAt) {
			victim = i
		}
	}
	if victim == -1 {
		return nil
	}
	evicted := q.entries[victim]
	q.entries = append(q.entries[:victim], q.entries[victim+1:]...)
	return evicted
}

// insertAfterHead puts the entry behind the current queue head. Used when an
// interrupting request has to push an already dequeued entry back without
// letting it jump the interrupter.
func (q *Queue) insertAfterHead(e *Entry) {
	e.priority = true
	if len(q.entries) == 0 {
		q.entries = append(q.entries, e)
		return
	}
	rest := append([]*Entry{e}, q.entries[1:]...)
	q.entries = append(q.entries[:1], rest...)
}

// DequeueNext removes and returns the head entry.
func (q *Queue) DequeueNext() (*Entry, bool) {
	if len(q.entries) == 0 {
		return nil, false
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e, true
}

// Shuffle randomly permutes the pending entries. The playing entry is not in
// the queue, so it stays put by construction.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.entries), func(i, j int) {
		q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	})
}

// Remove deletes the entry at the 1-based position.
func (q *Queue) Remove(position int) (*Entry, error) {
	if position < 1 || position > len(q.entries) {
		return nil, ErrOutOfRange
	}
	idx := position - 1
	removed := q.entries[idx]
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	return removed, nil
}

// Clear drops every pending entry.
func (q *Queue) Clear() {
	q.entries = nil
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Snapshot returns an ordered copy for display. Mutating the result does not
// touch the queue.
func (q *Queue) Snapshot() []Entry {
	out := make([]Entry, len(q.entries))
	for i, e := range q.entries {
		out[i] = *e
	}
	return out
}
