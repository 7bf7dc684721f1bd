package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id int, title string) *Entry {
	return &Entry{SongID: id, Title: title, Provenance: ProvenanceUser, AddedAt: time.Now()}
}

func queueIDs(q *Queue) []int {
	snapshot := q.Snapshot()
	ids := make([]int, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.SongID
	}
	return ids
}

func TestQueueEnqueueModes(t *testing.T) {
	tests := []struct {
		name string
		mode EnqueueMode
		want []int
	}{
		{"append goes last", ModeAppend, []int{1, 2, 3, 99}},
		{"play-next lands at the front of pending", ModePlayNext, []int{99, 1, 2, 3}},
		{"play-now lands at the front of pending", ModePlayNow, []int{99, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue(0)
			for i := 1; i <= 3; i++ {
				q.Enqueue(entry(i, "song"), ModeAppend)
			}
			q.Enqueue(entry(99, "new"), tt.mode)
			assert.Equal(t, tt.want, queueIDs(q))
		})
	}
}

func TestMostRecentPlayNowDequeuesFirst(t *testing.T) {
	q := NewQueue(0)
	q.Enqueue(entry(1, "a"), ModeAppend)
	q.Enqueue(entry(2, "b"), ModePlayNow)
	q.Enqueue(entry(3, "c"), ModePlayNow)

	head, ok := q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, 3, head.SongID)
}

func TestQueuePlayNextIntoEmptyQueue(t *testing.T) {
	q := NewQueue(0)
	q.Enqueue(entry(1, "only"), ModePlayNext)
	assert.Equal(t, []int{1}, queueIDs(q))
}

func TestQueueSoftCapEvictsOldestNonPriority(t *testing.T) {
	q := NewQueue(3)
	oldest := entry(1, "oldest")
	oldest.AddedAt = time.Now().Add(-time.Hour)
	q.Enqueue(oldest, ModeAppend)
	q.Enqueue(entry(2, "mid"), ModeAppend)
	q.Enqueue(entry(3, "newer"), ModeAppend)

	evicted := q.Enqueue(entry(4, "overflow"), ModeAppend)
	require.NotNil(t, evicted)
	assert.Equal(t, 1, evicted.SongID)
	assert.Equal(t, []int{2, 3, 4}, queueIDs(q))
}

func TestQueueSoftCapSparesPriorityEntries(t *testing.T) {
	q := NewQueue(2)
	q.Enqueue(entry(1, "priority"), ModePlayNow)
	q.Enqueue(entry(2, "priority"), ModePlayNext)

	evicted := q.Enqueue(entry(3, "plain"), ModeAppend)
	// Nothing evictable besides the entry just added; the cap is soft.
	assert.Nil(t, evicted)
	assert.Equal(t, 3, q.Len())
}

func TestQueueRemoveIsOneBased(t *testing.T) {
	q := NewQueue(0)
	for i := 1; i <= 3; i++ {
		q.Enqueue(entry(i, "song"), ModeAppend)
	}

	removed, err := q.Remove(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed.SongID)
	assert.Equal(t, []int{1, 3}, queueIDs(q))

	_, err = q.Remove(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = q.Remove(3)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestQueueShuffleKeepsContents(t *testing.T) {
	q := NewQueue(0)
	for i := 1; i <= 20; i++ {
		q.Enqueue(entry(i, "song"), ModeAppend)
	}
	q.Shuffle()

	assert.Equal(t, 20, q.Len())
	seen := make(map[int]bool)
	for _, id := range queueIDs(q) {
		seen[id] = true
	}
	assert.Len(t, seen, 20)
}

func TestQueueSnapshotIsDetached(t *testing.T) {
	q := NewQueue(0)
	q.Enqueue(entry(1, "song"), ModeAppend)

	snapshot := q.Snapshot()
	snapshot[0].Title = "mutated"

	fresh := q.Snapshot()
	assert.Equal(t, "song", fresh[0].Title)
}

func TestQueueDequeueNext(t *testing.T) {
	q := NewQueue(0)
	_, ok := q.DequeueNext()
	assert.False(t, ok)

	q.Enqueue(entry(1, "song"), ModeAppend)
	q.Enqueue(entry(2, "song"), ModeAppend)

	head, ok := q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, 1, head.SongID)
	assert.Equal(t, 1, q.Len())
}
