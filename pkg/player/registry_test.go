package player

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soracha/wrldbot/pkg/catalog"
)

func newTestRegistry(idleTimeout time.Duration) *Registry {
	return NewRegistry(newFakeCatalog(), catalog.NewCache(time.Minute), &fakeNotifier{}, Config{}, idleTimeout, zap.NewNop())
}

func TestRegistryGetOrCreateIsAtomic(t *testing.T) {
	r := newTestRegistry(time.Hour)

	const goroutines = 32
	sessions := make([]*Session, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i], _ = r.GetOrCreate("guild-1")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, sessions[0], sessions[i], "all callers must share one session")
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistryCreatedFlag(t *testing.T) {
	r := newTestRegistry(time.Hour)

	_, created := r.GetOrCreate("guild-1")
	assert.True(t, created)
	_, created = r.GetOrCreate("guild-1")
	assert.False(t, created)
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := newTestRegistry(time.Hour)
	r.GetOrCreate("guild-1")

	r.Remove("guild-1")
	r.Remove("guild-1")
	r.Remove("never-existed")
	assert.Zero(t, r.Len())
}

func TestStoppedSessionRemovesItselfFromRegistry(t *testing.T) {
	r := newTestRegistry(time.Hour)
	s, _ := r.GetOrCreate("guild-1")

	s.Stop()
	require.Eventually(t, func() bool { return r.Len() == 0 },
		time.Second, 5*time.Millisecond)
}

func TestSweepReapsIdleSessions(t *testing.T) {
	r := newTestRegistry(10 * time.Millisecond)
	r.GetOrCreate("guild-1")
	r.GetOrCreate("guild-2")

	time.Sleep(20 * time.Millisecond)
	r.Sweep()

	require.Eventually(t, func() bool { return r.Len() == 0 },
		time.Second, 5*time.Millisecond)
}

func TestSweepSparesFreshSessions(t *testing.T) {
	r := newTestRegistry(time.Hour)
	r.GetOrCreate("guild-1")

	r.Sweep()
	assert.Equal(t, 1, r.Len())
}

func TestShutdownDrainsAllSessions(t *testing.T) {
	r := newTestRegistry(time.Hour)
	a, _ := r.GetOrCreate("guild-1")
	b, _ := r.GetOrCreate("guild-2")

	r.Shutdown()

	assert.Equal(t, StateStopped, a.State())
	assert.Equal(t, StateStopped, b.State())
	require.Eventually(t, func() bool { return r.Len() == 0 },
		time.Second, 5*time.Millisecond)
}
