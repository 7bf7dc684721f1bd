package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zap.NewNop()), srv
}

func TestLookupDecodesSong(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/juicewrld/songs/42/", r.URL.Path)
		fmt.Fprint(w, `{"id": 42, "name": "Lucid Dreams", "stream_url": "https://cdn/42.mp3", "era": {"id": 3, "name": "Goodbye & Good Riddance"}}`)
	}))

	song, err := c.Lookup(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, song.ID)
	assert.Equal(t, "Lucid Dreams", song.Title)
	assert.Equal(t, "Goodbye & Good Riddance", song.Era.Name)
	assert.True(t, song.HasAudio())
}

func TestLookupMapsNotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.Lookup(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotFoundIsNeverRetried(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))

	_, err := c.Lookup(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTransientFailureRetriesOnce(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"id": 1, "name": "rescued"}`)
	}))

	song, err := c.Lookup(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "rescued", song.Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPersistentFailureIsUnavailable(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.Lookup(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "exactly one retry")
}

func TestSearchSendsQueryParams(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/juicewrld/songs/", r.URL.Path)
		assert.Equal(t, "lucid", r.URL.Query().Get("search"))
		fmt.Fprint(w, `{"results": [{"id": 42, "name": "Lucid Dreams"}, {"id": 43, "name": "Lucid Dreams (remix)"}]}`)
	}))

	results, err := c.Search(context.Background(), "lucid")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 42, results[0].ID)
}

func TestRandomAvoidsExcludedIDs(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			fmt.Fprint(w, `{"id": 10, "name": "repeat"}`)
			return
		}
		fmt.Fprint(w, `{"id": 11, "name": "fresh"}`)
	}))

	song, err := c.Random(context.Background(), map[int]bool{10: true})
	require.NoError(t, err)
	assert.Equal(t, 11, song.ID)
}

func TestRandomGivesUpOnTinyCatalog(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 10, "name": "only song"}`)
	}))

	// Exclusion is best-effort: a one-song catalog still yields a song.
	song, err := c.Random(context.Background(), map[int]bool{10: true})
	require.NoError(t, err)
	assert.Equal(t, 10, song.ID)
}

func TestErasAndTimeline(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/juicewrld/eras/":
			fmt.Fprint(w, `{"results": [{"id": 1, "name": "999", "time_frame": "2015-2016"}]}`)
		case "/juicewrld/timeline/":
			fmt.Fprint(w, `{"results": [{"date": "2024-03-01", "song": {"id": 5, "name": "leaked"}}, {"date": "not a date", "song": {"id": 6, "name": "kept anyway"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))

	eras, err := c.Eras(context.Background())
	require.NoError(t, err)
	require.Len(t, eras, 1)
	assert.Equal(t, "999", eras[0].Name)

	timeline, err := c.LeakTimeline(context.Background())
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, 2024, timeline[0].Date.Year())
	assert.True(t, timeline[1].Date.IsZero())
	assert.Equal(t, "kept anyway", timeline[1].Song.Title)
}

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		length string
		want   int
	}{
		{"3:45", 225},
		{"1:02:03", 3723},
		{"", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		s := &Song{Length: tt.length}
		assert.Equal(t, tt.want, s.DurationSeconds(), "length %q", tt.length)
	}
}
