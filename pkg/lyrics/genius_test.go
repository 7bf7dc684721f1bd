package lyrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soracha/wrldbot/pkg/catalog"
)

func newGeniusServer(t *testing.T) (*GeniusSource, *httptest.Server) {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			if r.URL.Query().Get("q") == "Empty Nothing Juice WRLD" {
				fmt.Fprint(w, `{"response": {"hits": []}}`)
				return
			}
			fmt.Fprintf(w, `{"response": {"hits": [{"result": {"url": %q}}]}}`, srv.URL+"/songs/lucid-dreams")
		case "/songs/lucid-dreams":
			fmt.Fprint(w, `<html><body>
				<div data-lyrics-container="true">I still see your shadows in my room<br>Can't take back the love that I gave you</div>
			</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	g := NewGeniusSource("test-token")
	g.baseURL = srv.URL
	return g, srv
}

func TestGeniusLookupScrapesTopHit(t *testing.T) {
	g, _ := newGeniusServer(t)

	res := g.Lookup(context.Background(), &catalog.Song{Title: "Lucid Dreams", Artist: "Juice WRLD"})
	require.Equal(t, StatusFound, res.Status)
	assert.Contains(t, res.Text, "I still see your shadows in my room")
	assert.Contains(t, res.Text, "Can't take back the love that I gave you")
}

func TestGeniusQueryIncludesTitleAndArtist(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			query = r.URL.Query().Get("q")
		}
		fmt.Fprint(w, `{"response": {"hits": []}}`)
	}))
	t.Cleanup(srv.Close)

	g := NewGeniusSource("test-token")
	g.baseURL = srv.URL

	g.Lookup(context.Background(), &catalog.Song{Title: "Bandit", Artist: "Juice WRLD, NBA YoungBoy"})
	assert.Equal(t, "Bandit Juice WRLD, NBA YoungBoy", query)

	// A song with no credited artist still searches with the house artist.
	g.Lookup(context.Background(), &catalog.Song{Title: "Untitled"})
	assert.Equal(t, "Untitled Juice WRLD", query)
}

func TestGeniusNoHitsIsNotFound(t *testing.T) {
	g, _ := newGeniusServer(t)

	res := g.Lookup(context.Background(), &catalog.Song{Title: "Empty Nothing", Artist: "Juice WRLD"})
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestGeniusServerErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	g := NewGeniusSource("test-token")
	g.baseURL = srv.URL

	res := g.Lookup(context.Background(), &catalog.Song{Title: "Anything"})
	assert.Equal(t, StatusFailed, res.Status)
	assert.Error(t, res.Err)
}
