package lyrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soracha/wrldbot/pkg/catalog"
)

type stubSource struct {
	name   string
	result Lookup
	calls  int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(context.Context, *catalog.Song) Lookup {
	s.calls++
	return s.result
}

func TestChainStopsAtFirstHit(t *testing.T) {
	first := &stubSource{name: "first", result: Lookup{Status: StatusFound, Text: "la la la"}}
	second := &stubSource{name: "second", result: Lookup{Status: StatusFound, Text: "never seen"}}
	chain := NewChain(zap.NewNop(), first, second)

	text, source, err := chain.Resolve(context.Background(), &catalog.Song{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "la la la", text)
	assert.Equal(t, "first", source)
	assert.Zero(t, second.calls)
}

func TestChainSkipsMissesAndFailures(t *testing.T) {
	miss := &stubSource{name: "miss", result: Lookup{Status: StatusNotFound}}
	broken := &stubSource{name: "broken", result: Lookup{Status: StatusFailed, Err: errors.New("boom")}}
	hit := &stubSource{name: "hit", result: Lookup{Status: StatusFound, Text: "found it"}}
	chain := NewChain(zap.NewNop(), miss, broken, hit)

	text, source, err := chain.Resolve(context.Background(), &catalog.Song{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "found it", text)
	assert.Equal(t, "hit", source)
	assert.Equal(t, 1, miss.calls)
	assert.Equal(t, 1, broken.calls)
}

func TestChainExhaustedIsUnavailable(t *testing.T) {
	miss := &stubSource{name: "miss", result: Lookup{Status: StatusNotFound}}
	chain := NewChain(zap.NewNop(), miss)

	_, _, err := chain.Resolve(context.Background(), &catalog.Song{Title: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEmbeddedSourceServesCatalogLyrics(t *testing.T) {
	src := EmbeddedSource{}

	res := src.Lookup(context.Background(), &catalog.Song{Lyrics: "  some lines\n"})
	assert.Equal(t, StatusFound, res.Status)
	assert.Equal(t, "some lines", res.Text)

	res = src.Lookup(context.Background(), &catalog.Song{})
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestGeniusSourceDisabledWithoutToken(t *testing.T) {
	assert.Nil(t, NewGeniusSource(""))
	assert.NotNil(t, NewGeniusSource("token"))
}

func TestCleanLyricsCollapsesBlankRuns(t *testing.T) {
	in := "line one\n\n\n\nline two\n"
	assert.Equal(t, "line one\n\nline two", cleanLyrics(in))
}
