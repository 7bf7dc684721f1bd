// Package lyrics resolves song lyrics through an ordered chain of sources:
// catalog-embedded text first, then the Genius fallback. Lyrics are resolved
// lazily on request and a miss is never fatal to playback.
package lyrics

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/soracha/wrldbot/pkg/catalog"
)

// ErrUnavailable is returned when every source came up empty or failed.
var ErrUnavailable = errors.New("lyrics unavailable")

// Status tags the outcome of one source lookup.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusFailed
)

// Lookup is the tagged result of a single source.
type Lookup struct {
	Status Status
	Text   string
	Err    error
}

// Source is one provider in the chain.
type Source interface {
	Name() string
	Lookup(ctx context.Context, song *catalog.Song) Lookup
}

// Chain tries each source in order and stops at the first hit.
type Chain struct {
	sources []Source
	logger  *zap.Logger
}

// NewChain builds a resolver chain. Order matters; pass the cheapest source
// first.
func NewChain(logger *zap.Logger, sources ...Source) *Chain {
	return &Chain{
		sources: sources,
		logger:  logger.With(zap.String("component", "lyrics")),
	}
}

// Resolve returns the lyrics text and the name of the source that produced
// it. A failing source is logged and skipped; if nothing hits, the caller
// gets ErrUnavailable.
func (c *Chain) Resolve(ctx context.Context, song *catalog.Song) (string, string, error) {
	for _, src := range c.sources {
		res := src.Lookup(ctx, song)
		switch res.Status {
		case StatusFound:
			return res.Text, src.Name(), nil
		case StatusFailed:
			c.logger.Warn("lyrics source failed",
				zap.String("source", src.Name()),
				zap.String("title", song.Title),
				zap.Error(res.Err))
		}
	}
	return "", "", ErrUnavailable
}
