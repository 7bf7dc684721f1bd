package lyrics

import (
	"context"
	"strings"

	"github.com/soracha/wrldbot/pkg/catalog"
)

// EmbeddedSource serves lyrics that came with the catalog entry itself.
// Free, so it always goes first in the chain.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "catalog" }

func (EmbeddedSource) Lookup(_ context.Context, song *catalog.Song) Lookup {
	if !song.HasLyrics() {
		return Lookup{Status: StatusNotFound}
	}
	return Lookup{Status: StatusFound, Text: strings.TrimSpace(song.Lyrics)}
}
