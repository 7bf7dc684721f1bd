package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/soracha/wrldbot/pkg/catalog"
)

const geniusBaseURL = "https://api.genius.com"

// Discord embed descriptions cap at 4096; leave headroom for framing.
const maxLyricsLength = 3900

// GeniusSource is the fallback provider: a text search against Genius by
// title plus artist, then scraping the lyrics off the top-ranked song page.
// Searching with the title alone collides across artists, so the artist name
// always goes into the query.
type GeniusSource struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewGeniusSource creates the fallback source. Returns nil when no access
// token is configured; the chain is then built without it and fallback is
// simply disabled.
func NewGeniusSource(accessToken string) *GeniusSource {
	if accessToken == "" {
		return nil
	}
	return &GeniusSource{
		accessToken: accessToken,
		baseURL:     geniusBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *GeniusSource) Name() string { return "genius" }

func (g *GeniusSource) Lookup(ctx context.Context, song *catalog.Song) Lookup {
	artist := song.Artist
	if artist == "" {
		artist = "Juice WRLD"
	}

	pageURL, err := g.searchSong(ctx, song.Title, artist)
	if err != nil {
		return Lookup{Status: StatusFailed, Err: err}
	}
	if pageURL == "" {
		return Lookup{Status: StatusNotFound}
	}

	text, err := g.scrapeLyricsPage(ctx, pageURL)
	if err != nil {
		return Lookup{Status: StatusFailed, Err: err}
	}
	if text == "" {
		return Lookup{Status: StatusNotFound}
	}
	return Lookup{Status: StatusFound, Text: text}
}

// searchSong queries the Genius search API with "title artist" and returns
// the URL of the top-ranked hit, or "" when there are no hits.
func (g *GeniusSource) searchSong(ctx context.Context, title, artist string) (string, error) {
	params := url.Values{}
	params.Set("q", title+" "+artist)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building genius search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	req.Header.Set("User-Agent", "wrldbot/"+catalog.Version)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("genius search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genius search returned status %d", resp.StatusCode)
	}

	var body struct {
		Response struct {
			Hits []struct {
				Result struct {
					URL string `json:"url"`
				} `json:"result"`
			} `json:"hits"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding genius search response: %w", err)
	}

	if len(body.Response.Hits) == 0 {
		return "", nil
	}
	// Trust the provider's own ranking; the first hit is the match.
	return body.Response.Hits[0].Result.URL, nil
}

// scrapeLyricsPage pulls the lyrics text off a Genius song page. The API
// itself does not serve lyrics, only the page does.
func (g *GeniusSource) scrapeLyricsPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building lyrics page request: %w", err)
	}
	req.Header.Set("User-Agent", "wrldbot/"+catalog.Version)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching lyrics page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing lyrics page: %w", err)
	}

	var builder strings.Builder
	doc.Find("div[data-lyrics-container='true']").Each(func(_ int, sel *goquery.Selection) {
		// <br> separates lines inside the container; goquery's Text()
		// would glue them together.
		html, err := sel.Html()
		if err != nil {
			return
		}
		html = strings.ReplaceAll(html, "<br>", "\n")
		html = strings.ReplaceAll(html, "<br/>", "\n")
		fragment, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return
		}
		builder.WriteString(fragment.Text())
		builder.WriteString("\n")
	})

	return cleanLyrics(builder.String()), nil
}

func cleanLyrics(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		cleaned = append(cleaned, line)
	}

	out := strings.TrimSpace(strings.Join(cleaned, "\n"))
	if len(out) > maxLyricsLength {
		out = out[:maxLyricsLength-3] + "..."
	}
	return out
}
