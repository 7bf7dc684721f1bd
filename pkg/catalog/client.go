package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Client is the HTTP client for the discography catalog API. All methods are
// single-attempt GETs with one retry on transient failure; they are safe for
// concurrent use from many guild sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a catalog client against the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(zap.String("component", "catalog")),
	}
}

// Lookup fetches a single song by catalog ID.
func (c *Client) Lookup(ctx context.Context, id int) (*Song, error) {
	var song Song
	if err := c.getJSON(ctx, fmt.Sprintf("/juicewrld/songs/%d/", id), nil, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// Search returns relevance-ranked songs matching the query.
func (c *Client) Search(ctx context.Context, query string) ([]Song, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("page_size", "20")

	var page struct {
		Results []Song `json:"results"`
	}
	if err := c.getJSON(ctx, "/juicewrld/songs/", params, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Random fetches a random playable song, avoiding the excluded IDs. The
// server picks the song; exclusion is best-effort on our side, bounded to a
// few attempts so a tiny catalog cannot loop us forever.
func (c *Client) Random(ctx context.Context, excluding map[int]bool) (*Song, error) {
	const maxAttempts = 4

	var last *Song
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var song Song
		if err := c.getJSON(ctx, "/juicewrld/radio/random/", nil, &song); err != nil {
			return nil, err
		}
		last = &song
		if !excluding[song.ID] {
			return &song, nil
		}
		c.logger.Debug("random song excluded, retrying",
			zap.Int("song_id", song.ID),
			zap.Int("attempt", attempt+1))
	}
	return last, nil
}

// SongOfTheDay fetches the current song of the day.
func (c *Client) SongOfTheDay(ctx context.Context) (*Song, error) {
	var song Song
	if err := c.getJSON(ctx, "/juicewrld/sotd/", nil, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// LeakTimeline returns the leak timeline, newest entries first.
func (c *Client) LeakTimeline(ctx context.Context) ([]TimelineEntry, error) {
	var page struct {
		Results []struct {
			Date string `json:"date"`
			Song Song   `json:"song"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/juicewrld/timeline/", nil, &page); err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(page.Results))
	for _, row := range page.Results {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			// Keep the entry; an unparseable date is not worth dropping a song over.
			date = time.Time{}
		}
		entries = append(entries, TimelineEntry{Date: date, Song: row.Song})
	}
	return entries, nil
}

// Eras lists all catalog eras.
func (c *Client) Eras(ctx context.Context) ([]Era, error) {
	var page struct {
		Results []Era `json:"results"`
	}
	if err := c.getJSON(ctx, "/juicewrld/eras/", nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// getJSON performs a GET with one retry on transient failure and decodes the
// body into out. 404 maps to ErrNotFound and is never retried.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	err := c.doGet(ctx, endpoint, params, out)
	if err == nil || err == ErrNotFound {
		return err
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	case <-time.After(500 * time.Millisecond):
	}

	c.logger.Warn("catalog request failed, retrying once",
		zap.String("endpoint", endpoint),
		zap.Error(err))
	return c.doGet(ctx, endpoint, params, out)
}

func (c *Client) doGet(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wrldbot/"+Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status "+strconv.Itoa(resp.StatusCode), ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return nil
}

// Version is reported in the User-Agent of every catalog request.
const Version = "1.2.0"
