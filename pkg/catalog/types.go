package catalog

import (
	"strconv"
	"strings"
	"time"
)

// Era groups songs by recording period.
type Era struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TimeFrame   string `json:"time_frame"`
}

// Song is a fully resolved catalog entry. Immutable once returned by the
// client; queue entries reference songs by ID and never mutate them.
type Song struct {
	ID       int    `json:"id"`
	Title    string `json:"name"`
	Artist   string `json:"credited_artists"`
	Length   string `json:"length"` // "3:45" or "1:02:03", empty if unknown
	Category string `json:"category"`
	LeakType string `json:"leak_type"`
	LeakDate string `json:"date_leaked"`
	Era      Era    `json:"era"`
	AudioURL string `json:"stream_url"`
	Lyrics   string `json:"lyrics"`
	ImageURL string `json:"image_url"`
}

// HasAudio reports whether the catalog gave us something playable.
func (s *Song) HasAudio() bool {
	return s != nil && s.AudioURL != ""
}

// HasLyrics reports whether the catalog entry carries embedded lyrics.
func (s *Song) HasLyrics() bool {
	return s != nil && strings.TrimSpace(s.Lyrics) != ""
}

// DurationSeconds parses the Length field. Returns 0 when unknown.
func (s *Song) DurationSeconds() int {
	parts := strings.Split(strings.TrimSpace(s.Length), ":")
	switch len(parts) {
	case 2:
		m, err1 := strconv.Atoi(parts[0])
		sec, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0
		}
		return m*60 + sec
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		sec, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0
		}
		return h*3600 + m*60 + sec
	default:
		return 0
	}
}

// TimelineEntry is one row of the leak timeline, newest first.
type TimelineEntry struct {
	Date time.Time `json:"date"`
	Song Song      `json:"song"`
}
