package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrDiscordTokenNotSet = errors.New("DISCORD_TOKEN is not set")

// Config holds everything the bot reads from the environment.
type Config struct {
	DiscordToken   string
	CatalogBaseURL string

	// Optional; lyrics fallback is disabled when empty.
	GeniusAccessToken string

	BotOwnerID string

	// Playback tuning.
	IdleTimeout        time.Duration
	FailureCeiling     int
	SongCacheTTL       time.Duration
	QueueSoftCap       int
	HistorySize        int
	CatalogHTTPTimeout time.Duration

	DatabasePath string

	LogLevel  string
	LogFormat string
}

// LoadConfig reads the .env file (if present) and the environment.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine in production; real env vars win either way.
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, ErrDiscordTokenNotSet
	}

	cfg := &Config{
		DiscordToken:       token,
		CatalogBaseURL:     getEnv("CATALOG_BASE_URL", "https://juicewrldapi.com"),
		GeniusAccessToken:  os.Getenv("GENIUS_ACCESS_TOKEN"),
		BotOwnerID:         os.Getenv("BOT_OWNER_ID"),
		IdleTimeout:        getDuration("IDLE_TIMEOUT", 30*time.Minute),
		FailureCeiling:     getInt("FAILURE_CEILING", 3),
		SongCacheTTL:       getDuration("SONG_CACHE_TTL", 5*time.Minute),
		QueueSoftCap:       getInt("QUEUE_SOFT_CAP", 200),
		HistorySize:        getInt("HISTORY_SIZE", 25),
		CatalogHTTPTimeout: getDuration("CATALOG_HTTP_TIMEOUT", 10*time.Second),
		DatabasePath:       getEnv("DATABASE_PATH", "wrldbot.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
