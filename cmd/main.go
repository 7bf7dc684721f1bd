package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/soracha/wrldbot/internal/commands"
	"github.com/soracha/wrldbot/internal/config"
	"github.com/soracha/wrldbot/internal/handlers"
	"github.com/soracha/wrldbot/internal/presence"
	"github.com/soracha/wrldbot/internal/sotd"
	"github.com/soracha/wrldbot/pkg/catalog"
	"github.com/soracha/wrldbot/pkg/logging"
	"github.com/soracha/wrldbot/pkg/lyrics"
	"github.com/soracha/wrldbot/pkg/player"
	"github.com/soracha/wrldbot/pkg/store"
)

const (
	sweepSpec = "@every 1m"
	sotdSpec  = "0 16 * * *"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer db.Close()

	cat := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogHTTPTimeout, logger)
	cache := catalog.NewCache(cfg.SongCacheTTL)

	sources := []lyrics.Source{lyrics.EmbeddedSource{}}
	if genius := lyrics.NewGeniusSource(cfg.GeniusAccessToken); genius != nil {
		sources = append(sources, genius)
	} else {
		logger.Info("genius access token not set, lyrics fallback disabled")
	}
	chain := lyrics.NewChain(logger, sources...)

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		logger.Fatal("failed to create discord session", zap.Error(err))
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent

	presenceManager := presence.NewManager(dg, logger)

	announcer := commands.NewAnnouncer(dg, db, presenceManager, logger)
	// Resolution spans a catalog call plus its single retry; give it headroom
	// past the per-request timeout.
	registry := player.NewRegistry(cat, cache, announcer, player.Config{
		FailureCeiling: cfg.FailureCeiling,
		QueueSoftCap:   cfg.QueueSoftCap,
		HistorySize:    cfg.HistorySize,
		ResolveTimeout: 2*cfg.CatalogHTTPTimeout + time.Second,
	}, cfg.IdleTimeout, logger)

	cmds := commands.New(registry, cat, chain, db, announcer, logger)
	dg.AddHandler(handlers.NewMessageHandler(cmds))
	dg.AddHandler(handlers.NewVoiceStateHandler(registry))

	if err := dg.Open(); err != nil {
		logger.Fatal("failed to open discord session", zap.Error(err))
	}

	presenceManager.StartRotation()

	if err := registry.StartSweeper(sweepSpec); err != nil {
		logger.Fatal("failed to start idle sweeper", zap.Error(err))
	}

	daily := sotd.NewAnnouncer(dg, cat, db, logger)
	if err := daily.Start(sotdSpec); err != nil {
		logger.Fatal("failed to start song of the day announcer", zap.Error(err))
	}

	logger.Info("bot is running, press ctrl-c to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("shutting down")
	daily.Stop()
	presenceManager.StopRotation()
	registry.Shutdown()
	dg.Close()
}
