package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/bot"
	"github.com/domino14/caissa/config"
)

func main() {
	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading-config")
	}
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ms, err := aibot.NewMoveSelectorFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("building-selector")
	}
	b := bot.NewBot(cfg, ms)
	if err := b.Start(ctx, cfg.GetString(config.ConfigBotSubject)); err != nil {
		log.Fatal().Err(err).Msg("starting-bot")
	}

	<-ctx.Done()
	log.Info().Msg("got quit signal...")
	if err := b.Close(); err != nil {
		log.Err(err).Msg("closing-bot")
	}
	log.Info().Msg("bot gracefully shut down")
}
