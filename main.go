package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/api"
	"github.com/domino14/caissa/bot"
	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/game"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
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

	if p := cfg.GetString(config.ConfigCPUProfile); p != "" {
		f, err := os.Create(p)
		if err != nil {
			log.Fatal().Err(err).Msg("")
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	provider, cleanup, err := bot.NewProvider(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("creating-move-provider")
	}
	defer cleanup()

	g := game.New(provider)
	hub := api.NewHub()
	hubDone := make(chan struct{})
	go hub.Run(hubDone)
	g.OnChange(hub.Broadcast)

	srv := &http.Server{
		Addr:    cfg.GetString(config.ConfigHTTPAddr),
		Handler: api.NewRouter(cfg, g, hub),
	}

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)

		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Error().Msgf("HTTP server Shutdown: %v", err)
		}
		cancel()
		close(hubDone)
		close(idleConnsClosed)
	}()

	log.Info().Str("addr", srv.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shutting down")
}
