package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/shell"
)

var (
	GitVersion string
)

//go:embed caissa.txt
var caissabanner string

func consoleLogger(debug bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("%-5s", i))
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func startCPUProfile(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating cpu profile")
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "starting cpu profile")
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating memory profile")
	}
	defer f.Close()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	log.Info().Uint64("heap-alloc", ms.HeapAlloc).Uint32("gcs", ms.NumGC).Msg("memory-stats")
	return errors.Wrap(pprof.WriteHeapProfile(f), "writing memory profile")
}

func main() {
	fmt.Println(caissabanner)
	fmt.Println(GitVersion)

	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Logger = consoleLogger(cfg.GetBool(config.ConfigDebug))
	log.Debug().Msg("debug-logging-on")
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if p := cfg.GetString(config.ConfigCPUProfile); p != "" {
		stop, err := startCPUProfile(p)
		if err != nil {
			log.Fatal().Err(err).Msg("cpu-profile")
		}
		defer stop()
	}

	// The readline loop and one-shot commands both finish by sending on sig.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	sc := shell.NewShellController(cfg)
	if line := strings.TrimSpace(strings.Join(cfg.Args(), " ")); line != "" {
		sc.Execute(sig, line)
		select {
		case sig <- syscall.SIGINT:
		default:
		}
	} else {
		go sc.Loop(sig)
	}
	<-sig
	log.Debug().Msg("got-quit-signal")

	if p := cfg.GetString(config.ConfigMemProfile); p != "" {
		if err := writeMemProfile(p); err != nil {
			log.Error().Err(err).Msg("mem-profile")
		}
	}
	sc.Cleanup()
}
