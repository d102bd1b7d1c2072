package shell

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/automatic"
	"github.com/domino14/caissa/config"
)

// autoplay starts a match between two tiers in the background.
//
//	autoplay [tier1] [tier2] -games n -threads n -maxplies n -logfile f -seedfile f
//	autoplay stop
//	autoplay analyze <logfile>
func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 {
		switch cmd.args[0] {
		case "stop":
			if !sc.stopAutoplay() {
				return nil, errors.New("no autoplay is running")
			}
			return msg("stopping autoplay"), nil
		case "analyze":
			if len(cmd.args) != 2 {
				return nil, errors.New("usage: autoplay analyze <logfile>")
			}
			out, err := automatic.AnalyzeLogFile(cmd.args[1])
			if err != nil {
				return nil, err
			}
			return msg(strings.TrimRight(out, "\n")), nil
		}
	}

	mc, err := sc.matchConfig(cmd)
	if err != nil {
		return nil, err
	}

	sc.autoplayMu.Lock()
	defer sc.autoplayMu.Unlock()
	if sc.autoplayCancel != nil {
		return nil, automatic.ErrAlreadyPlaying
	}
	ctx, cancel := context.WithCancel(context.Background())
	err = automatic.StartMatch(ctx, mc, func(mr *automatic.MatchResult, err error) {
		sc.autoplayMu.Lock()
		sc.autoplayCancel = nil
		sc.autoplayMu.Unlock()
		cancel()
		if err != nil {
			log.Err(err).Msg("autoplay-failed")
			sc.showError(err)
			return
		}
		var sb strings.Builder
		if err := mr.Report(&sb); err != nil {
			sc.showError(err)
			return
		}
		sc.showMessage(sb.String())
	})
	if err != nil {
		cancel()
		return nil, err
	}
	sc.autoplayCancel = cancel
	return msg("autoplay started: " + mc.Player1 + " vs " + mc.Player2), nil
}

func (sc *ShellController) matchConfig(cmd *shellcmd) (automatic.MatchConfig, error) {
	mc := automatic.MatchConfig{Player1: aibot.Easy, Player2: aibot.Medium}
	if len(cmd.args) > 0 {
		mc.Player1 = aibot.LookupDifficulty(cmd.args[0]).Name
	}
	if len(cmd.args) > 1 {
		mc.Player2 = aibot.LookupDifficulty(cmd.args[1]).Name
	}
	var err error
	if mc.NumGames, err = cmd.options.IntDefault("games", 10); err != nil {
		return mc, err
	}
	if mc.Threads, err = cmd.options.IntDefault("threads",
		sc.config.GetInt(config.ConfigSearchThreads)); err != nil {
		return mc, err
	}
	if mc.MaxPlies, err = cmd.options.IntDefault("maxplies", automatic.DefaultMaxPlies); err != nil {
		return mc, err
	}
	mc.LogFile = cmd.options.String("logfile")
	if seedfile := cmd.options.String("seedfile"); seedfile != "" {
		if mc.Seeds, err = automatic.LoadSeeds(seedfile); err != nil {
			return mc, err
		}
	}
	return mc, nil
}

// stopAutoplay cancels a running match. It reports whether one was running.
func (sc *ShellController) stopAutoplay() bool {
	sc.autoplayMu.Lock()
	defer sc.autoplayMu.Unlock()
	if sc.autoplayCancel == nil {
		return false
	}
	sc.autoplayCancel()
	sc.autoplayCancel = nil
	return true
}
