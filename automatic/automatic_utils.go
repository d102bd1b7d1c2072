package automatic

// Tier-versus-tier matches. Games are played in parallel, each from its own
// seed, and every move can be logged to a CSV file.

import (
	"context"
	"encoding/csv"
	"errors"
	"expvar"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/caissa/stats"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

var playing atomic.Bool

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var logHeader = []string{"gameID", "ply", "side", "difficulty", "move", "fen"}

// MatchConfig describes a match. Player1 has White in even-numbered games
// and Black in odd-numbered ones.
type MatchConfig struct {
	Player1  string
	Player2  string
	NumGames int
	Threads  int
	MaxPlies int
	// Seeds, one per game. Missing seeds are generated.
	Seeds [][32]byte
	// LogFile receives a CSV record per move when set.
	LogFile string
}

type MatchResult struct {
	Player1  string         `yaml:"player1"`
	Player2  string         `yaml:"player2"`
	Summary  stats.Summary  `yaml:"player1_results"`
	Statuses map[string]int `yaml:"endings"`
	Games    []GameResult   `yaml:"-"`
	outcomes *stats.Outcomes
}

// PlayMatch plays the whole match and blocks until it is done or ctx is
// cancelled.
func PlayMatch(ctx context.Context, mc MatchConfig) (*MatchResult, error) {
	if mc.NumGames <= 0 {
		return nil, errors.New("need at least one game")
	}
	if !playing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPlaying
	}
	defer playing.Store(false)
	if mc.Threads <= 0 {
		mc.Threads = 1
	}
	seeds := mc.Seeds
	if len(seeds) < mc.NumGames {
		more, err := GenerateSeeds(mc.NumGames - len(seeds))
		if err != nil {
			return nil, err
		}
		seeds = append(append([][32]byte(nil), seeds...), more...)
	}

	var logChan chan []string
	loggerDone := make(chan error, 1)
	if mc.LogFile != "" {
		logfile, err := os.Create(mc.LogFile)
		if err != nil {
			return nil, err
		}
		logChan = make(chan []string, 100)
		go func() {
			loggerDone <- writeLog(logfile, logChan)
			log.Info().Msg("Exiting move logger goroutine!")
		}()
	} else {
		loggerDone <- nil
	}

	log.Info().Msgf("Starting %v games, %v threads", mc.NumGames, mc.Threads)
	CVCCounter.Set(0)
	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)

	results := make([]GameResult, mc.NumGames)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mc.Threads)
	for i := 0; i < mc.NumGames; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			white, black := mc.Player1, mc.Player2
			if i%2 == 1 {
				white, black = black, white
			}
			r := NewGameRunner(logChan, white, black, seeds[i], mc.MaxPlies)
			res, err := r.PlayGame(gctx, gameID(i))
			if err != nil {
				return err
			}
			results[i] = res
			CVCCounter.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if logChan != nil {
		close(logChan)
	}
	if lerr := <-loggerDone; lerr != nil && err == nil {
		err = lerr
	}
	if err != nil {
		return nil, err
	}
	log.Info().Msg("All games finished.")
	return newMatchResult(mc, results), nil
}

func newMatchResult(mc MatchConfig, results []GameResult) *MatchResult {
	mr := &MatchResult{
		Player1:  mc.Player1,
		Player2:  mc.Player2,
		Statuses: map[string]int{},
		Games:    results,
		outcomes: &stats.Outcomes{},
	}
	for i, res := range results {
		mr.outcomes.Add(res.ResultFor(i%2 == 0), res.Plies)
		mr.Statuses[string(res.Status)]++
	}
	mr.Summary = mr.outcomes.Summary(95)
	return mr
}

func writeLog(f *os.File, logChan chan []string) error {
	w := csv.NewWriter(f)
	var werr error
	if err := w.Write(logHeader); err != nil {
		werr = err
	}
	for rec := range logChan {
		if werr != nil {
			// Keep draining so the games don't block.
			continue
		}
		werr = w.Write(rec)
	}
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	if err := f.Close(); err != nil && werr == nil {
		werr = err
	}
	return werr
}

// Report writes the summary as YAML followed by a histogram of game lengths.
func (mr *MatchResult) Report(w io.Writer) error {
	out, err := yaml.Marshal(mr)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\ngame length (plies):"); err != nil {
		return err
	}
	return mr.outcomes.PrintLengthHistogram(w, 10, 40)
}

// StartMatch plays a match in the background. done is called with the
// result once it finishes.
func StartMatch(ctx context.Context, mc MatchConfig, done func(*MatchResult, error)) error {
	if playing.Load() {
		return ErrAlreadyPlaying
	}
	go func() {
		mr, err := PlayMatch(ctx, mc)
		if done != nil {
			done(mr, err)
		}
	}()
	return nil
}
