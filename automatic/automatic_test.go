package automatic

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/game"
	"github.com/domino14/caissa/stats"
)

func TestPlayGameIsReproducible(t *testing.T) {
	is := is.New(t)
	seed := aibot.SeedFromString("repro")
	a, err := NewGameRunner(nil, "easy", "easy", seed, 24).PlayGame(context.Background(), "a")
	is.NoErr(err)
	b, err := NewGameRunner(nil, "easy", "easy", seed, 24).PlayGame(context.Background(), "b")
	is.NoErr(err)
	is.Equal(a.FinalFEN, b.FinalFEN)
	is.Equal(a.Plies, b.Plies)
	is.True(a.Plies <= 24)
	if a.Status == StatusPlyLimit {
		is.Equal(a.Plies, 24)
		is.Equal(a.Outcome, "1/2-1/2")
	}
}

func TestPlayGameLogsMoves(t *testing.T) {
	is := is.New(t)
	logchan := make(chan []string, 100)
	r := NewGameRunner(logchan, "easy", "medium", aibot.SeedFromString("log"), 6)
	res, err := r.PlayGame(context.Background(), "g1")
	is.NoErr(err)
	close(logchan)

	var recs [][]string
	for rec := range logchan {
		recs = append(recs, rec)
	}
	is.Equal(len(recs), res.Plies)
	is.Equal(recs[0][0], "g1")
	is.Equal(recs[0][1], "1")
	is.Equal(recs[0][2], "white")
	is.Equal(recs[0][3], "easy")
	is.Equal(recs[1][2], "black")
	is.Equal(recs[1][3], "medium")
	is.Equal(recs[len(recs)-1][5], res.FinalFEN)
}

func TestPlayGameCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGameRunner(nil, "easy", "easy", aibot.SeedFromString("x"), 10).PlayGame(ctx, "c")
	assert.Error(t, err)
}

func TestResultFor(t *testing.T) {
	cases := []struct {
		outcome string
		white   bool
		want    stats.Result
	}{
		{"1-0", true, stats.Win},
		{"1-0", false, stats.Loss},
		{"0-1", true, stats.Loss},
		{"0-1", false, stats.Win},
		{"1/2-1/2", true, stats.Draw},
		{"1/2-1/2", false, stats.Draw},
	}
	for _, tc := range cases {
		gr := GameResult{Outcome: tc.outcome, Status: game.StatusCheckmate}
		assert.Equal(t, tc.want, gr.ResultFor(tc.white), tc.outcome)
	}
}

func TestPlayMatch(t *testing.T) {
	is := is.New(t)
	logfile := filepath.Join(t.TempDir(), "moves.csv")
	seeds, err := GenerateSeeds(4)
	is.NoErr(err)
	mc := MatchConfig{
		Player1: "easy", Player2: "easy",
		NumGames: 4, Threads: 2, MaxPlies: 16,
		Seeds: seeds, LogFile: logfile,
	}
	mr, err := PlayMatch(context.Background(), mc)
	is.NoErr(err)
	is.Equal(mr.Summary.Games, 4)
	is.Equal(mr.Summary.Wins+mr.Summary.Draws+mr.Summary.Losses, 4)
	is.Equal(CVCCounter.Value(), int64(4))
	is.Equal(IsPlaying.Value(), int64(0))

	totalPlies := 0
	for i, g := range mr.Games {
		totalPlies += g.Plies
		if i%2 == 0 {
			is.Equal(g.White, "easy")
		}
	}

	data, err := os.ReadFile(logfile)
	is.NoErr(err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	is.Equal(lines[0], "gameID,ply,side,difficulty,move,fen")
	is.Equal(len(lines), totalPlies+1)

	analysis, err := AnalyzeLogFile(logfile)
	is.NoErr(err)
	is.True(strings.Contains(analysis, "Games played: 4"))
	is.True(strings.Contains(analysis, "easy: "))

	var buf bytes.Buffer
	is.NoErr(mr.Report(&buf))
	is.True(strings.Contains(buf.String(), "player1: easy"))
	is.True(strings.Contains(buf.String(), "game length"))

	// Same seeds, same games.
	mc.LogFile = ""
	mc.Threads = 1
	again, err := PlayMatch(context.Background(), mc)
	is.NoErr(err)
	for i := range mr.Games {
		is.Equal(mr.Games[i].FinalFEN, again.Games[i].FinalFEN)
	}
}

func TestPlayMatchErrors(t *testing.T) {
	is := is.New(t)
	_, err := PlayMatch(context.Background(), MatchConfig{Player1: "easy", Player2: "hard"})
	is.True(err != nil)

	playing.Store(true)
	_, err = PlayMatch(context.Background(), MatchConfig{Player1: "easy", Player2: "easy", NumGames: 1})
	is.Equal(err, ErrAlreadyPlaying)
	is.Equal(StartMatch(context.Background(), MatchConfig{NumGames: 1}, nil), ErrAlreadyPlaying)
	playing.Store(false)
}

func TestStartMatch(t *testing.T) {
	is := is.New(t)
	done := make(chan *MatchResult)
	err := StartMatch(context.Background(), MatchConfig{
		Player1: "easy", Player2: "easy", NumGames: 2, MaxPlies: 4,
	}, func(mr *MatchResult, err error) {
		if err != nil {
			t.Error(err)
		}
		done <- mr
	})
	is.NoErr(err)
	mr := <-done
	is.Equal(mr.Summary.Games, 2)
}

func TestSeedsRoundTrip(t *testing.T) {
	is := is.New(t)
	seeds, err := GenerateSeeds(3)
	is.NoErr(err)
	is.True(seeds[0] != seeds[1])

	path := filepath.Join(t.TempDir(), "seeds.txt")
	is.NoErr(SaveSeeds(seeds, path))
	loaded, err := LoadSeeds(path)
	is.NoErr(err)
	is.Equal(loaded, seeds)

	is.NoErr(os.WriteFile(path, []byte("# c\n\nAAAA\n"), 0o644))
	_, err = LoadSeeds(path)
	is.True(err != nil)
}
