package stats

import (
	"fmt"
	"io"
	"sync"

	"github.com/aybabtme/uniplot/histogram"
)

// Result of a single game from one side's point of view.
type Result int

const (
	Loss Result = iota
	Draw
	Win
)

func (r Result) Score() float64 {
	switch r {
	case Win:
		return 1
	case Draw:
		return 0.5
	}
	return 0
}

// Outcomes tallies match results for one side, along with game lengths. It
// is safe for concurrent use.
type Outcomes struct {
	mu      sync.Mutex
	wins    int
	draws   int
	losses  int
	score   Statistic
	lengths []float64
	plies   Statistic
}

func (o *Outcomes) Add(r Result, plies int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch r {
	case Win:
		o.wins++
	case Draw:
		o.draws++
	default:
		o.losses++
	}
	o.score.Push(r.Score())
	o.lengths = append(o.lengths, float64(plies))
	o.plies.Push(float64(plies))
}

// Summary is a snapshot of Outcomes.
type Summary struct {
	Games      int     `yaml:"games"`
	Wins       int     `yaml:"wins"`
	Draws      int     `yaml:"draws"`
	Losses     int     `yaml:"losses"`
	Score      float64 `yaml:"score"`
	ScoreLow   float64 `yaml:"score_ci_low"`
	ScoreHigh  float64 `yaml:"score_ci_high"`
	MeanPlies  float64 `yaml:"mean_plies"`
	StdevPlies float64 `yaml:"stdev_plies"`
	MinPlies   int     `yaml:"min_plies"`
	MaxPlies   int     `yaml:"max_plies"`
}

// Summary computes totals and a pct (0-100) confidence interval for the
// score fraction.
func (o *Outcomes) Summary(pct float64) Summary {
	o.mu.Lock()
	defer o.mu.Unlock()
	lo, hi := o.score.ConfidenceInterval(pct)
	return Summary{
		Games:      o.score.Iterations(),
		Wins:       o.wins,
		Draws:      o.draws,
		Losses:     o.losses,
		Score:      o.score.Mean(),
		ScoreLow:   lo,
		ScoreHigh:  hi,
		MeanPlies:  o.plies.Mean(),
		StdevPlies: o.plies.Stdev(),
		MinPlies:   int(o.plies.Min()),
		MaxPlies:   int(o.plies.Max()),
	}
}

// PrintLengthHistogram writes a histogram of game lengths in plies.
func (o *Outcomes) PrintLengthHistogram(w io.Writer, bins, width int) error {
	o.mu.Lock()
	lengths := append([]float64(nil), o.lengths...)
	o.mu.Unlock()
	if len(lengths) == 0 {
		_, err := fmt.Fprintln(w, "no games")
		return err
	}
	hist := histogram.Hist(bins, lengths)
	return histogram.Fprint(w, hist, histogram.Linear(width))
}
