package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/stats"
)

type tierMoves struct {
	moves    int
	captures int
	checks   int
}

// AnalyzeLogFile reads a move log written during autoplay and summarises
// game lengths and how often each tier captured or gave check.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	r := csv.NewReader(file)

	// Record looks like:
	// gameID,ply,side,difficulty,move,fen
	gameLengths := map[string]int{}
	tiers := map[string]*tierMoves{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "gameID" {
			continue
		}
		if len(record) != len(logHeader) {
			return "", fmt.Errorf("bad record %v", record)
		}
		ply, err := strconv.Atoi(record[1])
		if err != nil {
			return "", err
		}
		gameLengths[record[0]] = max(gameLengths[record[0]], ply)
		tm, ok := tiers[record[3]]
		if !ok {
			tm = &tierMoves{}
			tiers[record[3]] = tm
		}
		tm.moves++
		if strings.Contains(record[4], "x") {
			tm.captures++
		}
		if strings.ContainsAny(record[4], "+#") {
			tm.checks++
		}
	}

	lengths := &stats.Statistic{}
	for _, n := range gameLengths {
		lengths.Push(float64(n))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", len(gameLengths))
	fmt.Fprintf(&sb, "Game length: mean %.2f stdev %.2f min %d max %d\n",
		lengths.Mean(), lengths.Stdev(), int(lengths.Min()), int(lengths.Max()))
	names := lo.Keys(tiers)
	sort.Slice(names, func(i, j int) bool {
		di, dj := aibot.LookupDifficulty(names[i]), aibot.LookupDifficulty(names[j])
		if di.Depth != dj.Depth {
			return di.Depth < dj.Depth
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		tm := tiers[name]
		fmt.Fprintf(&sb, "%v: %d moves, %.2f%% captures, %.2f%% checks\n", name, tm.moves,
			100.0*float64(tm.captures)/float64(tm.moves),
			100.0*float64(tm.checks)/float64(tm.moves))
	}
	return sb.String(), nil
}
