package bot

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	Easy   = "easy"
	Medium = "medium"
	Hard   = "hard"

	DefaultDifficulty = Medium
)

// Difficulty is a strength tier: how many plies to search and how much
// uniform noise to add to each root move's score.
type Difficulty struct {
	Name       string  `json:"name" yaml:"name"`
	Depth      int     `json:"depth" yaml:"depth"`
	Randomness float64 `json:"randomness" yaml:"randomness"`
}

// Note: the noise is in pawns. 0.3 is enough to shuffle moves that come out
// equal in material, never enough to give away a piece.
var Difficulties = map[string]Difficulty{
	Easy:   {Name: Easy, Depth: 1, Randomness: 0.3},
	Medium: {Name: Medium, Depth: 3, Randomness: 0.1},
	Hard:   {Name: Hard, Depth: 5, Randomness: 0.05},
}

// LookupDifficulty never fails: unknown names get the default tier.
func LookupDifficulty(name string) Difficulty {
	d, ok := Difficulties[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		if name != "" {
			log.Debug().Str("difficulty", name).Msg("unknown-difficulty-using-default")
		}
		return Difficulties[DefaultDifficulty]
	}
	return d
}

// DifficultyNames lists the tiers from weakest to strongest.
func DifficultyNames() []string {
	names := lo.Keys(Difficulties)
	sort.Slice(names, func(i, j int) bool {
		return Difficulties[names[i]].Depth < Difficulties[names[j]].Depth
	})
	return names
}
