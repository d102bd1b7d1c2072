package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	aibot "github.com/domino14/caissa/ai/bot"
)

// ShellCompleter completes command names, options and difficulty names.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"ai":         {Args: aibot.DifficultyNames()},
	"difficulty": {Args: aibot.DifficultyNames()},
	"search":     {Options: []string{"-depth", "-noprune", "-threads"}},
	"autoplay": {
		Options: []string{"-games", "-threads", "-maxplies", "-logfile", "-seedfile"},
		Args:    append([]string{"stop", "analyze"}, aibot.DifficultyNames()...),
	},
	"eval": {Options: []string{"-mirror"}},
	"help": {Args: helpTopics()},
}

var commandNames = []string{
	"help", "new", "fen", "move", "ai", "undo", "show", "eval", "search",
	"difficulties", "difficulty", "autoplay", "script", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	// shellquote handles quoted strings; fall back to plain splitting on an
	// unterminated quote.
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "noprune":
				completions = boolValues
			default:
				// The option takes a free-form value.
				return nil, 0
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
