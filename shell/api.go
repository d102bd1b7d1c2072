package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/alphabeta"
	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/evaluator"
	"github.com/domino14/caissa/game"
	"github.com/domino14/caissa/position"
)

var printer = message.NewPrinter(language.English)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func (c CmdOptions) StringArray(key string) []string {
	return c[key]
}

func msg(message string) *Response {
	return &Response{message: message}
}

func stateDisplay(pos *position.Position, st game.State) string {
	var sb strings.Builder
	sb.WriteString(pos.Draw())
	fmt.Fprintf(&sb, "\nFEN: %s\n", st.FEN)
	fmt.Fprintf(&sb, "To move: %s   Status: %s", st.Turn, st.Status)
	if st.Over() {
		fmt.Fprintf(&sb, " (%s)", st.Outcome)
	}
	if len(st.History) > 0 {
		sb.WriteString("\nMoves: ")
		for i, san := range st.History {
			if i%2 == 0 {
				fmt.Fprintf(&sb, "%d. ", i/2+1)
			}
			sb.WriteString(san + " ")
		}
	}
	return sb.String()
}

func (sc *ShellController) display(st game.State) *Response {
	return msg(stateDisplay(sc.game.Position(), st))
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	return sc.display(sc.game.Reset()), nil
}

func (sc *ShellController) setFEN(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: fen <fen string>")
	}
	st, err := sc.game.SetFEN(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	return sc.display(st), nil
}

func (sc *ShellController) move(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: move <san or uci move>")
	}
	st, err := sc.game.PlayUserMove(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return sc.display(st), nil
}

func (sc *ShellController) aiMove(cmd *shellcmd) (*Response, error) {
	difficulty := sc.difficulty
	if len(cmd.args) > 0 {
		difficulty = cmd.args[0]
	}
	st, san, err := sc.game.PlayAIMove(context.Background(), difficulty)
	if err != nil {
		return nil, err
	}
	r := sc.display(st)
	r.message = fmt.Sprintf("%s plays %s\n%s", aibot.LookupDifficulty(difficulty).Name, san, r.message)
	return r, nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	n := 1
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	st, err := sc.game.Takeback(n)
	if err != nil {
		return nil, err
	}
	return sc.display(st), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return sc.display(sc.game.State()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	pos := sc.game.Position()
	out := fmt.Sprintf("material evaluation (white's view): %.2f",
		evaluator.Material{}.Evaluate(pos))
	if cmd.options.Bool("mirror") {
		m, err := pos.Mirror()
		if err != nil {
			return nil, err
		}
		out += fmt.Sprintf("\nmirrored position: %.2f", evaluator.Material{}.Evaluate(m))
	}
	return msg(out), nil
}

// search runs a noiseless search of the current position and reports the
// best move, its value and how many nodes were visited.
func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	depth, err := cmd.options.IntDefault("depth", aibot.Difficulties[aibot.Medium].Depth)
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.config.GetInt(config.ConfigSearchThreads))
	if err != nil {
		return nil, err
	}
	solver := alphabeta.NewSolver(evaluator.Material{})
	solver.SetPruningDisabled(cmd.options.Bool("noprune"))
	ms := aibot.NewMoveSelector(solver, aibot.NewRand())
	ms.SetThreads(threads)
	ms.SetMaxDepth(sc.config.GetInt(config.ConfigMaxDepth))

	pos := sc.game.Position()
	ts := time.Now()
	sel, err := ms.BestMove(context.Background(), pos,
		aibot.Difficulty{Name: "search", Depth: depth, Randomness: 0})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(ts)
	return msg(printer.Sprintf("best %s (%s) value %.2f depth %d nodes %d in %v (%d nodes/s)",
		sel.SAN, sel.UCI, sel.Value, depth, sel.Nodes, elapsed.Round(time.Millisecond),
		int64(float64(sel.Nodes)/max(elapsed.Seconds(), 1e-9)))), nil
}

func (sc *ShellController) difficulties(cmd *shellcmd) (*Response, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-8s %-6s %s\n", "name", "depth", "randomness")
	for _, name := range aibot.DifficultyNames() {
		d := aibot.Difficulties[name]
		marker := ""
		if name == sc.difficulty {
			marker = " *"
		}
		fmt.Fprintf(&sb, "%-8s %-6d %.2f%s\n", d.Name, d.Depth, d.Randomness, marker)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) setDifficulty(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg("difficulty: " + sc.difficulty), nil
	}
	sc.difficulty = aibot.LookupDifficulty(cmd.args[0]).Name
	return msg("difficulty set to " + sc.difficulty), nil
}
