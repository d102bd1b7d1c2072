// Package shell is an interactive console for playing against the engine,
// inspecting searches and running autoplay matches.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	aibot "github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/bot"
	"github.com/domino14/caissa/config"
	"github.com/domino14/caissa/game"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type ShellController struct {
	l *readline.Instance
	// out is used when there is no readline instance.
	out io.Writer

	config *config.Config

	game       *game.Game
	cleanup    func()
	difficulty string

	autoplayMu     sync.Mutex
	autoplayCancel context.CancelFunc
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController builds a shell whose engine moves come from the
// configured AI backend.
func NewShellController(cfg *config.Config) *ShellController {
	provider, cleanup, err := bot.NewProvider(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("creating-move-provider")
	}
	sc := newShellController(cfg, provider, os.Stderr)
	sc.cleanup = cleanup

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mcaissa>\033[0m ",
		HistoryFile:     "/tmp/caissa_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func newShellController(cfg *config.Config, provider aibot.MoveProvider, out io.Writer) *ShellController {
	return &ShellController{
		out:        out,
		config:     cfg,
		game:       game.New(provider),
		cleanup:    func() {},
		difficulty: aibot.LookupDifficulty(cfg.GetString(config.ConfigDefaultDifficulty)).Name,
	}
}

func (sc *ShellController) writer() io.Writer {
	if sc.l != nil {
		return sc.l.Stderr()
	}
	return sc.out
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.writer())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its positional arguments and
// its -option value pairs. Quoting follows shell rules.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: CmdOptions{}}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			if i+1 >= len(fields) {
				return nil, errWrongOptionSyntax
			}
			key := f[1:]
			cmd.options[key] = append(cmd.options[key], fields[i+1])
			i++
			continue
		}
		cmd.args = append(cmd.args, f)
	}
	return cmd, nil
}

func (sc *ShellController) standardModeSwitch(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye", "quit":
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "fen", "position":
		return sc.setFEN(cmd)
	case "move", "m":
		return sc.move(cmd)
	case "ai":
		return sc.aiMove(cmd)
	case "undo", "takeback":
		return sc.undo(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "eval":
		return sc.eval(cmd)
	case "search":
		return sc.search(cmd)
	case "difficulties":
		return sc.difficulties(cmd)
	case "difficulty":
		return sc.setDifficulty(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "script":
		return sc.script(cmd)
	default:
		log.Debug().Msgf("you said: %v", line)
		return nil, errors.New("unrecognized command: " + cmd.cmd)
	}
}

// Execute runs a single command line and prints the result.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line)
	if err == errQuit {
		sig <- syscall.SIGINT
		return
	}
	if err == errNoData {
		return
	}
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "exit" || line == "bye" || line == "quit" {
			sig <- syscall.SIGINT
			break
		}
		sc.Execute(sig, line)
	}
	log.Debug().Msg("Exiting readline loop...")
}

// Cleanup stops any running autoplay and releases backend connections.
func (sc *ShellController) Cleanup() {
	log.Info().Msg("cleaning up")
	sc.stopAutoplay()
	sc.cleanup()
}
