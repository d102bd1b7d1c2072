package shell

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cjoudrey/gluahttp"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

// Commands exposed to Lua scripts as caissa_<name>(argstring).
var scriptCommands = []string{
	"new", "fen", "move", "ai", "undo", "show", "eval", "search", "difficulty",
}

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("caissa_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// luaCommand wraps a shell command. The Lua function takes the rest of the
// command line as a string and returns the command's output, or a string
// starting with "ERROR: ".
func luaCommand(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		line := name
		if L.GetTop() > 0 {
			line += " " + L.ToString(1)
		}
		sc := getShell(L)
		r, err := sc.standardModeSwitch(line)
		if err != nil {
			log.Err(err).Msg("error-executing-" + name)
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(r.message))
		// return number of results pushed to stack.
		return 1
	}
}

// State returns the game state as a JSON string, for use with json.decode.
func State(L *lua.LState) int {
	sc := getShell(L)
	data, err := json.Marshal(sc.game.State())
	if err != nil {
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(string(data)))
	return 1
}

func (sc *ShellController) newLuaState() *lua.LState {
	L := lua.NewState()
	L.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{Timeout: 30 * time.Second}).Loader)
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal("caissa_shell", lsc)
	for _, name := range scriptCommands {
		L.SetGlobal("caissa_"+name, L.NewFunction(luaCommand(name)))
	}
	L.SetGlobal("caissa_state", L.NewFunction(State))
	return L
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := sc.newLuaState()
	defer L.Close()

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
