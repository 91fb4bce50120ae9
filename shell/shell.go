package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/config"
	"github.com/domino14/tilesolver/game"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errExit              = errors.New("exit")
)

type ShellController struct {
	l   *readline.Instance
	cfg *config.Config

	game *game.Game
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
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

// NewShellController opens a readline prompt on the terminal.
func NewShellController(cfg *config.Config) *ShellController {
	sc := newController(cfg)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[33mtilesolver>\033[0m ",
		HistoryFile:     "/tmp/tilesolver_readline.tmp",
		AutoComplete:    &ShellCompleter{},
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func newController(cfg *config.Config) *ShellController {
	sc := &ShellController{cfg: cfg}
	sc.game = game.NewGame(board.DefaultDim, cfg.WinningTile(), nil)
	return sc
}

// extractFields splits a line into the command, its positional arguments
// and its -key value options. Quoting works as in a POSIX shell.
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
		// Negative numbers are arguments, not options.
		if len(f) > 1 && f[0] == '-' && !strings.ContainsAny(f[1:2], "0123456789") {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := strings.TrimPrefix(f, "-")
			cmd.options[key] = append(cmd.options[key], fields[i+1])
			i++
			continue
		}
		cmd.args = append(cmd.args, f)
	}
	return cmd, nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stdout())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "exit", "quit":
		return nil, errExit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "show":
		return sc.show(cmd)
	case "load":
		return sc.load(cmd)
	case "row":
		return sc.row(cmd)
	case "score":
		return sc.score(cmd)
	case "spawn":
		return sc.spawn(cmd)
	case "move":
		return sc.move(cmd)
	case "play":
		return sc.play(cmd)
	case "hint":
		return sc.hint(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "analyze":
		return sc.analyze(cmd)
	}
	return nil, fmt.Errorf("command %v not found", cmd.cmd)
}

// Execute runs one line and returns what it would print.
func (sc *ShellController) Execute(line string) (string, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return "", err
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.message, nil
}

// Loop reads commands until exit, EOF or a signal on sig.
func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	go func() {
		<-sig
		log.Info().Msg("got-quit-signal")
		sc.l.Close()
	}()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			log.Err(err).Msg("readline-error")
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out, err := sc.Execute(line)
		if errors.Is(err, errExit) {
			sc.showMessage("bye")
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if out != "" {
			sc.showMessage(out)
		}
	}
	log.Debug().Msg("exiting-readline-loop")
}
