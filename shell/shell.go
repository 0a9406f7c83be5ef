// Package shell is an interactive threes board: place tiles and slide by
// hand, ask the value function what it thinks, or let it play.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/threes/agent"
	"github.com/domino14/threes/automatic"
	"github.com/domino14/threes/board"
	"github.com/domino14/threes/config"
	"github.com/domino14/threes/ntuple"
)

var (
	errNoData            = errors.New("no data in line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer
	cfg *config.Config

	board  board.Board
	score  int
	env    *agent.Agent
	player *agent.Agent
	net    *ntuple.Network
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

// NewShellController sets up readline and an empty board.
func NewShellController(cfg *config.Config) *ShellController {
	sc := newController(cfg, os.Stderr)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mthrees>\033[0m ",
		HistoryFile:     cfg.GetString(config.ConfigHistoryFile),
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
	sc.out = l.Stderr()
	return sc
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	sc := &ShellController{cfg: cfg, out: out, board: board.New()}
	if err := sc.resetAgents(nil); err != nil {
		// the default arguments always build
		panic(err)
	}
	return sc
}

// resetAgents rebuilds the environment and the greedy player. A seed is
// split the way the episode runner splits it, so the two never share a
// random stream and a seeded shell game replays like a seeded episode.
func (sc *ShellController) resetAgents(seed *uint64) error {
	var err error
	sc.env, err = agent.New(agent.KindEnvironment, agent.Args{}, nil)
	if err != nil {
		return err
	}
	sc.player, err = agent.New(agent.KindGreedyPlayer, agent.Args{}, sc.net)
	if err != nil {
		return err
	}
	if seed != nil {
		s := agent.SeedBytes(*seed)
		sc.env.Reseed(s)
		sc.player.Reseed(automatic.DeriveSeed(s, 1, 0))
	}
	return nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

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
		if strings.HasPrefix(fields[i], "-") && len(fields[i]) > 1 {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := fields[i][1:]
			cmd.options[key] = append(cmd.options[key], fields[i+1])
			i++
			continue
		}
		cmd.args = append(cmd.args, fields[i])
	}
	return cmd, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) error {
	cmd, err := extractFields(line)
	if err != nil {
		if err != errNoData {
			sc.showError(err)
		}
		return nil
	}
	resp, err := sc.dispatch(cmd)
	if err == errQuit {
		if sig != nil {
			sig <- syscall.SIGINT
		}
		return errors.New("sending quit signal")
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "new":
		return sc.newBoard(cmd)
	case "place":
		return sc.place(cmd)
	case "slide", "s":
		return sc.slide(cmd)
	case "best":
		return sc.best(cmd)
	case "value":
		return sc.value(cmd)
	case "load":
		return sc.load(cmd)
	case "save":
		return sc.save(cmd)
	case "show":
		return sc.show(cmd)
	case "rotate":
		return sc.rotate(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "help":
		return sc.help(cmd)
	case "exit", "bye":
		return nil, errQuit
	}
	log.Debug().Str("line", cmd.cmd).Msg("unknown-command")
	return nil, fmt.Errorf("unknown command %q; try help", cmd.cmd)
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		if err := sc.standardModeSwitch(strings.TrimSpace(line), sig); err != nil {
			log.Debug().Err(err).Msg("leaving-shell")
			break
		}
	}
	log.Debug().Msg("Exiting readline loop...")
}
