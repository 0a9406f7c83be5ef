package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/threes/agent"
	"github.com/domino14/threes/automatic"
	"github.com/domino14/threes/board"
	"github.com/domino14/threes/cache"
	"github.com/domino14/threes/config"
	"github.com/domino14/threes/move"
	"github.com/domino14/threes/ntuple"
)

var errNoNetwork = errors.New("no weights loaded; use `load` first")

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

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) BoolDefault(key string, defaultB bool) bool {
	v := c[key]
	if len(v) == 0 {
		return defaultB
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func parseDirection(s string) (board.Direction, error) {
	switch strings.ToLower(strings.TrimPrefix(s, "#")) {
	case "u", "up":
		return board.Up, nil
	case "r", "right":
		return board.Right, nil
	case "d", "down":
		return board.Down, nil
	case "l", "left":
		return board.Left, nil
	}
	return board.NoDirection, fmt.Errorf("unknown direction %q", s)
}

func (sc *ShellController) display() string {
	return fmt.Sprintf("%s\nscore %d, moves %d, last slide %v", sc.board.String(),
		sc.score, sc.board.Moves(), sc.board.LastDirection())
}

// placeNext lets the environment drop its next tile; it reports what it
// did, or that it could not.
func (sc *ShellController) placeNext() (string, error) {
	a := sc.env.TakeAction(&sc.board)
	if a.IsNone() {
		return "environment has no eligible cell", nil
	}
	if _, err := a.Apply(&sc.board); err != nil {
		return "", err
	}
	return "environment placed " + a.ShortDescription(), nil
}

func (sc *ShellController) newBoard(cmd *shellcmd) (*Response, error) {
	if s := cmd.options.String("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		if err := sc.resetAgents(&seed); err != nil {
			return nil, err
		}
	} else {
		sc.env.CloseEpisode()
	}
	sc.board = board.New()
	sc.score = 0
	opening, err := cmd.options.IntDefault("opening", sc.cfg.GetInt(config.ConfigOpeningTiles))
	if err != nil {
		return nil, err
	}
	for i := 0; i < opening; i++ {
		if _, err := sc.placeNext(); err != nil {
			return nil, err
		}
	}
	return msg(sc.display()), nil
}

func (sc *ShellController) place(cmd *shellcmd) (*Response, error) {
	var a move.Action
	var err error
	switch len(cmd.args) {
	case 1:
		a, err = move.FromString(cmd.args[0])
	case 2:
		a, err = move.FromString(cmd.args[1] + "@" + cmd.args[0])
	default:
		return nil, errors.New("usage: place <face>@<pos> or place <pos> <face>")
	}
	if err != nil {
		return nil, err
	}
	if a.Type() != move.ActionTypePlace {
		return nil, fmt.Errorf("%v is not a placement", a)
	}
	if _, err := a.Apply(&sc.board); err != nil {
		return nil, err
	}
	return msg(sc.display()), nil
}

func (sc *ShellController) slide(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: slide <up|right|down|left> [-place false]")
	}
	d, err := parseDirection(cmd.args[0])
	if err != nil {
		return nil, err
	}
	reward, err := move.Slide(d).Apply(&sc.board)
	if err != nil {
		return nil, err
	}
	sc.score += reward
	out := fmt.Sprintf("slid %v for %d", d, reward)
	if cmd.options.BoolDefault("place", true) {
		placed, err := sc.placeNext()
		if err != nil {
			return nil, err
		}
		out += "; " + placed
	}
	return msg(out + "\n" + sc.display()), nil
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	cands := sc.player.Candidates(&sc.board)
	if len(cands) == 0 {
		return msg("no legal slide; the episode is over"), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s %-7s %-10s %-10s\n", "Slide", "Reward", "Value", "Score")
	for _, c := range cands {
		fmt.Fprintf(&sb, "%-6v %-7d %-10.3f %-10.3f\n", c.Direction, c.Reward,
			c.Score-float64(c.Reward), c.Score)
	}
	pick, _ := sc.player.SelectAction(&sc.board)
	fmt.Fprintf(&sb, "greedy player picks %v", pick.Direction)
	return msg(sb.String()), nil
}

func (sc *ShellController) value(cmd *shellcmd) (*Response, error) {
	if sc.net == nil {
		return nil, errNoNetwork
	}
	return msg(fmt.Sprintf("%.4f", sc.net.Value(&sc.board))), nil
}

// load reads weights through the process cache; the shell never trains,
// so a cached network can be shared.
func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <weights file> [-patterns <set>]")
	}
	path := cmd.args[0]
	patterns := cmd.options.String("patterns")
	if patterns == "" {
		patterns = sc.cfg.GetString(config.ConfigPatterns)
	}
	obj, err := cache.Load(weightsKey(patterns, path), func(string) (any, error) {
		return agent.NetworkFromArgs(agent.Args{Name: "shell", Patterns: patterns, Load: path}, nil)
	})
	if err != nil {
		return nil, err
	}
	sc.net = obj.(*ntuple.Network)
	if err := sc.resetAgents(nil); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("loaded %d tables from %s", sc.net.NumPatterns(), path)), nil
}

func weightsKey(patterns, path string) string {
	return "weights:" + strings.ToLower(patterns) + ":" + path
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: save <weights file>")
	}
	if sc.net == nil {
		return nil, errNoNetwork
	}
	if err := sc.net.SaveFile(cmd.args[0]); err != nil {
		return nil, err
	}
	for name := range ntuple.PatternSets {
		cache.Evict(weightsKey(name, cmd.args[0]))
	}
	return msg("saved " + cmd.args[0]), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.display()), nil
}

func (sc *ShellController) rotate(cmd *shellcmd) (*Response, error) {
	k := 1
	if len(cmd.args) > 0 {
		var err error
		if k, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	sc.board.Rotate(k)
	return msg(sc.display()), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	games := 100
	if len(cmd.args) > 0 {
		var err error
		if games, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	threads, err := cmd.options.IntDefault("threads", sc.cfg.GetInt(config.ConfigEvalThreads))
	if err != nil {
		return nil, err
	}
	seed := automatic.GenerateSeeds(1)[0]
	if s := cmd.options.String("seed"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		seed = agent.SeedBytes(n)
	}
	summary, results, err := automatic.Evaluate(context.Background(), sc.net, automatic.EvalOptions{
		Run:          "shell",
		Games:        games,
		Threads:      threads,
		OpeningTiles: lo.ToPtr(sc.cfg.GetInt(config.ConfigOpeningTiles)),
		WinFace:      sc.cfg.GetInt(config.ConfigWinFace),
		Seed:         seed,
	})
	if err != nil {
		return nil, err
	}
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = float64(r.Score)
	}
	return msg(summary.String() + "\n" + automatic.ScoreHistogram(scores, 40)), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
