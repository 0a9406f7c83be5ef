package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/threes/ntuple"
)

// ShellCompleter completes command names, directions, options and
// pattern set names.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new":      {Options: []string{"-seed", "-opening"}},
	"slide":    {Options: []string{"-place"}, Args: []string{"up", "right", "down", "left"}},
	"s":        {Options: []string{"-place"}, Args: []string{"up", "right", "down", "left"}},
	"load":     {Options: []string{"-patterns"}},
	"autoplay": {Options: []string{"-threads", "-seed"}},
	"help":     {Args: []string{"slide", "best", "autoplay"}},
}

var commandNames = []string{
	"new", "place", "slide", "best", "value", "load", "save", "show",
	"rotate", "autoplay", "help", "exit",
}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
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
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastComplete string
		if endsWithSpace {
			lastComplete = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastComplete = fields[len(fields)-2]
		}
		switch lastComplete {
		case "-patterns":
			completions = lo.Keys(ntuple.PatternSets)
		case "-place":
			completions = []string{"true", "false"}
		}
		if completions == nil {
			md := commandMetadata[fields[0]]
			if strings.HasPrefix(prefix, "-") || len(md.Args) == 0 {
				completions = md.Options
			} else {
				completions = md.Args
			}
		}
	}

	var matches [][]rune
	for _, comp := range completions {
		if strings.HasPrefix(comp, prefix) {
			matches = append(matches, []rune(comp[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
