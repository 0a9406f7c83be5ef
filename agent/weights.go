package agent

import (
	"fmt"

	"github.com/domino14/threes/ntuple"
)

// NetworkFromArgs builds the value function described by an agent's
// arguments: patterns=<set> picks the layout (falling back to the given
// default), init=<v> sets every weight, and load=<path> replaces the
// weights with a saved file.
func NetworkFromArgs(args Args, fallback []ntuple.Pattern) (*ntuple.Network, error) {
	patterns := fallback
	if args.Patterns != "" {
		var err error
		patterns, err = ntuple.PatternSet(args.Patterns)
		if err != nil {
			return nil, err
		}
	}
	var init float32
	if args.Init != nil {
		init = float32(*args.Init)
	}
	net, err := ntuple.NewNetwork(patterns, init)
	if err != nil {
		return nil, err
	}
	if args.Load != "" {
		if err := net.LoadFile(args.Load); err != nil {
			return nil, fmt.Errorf("loading weights for %s: %w", args.Name, err)
		}
	}
	return net, nil
}

// Close saves the agent's weights if it was given save=<path>.
func (a *Agent) Close() error {
	if a.net == nil || a.args.Save == "" {
		return nil
	}
	return a.net.SaveFile(a.args.Save)
}
