// Package agent puts the two sides of a threes game behind one type: the
// environment that places tiles and the players that slide. The set of
// agent kinds is closed, so behavior is picked from a table indexed by
// kind instead of through an interface.
package agent

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/threes/board"
	"github.com/domino14/threes/environment"
	"github.com/domino14/threes/move"
	"github.com/domino14/threes/ntuple"
)

// Kind is the closed set of agents.
type Kind int

const (
	KindEnvironment Kind = iota
	KindRandomPlayer
	KindGreedyPlayer
	KindLearningPlayer
	numKinds
)

var kindNames = [numKinds]string{"environment", "random", "greedy", "learning"}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// KindFromString parses a kind name.
func KindFromString(s string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(s, n) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown agent kind %q", s)
}

const (
	DefaultAlpha    = 0.1
	DefaultDecay    = 1.0
	DefaultSymmetry = 4
)

type behavior struct {
	role         string
	defaultName  string
	takeAction   func(*Agent, *board.Board) move.Action
	openEpisode  func(*Agent)
	closeEpisode func(*Agent)
}

var behaviors = [numKinds]behavior{
	KindEnvironment: {
		role:         "environment",
		defaultName:  "random",
		takeAction:   (*Agent).placeTile,
		openEpisode:  nop,
		closeEpisode: (*Agent).resetBag,
	},
	KindRandomPlayer: {
		role:         "player",
		defaultName:  "dummy",
		takeAction:   (*Agent).randomSlide,
		openEpisode:  nop,
		closeEpisode: nop,
	},
	KindGreedyPlayer: {
		role:         "player",
		defaultName:  "greedy",
		takeAction:   (*Agent).greedySlide,
		openEpisode:  nop,
		closeEpisode: nop,
	},
	KindLearningPlayer: {
		role:         "player",
		defaultName:  "learning",
		takeAction:   (*Agent).learningSlide,
		openEpisode:  (*Agent).clearTrajectory,
		closeEpisode: (*Agent).train,
	},
}

func nop(*Agent) {}

// Agent is one participant in a game. Each agent owns its random
// generator; only learning players hold a learner, and only players with
// a value function hold a network.
type Agent struct {
	kind Kind
	args Args

	rng        *frand.RNG
	directions [4]board.Direction

	placer *environment.Placer

	net        *ntuple.Network
	learner    *ntuple.Learner
	trajectory []ntuple.Step
	lastError  float64
}

// New builds an agent of the given kind. net is required for learning
// players, optional for greedy players (which then only look at the
// immediate reward), and ignored otherwise.
func New(kind Kind, args Args, net *ntuple.Network) (*Agent, error) {
	if kind < 0 || kind >= numKinds {
		return nil, fmt.Errorf("unknown agent kind %d", kind)
	}
	bh := behaviors[kind]
	if args.Name == "" {
		args.Name = bh.defaultName
	}
	if args.Role == "" {
		args.Role = bh.role
	}
	if args.Extra == nil {
		args.Extra = map[string]string{}
	}
	a := &Agent{kind: kind, args: args, directions: board.Directions}
	seed := args.seedBytes()

	switch kind {
	case KindEnvironment:
		a.placer = environment.NewPlacer(seed)
	case KindGreedyPlayer:
		a.net = net
	case KindLearningPlayer:
		if net == nil {
			return nil, fmt.Errorf("learning player %s needs a network", args.Name)
		}
		a.net = net
		alpha, decay, sym := DefaultAlpha, DefaultDecay, DefaultSymmetry
		if args.Alpha != nil {
			alpha = *args.Alpha
		}
		if args.Decay != nil {
			decay = *args.Decay
		}
		if args.Symmetry != nil {
			sym = *args.Symmetry
		}
		var err error
		a.learner, err = ntuple.NewLearner(net, alpha, decay, sym)
		if err != nil {
			return nil, err
		}
	}
	a.rng = frand.NewCustom(seed[:], 1024, 12)
	log.Debug().Str("name", args.Name).Str("role", args.Role).
		Str("kind", kind.String()).Bool("has-network", a.net != nil).
		Msg("created-agent")
	return a, nil
}

// Reseed restarts the agent's random streams from a seed.
func (a *Agent) Reseed(seed [32]byte) {
	a.rng = frand.NewCustom(seed[:], 1024, 12)
	a.directions = board.Directions
	if a.placer != nil {
		a.placer.Reseed(seed)
	}
}

func (a *Agent) Kind() Kind {
	return a.kind
}

func (a *Agent) Name() string {
	return a.args.Name
}

func (a *Agent) Role() string {
	return a.args.Role
}

func (a *Agent) Args() *Args {
	return &a.args
}

// Network is the agent's value function, if any.
func (a *Agent) Network() *ntuple.Network {
	return a.net
}

// Learner is non-nil only for learning players.
func (a *Agent) Learner() *ntuple.Learner {
	return a.learner
}

// LastTrainingError is the mean absolute TD error of the last episode a
// learning player trained on.
func (a *Agent) LastTrainingError() float64 {
	return a.lastError
}

// TakeAction returns this agent's next action for the board. The board is
// never modified.
func (a *Agent) TakeAction(b *board.Board) move.Action {
	return behaviors[a.kind].takeAction(a, b)
}

func (a *Agent) OpenEpisode() {
	behaviors[a.kind].openEpisode(a)
}

func (a *Agent) CloseEpisode() {
	behaviors[a.kind].closeEpisode(a)
}

func (a *Agent) placeTile(b *board.Board) move.Action {
	return a.placer.ChooseTile(b)
}

func (a *Agent) resetBag() {
	a.placer.Reset()
}
