// Package automatic plays threes episodes without a human: training runs
// in blocks with running statistics, and evaluation games with frozen
// weights spread over worker goroutines.
package automatic

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/threes/agent"
	"github.com/domino14/threes/board"
)

const (
	DefaultOpeningTiles = 2
	DefaultWinFace      = 192
)

// EpisodeResult is what one finished episode looked like.
type EpisodeResult struct {
	Episode int
	Score   int
	MaxFace int
	Moves   int
	Won     bool
	// TDError is the learning player's mean absolute TD error for the
	// episode, 0 for other players.
	TDError float64
	Final   board.Board
}

// GameRunner alternates a player and an environment on one board.
type GameRunner struct {
	player *agent.Agent
	env    *agent.Agent

	openingTiles int
	winFace      int
	logchan      chan<- string
	played       int
}

// NewGameRunner just instantiates a runner with the default opening and
// win threshold.
func NewGameRunner(player, env *agent.Agent) *GameRunner {
	return &GameRunner{
		player:       player,
		env:          env,
		openingTiles: DefaultOpeningTiles,
		winFace:      DefaultWinFace,
	}
}

func (r *GameRunner) SetOpeningTiles(n int) {
	r.openingTiles = n
}

func (r *GameRunner) SetWinFace(face int) {
	r.winFace = face
}

// SetLogChan makes the runner send one CSV line per episode.
func (r *GameRunner) SetLogChan(ch chan<- string) {
	r.logchan = ch
}

func (r *GameRunner) Player() *agent.Agent {
	return r.player
}

func (r *GameRunner) Env() *agent.Agent {
	return r.env
}

func (r *GameRunner) Played() int {
	return r.played
}

// Reseed restarts both agents from a seed so the episode that follows is
// reproducible.
func (r *GameRunner) Reseed(seed [32]byte) {
	r.env.Reseed(seed)
	r.player.Reseed(DeriveSeed(seed, 1, 0))
}

// PlayEpisode opens an episode, lets the environment place the opening
// tiles, and then alternates slide and placement until the player has no
// legal slide or the environment has no eligible cell.
func (r *GameRunner) PlayEpisode() (EpisodeResult, error) {
	r.played++
	res := EpisodeResult{Episode: r.played}
	b := board.New()

	r.player.OpenEpisode()
	r.env.OpenEpisode()

	for i := 0; i < r.openingTiles; i++ {
		a := r.env.TakeAction(&b)
		if a.IsNone() {
			break
		}
		if _, err := a.Apply(&b); err != nil {
			return res, fmt.Errorf("opening placement %v: %w", a, err)
		}
	}

	for {
		a := r.player.TakeAction(&b)
		if a.IsNone() {
			break
		}
		reward, err := a.Apply(&b)
		if err != nil {
			return res, fmt.Errorf("%s played %v: %w", r.player.Name(), a, err)
		}
		res.Score += reward
		res.Moves++

		p := r.env.TakeAction(&b)
		if p.IsNone() {
			break
		}
		if _, err := p.Apply(&b); err != nil {
			return res, fmt.Errorf("%s placed %v: %w", r.env.Name(), p, err)
		}
	}

	r.player.CloseEpisode()
	r.env.CloseEpisode()

	res.Final = b
	res.MaxFace = b.MaxTile().Face()
	res.Won = res.MaxFace >= r.winFace
	if r.player.Learner() != nil {
		res.TDError = r.player.LastTrainingError()
	}
	EpisodeCounter.Add(1)

	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%s,%d,%d,%d,%d,%t,%.6f\n",
			r.player.Name(), res.Episode, res.Score, res.MaxFace, res.Moves, res.Won, res.TDError)
	}
	log.Debug().Int("episode", res.Episode).Int("score", res.Score).
		Int("max-face", res.MaxFace).Int("moves", res.Moves).Msg("episode-over")
	return res, nil
}
