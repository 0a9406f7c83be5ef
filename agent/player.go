package agent

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/threes/board"
	"github.com/domino14/threes/move"
	"github.com/domino14/threes/ntuple"
)

func (a *Agent) shuffleDirections() {
	a.rng.Shuffle(len(a.directions), func(i, j int) {
		a.directions[i], a.directions[j] = a.directions[j], a.directions[i]
	})
}

// randomSlide picks any legal direction.
func (a *Agent) randomSlide(b *board.Board) move.Action {
	a.shuffleDirections()
	for _, d := range a.directions {
		after := *b
		if after.Slide(d) != board.IllegalMove {
			return move.Slide(d)
		}
	}
	return move.None()
}

// Candidate is the outcome of one direction of a one-step lookahead.
type Candidate struct {
	Direction board.Direction
	After     board.Board
	Reward    int
	Score     float64
}

// SelectAction looks one slide ahead in every direction, in a shuffled
// order, and scores each after-state as its reward plus the value the
// network gives it. Ties go to the first direction seen. ok is false when
// no direction is legal.
func (a *Agent) SelectAction(b *board.Board) (best Candidate, ok bool) {
	a.shuffleDirections()
	for _, d := range a.directions {
		after := *b
		reward := after.Slide(d)
		if reward == board.IllegalMove {
			continue
		}
		score := float64(reward)
		if a.net != nil {
			score += a.net.Value(&after)
		}
		if !ok || score > best.Score {
			best = Candidate{Direction: d, After: after, Reward: reward, Score: score}
			ok = true
		}
	}
	return best, ok
}

// Candidates scores every legal direction in opcode order without
// touching the agent's random state. The shell uses it to explain a move.
func (a *Agent) Candidates(b *board.Board) []Candidate {
	var out []Candidate
	for _, d := range board.Directions {
		after := *b
		reward := after.Slide(d)
		if reward == board.IllegalMove {
			continue
		}
		score := float64(reward)
		if a.net != nil {
			score += a.net.Value(&after)
		}
		out = append(out, Candidate{Direction: d, After: after, Reward: reward, Score: score})
	}
	return out
}

func (a *Agent) greedySlide(b *board.Board) move.Action {
	c, ok := a.SelectAction(b)
	if !ok {
		return move.None()
	}
	return move.Slide(c.Direction)
}

// learningSlide plays like the greedy player and remembers what it did.
func (a *Agent) learningSlide(b *board.Board) move.Action {
	c, ok := a.SelectAction(b)
	if !ok {
		return move.None()
	}
	a.trajectory = append(a.trajectory, ntuple.Step{After: c.After, Reward: c.Reward})
	return move.Slide(c.Direction)
}

func (a *Agent) clearTrajectory() {
	a.trajectory = a.trajectory[:0]
}

// Trajectory is what a learning player has recorded this episode.
func (a *Agent) Trajectory() []ntuple.Step {
	return a.trajectory
}

// train runs the backward TD(0) pass over the finished episode.
func (a *Agent) train() {
	if len(a.trajectory) == 0 {
		a.lastError = 0
		return
	}
	a.lastError = a.learner.TrainEpisode(a.trajectory)
	log.Debug().Int("steps", len(a.trajectory)).
		Float64("mean-abs-td-error", a.lastError).
		Msg("trained-episode")
	a.trajectory = a.trajectory[:0]
}
