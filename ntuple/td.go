package ntuple

import (
	"fmt"
	"math"

	"github.com/domino14/threes/board"
)

// Step is one entry of an episode trajectory: the after-state a slide
// produced and the reward that slide earned.
type Step struct {
	After  board.Board
	Reward int
}

// Learner applies TD(0) updates to a network it does not own exclusively;
// the caller must make sure nothing else writes to the network.
type Learner struct {
	net *Network
	// Alpha is the learning rate. It is split evenly across patterns.
	Alpha float64
	// Decay discounts the bootstrapped value of the next after-state.
	Decay float64
	// Symmetries is how many board orientations each update is applied
	// to: 1, 4 (rotations) or 8 (rotations and their mirror images).
	Symmetries int
}

// NewLearner validates its parameters and returns a learner.
func NewLearner(net *Network, alpha, decay float64, symmetries int) (*Learner, error) {
	switch symmetries {
	case 1, 4, 8:
	default:
		return nil, fmt.Errorf("symmetries must be 1, 4 or 8, got %d", symmetries)
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %v", alpha)
	}
	if decay < 0 || decay > 1 {
		return nil, fmt.Errorf("decay must be in [0, 1], got %v", decay)
	}
	return &Learner{net: net, Alpha: alpha, Decay: decay, Symmetries: symmetries}, nil
}

func (l *Learner) Network() *Network {
	return l.net
}

// Error is the TD error of moving from s to after with the given reward.
// A terminal transition has a target of just the reward.
func (l *Learner) Error(s, after *board.Board, reward float64, terminal bool) float64 {
	target := reward
	if !terminal {
		target += l.Decay * l.net.Value(after)
	}
	return target - l.net.Value(s)
}

// Update performs one TD(0) step for s in its current orientation and
// returns the new value of s. after is ignored when terminal is set and
// may be nil.
func (l *Learner) Update(s, after *board.Board, reward float64, terminal bool) float64 {
	l.step(s, after, reward, terminal)
	return l.net.Value(s)
}

// step moves every entry addressed by s by alpha/patterns of the TD error
// and returns that error.
func (l *Learner) step(s, after *board.Board, reward float64, terminal bool) float64 {
	delta := l.Error(s, after, reward, terminal)
	l.net.add(s, float32(l.Alpha/float64(l.net.NumPatterns())*delta))
	return delta
}

// UpdateSymmetric applies Update once per orientation, rotating s and
// after together. It returns the summed absolute TD error, which is only
// used for reporting.
func (l *Learner) UpdateSymmetric(s, after *board.Board, reward float64, terminal bool) float64 {
	sc := *s
	var ac board.Board
	if after != nil {
		ac = *after
	}
	total := 0.0
	for i := 0; i < l.Symmetries; i++ {
		if i == 4 {
			sc.ReflectHorizontal()
			ac.ReflectHorizontal()
		}
		total += math.Abs(l.step(&sc, &ac, reward, terminal))
		sc.RotateRight()
		ac.RotateRight()
	}
	return total
}

// TrainEpisode walks a finished trajectory from its last step to its first.
// The last after-state leads nowhere and is pulled towards zero; every
// earlier after-state is pulled towards the reward of the next slide plus
// the next after-state's value, as already updated in this pass. It
// returns the mean absolute TD error per update.
func (l *Learner) TrainEpisode(trajectory []Step) float64 {
	n := len(trajectory)
	if n == 0 {
		return 0
	}
	total := l.UpdateSymmetric(&trajectory[n-1].After, nil, 0, true)
	for i := n - 2; i >= 0; i-- {
		total += l.UpdateSymmetric(&trajectory[i].After, &trajectory[i+1].After,
			float64(trajectory[i+1].Reward), false)
	}
	return total / float64(n*l.Symmetries)
}
