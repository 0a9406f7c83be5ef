package move

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/threes/board"
)

// ActionType says what an Action does to a board.
type ActionType uint8

const (
	ActionTypeNone ActionType = iota
	ActionTypeSlide
	ActionTypePlace
)

var (
	ErrNoAction    = errors.New("no action to apply")
	ErrIllegalMove = errors.New("slide does not change the board")
)

// Action is either a slide made by the player or a tile placed by the
// environment. The zero value is the empty action.
type Action struct {
	atype ActionType
	dir   board.Direction
	pos   int
	tile  board.Tile
}

// Slide returns an action sliding the board in a direction.
func Slide(d board.Direction) Action {
	return Action{atype: ActionTypeSlide, dir: d}
}

// Place returns an action putting a tile at a position.
func Place(pos int, t board.Tile) Action {
	return Action{atype: ActionTypePlace, pos: pos, tile: t}
}

// None is returned by agents that have nothing to do.
func None() Action {
	return Action{}
}

func (a Action) Type() ActionType {
	return a.atype
}

func (a Action) IsNone() bool {
	return a.atype == ActionTypeNone
}

func (a Action) Direction() board.Direction {
	return a.dir
}

func (a Action) Position() int {
	return a.pos
}

func (a Action) Tile() board.Tile {
	return a.tile
}

// Apply plays the action on the board and returns the reward it earned.
// Placements never earn anything.
func (a Action) Apply(b *board.Board) (int, error) {
	switch a.atype {
	case ActionTypeSlide:
		reward := b.Slide(a.dir)
		if reward == board.IllegalMove {
			return 0, ErrIllegalMove
		}
		return reward, nil
	case ActionTypePlace:
		return 0, b.Place(a.pos, a.tile)
	}
	return 0, ErrNoAction
}

var dirNames = [...]string{"U", "R", "D", "L"}

// ShortDescription is a compact representation, "#U" for a slide up and
// "3@5" for a 3 placed at position 5.
func (a Action) ShortDescription() string {
	switch a.atype {
	case ActionTypeSlide:
		if int(a.dir) < len(dirNames) {
			return "#" + dirNames[a.dir]
		}
		return "#?"
	case ActionTypePlace:
		return fmt.Sprintf("%d@%d", a.tile.Face(), a.pos)
	}
	return "-"
}

func (a Action) String() string {
	return a.ShortDescription()
}

// FromString parses the output of ShortDescription.
func FromString(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return None(), nil
	}
	if strings.HasPrefix(s, "#") {
		for i, n := range dirNames {
			if strings.EqualFold(s[1:], n) {
				return Slide(board.Direction(i)), nil
			}
		}
		return None(), fmt.Errorf("unknown slide %q", s)
	}
	var face, pos int
	if _, err := fmt.Sscanf(s, "%d@%d", &face, &pos); err != nil {
		return None(), fmt.Errorf("could not parse action %q: %w", s, err)
	}
	t, err := board.FaceToTile(face)
	if err != nil {
		return None(), err
	}
	return Place(pos, t), nil
}
