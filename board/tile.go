package board

import (
	"errors"
	"fmt"
)

// A Tile is the code stored in a cell. It is not the face value shown to
// a player: codes 1 and 2 are the faces 1 and 2, and every code k >= 3 is
// the face 3*2^(k-3).
type Tile uint8

const (
	EmptyTile Tile = 0
	// MaxTile is the largest code a cell can hold. Codes are packed into
	// 4-bit fields by the value function, so nothing above 15 is allowed.
	MaxTile Tile = 15
)

var ErrInvalidFace = errors.New("not a face value of any tile")

// faces maps a tile code to its face value.
var faces = [MaxTile + 1]int{
	0, 1, 2, 3, 6, 12, 24, 48, 96, 192, 384, 768, 1536, 3072, 6144, 12288,
}

// Face returns the face value shown for this tile.
func (t Tile) Face() int {
	if t > MaxTile {
		return 0
	}
	return faces[t]
}

// Atomic is true for the tiles that the environment may place.
func (t Tile) Atomic() bool {
	return t >= 1 && t <= 3
}

func (t Tile) String() string {
	return fmt.Sprint(t.Face())
}

// FaceToTile converts a face value back to its tile code.
func FaceToTile(face int) (Tile, error) {
	for code, f := range faces {
		if f == face {
			return Tile(code), nil
		}
	}
	return EmptyTile, fmt.Errorf("%w: %d", ErrInvalidFace, face)
}

// merge applies the threes merge rule to a held tile and the tile sliding
// into it. Equal tiles of 3 or more double; a 1 and a 2 make a 3.
func merge(hold, t Tile) (Tile, bool) {
	if hold >= 3 && hold == t && hold < MaxTile {
		return hold + 1, true
	}
	if hold < 3 && t < 3 && hold+t == 3 {
		return 3, true
	}
	return EmptyTile, false
}
