// Package board implements the 4x4 threes board: tile placement, the
// slide and merge rules, and the rotations and reflections used both to
// compose slide directions and to sample board symmetries.
//
// Cells are addressed in row-major order:
//
//	 0  1  2  3
//	 4  5  6  7
//	 8  9 10 11
//	12 13 14 15
package board

import "errors"

const (
	Dim      = 4
	NumCells = Dim * Dim

	// IllegalMove is returned by Slide when the board did not change.
	IllegalMove = -1
)

var (
	ErrInvalidPosition = errors.New("position is off the board")
	ErrInvalidTile     = errors.New("tile cannot be placed")
)

// Direction is a slide direction. The numeric values match the opcodes
// stored in weight-trained agents, so do not reorder them.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
	// NoDirection is the last direction of a board that has never slid.
	NoDirection
)

// Directions lists the four slide directions in opcode order.
var Directions = [4]Direction{Up, Right, Down, Left}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return "none"
}

// Grid is the raw tile layout, indexed [row][col].
type Grid [Dim][Dim]Tile

// Board is a single threes position. The zero value is not ready to use
// since its last direction reads as Up; call New.
type Board struct {
	tiles   Grid
	info    uint64
	lastDir Direction
	moves   int
}

// New returns an empty board.
func New() Board {
	return Board{lastDir: NoDirection}
}

// FromGrid builds a board holding the given tiles. No validation is done
// on the codes; this is meant for tests and analysis tools.
func FromGrid(g Grid) Board {
	return Board{tiles: g, lastDir: NoDirection}
}

// FromCells is like FromGrid but takes the 16 cells in row-major order.
func FromCells(cells [NumCells]Tile) Board {
	b := New()
	for i, t := range cells {
		b.tiles[i/Dim][i%Dim] = t
	}
	return b
}

func (b *Board) Grid() Grid {
	return b.tiles
}

// At returns the tile at a row-major position.
func (b *Board) At(pos int) Tile {
	return b.tiles[pos/Dim][pos%Dim]
}

func (b *Board) Info() uint64 {
	return b.info
}

// SetInfo replaces the info word and returns the old one.
func (b *Board) SetInfo(v uint64) uint64 {
	old := b.info
	b.info = v
	return old
}

// LastDirection is the direction of the last legal slide.
func (b *Board) LastDirection() Direction {
	return b.lastDir
}

// Moves is the number of legal slides applied to this board.
func (b *Board) Moves() int {
	return b.moves
}

// Place puts an atomic tile (1, 2 or 3) at a position.
func (b *Board) Place(pos int, t Tile) error {
	if pos < 0 || pos >= NumCells {
		return ErrInvalidPosition
	}
	if !t.Atomic() {
		return ErrInvalidTile
	}
	b.tiles[pos/Dim][pos%Dim] = t
	return nil
}

// Equal compares grids only; info and bookkeeping are ignored.
func (b *Board) Equal(o *Board) bool {
	return b.tiles == o.tiles
}

// Less orders boards lexicographically by their grids.
func (b *Board) Less(o *Board) bool {
	for r := 0; r < Dim; r++ {
		for c := 0; c < Dim; c++ {
			if b.tiles[r][c] != o.tiles[r][c] {
				return b.tiles[r][c] < o.tiles[r][c]
			}
		}
	}
	return false
}

// MaxTile returns the largest tile on the board.
func (b *Board) MaxTile() Tile {
	m := EmptyTile
	for r := 0; r < Dim; r++ {
		for c := 0; c < Dim; c++ {
			if b.tiles[r][c] > m {
				m = b.tiles[r][c]
			}
		}
	}
	return m
}

func (b *Board) EmptyCount() int {
	n := 0
	for r := 0; r < Dim; r++ {
		for c := 0; c < Dim; c++ {
			if b.tiles[r][c] == EmptyTile {
				n++
			}
		}
	}
	return n
}
