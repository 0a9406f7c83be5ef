// Package environment contains the tile-placing side of a threes game:
// after every slide it picks an empty cell on the edge the tiles moved
// away from and drops the next tile from a shuffled bag.
package environment

import (
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/threes/board"
	"github.com/domino14/threes/move"
)

// DefaultBag is one cycle of new tiles. Every value in it is drawn exactly
// once before the bag is reshuffled.
var DefaultBag = []board.Tile{1, 2, 3}

// Placer chooses where and what the next tile is.
type Placer struct {
	rng   *frand.RNG
	space [board.NumCells]int
	bag   []board.Tile
	idx   int
}

// NewPlacer returns a placer seeded with the given 32 bytes.
func NewPlacer(seed [32]byte) *Placer {
	p := &Placer{bag: make([]board.Tile, len(DefaultBag))}
	p.Reseed(seed)
	return p
}

// Reseed puts the placer back in the state NewPlacer(seed) would return.
func (p *Placer) Reseed(seed [32]byte) {
	p.rng = frand.NewCustom(seed[:], 1024, 12)
	for i := range p.space {
		p.space[i] = i
	}
	copy(p.bag, DefaultBag)
	p.idx = 0
}

// Reset rewinds the bag; call it at every episode boundary.
func (p *Placer) Reset() {
	p.idx = 0
}

// eligible reports whether a new tile may appear at pos after the board
// last slid in dir. Tiles enter from the edge opposite the slide.
func eligible(pos int, dir board.Direction) bool {
	switch dir {
	case board.Up:
		return pos >= board.NumCells-board.Dim
	case board.Down:
		return pos < board.Dim
	case board.Left:
		return pos%board.Dim == board.Dim-1
	case board.Right:
		return pos%board.Dim == 0
	}
	return true
}

// ChooseTile returns the placement for an after-state, or the empty action
// if no eligible cell is empty.
func (p *Placer) ChooseTile(b *board.Board) move.Action {
	p.rng.Shuffle(len(p.space), func(i, j int) {
		p.space[i], p.space[j] = p.space[j], p.space[i]
	})
	last := b.LastDirection()
	pos, ok := lo.Find(p.space[:], func(pos int) bool {
		return b.At(pos) == board.EmptyTile && eligible(pos, last)
	})
	if !ok {
		return move.None()
	}
	return move.Place(pos, p.draw())
}

func (p *Placer) draw() board.Tile {
	if p.idx == 0 {
		p.rng.Shuffle(len(p.bag), func(i, j int) {
			p.bag[i], p.bag[j] = p.bag[j], p.bag[i]
		})
	}
	t := p.bag[p.idx]
	p.idx = (p.idx + 1) % len(p.bag)
	return t
}
