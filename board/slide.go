package board

// Slide moves every tile one step in the given direction, merging where the
// rules allow. It returns the sum of the face values created by merges, or
// IllegalMove if nothing moved. Only legal slides are recorded in the
// board's last direction and move count.
func (b *Board) Slide(d Direction) int {
	var reward int
	switch d {
	case Up:
		reward = b.slideUp()
	case Right:
		reward = b.slideRight()
	case Down:
		reward = b.slideDown()
	case Left:
		reward = b.slideLeft()
	default:
		return IllegalMove
	}
	if reward != IllegalMove {
		b.lastDir = d
		b.moves++
	}
	return reward
}

// slideLeft is the only direction that implements the merge rule; the
// others transform the board, slide left, and transform it back.
//
// Each row is scanned left to right holding one tile. An empty hold means
// the row has already moved, so every later tile shifts one cell left. A
// merge writes the result one cell left of the incoming tile and empties
// the hold, which keeps a freshly merged tile from merging again.
func (b *Board) slideLeft() int {
	prev := b.tiles
	score := 0
	for r := 0; r < Dim; r++ {
		row := &b.tiles[r]
		hold := row[0]
		for c := 1; c < Dim; c++ {
			t := row[c]
			if hold == EmptyTile {
				row[c-1] = t
				continue
			}
			if merged, ok := merge(hold, t); ok {
				row[c-1] = merged
				score += merged.Face()
				hold = EmptyTile
			} else {
				hold = t
			}
		}
		row[Dim-1] = hold
	}
	if prev == b.tiles {
		return IllegalMove
	}
	return score
}

func (b *Board) slideRight() int {
	b.ReflectHorizontal()
	score := b.slideLeft()
	b.ReflectHorizontal()
	return score
}

func (b *Board) slideUp() int {
	b.RotateRight()
	score := b.slideRight()
	b.RotateLeft()
	return score
}

func (b *Board) slideDown() int {
	b.RotateRight()
	score := b.slideLeft()
	b.RotateLeft()
	return score
}

// CanSlide reports whether any direction is legal.
func (b *Board) CanSlide() bool {
	for _, d := range Directions {
		cp := *b
		if cp.Slide(d) != IllegalMove {
			return true
		}
	}
	return false
}

func (b *Board) Transpose() {
	for r := 0; r < Dim; r++ {
		for c := r + 1; c < Dim; c++ {
			b.tiles[r][c], b.tiles[c][r] = b.tiles[c][r], b.tiles[r][c]
		}
	}
}

// ReflectHorizontal mirrors the board left to right.
func (b *Board) ReflectHorizontal() {
	for r := 0; r < Dim; r++ {
		b.tiles[r][0], b.tiles[r][3] = b.tiles[r][3], b.tiles[r][0]
		b.tiles[r][1], b.tiles[r][2] = b.tiles[r][2], b.tiles[r][1]
	}
}

// ReflectVertical mirrors the board top to bottom.
func (b *Board) ReflectVertical() {
	b.tiles[0], b.tiles[3] = b.tiles[3], b.tiles[0]
	b.tiles[1], b.tiles[2] = b.tiles[2], b.tiles[1]
}

// Rotate turns the board clockwise by k quarter turns. Negative k turns
// counterclockwise.
func (b *Board) Rotate(k int) {
	switch ((k % 4) + 4) % 4 {
	case 1:
		b.RotateRight()
	case 2:
		b.Reverse()
	case 3:
		b.RotateLeft()
	}
}

// RotateRight turns the board a quarter turn clockwise.
func (b *Board) RotateRight() {
	b.Transpose()
	b.ReflectHorizontal()
}

// RotateLeft turns the board a quarter turn counterclockwise.
func (b *Board) RotateLeft() {
	b.Transpose()
	b.ReflectVertical()
}

// Reverse turns the board half way around.
func (b *Board) Reverse() {
	b.ReflectHorizontal()
	b.ReflectVertical()
}
