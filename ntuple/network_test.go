package ntuple

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pbnjay/memory"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/threes/board"
)

func TestPatternIndex(t *testing.T) {
	p := Pattern{0, 4, 8, 12}
	b := board.FromGrid(board.Grid{
		{1, 0, 0, 0},
		{2, 0, 0, 0},
		{3, 0, 0, 0},
		{15, 0, 0, 0},
	})
	assert.Equal(t, uint32(1|2<<4|3<<8|15<<12), p.Index(&b))
	assert.Equal(t, 1<<16, p.Size())

	// Cells outside the pattern do not matter.
	other := board.FromGrid(board.Grid{
		{1, 3, 3, 3},
		{2, 1, 0, 0},
		{3, 0, 9, 0},
		{15, 0, 0, 2},
	})
	assert.Equal(t, p.Index(&b), p.Index(&other))

	// Any change inside the pattern does.
	seen := map[uint32]bool{p.Index(&b): true}
	for _, pos := range p {
		for code := board.Tile(0); code <= board.MaxTile; code++ {
			if code == b.At(pos) {
				continue
			}
			cells := [board.NumCells]board.Tile{}
			for i := range cells {
				cells[i] = b.At(i)
			}
			cells[pos] = code
			changed := board.FromCells(cells)
			idx := p.Index(&changed)
			assert.NotEqual(t, p.Index(&b), idx)
			assert.False(t, seen[idx])
			seen[idx] = true
			assert.Less(t, int(idx), p.Size())
		}
	}
}

func TestNewNetworkValidation(t *testing.T) {
	_, err := NewNetwork(nil, 0)
	assert.ErrorIs(t, err, ErrNoPatterns)

	_, err = NewNetwork([]Pattern{{0, 1, 2, 3, 4, 5, 6}}, 0)
	assert.ErrorIs(t, err, ErrBadPattern)

	_, err = NewNetwork([]Pattern{{0, 16}}, 0)
	assert.ErrorIs(t, err, ErrBadPattern)

	_, err = NewNetwork([]Pattern{{0, 1, 1}}, 0)
	assert.ErrorIs(t, err, ErrBadPattern)

	n, err := NewNetwork(FourTuplePatterns, 0.5)
	assert.NoError(t, err)
	assert.Equal(t, 4, n.NumPatterns())
	assert.Equal(t, uint64(4*65536*4), n.MemoryBytes())
	b := board.New()
	assert.InDelta(t, 2.0, n.Value(&b), 1e-9)
}

func TestPatternSet(t *testing.T) {
	ps, err := PatternSet("Six-Tuple")
	assert.NoError(t, err)
	assert.Len(t, ps, 4)
	assert.Equal(t, uint64(4*(1<<24)*4), PatternBytes(ps))

	_, err = PatternSet("eight-tuple")
	assert.Error(t, err)
}

func TestValueSumsTables(t *testing.T) {
	n, err := NewNetwork(FourTuplePatterns, 0)
	assert.NoError(t, err)
	b := board.FromGrid(board.Grid{{1, 2, 3}, {3}})
	for i, p := range n.Patterns() {
		n.Table(i)[p.Index(&b)] = float32(i + 1)
	}
	assert.InDelta(t, 10.0, n.Value(&b), 1e-9)

	empty := board.New()
	assert.InDelta(t, 0.0, n.Value(&empty), 1e-9)
}

func TestSaveLoad(t *testing.T) {
	n, err := NewNetwork(FourTuplePatterns, 0)
	assert.NoError(t, err)
	for i := 0; i < n.NumPatterns(); i++ {
		n.Table(i)[i*7+3] = float32(i) + 0.25
	}
	var buf bytes.Buffer
	assert.NoError(t, n.Save(&buf))
	assert.Equal(t, 4+4*(8+65536*4), buf.Len())

	loaded, err := NewNetwork(FourTuplePatterns, 0)
	assert.NoError(t, err)
	assert.NoError(t, loaded.Load(bytes.NewReader(buf.Bytes())))
	for i := 0; i < n.NumPatterns(); i++ {
		assert.Equal(t, n.Table(i), loaded.Table(i))
	}

	fewer, err := NewNetwork(FourTuplePatterns[:2], 0)
	assert.NoError(t, err)
	err = fewer.Load(bytes.NewReader(buf.Bytes()))
	assert.True(t, errors.Is(err, ErrTableCountMismatch))

	wrongShape, err := NewNetwork([]Pattern{{0, 1, 2}, {4, 5, 6, 7}, {0, 4, 8, 12}, {1, 5, 9, 13}}, 0)
	assert.NoError(t, err)
	err = wrongShape.Load(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrTableSizeMismatch)

	err = loaded.Load(bytes.NewReader(buf.Bytes()[:100]))
	assert.Error(t, err)
	for i := 0; i < n.NumPatterns(); i++ {
		assert.Equal(t, n.Table(i), loaded.Table(i))
	}

	// A file cut off in a later table leaves the earlier tables alone too.
	cut := 4 + 2*(8+65536*4) + 10
	blank, err := NewNetwork(FourTuplePatterns, 0)
	assert.NoError(t, err)
	assert.Error(t, blank.Load(bytes.NewReader(buf.Bytes()[:cut])))
	for i := 0; i < blank.NumPatterns(); i++ {
		assert.Equal(t, make([]float32, 65536), blank.Table(i))
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.bin")
	n, err := NewNetwork(FourTuplePatterns, 1.5)
	assert.NoError(t, err)
	assert.NoError(t, n.SaveFile(path))

	loaded, err := NewNetwork(FourTuplePatterns, 0)
	assert.NoError(t, err)
	assert.NoError(t, loaded.LoadFile(path))
	b := board.New()
	assert.InDelta(t, 6.0, loaded.Value(&b), 1e-9)

	assert.Error(t, loaded.LoadFile(filepath.Join(t.TempDir(), "missing.bin")))
}

func TestCheckMemory(t *testing.T) {
	if memory.TotalMemory() == 0 {
		t.Skip("total memory is unknown on this platform")
	}
	assert.NoError(t, CheckMemory(FourTuplePatterns, 0.9))
	assert.ErrorIs(t, CheckMemory(FourTuplePatterns, 0), ErrTooLarge)
}
