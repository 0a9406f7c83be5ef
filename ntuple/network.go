// Package ntuple implements an n-tuple network: a linear value function
// over a board, computed as the sum of table lookups, one per fixed group
// of cells. It also holds the TD(0) rule that trains those tables.
package ntuple

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/threes/board"
)

// MaxTupleSize keeps every index below 2^24.
const MaxTupleSize = 6

var (
	ErrBadPattern = errors.New("invalid n-tuple pattern")
	ErrNoPatterns = errors.New("a network needs at least one pattern")
	ErrTooLarge   = errors.New("weight tables do not fit in memory")
)

// Pattern is an ordered list of cell positions. The tile at the i-th
// position fills bits 4i..4i+3 of the table index; since a tile code never
// exceeds 15 this packing is injective.
type Pattern []int

// Index decodes the board under this pattern.
func (p Pattern) Index(b *board.Board) uint32 {
	var idx uint32
	for i, pos := range p {
		idx |= uint32(b.At(pos)) << (4 * i)
	}
	return idx
}

// Size is the number of entries the pattern's table needs.
func (p Pattern) Size() int {
	return 1 << (4 * len(p))
}

func (p Pattern) validate() error {
	if len(p) == 0 || len(p) > MaxTupleSize {
		return fmt.Errorf("%w: %v has %d cells", ErrBadPattern, p, len(p))
	}
	seen := map[int]bool{}
	for _, pos := range p {
		if pos < 0 || pos >= board.NumCells {
			return fmt.Errorf("%w: %v has position %d", ErrBadPattern, p, pos)
		}
		if seen[pos] {
			return fmt.Errorf("%w: %v repeats position %d", ErrBadPattern, p, pos)
		}
		seen[pos] = true
	}
	return nil
}

var (
	// SixTuplePatterns are two straight-and-square 6-tuples and two
	// corner-shaped ones. Each table has 2^24 entries.
	SixTuplePatterns = []Pattern{
		{0, 4, 8, 12, 9, 13},
		{1, 5, 9, 13, 10, 14},
		{1, 5, 9, 10, 6, 2},
		{2, 6, 10, 11, 7, 3},
	}
	// FourTuplePatterns are the outer and inner rows and columns. They are
	// small enough for quick experiments and tests.
	FourTuplePatterns = []Pattern{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
		{0, 4, 8, 12},
		{1, 5, 9, 13},
	}
)

// PatternSets are the layouts selectable by name from configuration.
var PatternSets = map[string][]Pattern{
	"six-tuple":  SixTuplePatterns,
	"four-tuple": FourTuplePatterns,
}

// PatternSet looks up a named layout.
func PatternSet(name string) ([]Pattern, error) {
	ps, ok := PatternSets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown pattern set %q", name)
	}
	return ps, nil
}

// Network is a value function. The number of tables is fixed when it is
// created. A Network may be read from many goroutines, but updates must
// come from a single owner.
type Network struct {
	patterns []Pattern
	tables   [][]float32
}

// NewNetwork allocates one table per pattern with every weight set to init.
func NewNetwork(patterns []Pattern, init float32) (*Network, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	n := &Network{
		patterns: make([]Pattern, len(patterns)),
		tables:   make([][]float32, len(patterns)),
	}
	for i, p := range patterns {
		if err := p.validate(); err != nil {
			return nil, err
		}
		n.patterns[i] = append(Pattern(nil), p...)
		n.tables[i] = make([]float32, p.Size())
		if init != 0 {
			for j := range n.tables[i] {
				n.tables[i][j] = init
			}
		}
	}
	log.Debug().Int("patterns", len(patterns)).
		Uint64("bytes", n.MemoryBytes()).
		Float32("init", init).
		Msg("allocated-ntuple-network")
	return n, nil
}

func (n *Network) NumPatterns() int {
	return len(n.patterns)
}

func (n *Network) Patterns() []Pattern {
	return n.patterns
}

// Table returns the weights of the i-th pattern. The slice is shared.
func (n *Network) Table(i int) []float32 {
	return n.tables[i]
}

// Value estimates the board.
func (n *Network) Value(b *board.Board) float64 {
	v := 0.0
	for i, p := range n.patterns {
		v += float64(n.tables[i][p.Index(b)])
	}
	return v
}

// add moves every entry addressed by b by step.
func (n *Network) add(b *board.Board, step float32) {
	for i, p := range n.patterns {
		n.tables[i][p.Index(b)] += step
	}
}

// MemoryBytes is the size of all tables.
func (n *Network) MemoryBytes() uint64 {
	return PatternBytes(n.patterns)
}

// PatternBytes is the size a network built from patterns would need.
func PatternBytes(patterns []Pattern) uint64 {
	var total uint64
	for _, p := range patterns {
		total += uint64(p.Size()) * 4
	}
	return total
}

// CheckMemory fails if the tables would take more than fraction of the
// machine's total memory.
func CheckMemory(patterns []Pattern, fraction float64) error {
	need := PatternBytes(patterns)
	total := memory.TotalMemory()
	if total == 0 {
		// Unknown on this platform; let the allocation speak for itself.
		return nil
	}
	allowed := uint64(fraction * float64(total))
	log.Debug().Uint64("need-bytes", need).
		Uint64("total-system-memory-bytes", total).
		Uint64("allowed-bytes", allowed).
		Msg("ntuple-memory-check")
	if need > allowed {
		return fmt.Errorf("%w: need %d bytes, allowed %d of %d",
			ErrTooLarge, need, allowed, total)
	}
	return nil
}
