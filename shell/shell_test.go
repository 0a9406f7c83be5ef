package shell

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/threes/agent"
	"github.com/domino14/threes/automatic"
	"github.com/domino14/threes/board"
	"github.com/domino14/threes/config"
	"github.com/domino14/threes/ntuple"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -threads 4",
			&shellcmd{"autoplay", nil, CmdOptions{"threads": {"4"}}},
			nil},
		{"slide up",
			&shellcmd{"slide", []string{"up"}, CmdOptions{}},
			nil},
		{"load 'my weights.bin' -patterns four-tuple ",
			&shellcmd{"load",
				[]string{"my weights.bin"},
				CmdOptions{"patterns": {"four-tuple"}}},
			nil,
		},
		{"autoplay 10 -seed",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return newController(config.DefaultConfig(), &out), &out
}

func run(t *testing.T, sc *ShellController, line string) string {
	t.Helper()
	out := sc.out.(*bytes.Buffer)
	out.Reset()
	if err := sc.standardModeSwitch(line, nil); err != nil {
		t.Fatalf("%s: %v", line, err)
	}
	return out.String()
}

func TestPlaceAndSlide(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	run(t, sc, "place 1@0")
	run(t, sc, "place 1 2")
	is.Equal(sc.board.At(0), board.Tile(1))
	is.Equal(sc.board.At(1), board.Tile(2))

	out := run(t, sc, "slide left -place false")
	is.True(strings.Contains(out, "for 3"))
	is.Equal(sc.score, 3)
	is.Equal(sc.board.At(0), board.Tile(3))
	is.Equal(sc.board.EmptyCount(), 15)

	// after a right slide the environment fills the left column
	out = run(t, sc, "slide right")
	is.True(strings.Contains(out, "environment placed"))
	is.Equal(sc.board.EmptyCount(), 14)
	is.Equal(sc.board.At(1), board.Tile(3))

	out = run(t, sc, "place 6@4")
	is.True(strings.HasPrefix(out, "Error:"))
	out = run(t, sc, "slide sideways")
	is.True(strings.HasPrefix(out, "Error:"))
}

func TestIllegalSlide(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "place 3@0")
	out := run(t, sc, "slide up")
	is.True(strings.HasPrefix(out, "Error:"))
	is.Equal(sc.score, 0)
	is.Equal(sc.board.Moves(), 0)
}

func TestNewBoard(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "new -seed 3")
	is.Equal(sc.board.EmptyCount(), 14)
	first := sc.board
	run(t, sc, "new -seed 3 -opening 2")
	is.True(sc.board.Equal(&first))
	run(t, sc, "new -opening 0")
	is.Equal(sc.board.EmptyCount(), 16)
}

func TestBestAndValue(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "place 1@0")
	run(t, sc, "place 2@1")
	out := run(t, sc, "best")
	is.True(strings.Contains(out, "greedy player picks left"))

	out = run(t, sc, "value")
	is.True(strings.Contains(out, "no weights loaded"))

	net, err := ntuple.NewNetwork(ntuple.FourTuplePatterns, 0.5)
	is.NoErr(err)
	path := filepath.Join(t.TempDir(), "w.bin")
	is.NoErr(net.SaveFile(path))

	out = run(t, sc, "load "+path+" -patterns four-tuple")
	is.True(strings.Contains(out, "loaded 4 tables"))
	out = run(t, sc, "value")
	is.Equal(strings.TrimSpace(out), "2.0000")

	out = run(t, sc, "load "+filepath.Join(t.TempDir(), "missing.bin")+" -patterns four-tuple")
	is.True(strings.HasPrefix(out, "Error:"))
}

func TestAutoplayAndHelp(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	out := run(t, sc, "autoplay 6 -threads 2 -seed 9")
	is.True(strings.Contains(out, "eval episodes 1-6"))

	out = run(t, sc, "help")
	is.True(strings.Contains(out, "autoplay"))
	out = run(t, sc, "help slide")
	is.True(strings.Contains(out, "merge"))
	out = run(t, sc, "help nothing")
	is.True(strings.Contains(out, "no help text"))

	out = run(t, sc, "frobnicate")
	is.True(strings.Contains(out, "unknown command"))

	is.True(sc.standardModeSwitch("exit", nil) != nil)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	c := NewShellCompleter(sc)

	matches, n := c.Do([]rune("sl"), 2)
	is.Equal(n, 2)
	is.Equal(matches, [][]rune{[]rune("ide")})

	matches, _ = c.Do([]rune("slide "), 6)
	is.Equal(len(matches), 4)

	matches, n = c.Do([]rune("load w.bin -patterns f"), 22)
	is.Equal(n, 1)
	is.Equal(matches, [][]rune{[]rune("our-tuple")})
}

// picks records which direction a player takes on a board where every
// slide is legal and scores the same, so only its random stream decides.
func picks(p *agent.Agent) []board.Direction {
	b := board.FromGrid(board.Grid{{}, {0, 1}})
	out := make([]board.Direction, 24)
	for i := range out {
		out[i] = p.TakeAction(&b).Direction()
	}
	return out
}

func TestSeededNewSplitsStreams(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	seed := uint64(5)
	is.NoErr(sc.resetAgents(&seed))

	want, err := agent.New(agent.KindGreedyPlayer, agent.Args{}, nil)
	is.NoErr(err)
	want.Reseed(automatic.DeriveSeed(agent.SeedBytes(seed), 1, 0))
	is.Equal(picks(sc.player), picks(want))

	shared, err := agent.New(agent.KindGreedyPlayer, agent.Args{Seed: &seed}, nil)
	is.NoErr(err)
	sc2, _ := testController(t)
	is.NoErr(sc2.resetAgents(&seed))
	is.True(!slices.Equal(picks(sc2.player), picks(shared)))
}
