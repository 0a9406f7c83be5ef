package agent

import (
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/threes/board"
	"github.com/domino14/threes/move"
	"github.com/domino14/threes/ntuple"
)

var stuckBoard = board.FromGrid(board.Grid{
	{1, 3, 1, 3},
	{3, 1, 3, 1},
	{1, 3, 1, 3},
	{3, 1, 3, 1},
})

func mustArgs(t *testing.T, s string) Args {
	a, err := ParseArgs(s)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func fourTupleNet(t *testing.T) *ntuple.Network {
	n, err := ntuple.NewNetwork(ntuple.FourTuplePatterns, 0)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestParseArgs(t *testing.T) {
	is := is.New(t)
	a, err := ParseArgs("name=foo role=player seed=5 alpha=0.05 symmetry=8 custom=bar flag")
	is.NoErr(err)
	is.Equal(a.Name, "foo")
	is.Equal(*a.Seed, uint64(5))
	is.Equal(*a.Alpha, 0.05)
	is.Equal(*a.Symmetry, 8)
	is.True(a.Decay == nil)
	is.Equal(a.Extra["custom"], "bar")

	v, ok := a.Property("flag")
	is.True(ok)
	is.Equal(v, "")
	v, ok = a.Property("alpha")
	is.True(ok)
	is.Equal(v, "0.05")
	_, ok = a.Property("decay")
	is.True(!ok)
	is.Equal(a.MustProperty("custom"), "bar")

	_, err = ParseArgs("seed=abc")
	is.True(err != nil)
	_, err = ParseArgs("alpha=")
	is.True(err != nil)
}

func TestMustPropertyPanics(t *testing.T) {
	is := is.New(t)
	defer func() {
		r := recover()
		is.True(r != nil)
	}()
	a := mustArgs(t, "name=x")
	a.MustProperty("load")
}

func TestKinds(t *testing.T) {
	is := is.New(t)
	for _, name := range []string{"environment", "random", "greedy", "learning"} {
		k, err := KindFromString(name)
		is.NoErr(err)
		is.Equal(k.String(), name)
	}
	_, err := KindFromString("expectimax")
	is.True(err != nil)

	env, err := New(KindEnvironment, mustArgs(t, "seed=1"), nil)
	is.NoErr(err)
	is.Equal(env.Role(), "environment")
	is.Equal(env.Name(), "random")

	p, err := New(KindLearningPlayer, mustArgs(t, "name=me"), fourTupleNet(t))
	is.NoErr(err)
	is.Equal(p.Role(), "player")
	is.Equal(p.Name(), "me")
	is.Equal(p.Learner().Symmetries, DefaultSymmetry)

	_, err = New(KindLearningPlayer, mustArgs(t, ""), nil)
	is.True(err != nil)
	_, err = New(KindLearningPlayer, mustArgs(t, "symmetry=3"), fourTupleNet(t))
	is.True(err != nil)
	_, err = New(Kind(12), mustArgs(t, ""), nil)
	is.True(err != nil)
}

func TestTerminalBoard(t *testing.T) {
	is := is.New(t)
	net := fourTupleNet(t)
	for _, k := range []Kind{KindRandomPlayer, KindGreedyPlayer, KindLearningPlayer} {
		p, err := New(k, mustArgs(t, "seed=3"), net)
		is.NoErr(err)
		b := stuckBoard
		is.True(p.TakeAction(&b).IsNone())
		_, ok := p.SelectAction(&b)
		is.True(!ok)
		is.Equal(len(p.Candidates(&b)), 0)
		is.True(b.Equal(&stuckBoard))
	}
}

func TestGreedyPrefersReward(t *testing.T) {
	is := is.New(t)
	b := board.FromGrid(board.Grid{{1, 2, 0, 0}})
	for seed := 0; seed < 20; seed++ {
		p, err := New(KindGreedyPlayer, Args{Seed: ptr(uint64(seed))}, nil)
		is.NoErr(err)
		a := p.TakeAction(&b)
		is.Equal(a, move.Slide(board.Left))
	}
	p, err := New(KindGreedyPlayer, mustArgs(t, "seed=1"), nil)
	is.NoErr(err)
	cands := p.Candidates(&b)
	is.Equal(len(cands), 3) // up is illegal
	is.Equal(cands[0].Direction, board.Right)
}

func TestGreedyUsesNetwork(t *testing.T) {
	is := is.New(t)
	net := fourTupleNet(t)
	b := board.FromGrid(board.Grid{{1, 2, 0, 0}})
	right := b
	is.Equal(right.Slide(board.Right), 0)
	net.Table(0)[net.Patterns()[0].Index(&right)] = 10

	for seed := 0; seed < 10; seed++ {
		p, err := New(KindGreedyPlayer, Args{Seed: ptr(uint64(seed))}, net)
		is.NoErr(err)
		c, ok := p.SelectAction(&b)
		is.True(ok)
		is.Equal(c.Direction, board.Right)
		is.Equal(c.Reward, 0)
		is.Equal(c.Score, 10.0)
		is.True(c.After.Equal(&right))
	}
}

func TestRandomPlayerOnlyLegal(t *testing.T) {
	is := is.New(t)
	b := board.FromGrid(board.Grid{{1}})
	p, err := New(KindRandomPlayer, mustArgs(t, "seed=11"), nil)
	is.NoErr(err)
	for i := 0; i < 30; i++ {
		a := p.TakeAction(&b)
		is.Equal(a.Type(), move.ActionTypeSlide)
		is.True(a.Direction() == board.Right || a.Direction() == board.Down)
	}
}

func TestLearningEpisode(t *testing.T) {
	is := is.New(t)
	net := fourTupleNet(t)
	player, err := New(KindLearningPlayer, mustArgs(t, "seed=7 alpha=0.1"), net)
	is.NoErr(err)
	env, err := New(KindEnvironment, mustArgs(t, "seed=7"), nil)
	is.NoErr(err)

	b := board.New()
	player.OpenEpisode()
	env.OpenEpisode()
	for i := 0; i < 2; i++ {
		_, err := env.TakeAction(&b).Apply(&b)
		is.NoErr(err)
	}
	slides := 0
	for {
		a := player.TakeAction(&b)
		if a.IsNone() {
			break
		}
		_, err := a.Apply(&b)
		is.NoErr(err)
		slides++
		is.Equal(len(player.Trajectory()), slides)
		last := player.Trajectory()[slides-1].After
		is.True(last.Equal(&b)) // recorded the after-state
		p := env.TakeAction(&b)
		if p.IsNone() {
			break
		}
		_, err = p.Apply(&b)
		is.NoErr(err)
	}
	is.True(slides > 0)
	player.CloseEpisode()
	env.CloseEpisode()
	is.Equal(len(player.Trajectory()), 0)
	is.True(player.LastTrainingError() > 0)

	touched := false
	for i := 0; i < net.NumPatterns(); i++ {
		for _, w := range net.Table(i) {
			if w != 0 {
				touched = true
			}
		}
	}
	is.True(touched)

	player.OpenEpisode()
	is.Equal(len(player.Trajectory()), 0)
}

func TestWeightsFromArgs(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "w.bin")

	args := mustArgs(t, "patterns=four-tuple init=0.25 save="+path)
	net, err := NetworkFromArgs(args, ntuple.SixTuplePatterns)
	is.NoErr(err)
	is.Equal(net.NumPatterns(), 4)
	p, err := New(KindLearningPlayer, args, net)
	is.NoErr(err)
	is.NoErr(p.Close())

	loaded, err := NetworkFromArgs(mustArgs(t, "patterns=four-tuple load="+path), nil)
	is.NoErr(err)
	empty := board.New()
	is.Equal(loaded.Value(&empty), 1.0)

	_, err = NetworkFromArgs(mustArgs(t, "patterns=four-tuple load="+filepath.Join(dir, "nope")), nil)
	is.True(err != nil)
	_, err = NetworkFromArgs(mustArgs(t, "patterns=bogus"), nil)
	is.True(err != nil)

	random, err := New(KindRandomPlayer, mustArgs(t, "save="+path), nil)
	is.NoErr(err)
	is.NoErr(random.Close())
}

func ptr[T any](v T) *T {
	return &v
}
