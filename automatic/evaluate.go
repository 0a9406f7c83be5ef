package automatic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/threes/agent"
	"github.com/domino14/threes/ntuple"
)

// evalStream keeps evaluation seeds apart from any other use of the base
// seed.
const evalStream = 0xe7a1

type EvalOptions struct {
	Run     string
	Games   int
	Threads int
	// OpeningTiles is DefaultOpeningTiles when nil. Zero is a valid count.
	OpeningTiles *int
	WinFace      int
	Seed         [32]byte
	Sink         ResultSink
}

// Evaluate plays games with greedy players over a shared, frozen network.
// Game i is seeded from the base seed and i alone, so the results do not
// depend on the number of threads. The returned episodes are in game order.
func Evaluate(ctx context.Context, net *ntuple.Network, opts EvalOptions) (BlockSummary, []EpisodeResult, error) {
	logger := zerolog.Ctx(ctx)
	if opts.Games <= 0 {
		return BlockSummary{}, nil, ErrNoEpisodes
	}
	if opts.Threads <= 0 {
		opts.Threads = 1
	}
	if opts.WinFace == 0 {
		opts.WinFace = DefaultWinFace
	}
	openingTiles := DefaultOpeningTiles
	if opts.OpeningTiles != nil {
		openingTiles = *opts.OpeningTiles
	}

	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)

	results := make([]EpisodeResult, opts.Games)
	jobs := make(chan int, opts.Threads)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.Games; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for t := 0; t < opts.Threads; t++ {
		g.Go(func() error {
			defer logger.Debug().Int("thread", t).Msg("eval-thread-exiting")
			env, err := agent.New(agent.KindEnvironment, agent.Args{Name: fmt.Sprintf("eval-env-%d", t)}, nil)
			if err != nil {
				return err
			}
			// Greedy players only read the network.
			player, err := agent.New(agent.KindGreedyPlayer, agent.Args{Name: fmt.Sprintf("eval-%d", t)}, net)
			if err != nil {
				return err
			}
			r := NewGameRunner(player, env)
			r.SetOpeningTiles(openingTiles)
			r.SetWinFace(opts.WinFace)
			for i := range jobs {
				r.Reseed(DeriveSeed(opts.Seed, evalStream, uint64(i)))
				res, err := r.PlayEpisode()
				if err != nil {
					return err
				}
				res.Episode = i + 1
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BlockSummary{}, nil, err
	}

	bs := newBlockStats(1)
	for _, res := range results {
		bs.add(res)
		if opts.Sink != nil {
			if err := opts.Sink.RecordEpisode(ctx, episodeRecord(opts.Run, PhaseEval, res)); err != nil {
				return BlockSummary{}, nil, err
			}
		}
	}
	s := finishBlock(ctx, bs, opts.Run, PhaseEval, opts.WinFace, nil)
	return s, results, nil
}
