package automatic

import (
	"bufio"
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/threes/stats"
)

var ErrNoEpisodes = errors.New("episode count must be positive")

type TrainOptions struct {
	Run       string
	Episodes  int
	BlockSize int
	// Seeds, if set, reseed both agents before each episode, cycling when
	// there are fewer seeds than episodes.
	Seeds      [][32]byte
	EpisodeLog string
	Sink       ResultSink
	Publisher  BlockPublisher
}

// Train plays episodes with the runner's agents (a learning player trains
// itself as each episode closes) and summarizes every block of
// BlockSize episodes. A canceled context stops after the current episode
// and is not an error.
func Train(ctx context.Context, r *GameRunner, opts TrainOptions) ([]BlockSummary, error) {
	logger := zerolog.Ctx(ctx)
	if opts.Episodes <= 0 {
		return nil, ErrNoEpisodes
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = opts.Episodes
	}

	var logChan chan string
	writer := errgroup.Group{}
	if opts.EpisodeLog != "" {
		f, err := os.Create(opts.EpisodeLog)
		if err != nil {
			return nil, err
		}
		logChan = make(chan string, 100)
		r.SetLogChan(logChan)
		writer.Go(func() error {
			defer logger.Debug().Msg("episode-log-writer-exiting")
			return writeLog(f, logChan)
		})
	}

	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)

	var blocks []BlockSummary
	var overall stats.Statistic
	var err error
	bs := newBlockStats(r.Played() + 1)

episodes:
	for i := 0; i < opts.Episodes; i++ {
		select {
		case <-ctx.Done():
			logger.Info().Int("played", i).Msg("got-stop-signal")
			break episodes
		default:
		}
		if len(opts.Seeds) > 0 {
			r.Reseed(opts.Seeds[i%len(opts.Seeds)])
		}
		res, perr := r.PlayEpisode()
		if perr != nil {
			err = perr
			break
		}
		if opts.Sink != nil {
			if serr := opts.Sink.RecordEpisode(ctx, episodeRecord(opts.Run, PhaseTrain, res)); serr != nil {
				err = serr
				break
			}
		}
		bs.add(res)
		if bs.count() == opts.BlockSize {
			blocks = append(blocks, finishBlock(ctx, bs, opts.Run, PhaseTrain, r.winFace, opts.Publisher))
			overall.Merge(&bs.scores)
			bs = newBlockStats(r.Played() + 1)
		}
	}
	if err == nil && bs.count() > 0 {
		blocks = append(blocks, finishBlock(ctx, bs, opts.Run, PhaseTrain, r.winFace, opts.Publisher))
		overall.Merge(&bs.scores)
	}
	if overall.Iterations() > 0 {
		logger.Info().Int("episodes", overall.Iterations()).
			Float64("mean-score", overall.Mean()).
			Float64("stdev", overall.Stdev()).
			Float64("max-score", overall.Max()).
			Msg("training-done")
	}

	if logChan != nil {
		r.SetLogChan(nil)
		close(logChan)
		if werr := writer.Wait(); werr != nil && err == nil {
			err = werr
		}
	}
	return blocks, err
}

func finishBlock(ctx context.Context, bs *blockStats, run, phase string, winFace int,
	pub BlockPublisher) BlockSummary {

	logger := zerolog.Ctx(ctx)
	s := bs.summary(run, phase, winFace)
	LastBlockMean.Set(s.MeanScore)
	logger.Info().
		Str("phase", phase).
		Int("first", s.FirstEpisode).
		Int("last", s.LastEpisode).
		Float64("mean-score", s.MeanScore).
		Float64("stdev", s.StdevScore).
		Int("max-score", s.MaxScore).
		Float64("win-rate", s.WinRate).
		Float64("mean-td-error", s.MeanTDError).
		Float64("secs", s.Seconds).
		Msg("episode-block")
	logger.Debug().Msg("\n" + ScoreHistogram(bs.raw, 40))
	if pub != nil {
		// Progress messages are best effort.
		if err := pub.PublishBlock(ctx, s); err != nil {
			logger.Warn().Err(err).Msg("publish-block-failed")
		}
	}
	return s
}

// writeLog drains the channel into the file. After a write error it keeps
// draining so the runner never blocks.
func writeLog(f *os.File, ch <-chan string) error {
	w := bufio.NewWriter(f)
	_, err := w.WriteString(logHeader)
	for msg := range ch {
		if err != nil {
			continue
		}
		_, err = w.WriteString(msg)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
