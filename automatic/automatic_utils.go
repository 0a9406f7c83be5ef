package automatic

// Counters for episodes played by the runner, visible through expvar.

import (
	"context"
	"expvar"

	"github.com/domino14/threes/store"
)

var (
	EpisodeCounter *expvar.Int
	IsPlaying      *expvar.Int
	LastBlockMean  *expvar.Float
)

func init() {
	EpisodeCounter = expvar.NewInt("episodeCounter")
	IsPlaying = expvar.NewInt("isPlaying")
	LastBlockMean = expvar.NewFloat("lastBlockMean")
}

const (
	PhaseTrain = "train"
	PhaseEval  = "eval"
)

// ResultSink receives every finished episode. store.ResultStore is one.
type ResultSink interface {
	RecordEpisode(ctx context.Context, e store.Episode) error
}

// BlockPublisher receives every finished block summary.
type BlockPublisher interface {
	PublishBlock(ctx context.Context, s BlockSummary) error
}

func episodeRecord(run, phase string, r EpisodeResult) store.Episode {
	return store.Episode{
		Run:     run,
		Phase:   phase,
		Episode: r.Episode,
		Score:   r.Score,
		MaxFace: r.MaxFace,
		Moves:   r.Moves,
		Won:     r.Won,
	}
}

const logHeader = "player,episode,score,maxface,moves,won,tderror\n"
