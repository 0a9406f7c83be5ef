// Package store keeps per-episode results in a sqlite database so runs can
// be compared after the fact.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var ErrNoEpisodes = errors.New("no episodes recorded for run")

const schema = `
CREATE TABLE IF NOT EXISTS episodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run TEXT NOT NULL,
	phase TEXT NOT NULL,
	episode INTEGER NOT NULL,
	score INTEGER NOT NULL,
	max_face INTEGER NOT NULL,
	moves INTEGER NOT NULL,
	won INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS episodes_run ON episodes (run, phase);
`

// Episode is one finished game.
type Episode struct {
	Run     string
	Phase   string
	Episode int
	Score   int
	MaxFace int
	Moves   int
	Won     bool
}

// Summary aggregates the episodes of one run and phase.
type Summary struct {
	Episodes  int
	MeanScore float64
	BestScore int
	BestFace  int
	Wins      int
}

type ResultStore struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open creates the database file and schema if needed.
func Open(ctx context.Context, path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening results db %s: %w", path, err)
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	insert, err := db.PrepareContext(ctx,
		`INSERT INTO episodes (run, phase, episode, score, max_face, moves, won)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("opened-results-db")
	return &ResultStore{db: db, insert: insert}, nil
}

func (s *ResultStore) RecordEpisode(ctx context.Context, e Episode) error {
	won := 0
	if e.Won {
		won = 1
	}
	_, err := s.insert.ExecContext(ctx, e.Run, e.Phase, e.Episode, e.Score, e.MaxFace, e.Moves, won)
	return err
}

func (s *ResultStore) Summary(ctx context.Context, run, phase string) (Summary, error) {
	var sm Summary
	var mean sql.NullFloat64
	var best, face, wins sql.NullInt64
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(score), MAX(score), MAX(max_face), SUM(won)
		 FROM episodes WHERE run = ? AND phase = ?`, run, phase)
	if err := row.Scan(&sm.Episodes, &mean, &best, &face, &wins); err != nil {
		return sm, err
	}
	if sm.Episodes == 0 {
		return sm, fmt.Errorf("%w: %s/%s", ErrNoEpisodes, run, phase)
	}
	sm.MeanScore = mean.Float64
	sm.BestScore = int(best.Int64)
	sm.BestFace = int(face.Int64)
	sm.Wins = int(wins.Int64)
	return sm, nil
}

// FaceCounts returns how many episodes of the run ended with each max face.
func (s *ResultStore) FaceCounts(ctx context.Context, run, phase string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT max_face, COUNT(*) FROM episodes WHERE run = ? AND phase = ?
		 GROUP BY max_face`, run, phase)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int]int{}
	for rows.Next() {
		var face, n int
		if err := rows.Scan(&face, &n); err != nil {
			return nil, err
		}
		out[face] = n
	}
	return out, rows.Err()
}

func (s *ResultStore) Close() error {
	s.insert.Close()
	return s.db.Close()
}
