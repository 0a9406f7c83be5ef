package automatic

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrBadLogLine = errors.New("malformed episode log line")

// AnalyzeLogFile reads an episode CSV written during training and
// summarizes it.
func AnalyzeLogFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return AnalyzeLog(f)
}

func AnalyzeLog(in io.Reader) (string, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	bs := newBlockStats(0)
	var player string
	firstEpisode, lastEpisode := 0, 0
	// The win threshold is not in the log; the smallest max face of a won
	// episode stands in for it.
	winFace := 0
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "player" {
			continue
		}
		if len(record) != 7 {
			return "", fmt.Errorf("%w: line %d has %d fields", ErrBadLogLine, line, len(record))
		}
		res, err := parseLogRecord(record)
		if err != nil {
			return "", fmt.Errorf("%w: line %d: %v", ErrBadLogLine, line, err)
		}
		if bs.count() == 0 {
			firstEpisode = res.Episode
		}
		lastEpisode = res.Episode
		player = record[0]
		if res.Won && (winFace == 0 || res.MaxFace < winFace) {
			winFace = res.MaxFace
		}
		bs.add(res)
	}
	if bs.count() == 0 {
		return "Episodes played: 0\n", nil
	}
	s := bs.summary("", PhaseTrain, winFace)
	s.FirstEpisode, s.LastEpisode = firstEpisode, lastEpisode

	var sb strings.Builder
	fmt.Fprintf(&sb, "Player: %s\n", player)
	fmt.Fprintf(&sb, "Episodes played: %d (%d-%d)\n", s.Episodes, firstEpisode, lastEpisode)
	fmt.Fprintf(&sb, "Mean score: %.3f  Stdev: %.3f  Max: %d\n", s.MeanScore, s.StdevScore, s.MaxScore)
	fmt.Fprintf(&sb, "Mean moves: %.2f\n", s.MeanMoves)
	if winFace > 0 {
		fmt.Fprintf(&sb, "Reached %d: %.3f%%\n", winFace, 100*s.WinRate)
	} else {
		sb.WriteString("Wins: 0\n")
	}
	fmt.Fprintf(&sb, "Mean TD error: %.6f\n", s.MeanTDError)
	sb.WriteString(s.FaceTable())
	return sb.String(), nil
}

func parseLogRecord(record []string) (EpisodeResult, error) {
	var res EpisodeResult
	ints := []*int{&res.Episode, &res.Score, &res.MaxFace, &res.Moves}
	for i, p := range ints {
		v, err := strconv.Atoi(record[i+1])
		if err != nil {
			return res, err
		}
		*p = v
	}
	won, err := strconv.ParseBool(record[5])
	if err != nil {
		return res, err
	}
	res.Won = won
	res.TDError, err = strconv.ParseFloat(record[6], 64)
	return res, err
}
