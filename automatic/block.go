package automatic

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"

	"github.com/domino14/threes/stats"
)

const (
	confidenceLevel = 95
	histogramBins   = 15
)

// BlockSummary describes a run of consecutive episodes.
type BlockSummary struct {
	Run          string      `yaml:"run" json:"run"`
	Phase        string      `yaml:"phase" json:"phase"`
	FirstEpisode int         `yaml:"first_episode" json:"first_episode"`
	LastEpisode  int         `yaml:"last_episode" json:"last_episode"`
	Episodes     int         `yaml:"episodes" json:"episodes"`
	MeanScore    float64     `yaml:"mean_score" json:"mean_score"`
	StdevScore   float64     `yaml:"stdev_score" json:"stdev_score"`
	CILow        float64     `yaml:"ci_low" json:"ci_low"`
	CIHigh       float64     `yaml:"ci_high" json:"ci_high"`
	MinScore     int         `yaml:"min_score" json:"min_score"`
	MaxScore     int         `yaml:"max_score" json:"max_score"`
	MeanMoves    float64     `yaml:"mean_moves" json:"mean_moves"`
	MeanTDError  float64     `yaml:"mean_td_error,omitempty" json:"mean_td_error,omitempty"`
	WinFace      int         `yaml:"win_face" json:"win_face"`
	WinRate      float64     `yaml:"win_rate" json:"win_rate"`
	MaxFaces     map[int]int `yaml:"max_faces" json:"max_faces"`
	Seconds      float64     `yaml:"seconds" json:"seconds"`
}

type blockStats struct {
	first  int
	start  time.Time
	scores stats.Statistic
	moves  stats.Statistic
	tdErr  stats.Statistic
	wins   stats.Rate
	faces  map[int]int
	raw    []float64
}

func newBlockStats(first int) *blockStats {
	return &blockStats{first: first, start: time.Now(), faces: map[int]int{}}
}

func (bs *blockStats) add(r EpisodeResult) {
	bs.scores.Push(float64(r.Score))
	bs.moves.Push(float64(r.Moves))
	bs.tdErr.Push(r.TDError)
	bs.wins.Add(r.Won)
	bs.faces[r.MaxFace]++
	bs.raw = append(bs.raw, float64(r.Score))
}

func (bs *blockStats) count() int {
	return bs.scores.Iterations()
}

func (bs *blockStats) summary(run, phase string, winFace int) BlockSummary {
	low, high := bs.scores.ConfidenceInterval(confidenceLevel)
	return BlockSummary{
		Run:          run,
		Phase:        phase,
		FirstEpisode: bs.first,
		LastEpisode:  bs.first + bs.count() - 1,
		Episodes:     bs.count(),
		MeanScore:    bs.scores.Mean(),
		StdevScore:   bs.scores.Stdev(),
		CILow:        low,
		CIHigh:       high,
		MinScore:     int(bs.scores.Min()),
		MaxScore:     int(bs.scores.Max()),
		MeanMoves:    bs.moves.Mean(),
		MeanTDError:  bs.tdErr.Mean(),
		WinFace:      winFace,
		WinRate:      bs.wins.Value(),
		MaxFaces:     bs.faces,
		Seconds:      time.Since(bs.start).Seconds(),
	}
}

// FaceTable lists, for every max face reached, the share of episodes that
// reached at least that face and the share that stopped exactly there.
func (s BlockSummary) FaceTable() string {
	var sb strings.Builder
	faces := lo.Keys(s.MaxFaces)
	slices.Sort(faces)
	atLeast := s.Episodes
	for _, f := range faces {
		n := s.MaxFaces[f]
		fmt.Fprintf(&sb, "%6d\t%6.2f%%\t(%.2f%%)\n", f,
			100*float64(atLeast)/float64(s.Episodes), 100*float64(n)/float64(s.Episodes))
		atLeast -= n
	}
	return sb.String()
}

func (s BlockSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s episodes %d-%d\n", s.Phase, s.FirstEpisode, s.LastEpisode)
	fmt.Fprintf(&sb, "mean score %.2f (stdev %.2f, %d%% CI %.2f-%.2f), min %d, max %d\n",
		s.MeanScore, s.StdevScore, confidenceLevel, s.CILow, s.CIHigh, s.MinScore, s.MaxScore)
	fmt.Fprintf(&sb, "mean moves %.1f, reached %d: %.2f%%\n", s.MeanMoves, s.WinFace, 100*s.WinRate)
	sb.WriteString(s.FaceTable())
	return sb.String()
}

// ScoreHistogram draws the distribution of scores as text.
func ScoreHistogram(scores []float64, width int) string {
	if len(scores) == 0 {
		return ""
	}
	var sb strings.Builder
	hist := histogram.Hist(histogramBins, scores)
	if err := histogram.Fprint(&sb, hist, histogram.Linear(width)); err != nil {
		return ""
	}
	return sb.String()
}
