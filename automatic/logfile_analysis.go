package automatic

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Summary holds the statistics for a batch of games.
type Summary struct {
	Games       int
	Wins        int
	MeanScore   float64
	StdDevScore float64
	BestScore   int
	MeanTurns   float64
	// TileCounts maps a highest tile to the number of games that reached
	// it and no further.
	TileCounts map[int]int

	scores []float64
}

// Summarize computes the statistics of logs.
func Summarize(logs []GameLog) *Summary {
	s := &Summary{Games: len(logs)}
	if len(logs) == 0 {
		return s
	}
	s.Wins = lo.CountBy(logs, func(gl GameLog) bool { return gl.Result == "won" })
	s.scores = lo.Map(logs, func(gl GameLog, _ int) float64 { return float64(gl.Score) })
	s.MeanScore, s.StdDevScore = stat.MeanStdDev(s.scores, nil)
	if len(logs) == 1 {
		s.StdDevScore = 0
	}
	s.BestScore = lo.MaxBy(logs, func(a, b GameLog) bool { return a.Score > b.Score }).Score
	s.MeanTurns = stat.Mean(lo.Map(logs, func(gl GameLog, _ int) float64 { return float64(gl.Turns) }), nil)
	s.TileCounts = lo.CountValuesBy(logs, func(gl GameLog) int { return gl.MaxTile })
	return s
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", s.Games)
	if s.Games == 0 {
		return sb.String()
	}
	fmt.Fprintf(&sb, "Wins: %d (%.2f%%)\n", s.Wins, 100*float64(s.Wins)/float64(s.Games))
	fmt.Fprintf(&sb, "Score: mean %.2f, stdev %.2f, best %d\n", s.MeanScore, s.StdDevScore, s.BestScore)
	fmt.Fprintf(&sb, "Mean turns: %.1f\n", s.MeanTurns)
	sb.WriteString("Highest tile reached:\n")
	tiles := lo.Keys(s.TileCounts)
	slices.Sort(tiles)
	for _, t := range tiles {
		fmt.Fprintf(&sb, "%6d: %d\n", t, s.TileCounts[t])
	}
	if len(s.scores) < 2 {
		return sb.String()
	}
	sb.WriteString("Score histogram:\n")
	if err := histogram.Fprint(&sb, histogram.Hist(15, s.scores), histogram.Linear(40)); err != nil {
		fmt.Fprintf(&sb, "(no histogram: %v)\n", err)
	}
	return sb.String()
}

// ReadLog reads every game from a YAML autoplay log.
func ReadLog(r io.Reader) ([]GameLog, error) {
	dec := yaml.NewDecoder(r)
	var logs []GameLog
	for {
		var gl GameLog
		err := dec.Decode(&gl)
		if errors.Is(err, io.EOF) {
			return logs, nil
		}
		if err != nil {
			return nil, err
		}
		logs = append(logs, gl)
	}
}

// AnalyzeLogFile summarises the autoplay log at path.
func AnalyzeLogFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	logs, err := ReadLog(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Summarize(logs).String(), nil
}
