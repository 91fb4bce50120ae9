// Package minimax finds hints with a depth-limited minimax search using
// alpha-beta pruning.
//
// The tree alternates two layers. In the move layer the player picks one of
// the four slides and maximizes. In the spawn layer the game places a 2 or a
// 4 on an empty cell; it is treated as an adversary and minimizes. Each
// layer is its own procedure so its enumeration order and cutoff rule can be
// read (and tested) on their own.
package minimax

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/heuristic"
)

// thanks Wikipedia:
/*
function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
*/

const (
	// WinScore is the value of a won position.
	WinScore = math.MaxInt
	// LossFloor caps the value of a lost position at min(score, LossFloor).
	LossFloor = 1
)

// SpawnValues are the tiles the spawn layer may place, in search order.
var SpawnValues = [2]int{2, 4}

// DefaultDirection is returned by FindBestMove when no move improves on
// anything, for example on a finished board.
const DefaultDirection = board.Up

// Result is what every search call produces. Direction is only ever set by
// the move layer, and stays NoDirection for terminal positions, leaves and
// spawn nodes.
type Result struct {
	Score     int
	Direction board.Direction
}

// Found reports whether the search picked a direction.
func (r Result) Found() bool {
	return r.Direction != board.NoDirection
}

// Solver holds per-search options and statistics. A Solver is cheap; use
// one per goroutine. Searches share nothing else, so independent Solvers
// may run concurrently.
type Solver struct {
	pruning bool

	nodes   atomic.Uint64
	leaves  atomic.Uint64
	cutoffs atomic.Uint64

	principalVariation PVLine
	requestedDepth     int
	elapsed            time.Duration

	logStream io.Writer
}

// NewSolver returns a solver with pruning on.
func NewSolver() *Solver {
	return &Solver{pruning: true}
}

// SetPruning turns alpha-beta cutoffs on or off. With pruning off every
// child is searched with a full window, which is plain minimax. It exists
// to check that pruning never changes a result.
func (s *Solver) SetPruning(p bool) {
	s.pruning = p
}

// SetLogStream makes the solver write the tree it explores to w.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

func (s *Solver) Leaves() uint64 {
	return s.leaves.Load()
}

func (s *Solver) Cutoffs() uint64 {
	return s.cutoffs.Load()
}

func (s *Solver) Elapsed() time.Duration {
	return s.elapsed
}

func (s *Solver) PrincipalVariation() PVLine {
	return s.principalVariation
}

// Solve searches depth plies below b, starting with a player move. A
// negative depth is searched as 0.
func (s *Solver) Solve(b board.Board, depth int) Result {
	if depth < 0 {
		depth = 0
	}
	tstart := time.Now()
	s.requestedDepth = depth
	s.nodes.Store(0)
	s.leaves.Store(0)
	s.cutoffs.Store(0)

	pv := PVLine{dim: b.Dim()}
	res := s.maximize(b, depth, math.MinInt, math.MaxInt, &pv)
	s.principalVariation = pv
	s.principalVariation.score = res.Score
	s.elapsed = time.Since(tstart)

	log.Debug().
		Int("depth", depth).
		Bool("pruning", s.pruning).
		Str("direction", res.Direction.String()).
		Str("score", ScoreString(res.Score)).
		Uint64("nodes", s.nodes.Load()).
		Uint64("leaves", s.leaves.Load()).
		Uint64("cutoffs", s.cutoffs.Load()).
		Float64("time-elapsed-sec", s.elapsed.Seconds()).
		Str("pv", s.principalVariation.NLBString()).
		Msg("solve-returning")
	return res
}

// FindBestMove returns the direction to play, or DefaultDirection when the
// search found nothing to prefer.
func (s *Solver) FindBestMove(b board.Board, depth int) board.Direction {
	res := s.Solve(b, depth)
	if !res.Found() {
		return DefaultDirection
	}
	return res.Direction
}

// FindBestMove is a one-shot search with a fresh solver.
func FindBestMove(b board.Board, depth int) board.Direction {
	return NewSolver().FindBestMove(b, depth)
}

// settled handles the nodes that are not expanded: terminal positions at
// any depth, then the horizon.
func (s *Solver) settled(b board.Board, depth int) (int, bool) {
	if b.IsGameTerminated() {
		s.leaves.Add(1)
		if b.HasWon() {
			return WinScore, true
		}
		return min(b.Score(), LossFloor), true
	}
	if depth == 0 {
		s.leaves.Add(1)
		return heuristic.Evaluate(b), true
	}
	return 0, false
}

// maximize is the move layer.
func (s *Solver) maximize(b board.Board, depth, α, β int, pv *PVLine) Result {
	s.nodes.Add(1)
	if v, ok := s.settled(b, depth); ok {
		return Result{Score: v}
	}
	indent := s.indent(depth)
	best := board.NoDirection
	childPV := PVLine{dim: b.Dim()}

	for _, d := range board.Directions {
		nb, points := b.Move(d)
		if points == 0 && nb.Equal(b) {
			continue
		}
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "%s- move: %v\n", indent, d)
		}
		ca, cb := α, β
		if !s.pruning {
			ca, cb = math.MinInt, math.MaxInt
		}
		v := s.spawn(nb, depth-1, ca, cb, &childPV)
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "%s  value: %s\n", indent, ScoreString(v))
		}
		if v > α {
			α = v
			best = d
			pv.Update(Step{Direction: d}, childPV, v)
		}
		childPV.Clear()
		if s.pruning && β <= α {
			s.cutoffs.Add(1)
			break // β cut-off
		}
	}
	return Result{Score: α, Direction: best}
}

// spawn is the chance layer, searched as an adversary that places the
// worst tile in the worst place.
func (s *Solver) spawn(b board.Board, depth, α, β int, pv *PVLine) int {
	s.nodes.Add(1)
	if v, ok := s.settled(b, depth); ok {
		return v
	}
	cells := b.EmptyCellIDs()
	if len(cells) == 0 {
		// Unreachable after a legal move; the terminal check above is the
		// authority on full boards.
		return 0
	}
	indent := s.indent(depth)
	dim := b.Dim()
	childPV := PVLine{dim: dim}

outer:
	for _, id := range cells {
		for _, value := range SpawnValues {
			nb := b.SetEmptyCell(id/dim, id%dim, value)
			if s.logStream != nil {
				fmt.Fprintf(s.logStream, "%s- spawn: %d@%d\n", indent, value, id)
			}
			ca, cb := α, β
			if !s.pruning {
				ca, cb = math.MinInt, math.MaxInt
			}
			res := s.maximize(nb, depth-1, ca, cb, &childPV)
			if s.logStream != nil {
				fmt.Fprintf(s.logStream, "%s  value: %s\n", indent, ScoreString(res.Score))
			}
			if res.Score < β {
				β = res.Score
				pv.Update(Step{SpawnCell: id, SpawnValue: value}, childPV, res.Score)
			}
			childPV.Clear()
			if s.pruning && β <= α {
				s.cutoffs.Add(1)
				break outer // α cut-off
			}
		}
	}
	return β
}

func (s *Solver) indent(depth int) string {
	if s.logStream == nil {
		return ""
	}
	return strings.Repeat("  ", s.requestedDepth-depth)
}

func ScoreString(v int) string {
	switch v {
	case WinScore:
		return "win"
	case math.MinInt:
		return "-inf"
	}
	return fmt.Sprint(v)
}
