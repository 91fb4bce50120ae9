// Package automatic lets the solver play whole games by itself, many at a
// time, and reports how it did.
package automatic

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/game"
	"github.com/domino14/tilesolver/minimax"
)

// GameLog is what the log file keeps of one finished game.
type GameLog struct {
	ID      string `yaml:"id"`
	Seed    uint64 `yaml:"seed,omitempty"`
	Result  string `yaml:"result"`
	Score   int    `yaml:"score"`
	MaxTile int    `yaml:"max-tile"`
	Turns   int    `yaml:"turns"`
	// Moves holds one letter per turn: U, R, D or L.
	Moves string `yaml:"moves"`
	Board string `yaml:"board"`
}

// GameRunner plays one game with the solver choosing every move.
type GameRunner struct {
	game     *game.Game
	solver   *minimax.Solver
	depth    int
	maxTurns int
	seed     uint64
}

// NewGameRunner sets up a fresh game. A zero seed means a random game.
func NewGameRunner(dim, winningTile, depth int, seed uint64) *GameRunner {
	var rng *frand.RNG
	if seed != 0 {
		rng = game.SeededRNG(seed)
	}
	return &GameRunner{
		game:   game.NewGame(dim, winningTile, rng),
		solver: minimax.NewSolver(),
		depth:  depth,
		seed:   seed,
	}
}

// SetMaxTurns stops the game after n turns; 0 means play to the end.
func (r *GameRunner) SetMaxTurns(n int) {
	r.maxTurns = n
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

// PlayBestTurn asks the solver for a move and plays it.
func (r *GameRunner) PlayBestTurn() (game.Turn, error) {
	d := r.solver.FindBestMove(r.game.Board(), r.depth)
	if !r.game.Board().CanMove(d) {
		// The solver only falls back to its default when every line looks
		// equally hopeless; any legal move will do.
		d = r.game.Board().LegalMoves()[0]
	}
	return r.game.Play(d)
}

// PlayFull plays until the game ends, the turn limit is hit or ctx is done.
func (r *GameRunner) PlayFull(ctx context.Context) (GameLog, error) {
	for r.game.Playing() == game.Playing {
		if r.maxTurns > 0 && len(r.game.Turns()) >= r.maxTurns {
			break
		}
		if err := ctx.Err(); err != nil {
			return r.Log(), err
		}
		if _, err := r.PlayBestTurn(); err != nil {
			return r.Log(), err
		}
	}
	gl := r.Log()
	log.Debug().Str("game", gl.ID).Str("result", gl.Result).Int("score", gl.Score).
		Int("max-tile", gl.MaxTile).Int("turns", gl.Turns).Msg("game-over")
	return gl, nil
}

func (r *GameRunner) Log() GameLog {
	b := r.game.Board()
	turns := r.game.Turns()
	return GameLog{
		ID:      r.game.Uid(),
		Seed:    r.seed,
		Result:  r.game.Playing().String(),
		Score:   b.Score(),
		MaxTile: b.MaxTile(),
		Turns:   len(turns),
		Moves: strings.Join(lo.Map(turns, func(t game.Turn, _ int) string {
			return t.Direction.String()[:1]
		}), ""),
		Board: b.ToDisplayText(),
	}
}

// DirectionsFromMoves decodes GameLog.Moves.
func DirectionsFromMoves(moves string) ([]board.Direction, error) {
	ds := make([]board.Direction, 0, len(moves))
	for _, c := range moves {
		d, err := board.ParseDirection(string(c))
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, nil
}
