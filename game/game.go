// Package game plays the sliding-tile game itself: a board plus a random
// source that drops a new tile after every move. The solver never uses
// it; the shell and the autoplay harness do.
package game

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tilesolver/board"
)

const (
	// StartingTiles are spawned on a new board.
	StartingTiles = 2
	// FourOneIn is the odds of a spawned tile being a 4 rather than a 2.
	FourOneIn = 10
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrIllegalMove = errors.New("move does not change the board")
)

// PlayState is where a game stands.
type PlayState uint8

const (
	Playing PlayState = iota
	Won
	Lost
)

func (p PlayState) String() string {
	switch p {
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "playing"
}

// Turn records one move and the tile that followed it. SpawnCell is -1 if
// nothing could be spawned.
type Turn struct {
	Direction  board.Direction
	Points     int
	SpawnCell  int
	SpawnValue int
}

func (t Turn) String() string {
	if t.SpawnCell < 0 {
		return fmt.Sprintf("%v (+%d)", t.Direction, t.Points)
	}
	return fmt.Sprintf("%v (+%d), %d spawned at %d", t.Direction, t.Points, t.SpawnValue, t.SpawnCell)
}

// Game is not safe for concurrent use; its random source is unsynchronised.
type Game struct {
	uid   string
	board board.Board
	rng   *frand.RNG
	turns []Turn
}

// SeededRNG returns a deterministic random source, for reproducible games.
func SeededRNG(seed uint64) *frand.RNG {
	key := make([]byte, 32)
	binary.LittleEndian.PutUint64(key, seed)
	return frand.NewCustom(key, 1024, 12)
}

// NewGame starts a game on an empty dim×dim board with StartingTiles
// random tiles. A nil rng is replaced by a fresh entropy-seeded one.
func NewGame(dim, winningTile int, rng *frand.RNG) *Game {
	g := FromBoard(board.NewEmpty(dim).WithWinningTile(winningTile), rng)
	for i := 0; i < StartingTiles; i++ {
		g.board, _, _ = spawnTile(g.rng, g.board)
	}
	log.Debug().Str("game", g.uid).Int("dim", dim).Msg("new-game")
	return g
}

// FromBoard continues play from an existing position.
func FromBoard(b board.Board, rng *frand.RNG) *Game {
	if rng == nil {
		rng = frand.New()
	}
	return &Game{uid: uuid.New().String(), board: b, rng: rng}
}

func (g *Game) Uid() string {
	return g.uid
}

func (g *Game) Board() board.Board {
	return g.board
}

func (g *Game) Score() int {
	return g.board.Score()
}

func (g *Game) Turns() []Turn {
	return g.turns
}

func (g *Game) Playing() PlayState {
	switch {
	case g.board.HasWon():
		return Won
	case g.board.IsGameTerminated():
		return Lost
	}
	return Playing
}

// Play slides the board in d, then spawns a tile into an empty cell.
func (g *Game) Play(d board.Direction) (Turn, error) {
	if g.Playing() != Playing {
		return Turn{}, ErrGameOver
	}
	if d == board.NoDirection {
		return Turn{}, board.ErrUnknownDirection
	}
	nb, points := g.board.Move(d)
	if points == 0 && nb.Equal(g.board) {
		return Turn{}, fmt.Errorf("%w: %v", ErrIllegalMove, d)
	}
	t := Turn{Direction: d, Points: points, SpawnCell: -1}
	nb, t.SpawnCell, t.SpawnValue = spawnTile(g.rng, nb)
	g.board = nb
	g.turns = append(g.turns, t)
	return t, nil
}

// spawnTile puts a 2, or one time in FourOneIn a 4, in a random empty
// cell.
func spawnTile(rng *frand.RNG, b board.Board) (board.Board, int, int) {
	cells := b.EmptyCellIDs()
	if len(cells) == 0 {
		return b, -1, 0
	}
	id := cells[rng.Intn(len(cells))]
	value := 2
	if rng.Intn(FourOneIn) == 0 {
		value = 4
	}
	return b.SetEmptyCell(id/b.Dim(), id%b.Dim(), value), id, value
}
