package game

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tilesolver/board"
)

func TestNewGame(t *testing.T) {
	is := is.New(t)
	g := NewGame(4, 2048, SeededRNG(1))
	b := g.Board()
	is.Equal(b.NumEmptyCells(), 16-StartingTiles)
	is.Equal(b.Score(), 0)
	is.Equal(b.WinningTile(), 2048)
	is.Equal(g.Playing(), Playing)
	is.True(g.Uid() != "")
	for _, row := range b.Grid() {
		for _, v := range row {
			is.True(v == 0 || v == 2 || v == 4)
		}
	}
}

func TestZeroWinningTileUsesDefault(t *testing.T) {
	is := is.New(t)
	g := NewGame(4, 0, SeededRNG(1))
	is.Equal(g.Board().WinningTile(), board.DefaultWinningTile)
	is.Equal(g.Playing(), Playing)
}

func TestSeededGamesRepeat(t *testing.T) {
	is := is.New(t)
	g1 := NewGame(4, 2048, SeededRNG(99))
	g2 := NewGame(4, 2048, SeededRNG(99))
	is.True(g1.Board().Equal(g2.Board()))

	for i := 0; i < 30 && g1.Playing() == Playing; i++ {
		d := g1.Board().LegalMoves()[0]
		t1, err := g1.Play(d)
		is.NoErr(err)
		t2, err := g2.Play(d)
		is.NoErr(err)
		is.Equal(t1, t2)
		is.True(g1.Board().Equal(g2.Board()))
	}
	is.Equal(len(g1.Turns()), len(g2.Turns()))
}

func TestPlaySpawnsAfterMove(t *testing.T) {
	is := is.New(t)
	g := FromBoard(board.OnlyDown.MustLoad(), SeededRNG(3))
	turn, err := g.Play(board.Down)
	is.NoErr(err)
	is.Equal(turn.Points, 0)
	is.True(turn.SpawnCell >= 0 && turn.SpawnCell < 12)
	is.True(turn.SpawnValue == 2 || turn.SpawnValue == 4)
	// Four slid tiles and one spawned.
	is.Equal(g.Board().NumEmptyCells(), 11)
	is.Equal(g.Board().At(3, 0), 2)
	is.Equal(g.Board().At(3, 3), 16)
	is.Equal(g.Board().At(turn.SpawnCell/4, turn.SpawnCell%4), turn.SpawnValue)
	is.Equal(len(g.Turns()), 1)
}

func TestPlayRejectsNoOpMoves(t *testing.T) {
	is := is.New(t)
	g := FromBoard(board.OnlyDown.MustLoad(), SeededRNG(3))
	before := g.Board()
	for _, d := range []board.Direction{board.Up, board.Left, board.Right} {
		_, err := g.Play(d)
		is.True(errors.Is(err, ErrIllegalMove))
	}
	_, err := g.Play(board.NoDirection)
	is.True(errors.Is(err, board.ErrUnknownDirection))
	is.True(g.Board().Equal(before))
	is.Equal(len(g.Turns()), 0)
}

func TestFinishedGames(t *testing.T) {
	is := is.New(t)
	lost := FromBoard(board.Stuck.MustLoad(), nil)
	is.Equal(lost.Playing(), Lost)
	_, err := lost.Play(board.Up)
	is.True(errors.Is(err, ErrGameOver))

	won := FromBoard(board.Won.MustLoad(), nil)
	is.Equal(won.Playing(), Won)
	_, err = won.Play(board.Up)
	is.True(errors.Is(err, ErrGameOver))
}

func TestSpawnOdds(t *testing.T) {
	is := is.New(t)
	rng := SeededRNG(7)
	empty := board.NewEmpty(4)
	fours := 0
	const n = 2000
	for i := 0; i < n; i++ {
		_, _, v := spawnTile(rng, empty)
		if v == 4 {
			fours++
		}
	}
	// 200 expected.
	is.True(fours > 120 && fours < 280)

	_, cell, _ := spawnTile(rng, board.Stuck.MustLoad())
	is.Equal(cell, -1)
}
