package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tilesolver/board"
)

func TestSpawnAndUnspawn(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(4)

	b := board.Midgame.MustLoad()
	h := z.Hash(b)
	ids := b.EmptyCellIDs()
	child := b.SetEmptyCell(ids[1]/4, ids[1]%4, 4)

	h1 := z.AddTile(h, ids[1], 4)
	is.Equal(h1, z.Hash(child))
	// removing the tile again gets us back where we started.
	is.Equal(z.AddTile(h1, ids[1], 4), h)
	is.True(h1 != h) // extremely unlikely to collide, but this is not technically always true.
}

func TestScoreChangesHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(4)
	b := board.Midgame.MustLoad()
	is.True(z.Hash(b) != z.Hash(b.WithScore(b.Score()+4)))
	is.Equal(z.Hash(b), z.Hash(b.WithScore(b.Score())))
}

func TestMoveChangesHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(4)
	b := board.OnlyDown.MustLoad()
	up, _ := b.Move(board.Up)
	down, _ := b.Move(board.Down)
	is.Equal(z.Hash(up), z.Hash(b))
	is.True(z.Hash(down) != z.Hash(b))
}

func TestWrongDimPanics(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(3)
	defer func() {
		is.True(recover() != nil)
	}()
	z.Hash(board.NewEmpty(4))
}

func TestLargestTileHashes(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(2)
	b := board.MustFromGrid([][]int{{1 << board.MaxTileExponent, 0}, {0, 2}}, 0)
	is.True(z.Hash(b) != z.Hash(board.NewEmpty(2)))
}
