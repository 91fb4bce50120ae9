package zobrist

import (
	"fmt"
	"math/bits"

	"lukechampine.com/frand"

	"github.com/domino14/tilesolver/board"
)

const bignum = 1<<63 - 2

// MaxExponent bounds the tiles that can be hashed: 2^1 through 2^MaxExponent.
const MaxExponent = board.MaxTileExponent

// generate a zobrist hash for a sliding-tile position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	// posTable[cell][exponent]; exponent 0 (empty) is never used.
	posTable [][]uint64
	dimKey   uint64
	boardDim int
}

func (z *Zobrist) Initialize(boardDim int) {
	z.boardDim = boardDim
	z.posTable = make([][]uint64, boardDim*boardDim)
	for i := 0; i < boardDim*boardDim; i++ {
		z.posTable[i] = make([]uint64, MaxExponent+1)
		for j := 1; j <= MaxExponent; j++ {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	z.dimKey = hashUint64(uint64(boardDim))
}

func (z *Zobrist) BoardDim() int {
	return z.boardDim
}

// https://stackoverflow.com/a/12996028/1737333
func hashUint64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * uint64(0xbf58476d1ce4e5b9)
	x = (x ^ (x >> 27)) * uint64(0x94d049bb133111eb)
	x = x ^ (x >> 31)
	return x
}

func exponent(value int) int {
	return bits.TrailingZeros(uint(value))
}

// Hash returns the key for the tiles and the score of b.
func (z *Zobrist) Hash(b board.Board) uint64 {
	if b.Dim() != z.boardDim {
		panic(fmt.Sprintf("zobrist initialized for dim %d, board has dim %d", z.boardDim, b.Dim()))
	}
	key := z.dimKey
	dim := b.Dim()
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			v := b.At(i, j)
			if v == 0 {
				continue
			}
			key ^= z.posTable[i*dim+j][exponent(v)]
		}
	}
	key ^= hashUint64(uint64(b.Score()))
	return key
}

// AddTile updates key for a tile appearing on (or, applied twice,
// vanishing from) cell. Spawns leave the score alone, so this is all a
// spawn needs.
func (z *Zobrist) AddTile(key uint64, cell, value int) uint64 {
	return key ^ z.posTable[cell][exponent(value)]
}
