// Package board implements the sliding-tile grid: move simulation with the
// single-pass merge rule, spawn placement and terminal detection.
//
// A Board is a value. Every operation that looks like a mutation returns a
// new Board and leaves the receiver untouched, so any number of search
// branches can share an ancestor.
package board

import (
	"errors"
	"fmt"
)

const (
	// DefaultDim is the side length of the standard game.
	DefaultDim = 4
	// DefaultWinningTile ends the game as a win once it appears.
	DefaultWinningTile = 2048
	// MaxTileExponent bounds client tiles: 2^1 through 2^MaxTileExponent.
	MaxTileExponent = 31
)

var (
	ErrNotSquare        = errors.New("grid is not square")
	ErrEmptyGrid        = errors.New("grid has no cells")
	ErrInvalidTile      = errors.New("tile is not a power of two >= 2")
	ErrTileTooLarge     = errors.New("tile is too large")
	ErrNegativeScore    = errors.New("score is negative")
	ErrUnknownDirection = errors.New("unknown direction")
)

// Board is an N by N grid of tile values (0 is empty) and the score
// accumulated by the moves that produced it.
type Board struct {
	dim     int
	cells   []int // row-major, len dim*dim
	score   int
	winning int
}

// NewEmpty returns an empty dim by dim board with no score.
func NewEmpty(dim int) Board {
	if dim <= 0 {
		panic(fmt.Sprintf("board dimension must be positive, got %d", dim))
	}
	return Board{
		dim:     dim,
		cells:   make([]int, dim*dim),
		winning: DefaultWinningTile,
	}
}

// FromGrid validates caller-supplied state and builds a board from it.
// The grid is copied.
func FromGrid(grid [][]int, score int) (Board, error) {
	n := len(grid)
	if n == 0 {
		return Board{}, ErrEmptyGrid
	}
	if score < 0 {
		return Board{}, fmt.Errorf("%w: %d", ErrNegativeScore, score)
	}
	b := NewEmpty(n)
	b.score = score
	for i, row := range grid {
		if len(row) != n {
			return Board{}, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrNotSquare, i, len(row), n)
		}
		for j, v := range row {
			if !validTile(v) {
				return Board{}, fmt.Errorf("%w: %d at (%d,%d)", ErrInvalidTile, v, i, j)
			}
			if v > 1<<MaxTileExponent {
				return Board{}, fmt.Errorf("%w: %d at (%d,%d)", ErrTileTooLarge, v, i, j)
			}
			b.cells[i*n+j] = v
		}
	}
	return b, nil
}

// MustFromGrid is FromGrid for inputs known to be valid.
func MustFromGrid(grid [][]int, score int) Board {
	b, err := FromGrid(grid, score)
	if err != nil {
		panic(err)
	}
	return b
}

func validTile(v int) bool {
	if v == 0 {
		return true
	}
	return v >= 2 && v&(v-1) == 0
}

// WithWinningTile returns a copy of b that is won once value appears.
// A non-positive value restores DefaultWinningTile.
func (b Board) WithWinningTile(value int) Board {
	if value <= 0 {
		value = DefaultWinningTile
	}
	c := b.copy()
	c.winning = value
	return c
}

func (b Board) copy() Board {
	c := b
	c.cells = make([]int, len(b.cells))
	copy(c.cells, b.cells)
	return c
}

func (b Board) Dim() int {
	return b.dim
}

func (b Board) Score() int {
	return b.score
}

func (b Board) WinningTile() int {
	return b.winning
}

// At returns the tile at (row, col).
func (b Board) At(row, col int) int {
	return b.cells[row*b.dim+col]
}

// Grid returns a fresh copy of the tiles as rows.
func (b Board) Grid() [][]int {
	g := make([][]int, b.dim)
	for i := range g {
		g[i] = make([]int, b.dim)
		copy(g[i], b.cells[i*b.dim:(i+1)*b.dim])
	}
	return g
}

// Equal reports whether the two grids hold the same tiles. Score is not
// compared.
func (b Board) Equal(o Board) bool {
	if b.dim != o.dim {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// EmptyCellIDs lists the ids (row*dim+col) of empty cells in row-major order.
func (b Board) EmptyCellIDs() []int {
	ids := make([]int, 0, len(b.cells))
	for i, v := range b.cells {
		if v == 0 {
			ids = append(ids, i)
		}
	}
	return ids
}

func (b Board) NumEmptyCells() int {
	n := 0
	for _, v := range b.cells {
		if v == 0 {
			n++
		}
	}
	return n
}

func (b Board) MaxTile() int {
	m := 0
	for _, v := range b.cells {
		if v > m {
			m = v
		}
	}
	return m
}

// SetEmptyCell returns a copy of b with value placed at (row, col). The cell
// must be empty.
func (b Board) SetEmptyCell(row, col, value int) Board {
	if row < 0 || row >= b.dim || col < 0 || col >= b.dim {
		panic(fmt.Sprintf("cell (%d,%d) is off a %dx%d board", row, col, b.dim, b.dim))
	}
	idx := row*b.dim + col
	if b.cells[idx] != 0 {
		panic(fmt.Sprintf("cell (%d,%d) is occupied by %d", row, col, b.cells[idx]))
	}
	c := b.copy()
	c.cells[idx] = value
	return c
}

// HasWon is true once any tile reaches the winning value.
func (b Board) HasWon() bool {
	for _, v := range b.cells {
		if v >= b.winning {
			return true
		}
	}
	return false
}

// IsGameTerminated is true when the game is won, or when the grid is full
// and no two orthogonal neighbours are equal.
func (b Board) IsGameTerminated() bool {
	if b.HasWon() {
		return true
	}
	for i := 0; i < b.dim; i++ {
		for j := 0; j < b.dim; j++ {
			v := b.cells[i*b.dim+j]
			if v == 0 {
				return false
			}
			if j+1 < b.dim && b.cells[i*b.dim+j+1] == v {
				return false
			}
			if i+1 < b.dim && b.cells[(i+1)*b.dim+j] == v {
				return false
			}
		}
	}
	return true
}

// Move slides every tile toward d and returns the resulting board along with
// the points earned by merges. Points are also added to the new board's
// score. An ineffective move returns an equal grid and 0 points.
func (b Board) Move(d Direction) (Board, int) {
	c := b.copy()
	var points int
	switch d {
	case Left:
		points = c.slideLeft()
	case Right:
		c.reverseRows()
		points = c.slideLeft()
		c.reverseRows()
	case Up:
		c.transpose()
		points = c.slideLeft()
		c.transpose()
	case Down:
		c.transpose()
		c.reverseRows()
		points = c.slideLeft()
		c.reverseRows()
		c.transpose()
	default:
		panic(fmt.Sprintf("cannot move in direction %v", d))
	}
	c.score += points
	return c, points
}

// CanMove reports whether moving toward d changes the grid.
func (b Board) CanMove(d Direction) bool {
	nb, points := b.Move(d)
	return points > 0 || !nb.Equal(b)
}

// LegalMoves lists the effective directions in search order.
func (b Board) LegalMoves() []Direction {
	moves := make([]Direction, 0, len(Directions))
	for _, d := range Directions {
		if b.CanMove(d) {
			moves = append(moves, d)
		}
	}
	return moves
}

// slideLeft compacts and merges every row toward column 0, in place. Only
// ever called on a private copy.
func (b *Board) slideLeft() int {
	points := 0
	for i := 0; i < b.dim; i++ {
		row := b.cells[i*b.dim : (i+1)*b.dim]
		points += collapse(row)
	}
	return points
}

// collapse compacts row toward index 0 then merges equal neighbours from
// the leading edge. A merged tile does not merge again in the same pass.
func collapse(row []int) int {
	points := 0
	out := 0
	last := 0 // value at out-1 that may still merge
	for _, v := range row {
		if v == 0 {
			continue
		}
		if last == v {
			row[out-1] = 2 * v
			points += 2 * v
			last = 0
			continue
		}
		row[out] = v
		out++
		last = v
	}
	for k := out; k < len(row); k++ {
		row[k] = 0
	}
	return points
}

func (b *Board) transpose() {
	n := b.dim
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			b.cells[i*n+j], b.cells[j*n+i] = b.cells[j*n+i], b.cells[i*n+j]
		}
	}
}

func (b *Board) reverseRows() {
	n := b.dim
	for i := 0; i < n; i++ {
		row := b.cells[i*n : (i+1)*n]
		for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
			row[l], row[r] = row[r], row[l]
		}
	}
}
