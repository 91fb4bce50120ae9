package board

// This file contains some sample boards, used mostly for testing and the
// shell's "load" command.

// SamplePosition is a plaintext board, as read by FromPlaintext.
type SamplePosition string

const (
	// DenseTwos is full of 2s except the top left corner. Every direction
	// merges something.
	DenseTwos SamplePosition = `
score: 0
 1|    .    2    2    2 |
 2|    2    2    2    2 |
 3|    2    2    2    2 |
 4|    2    2    2    2 |
`
	// Stuck is full and has no equal neighbours.
	Stuck SamplePosition = `
score: 5000
 1|    2    4    2    4 |
 2|    4    2    4    2 |
 3|    2    4    2    4 |
 4|    4    2    4    2 |
`
	// AlmostWon can reach 2048 with a single Left or Right.
	AlmostWon SamplePosition = `
score: 20000
 1| 1024 1024    .    . |
 2|    2    4    8   16 |
 3|    .    .    .    . |
 4|    .    .    .    2 |
`
	// Won already holds the winning tile.
	Won SamplePosition = `
score: 21000
 1| 2048    .    .    . |
 2|    2    4    .    . |
 3|    .    .    .    . |
 4|    .    .    .    . |
`
	// Midgame is an ordinary position with a handful of open cells.
	Midgame SamplePosition = `
score: 1480
 1|  128   64   16    4 |
 2|   32   16    8    2 |
 3|    4    8    .    . |
 4|    2    .    .    . |
`
	// OnlyDown can only move down.
	OnlyDown SamplePosition = `
score: 60
 1|    2    4    8   16 |
 2|    .    .    .    . |
 3|    .    .    .    . |
 4|    .    .    .    . |
`
)

// MustLoad parses a sample position, panicking on error.
func (p SamplePosition) MustLoad() Board {
	b, err := FromPlaintext(string(p))
	if err != nil {
		panic(err)
	}
	return b
}
