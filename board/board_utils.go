package board

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var boardPlaintextRegex = regexp.MustCompile(`\|(.+)\|`)
var scorePlaintextRegex = regexp.MustCompile(`(?i)score:\s*(\d+)`)

// ToDisplayText renders the board the way the shell and logs show it.
// Empty cells are dots.
func (b Board) ToDisplayText() string {
	var sb strings.Builder
	width := len(strconv.Itoa(b.MaxTile()))
	if width < 4 {
		width = 4
	}
	fmt.Fprintf(&sb, "score: %d\n", b.score)
	sb.WriteString("   " + strings.Repeat("-", b.dim*(width+1)+1) + "\n")
	for i := 0; i < b.dim; i++ {
		fmt.Fprintf(&sb, "%2d|", i+1)
		for j := 0; j < b.dim; j++ {
			v := b.cells[i*b.dim+j]
			cell := "."
			if v != 0 {
				cell = strconv.Itoa(v)
			}
			fmt.Fprintf(&sb, " %*s", width, cell)
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString("   " + strings.Repeat("-", b.dim*(width+1)+1) + "\n")
	return sb.String()
}

func (b Board) String() string {
	return b.ToDisplayText()
}

// FromPlaintext parses a board written the way ToDisplayText writes it.
// Only the |...| rows are required; a "score: N" line is optional. Empty
// cells may be written as "." or "0".
func FromPlaintext(text string) (Board, error) {
	rows := boardPlaintextRegex.FindAllStringSubmatch(text, -1)
	grid := make([][]int, 0, len(rows))
	for _, r := range rows {
		fields := strings.Fields(r[1])
		row := make([]int, len(fields))
		for j, f := range fields {
			if f == "." {
				continue
			}
			v, err := strconv.Atoi(f)
			if err != nil {
				return Board{}, fmt.Errorf("%w: %q", ErrInvalidTile, f)
			}
			row[j] = v
		}
		grid = append(grid, row)
	}
	score := 0
	if m := scorePlaintextRegex.FindStringSubmatch(text); m != nil {
		score, _ = strconv.Atoi(m[1])
	}
	return FromGrid(grid, score)
}

// SetRow returns a copy of b with row rowNum replaced by values.
func (b Board) SetRow(rowNum int, values []int) (Board, error) {
	if rowNum < 0 || rowNum >= b.dim {
		return Board{}, fmt.Errorf("row %d is off a %dx%d board", rowNum, b.dim, b.dim)
	}
	if len(values) != b.dim {
		return Board{}, fmt.Errorf("%w: row has %d cells, want %d", ErrNotSquare, len(values), b.dim)
	}
	c := b.copy()
	for j, v := range values {
		if !validTile(v) {
			return Board{}, fmt.Errorf("%w: %d", ErrInvalidTile, v)
		}
		c.cells[rowNum*b.dim+j] = v
	}
	return c, nil
}

// WithScore returns a copy of b with the score replaced.
func (b Board) WithScore(score int) Board {
	c := b.copy()
	c.score = score
	return c
}
