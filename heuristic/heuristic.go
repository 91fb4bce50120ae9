// Package heuristic scores boards at the search horizon. Everything here is
// a pure function of its arguments.
package heuristic

import (
	"math"

	"github.com/domino14/tilesolver/board"
)

// Score blends the real score, the open space and the clustering penalty:
//
//	actualScore + ln(actualScore)*numberOfEmptyCells - clusteringScore
//
// floored at min(actualScore, 1). The log term is dropped when actualScore
// is not positive.
func Score(actualScore, numberOfEmptyCells, clusteringScore int) int {
	v := float64(actualScore) - float64(clusteringScore)
	if actualScore > 0 {
		v += math.Log(float64(actualScore)) * float64(numberOfEmptyCells)
	}
	return max(int(v), min(actualScore, 1))
}

// Clustering measures how uneven neighbouring tiles are. For each tile it
// averages (integer division) the absolute difference to each occupied cell
// among its up to 8 neighbours, and sums the averages. A tile with no
// occupied neighbours adds nothing.
func Clustering(grid [][]int) int {
	total := 0
	n := len(grid)
	for i := 0; i < n; i++ {
		for j := 0; j < len(grid[i]); j++ {
			v := grid[i][j]
			if v == 0 {
				continue
			}
			neighbours, sum := 0, 0
			for di := -1; di <= 1; di++ {
				x := i + di
				if x < 0 || x >= n {
					continue
				}
				for dj := -1; dj <= 1; dj++ {
					y := j + dj
					if (di == 0 && dj == 0) || y < 0 || y >= len(grid[x]) {
						continue
					}
					if grid[x][y] > 0 {
						neighbours++
						sum += abs(v - grid[x][y])
					}
				}
			}
			if neighbours > 0 {
				total += sum / neighbours
			}
		}
	}
	return total
}

// Evaluate is the static evaluation of b used at depth-zero leaves.
func Evaluate(b board.Board) int {
	return Score(b.Score(), b.NumEmptyCells(), Clustering(b.Grid()))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
