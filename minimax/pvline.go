package minimax

import (
	"fmt"
	"strings"

	"github.com/domino14/tilesolver/board"
)

// Step is one ply of a line of play: either a human move or a tile spawn.
type Step struct {
	Direction board.Direction
	// Spawn fields are only set when Direction is NoDirection.
	SpawnCell  int
	SpawnValue int
}

func (s Step) IsSpawn() bool {
	return s.Direction == board.NoDirection
}

func (s Step) describe(dim int) string {
	if !s.IsSpawn() {
		return s.Direction.String()
	}
	if dim <= 0 {
		return fmt.Sprintf("spawn %d @%d", s.SpawnValue, s.SpawnCell)
	}
	return fmt.Sprintf("spawn %d @(%d,%d)", s.SpawnValue, s.SpawnCell/dim, s.SpawnCell%dim)
}

// PVLine is the principal variation: the line of play both sides are
// expected to follow from the root.
type PVLine struct {
	Steps []Step
	score int
	dim   int
}

// Clear the principal variation line.
func (pv *PVLine) Clear() {
	pv.Steps = nil
}

// Update the line with a new best step followed by the child's line.
func (pv *PVLine) Update(step Step, child PVLine, score int) {
	pv.Clear()
	pv.Steps = append(pv.Steps, step)
	pv.Steps = append(pv.Steps, child.Steps...)
	pv.score = score
}

func (pv PVLine) Score() int {
	return pv.score
}

func (pv PVLine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %s\n", ScoreString(pv.score))
	for i, s := range pv.Steps {
		fmt.Fprintf(&sb, "%d: %s\n", i+1, s.describe(pv.dim))
	}
	return sb.String()
}

// NLBString is String without line breaks, for log fields.
func (pv PVLine) NLBString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %s; ", ScoreString(pv.score))
	for i, s := range pv.Steps {
		fmt.Fprintf(&sb, "%d: %s; ", i+1, s.describe(pv.dim))
	}
	return sb.String()
}
