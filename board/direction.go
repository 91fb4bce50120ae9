package board

import (
	"fmt"
	"strings"
)

// Direction is a human move: a slide of every tile toward one edge.
type Direction uint8

const (
	// NoDirection is the zero value. It means no move was chosen.
	NoDirection Direction = iota
	Up
	Right
	Down
	Left
)

// Directions lists every move in the order the search enumerates them.
var Directions = [4]Direction{Up, Right, Down, Left}

// External codes for each direction, as sent over the wire. These are the
// arrow key codes the game clients already use.
const (
	CodeUp    = 38
	CodeRight = 39
	CodeDown  = 40
	CodeLeft  = 37
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	}
	return "none"
}

// Code returns the numeric code for d. NoDirection has code 0.
func (d Direction) Code() int {
	switch d {
	case Up:
		return CodeUp
	case Right:
		return CodeRight
	case Down:
		return CodeDown
	case Left:
		return CodeLeft
	}
	return 0
}

// DirectionFromCode is the inverse of Code.
func DirectionFromCode(code int) (Direction, error) {
	switch code {
	case CodeUp:
		return Up, nil
	case CodeRight:
		return Right, nil
	case CodeDown:
		return Down, nil
	case CodeLeft:
		return Left, nil
	}
	return NoDirection, fmt.Errorf("%w: code %d", ErrUnknownDirection, code)
}

// ParseDirection accepts a direction name or its first letter, in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "right", "r":
		return Right, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	}
	return NoDirection, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}
