package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDirection = errors.New("invalid direction")

// Direction is one of the four unit steps
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in the order possible moves are reported
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection accepts the direction name or its LURD letter, in any case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Delta returns the unit offset of the direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Letter returns the LURD notation for the direction: lowercase for a plain
// step, uppercase for a push
func (d Direction) Letter(push bool) byte {
	var b byte
	switch d {
	case Up:
		b = 'u'
	case Down:
		b = 'd'
	case Left:
		b = 'l'
	case Right:
		b = 'r'
	default:
		return '?'
	}
	if push {
		b -= 'a' - 'A'
	}
	return b
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseSolution splits a LURD string into directions. Case is ignored, so
// pushes and plain steps replay the same way.
func ParseSolution(lurd string) ([]Direction, error) {
	dirs := make([]Direction, 0, len(lurd))
	for i, r := range lurd {
		if r == ' ' || r == '\n' || r == '\t' {
			continue
		}
		d, err := ParseDirection(string(r))
		if err != nil {
			return nil, fmt.Errorf("solution position %d: %w", i, err)
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}
