package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedLevel  = errors.New("malformed level")
	ErrEmptyLevel      = fmt.Errorf("%w: level is empty", ErrMalformedLevel)
	ErrRaggedLevel     = fmt.Errorf("%w: rows have different lengths", ErrMalformedLevel)
	ErrNoPlayer        = fmt.Errorf("%w: no player marker", ErrMalformedLevel)
	ErrMultiplePlayers = fmt.Errorf("%w: more than one player marker", ErrMalformedLevel)
)

// Level is the parsed, immutable starting point of a puzzle
type Level struct {
	Width      int
	Height     int
	Background []Tile
	Entities   []Entity
	PlayerID   EntityID
}

type parseOptions struct {
	pad bool
}

// ParseOption tweaks ParseLevel
type ParseOption func(*parseOptions)

// WithPadding accepts rows of unequal length. The grid is as wide as the
// longest row and short rows are filled with Empty.
func WithPadding() ParseOption {
	return func(o *parseOptions) { o.pad = true }
}

// ParseLevel converts newline separated level text into background tiles and
// foreground entities. Entities are emitted in row-major order and stamped
// with their EntityID. Characters outside the alphabet count as Empty.
func ParseLevel(text string, opts ...ParseOption) (*Level, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, ErrEmptyLevel
	}

	rows := strings.Split(text, "\n")
	for i := range rows {
		rows[i] = strings.TrimSuffix(rows[i], "\r")
	}

	width := len(rows[0])
	if o.pad {
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}
	} else {
		for i, row := range rows {
			if len(row) != width {
				return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRaggedLevel, i, len(row), width)
			}
		}
	}
	if width == 0 {
		return nil, ErrEmptyLevel
	}

	height := len(rows)
	level := &Level{
		Width:      width,
		Height:     height,
		Background: make([]Tile, width*height),
		PlayerID:   -1,
	}

	players := 0
	for y, row := range rows {
		for x := 0; x < width; x++ {
			ch := byte(EmptyChar)
			if x < len(row) {
				ch = row[x]
			}
			level.Background[y*width+x] = backgroundFor(ch)

			switch ch {
			case PlayerChar:
				players++
				level.PlayerID = EntityID(len(level.Entities))
				level.Entities = append(level.Entities, Entity{ID: level.PlayerID, X: x, Y: y, Kind: Player})
			case CrateChar:
				level.Entities = append(level.Entities, Entity{ID: EntityID(len(level.Entities)), X: x, Y: y, Kind: Crate})
			}
		}
	}

	switch {
	case players == 0:
		return nil, ErrNoPlayer
	case players > 1:
		return nil, fmt.Errorf("%w: found %d", ErrMultiplePlayers, players)
	}

	return level, nil
}

func backgroundFor(ch byte) Tile {
	switch ch {
	case WallChar:
		return Wall
	case GoalChar:
		return Goal
	default:
		return Empty
	}
}

// CrateCount returns the number of crates the level starts with
func (l *Level) CrateCount() int {
	n := 0
	for _, e := range l.Entities {
		if e.Kind == Crate {
			n++
		}
	}
	return n
}

// GoalCount returns the number of goal tiles
func (l *Level) GoalCount() int {
	n := 0
	for _, t := range l.Background {
		if t == Goal {
			n++
		}
	}
	return n
}
