package engine

import "fmt"

// Tile is the static background kind of a grid cell
type Tile uint8

const (
	Empty Tile = iota
	Wall
	Goal
)

// EntityKind distinguishes the movable things on the foreground layer
type EntityKind uint8

const (
	Player EntityKind = iota
	Crate
)

// Level text alphabet
const (
	EmptyChar  = ' '
	WallChar   = '#'
	GoalChar   = '.'
	PlayerChar = '@'
	CrateChar  = '$'

	// Only produced by board snapshots, never accepted by the parser
	CrateOnGoalChar  = '*'
	PlayerOnGoalChar = '+'
)

// Validation and service limits
const (
	MaxLevelWidth       = 64
	MaxLevelHeight      = 64
	MaxBulkMoves        = 200
	WebSocketBufferSize = 256
)

func (t Tile) String() string {
	switch t {
	case Empty:
		return "empty"
	case Wall:
		return "wall"
	case Goal:
		return "goal"
	default:
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
}

// MarshalText renders the tile by name so JSON payloads stay readable
func (t Tile) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tile name produced by MarshalText
func (t *Tile) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*t = Empty
	case "wall":
		*t = Wall
	case "goal":
		*t = Goal
	default:
		return fmt.Errorf("unknown tile %q", string(b))
	}
	return nil
}

func (k EntityKind) String() string {
	switch k {
	case Player:
		return "player"
	case Crate:
		return "crate"
	default:
		return fmt.Sprintf("entity(%d)", uint8(k))
	}
}

// MarshalText renders the entity kind by name
func (k EntityKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses an entity kind name produced by MarshalText
func (k *EntityKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "player":
		*k = Player
	case "crate":
		*k = Crate
	default:
		return fmt.Errorf("unknown entity kind %q", string(b))
	}
	return nil
}

// EntityID is the stable identity of a foreground entity. It is assigned
// once at parse time and never reused or reassigned.
type EntityID int

// Entity is a movable object on the foreground layer
type Entity struct {
	ID   EntityID   `json:"id"`
	X    int        `json:"x"`
	Y    int        `json:"y"`
	Kind EntityKind `json:"kind"`
}

// Position returns the entity's current cell
func (e Entity) Position() Position {
	return Position{X: e.X, Y: e.Y}
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add offsets the position by a delta
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// MoveOutcome reports what a move attempt did. Only Moved and Pushed
// change state; every other outcome leaves the world untouched.
type MoveOutcome int

const (
	Moved MoveOutcome = iota
	Pushed
	BlockedByWall
	BlockedByCrate
	OutOfBounds
	// Stayed is reported for a zero delta
	Stayed
	// InvalidDirection and AlreadyWon are produced by GameEngine, never by Universe
	InvalidDirection
	AlreadyWon
)

// Changed reports whether the outcome mutated the world
func (o MoveOutcome) Changed() bool {
	return o == Moved || o == Pushed
}

func (o MoveOutcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Pushed:
		return "pushed"
	case BlockedByWall:
		return "blocked_wall"
	case BlockedByCrate:
		return "blocked_crate"
	case OutOfBounds:
		return "out_of_bounds"
	case Stayed:
		return "stayed"
	case InvalidDirection:
		return "invalid_direction"
	case AlreadyWon:
		return "already_won"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome code
func (o MoveOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome code produced by MarshalText
func (o *MoveOutcome) UnmarshalText(b []byte) error {
	for c := Moved; c <= AlreadyWon; c++ {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown move outcome %q", string(b))
}

// LevelConfig is a level document loaded from JSON or YAML
type LevelConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	Layout      []string `json:"layout" yaml:"layout"`
}

// GameState is a point-in-time snapshot of a game, safe to serialize and
// hand to other goroutines.
type GameState struct {
	LevelName      string             `json:"level_name"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Board          []string           `json:"board"`
	Player         Position           `json:"player"`
	Crates         []Position         `json:"crates"`
	GoalsSatisfied int                `json:"goals_satisfied"`
	TotalCrates    int                `json:"total_crates"`
	Won            bool               `json:"won"`
	Moves          int                `json:"moves"`
	Pushes         int                `json:"pushes"`
	Solution       string             `json:"solution"`
	Message        string             `json:"message"`
	MoveHistory    []MoveHistoryEntry `json:"move_history"`
	TotalMoves     int                `json:"total_moves"`

	// Computed helper views (not required for core game logic)
	PossibleMoves    []string   `json:"possible_moves,omitempty"`
	DeadlockedCrates []Position `json:"deadlocked_crates,omitempty"`
}

// MoveHistoryEntry represents a single move attempt in the game log
type MoveHistoryEntry struct {
	Action       string      `json:"action"`
	Outcome      MoveOutcome `json:"outcome"`
	FromPosition Position    `json:"from_position"`
	ToPosition   Position    `json:"to_position"`
	Timestamp    int64       `json:"timestamp"`
	Success      bool        `json:"success"`
	MoveNumber   int         `json:"move_number"`
}
