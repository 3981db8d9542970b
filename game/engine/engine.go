package engine

import (
	"errors"
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	IsVictory() bool
	GetPlayerPosition() Position
	GetMoves() int
	GetPushes() int
	GetSolution() string

	// Movement operations
	Move(direction string) MoveOutcome
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *LevelConfig
	SetConfig(config *LevelConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface on top of a Universe
type GameEngine struct {
	config   *LevelConfig
	level    *Level
	universe *Universe

	moves    int
	pushes   int
	solution []byte
	message  string

	// history is cumulative across resets; current only covers the attempt
	// since the last reset
	history []MoveHistoryEntry
	current int
}

// NewEngine creates a new game engine for the provided level
func NewEngine(config *LevelConfig) (*GameEngine, error) {
	if config == nil {
		return nil, errors.New("level config cannot be nil")
	}
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}

	level, err := config.Parse()
	if err != nil {
		return nil, err
	}

	e := &GameEngine{config: config, level: level}
	e.restart()
	return e, nil
}

// NewEngineWithDefaults creates a new game engine on the built-in level
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultLevelConfig())
	if err != nil {
		panic(fmt.Sprintf("default level is invalid: %v", err))
	}
	return e
}

func (e *GameEngine) restart() {
	e.universe = NewUniverse(e.level)
	e.moves = 0
	e.pushes = 0
	e.solution = e.solution[:0]
	e.current = len(e.history)
	e.message = fmt.Sprintf("Level %q: push every crate onto a goal.", e.config.Name)
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	u := e.universe
	history := append([]MoveHistoryEntry(nil), e.history[e.current:]...)
	return &GameState{
		LevelName:      e.config.Name,
		Width:          u.Width(),
		Height:         u.Height(),
		Board:          RenderBoard(u),
		Player:         u.Player().Position(),
		Crates:         u.Crates(),
		GoalsSatisfied: u.GoalsSatisfied(),
		TotalCrates:    u.CrateCount(),
		Won:            u.HasWon(),
		Moves:          e.moves,
		Pushes:         e.pushes,
		Solution:       string(e.solution),
		Message:        e.message,
		MoveHistory:    history,
		TotalMoves:     len(e.history),
	}
}

// Reset restores the level's starting position. The cumulative move log is
// kept; counters and the solution restart from zero.
func (e *GameEngine) Reset() *GameState {
	e.restart()
	return e.GetState()
}

// IsVictory returns whether every crate is on a goal
func (e *GameEngine) IsVictory() bool {
	return e.universe.HasWon()
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.universe.Player().Position()
}

// GetMoves returns the number of accepted moves since the last reset
func (e *GameEngine) GetMoves() int {
	return e.moves
}

// GetPushes returns the number of accepted pushes since the last reset
func (e *GameEngine) GetPushes() int {
	return e.pushes
}

// GetSolution returns the accepted moves since the last reset in LURD notation
func (e *GameEngine) GetSolution() string {
	return string(e.solution)
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction string) MoveOutcome {
	from := e.GetPlayerPosition()

	var outcome MoveOutcome
	dir, err := ParseDirection(direction)
	switch {
	case err != nil:
		outcome = InvalidDirection
	case e.universe.HasWon():
		outcome = AlreadyWon
	default:
		outcome = e.universe.MovePlayer(dir.Delta())
	}

	switch outcome {
	case Moved, Pushed:
		e.moves++
		push := outcome == Pushed
		if push {
			e.pushes++
		}
		e.solution = append(e.solution, dir.Letter(push))
	}
	e.message = e.describe(outcome, direction)

	e.history = append(e.history, MoveHistoryEntry{
		Action:       direction,
		Outcome:      outcome,
		FromPosition: from,
		ToPosition:   e.GetPlayerPosition(),
		Timestamp:    time.Now().Unix(),
		Success:      outcome.Changed(),
		MoveNumber:   len(e.history) + 1,
	})

	return outcome
}

func (e *GameEngine) describe(outcome MoveOutcome, direction string) string {
	switch outcome {
	case Moved:
		if e.universe.HasWon() {
			break
		}
		return fmt.Sprintf("Moved %s.", direction)
	case Pushed:
		if e.universe.HasWon() {
			break
		}
		return fmt.Sprintf("Pushed a crate %s. %d/%d crates on goals.",
			direction, e.universe.GoalsSatisfied(), e.universe.CrateCount())
	case BlockedByWall:
		return fmt.Sprintf("Can't move %s: wall.", direction)
	case BlockedByCrate:
		return fmt.Sprintf("Can't push %s: another crate is behind it.", direction)
	case OutOfBounds:
		return fmt.Sprintf("Can't move %s: edge of the level.", direction)
	case InvalidDirection:
		return fmt.Sprintf("Unknown direction %q. Use up, down, left or right.", direction)
	case AlreadyWon:
		return "The level is already solved. Reset to play again."
	default:
		return outcome.String()
	}
	return fmt.Sprintf("Solved! %d moves, %d pushes.", e.moves, e.pushes)
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	if e.universe.HasWon() {
		return false
	}
	dir, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	return e.universe.CanMoveTo(dir.Delta())
}

// GetPossibleMoves returns all directions the player can currently take
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range Directions {
		if e.CanMove(dir.String()) {
			possible = append(possible, dir.String())
		}
	}
	return possible
}

// GetConfig returns the current level configuration
func (e *GameEngine) GetConfig() *LevelConfig {
	return e.config
}

// SetConfig switches to another level and starts it from scratch
func (e *GameEngine) SetConfig(config *LevelConfig) error {
	if config == nil {
		return errors.New("level config cannot be nil")
	}
	if err := ValidateLevelConfig(config); err != nil {
		return err
	}
	level, err := config.Parse()
	if err != nil {
		return err
	}

	e.config = config
	e.level = level
	e.restart()
	return nil
}

// GetMoveHistory returns the complete move log
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// GetLastMove returns the last move attempted, or nil if there is none
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// Universe returns a copy of the current world for read-only inspection
func (e *GameEngine) Universe() *Universe {
	return e.universe.Clone()
}

// BulkMove executes moves in sequence and stops at the first rejected one
func (e *GameEngine) BulkMove(moves []string) []MoveOutcome {
	outcomes := make([]MoveOutcome, 0, len(moves))

	for _, direction := range moves {
		outcome := e.Move(direction)
		outcomes = append(outcomes, outcome)
		if !outcome.Changed() || e.IsVictory() {
			break
		}
	}

	return outcomes
}
