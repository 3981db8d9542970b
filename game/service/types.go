package service

import (
	"time"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/records"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	LevelConfig    *engine.LevelConfig `json:"level_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool               `json:"success"`
	Outcome     engine.MoveOutcome `json:"outcome"`
	GameState   *engine.GameState  `json:"game_state"`
	Message     string             `json:"message"`
	Events      []GameEvent        `json:"events,omitempty"`
	Step        *StepInfo          `json:"step,omitempty"`
	AttemptedTo *AttemptInfo       `json:"attempted_to,omitempty"`
	Record      *records.Record    `json:"record,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	PushesExecuted int               `json:"pushes_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_crate|out_of_bounds|invalid_direction|victory|game_over
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos   engine.Position `json:"start_pos"`
	EndPos     engine.Position `json:"end_pos"`
	GoalsDelta int             `json:"goals_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status
	Won           bool            `json:"won"`
	Message       string          `json:"message,omitempty"`
	PossibleMoves []string        `json:"possible_moves,omitempty"`
	Record        *records.Record `json:"record,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int                `json:"idx"`
	Dir         string             `json:"dir"`
	Outcome     engine.MoveOutcome `json:"outcome"`
	From        engine.Position    `json:"from"`
	To          engine.Position    `json:"to"`
	Pushed      bool               `json:"pushed,omitempty"`
	CrateTo     *engine.Position   `json:"crate_to,omitempty"`
	GoalsBefore int                `json:"goals_before"`
	GoalsAfter  int                `json:"goals_after"`
	Victory     bool               `json:"victory,omitempty"`
}

// AttemptInfo details the cell a rejected move tried to enter
type AttemptInfo struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	TileChar string `json:"tile_char"`
	TileType string `json:"tile_type"`
	Passable bool   `json:"passable"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "push", "goal_reached", "goal_left", "blocked", "victory", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a level
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Author      string `json:"author,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Crates      int    `json:"crates"`
}

// RecordsResponse lists the best solves of a level
type RecordsResponse struct {
	Level   string           `json:"level"`
	Best    *records.Record  `json:"best,omitempty"`
	Records []records.Record `json:"records"`
}
