package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/journal"
	"github.com/wricardo/mcp-training/sokoban/game/records"
	"github.com/wricardo/mcp-training/sokoban/telemetry"
)

const tracerName = "github.com/wricardo/mcp-training/sokoban/game/service"

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	records  records.Store
	journal  MoveJournal
	tracer   trace.Tracer
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithRecords stores solves in the given store instead of process memory
func WithRecords(store records.Store) Option {
	return func(s *gameServiceImpl) { s.records = store }
}

// WithJournal sends every move attempt to j
func WithJournal(j MoveJournal) Option {
	return func(s *gameServiceImpl) { s.journal = j }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		tracer:   telemetry.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.records == nil {
		s.records = records.NewMemoryStore()
	}
	return s
}

// getConfigID returns the config_id for a level display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return engine.DefaultLevelName
	}
	return configName
}

// resolveConfigID maps a requested level name ("classic", "classic.json",
// "Classic") to the config_id records are keyed by
func (s *gameServiceImpl) resolveConfigID(name string) string {
	if availableConfigs, err := s.configs.ListConfigs(); err == nil {
		for _, cfg := range availableConfigs {
			if strings.EqualFold(cfg.ConfigID, name) || strings.EqualFold(cfg.Filename, name) {
				return cfg.ConfigID
			}
		}
	}
	return name
}

// getSession looks a session up and stamps its access time. Callers hold
// s.mu for writing.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		LevelConfig:    sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.LevelConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("level '%s' %w. Available levels: %v", configName, err, configIDs)
				}
				return nil, fmt.Errorf("level '%s' %w. Use /api/configs to list available levels", configName, err)
			}
			return nil, fmt.Errorf("failed to load level %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if configName != "" {
		session.ConfigID = s.resolveConfigID(configName)
	} else {
		session.ConfigID = s.getConfigID(config.Name)
	}

	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	ctx, span := s.tracer.Start(ctx, "GameService.Move", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("move.direction", direction),
		attribute.Bool("move.reset", reset),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	step, stepEvents, rec := s.applyMove(ctx, sess, 1, direction)
	events = append(events, stepEvents...)

	state := s.enrich(sess, sess.Engine.GetState())
	result := &MoveResult{
		Success:   step.Outcome.Changed(),
		Outcome:   step.Outcome,
		GameState: state,
		Message:   state.Message,
		Events:    events,
		Record:    rec,
	}
	if result.Success {
		result.Step = &step
	} else {
		result.AttemptedTo = attemptedCell(state, step.From, direction)
	}

	span.SetAttributes(
		attribute.String("move.outcome", step.Outcome.String()),
		attribute.Bool("game.won", state.Won),
	)
	return result, nil
}

// BulkMove executes moves in sequence, stopping at the first rejected move or
// at victory
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	ctx, span := s.tracer.Start(ctx, "GameService.BulkMove", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("bulk.requested", len(moves)),
		attribute.Bool("move.reset", reset),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	start := sess.Engine.GetState()
	result.StartPos = start.Player

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsVictory() {
			result.Success = false
			result.StoppedReason = "level already solved"
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		step, events, rec := s.applyMove(ctx, sess, i+1, move)
		result.Events = append(result.Events, events...)

		if !step.Outcome.Changed() {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d (%s) rejected: %s", i+1, move, step.Outcome)
			result.StopReasonCode = stopCode(step.Outcome)
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attemptedCell(sess.Engine.GetState(), step.From, move)
			break
		}

		result.MovesExecuted++
		if step.Pushed {
			result.PushesExecuted++
		}
		result.Steps = append(result.Steps, step)

		if step.Victory {
			result.StoppedReason = "level solved"
			result.StopReasonCode = "victory"
			result.StoppedOnMove = i + 1
			result.Record = rec
			break
		}
	}

	end := s.enrich(sess, sess.Engine.GetState())
	result.GameState = end
	result.EndPos = end.Player
	result.GoalsDelta = end.GoalsSatisfied - start.GoalsSatisfied
	result.Won = end.Won
	result.Message = end.Message
	result.PossibleMoves = end.PossibleMoves

	span.SetAttributes(
		attribute.Int("bulk.executed", result.MovesExecuted),
		attribute.String("bulk.stop_reason", result.StopReasonCode),
	)
	return result, nil
}

// applyMove runs one move on the session's engine and derives the step trace,
// the events, the journal entry and, on the winning move, the solve record
func (s *gameServiceImpl) applyMove(ctx context.Context, sess *Session, idx int, direction string) (StepInfo, []GameEvent, *records.Record) {
	before := sess.Engine.Universe()
	wasWon := before.HasWon()

	outcome := sess.Engine.Move(direction)

	after := sess.Engine.Universe()
	step := StepInfo{
		Idx:         idx,
		Dir:         direction,
		Outcome:     outcome,
		From:        before.Player().Position(),
		To:          after.Player().Position(),
		GoalsBefore: before.GoalsSatisfied(),
		GoalsAfter:  after.GoalsSatisfied(),
	}

	now := time.Now()
	var events []GameEvent
	switch outcome {
	case engine.Moved:
		events = append(events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s to (%d,%d)", direction, step.To.X, step.To.Y),
			Timestamp: now,
			Position:  step.To,
		})
	case engine.Pushed:
		step.Pushed = true
		if dir, err := engine.ParseDirection(direction); err == nil {
			crate := step.To.Add(dir.Delta())
			step.CrateTo = &crate
		}
		events = append(events, GameEvent{
			Type:      "push",
			Message:   fmt.Sprintf("Pushed a crate %s to (%d,%d)", direction, step.CrateTo.X, step.CrateTo.Y),
			Timestamp: now,
			Position:  *step.CrateTo,
		})
		switch {
		case step.GoalsAfter > step.GoalsBefore:
			events = append(events, GameEvent{
				Type:      "goal_reached",
				Message:   fmt.Sprintf("Crate on goal. %d/%d crates on goals", step.GoalsAfter, after.CrateCount()),
				Timestamp: now,
				Position:  *step.CrateTo,
			})
		case step.GoalsAfter < step.GoalsBefore:
			events = append(events, GameEvent{
				Type:      "goal_left",
				Message:   fmt.Sprintf("Crate pushed off a goal. %d/%d crates on goals", step.GoalsAfter, after.CrateCount()),
				Timestamp: now,
				Position:  *step.CrateTo,
			})
		}
	default:
		events = append(events, GameEvent{
			Type:      "blocked",
			Message:   sess.Engine.GetState().Message,
			Timestamp: now,
			Position:  step.From,
		})
	}

	var rec *records.Record
	if !wasWon && after.HasWon() {
		step.Victory = true
		events = append(events, GameEvent{
			Type:      "victory",
			Message:   fmt.Sprintf("Level solved in %d moves and %d pushes", sess.Engine.GetMoves(), sess.Engine.GetPushes()),
			Timestamp: now,
		})
		rec = s.saveRecord(ctx, sess)
	}

	s.writeJournal(sess, outcome, step.To, now)
	return step, events, rec
}

func (s *gameServiceImpl) saveRecord(ctx context.Context, sess *Session) *records.Record {
	rec := records.NewRecord(sess.ConfigID, sess.ID, sess.Engine.GetMoves(), sess.Engine.GetPushes(), sess.Engine.GetSolution())
	if err := s.records.Save(ctx, rec); err != nil {
		log.Printf("Warning: failed to save record for session %s: %v", sess.ID, err)
		return nil
	}
	log.Printf("[RECORD] session=%s level=%s moves=%d pushes=%d", sess.ID, rec.Level, rec.Moves, rec.Pushes)
	return &rec
}

func (s *gameServiceImpl) writeJournal(sess *Session, outcome engine.MoveOutcome, player engine.Position, at time.Time) {
	if s.journal == nil {
		return
	}
	last := sess.Engine.GetLastMove()
	if last == nil {
		return
	}
	err := s.journal.Append(journal.Entry{
		SessionID:  sess.ID,
		Level:      sess.ConfigID,
		MoveNumber: last.MoveNumber,
		Direction:  last.Action,
		Outcome:    outcome,
		Player:     player,
		Time:       at,
	})
	if err != nil {
		log.Printf("Warning: failed to journal move for session %s: %v", sess.ID, err)
	}
}

// Reset resets a game session to its starting position
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.enrich(sess, sess.Engine.Reset()), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.enrich(sess, sess.Engine.GetState()), nil
}

// enrich adds the computed helper views to a state snapshot
func (s *gameServiceImpl) enrich(sess *Session, state *engine.GameState) *engine.GameState {
	state.PossibleMoves = sess.Engine.GetPossibleMoves()
	state.DeadlockedCrates = engine.DeadlockedCrates(sess.Engine.Universe())
	return state
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available levels
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.LevelConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// RefreshConfigs rereads level files from disk. Running sessions keep the
// level they started with.
func (s *gameServiceImpl) RefreshConfigs(ctx context.Context) error {
	if err := s.configs.RefreshCache(); err != nil {
		return fmt.Errorf("failed to refresh levels: %w", err)
	}
	log.Printf("[CONFIG] Level cache refreshed")
	return nil
}

// GetRecords returns the best solves of a level
func (s *gameServiceImpl) GetRecords(ctx context.Context, level string, limit int) (*RecordsResponse, error) {
	level = s.resolveConfigID(level)
	recs, err := s.records.List(ctx, level, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	if recs == nil {
		recs = []records.Record{}
	}

	resp := &RecordsResponse{Level: level, Records: recs}
	if len(recs) > 0 {
		best := recs[0]
		resp.Best = &best
	}
	return resp, nil
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to starting position",
		Timestamp: time.Now(),
	}
}

// stopCode maps a rejected outcome to the bulk-move stop reason code
func stopCode(outcome engine.MoveOutcome) string {
	switch outcome {
	case engine.AlreadyWon:
		return "game_over"
	default:
		return outcome.String()
	}
}

// attemptedCell describes the cell a rejected move tried to enter
func attemptedCell(state *engine.GameState, from engine.Position, direction string) *AttemptInfo {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil
	}
	target := from.Add(dir.Delta())
	info := &AttemptInfo{X: target.X, Y: target.Y}

	if target.Y < 0 || target.Y >= len(state.Board) || target.X < 0 || target.X >= len(state.Board[target.Y]) {
		info.TileType = "out_of_bounds"
		return info
	}

	ch := state.Board[target.Y][target.X]
	info.TileChar = string(ch)
	switch ch {
	case engine.WallChar:
		info.TileType = "wall"
	case engine.GoalChar:
		info.TileType = "goal"
		info.Passable = true
	case engine.CrateChar:
		info.TileType = "crate"
	case engine.CrateOnGoalChar:
		info.TileType = "crate_on_goal"
	default:
		info.TileType = "floor"
		info.Passable = true
	}
	return info
}
