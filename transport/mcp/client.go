package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sokoban",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sokoban - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Push every crate ($) onto a goal (.). You (@) can push one crate at a time and can never pull.

AVAILABLE TOOLS:
- create_session: Start a level
- list_sessions / get_session: Inspect running games
- game_state: Board, counters and possible moves
- move: Single step (up/down/left/right) - requires intent explanation
- bulk_move: Several steps, as a list or a LURD string - requires intent explanation
- reset_game: Restore the level to its start
- move_history: Paged list of past attempts
- list_levels: Levels you can play
- level_records: Best solutions of a level
- describe_cell: What sits on a single cell
- game_instructions: Full rules and notation

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	// Sessions
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session on a level (the default level when config_id is omitted)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Level ID from list_levels (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, goal progress and possible moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell, pushing a crate if one is in the way",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first blocked move or at victory", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Array of moves",
				},
				"lurd": map[string]interface{}{
					"type":        "string",
					"description": "Moves in LURD notation, e.g. \"rrUlD\" (used when moves is empty)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the level to its starting position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "level_records",
		Description: "Show the best solutions recorded for a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Level ID",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of records",
				},
			},
			Required: []string{"config_id"},
		},
	}, c.handleLevelRecords)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules, board legend and LURD notation",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one cell of the board: its character, what is on it and whether the player could enter it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		progress := ""
		if s.GameState != nil {
			progress = fmt.Sprintf(", Goals: %d/%d", s.GameState.GoalsSatisfied, s.GameState.TotalCrates)
			if s.GameState.Won {
				progress += ", solved"
			}
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Created: %s%s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), progress)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	reset, _ := args["reset"].(bool)
	// intent is for the caller's benefit only

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	lurd, _ := args["lurd"].(string)
	reset, _ := args["reset"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}
	if len(moves) == 0 && lurd != "" {
		dirs, err := engine.ParseSolution(lurd)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, d := range dirs {
			moves = append(moves, d.String())
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("provide moves or a lurd string"), nil
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n", config.Name, config.ConfigID)
		if config.Description != "" {
			fmt.Fprintf(&b, "  %s\n", config.Description)
		}
		fmt.Fprintf(&b, "  Board: %dx%d, Crates: %d\n\n", config.Width, config.Height, config.Crates)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLevelRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	path := "/api/records/" + url.PathEscape(configID)
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var response service.RecordsResponse
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRecords(&response)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `📦 Sokoban - Complete Instructions

GAME OBJECTIVE:
Push every crate onto a goal. The level is solved the moment each goal holds a crate.

BOARD LEGEND:
• # - Wall (impassable)
• . - Goal (empty)
• @ - You
• + - You, standing on a goal
• $ - Crate
• * - Crate on a goal
• (space) - Floor

COORDINATES:
x is the column and y is the row, both counted from 0 at the top-left corner.
Moving up decreases y, moving right increases x.

MOVEMENT RULES:
• Each move steps one cell up, down, left or right.
• Walking into a crate pushes it one cell further in the same direction.
• A push only works when the cell behind the crate is floor or an empty goal.
• You cannot push two crates at once, push a crate into a wall, or pull a crate.
• A blocked move changes nothing and is not counted.

LURD NOTATION:
Solutions are written one letter per move: l, u, r, d for steps and L, U, R, D
for pushes. bulk_move accepts such a string, e.g. "rrUlD". Case does not matter
on input.

STRATEGY:
• A crate pushed into a corner that is not a goal can never move again.
• A crate against a wall can only slide along that wall; make sure a goal is on it.
• Check "Deadlocked crates" in game_state; if it lists anything, reset.
• Plan which goal each crate will go to before you start pushing.
• Use describe_cell when you are unsure what a character is.

TOOLS:
• bulk_move stops at the first blocked move and at victory; at most 200 moves per call.
• reset_game restores the start. Move history keeps counting across resets.
• level_records shows the shortest known solutions.

Good luck! 📦`

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	xf, okX := args["x"].(float64)
	yf, okY := args["y"].(float64)
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}
	x, y := int(xf), int(yf)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if y < 0 || y >= len(state.Board) || x < 0 || x >= len(state.Board[y]) {
		return mcp.NewToolResultError(fmt.Sprintf("position (%d, %d) is outside the %dx%d board", x, y, state.Width, state.Height)), nil
	}

	ch := state.Board[y][x]
	cellType, description, enterable := describeChar(ch)

	shown := string(ch)
	if ch == engine.EmptyChar {
		shown = "' ' (space)"
	}

	result := fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %s
Type: %s
Player can step here: %v
Description: %s`,
		x, y, shown, cellType, enterable, description)

	if ch == engine.CrateChar || ch == engine.CrateOnGoalChar {
		result += "\n" + describePushes(&state, x, y)
	}

	return mcp.NewToolResultText(result), nil
}

func describeChar(ch byte) (cellType, description, enterable string) {
	switch ch {
	case engine.WallChar:
		return "Wall", "Solid wall - IMPASSABLE", "no"
	case engine.GoalChar:
		return "Goal", "Empty goal - a crate belongs here", "yes"
	case engine.CrateChar:
		return "Crate", "Crate not on a goal", "only by pushing the crate"
	case engine.CrateOnGoalChar:
		return "Crate on goal", "Crate already on a goal", "only by pushing the crate off the goal"
	case engine.PlayerChar:
		return "Player", "This is you", "you are here"
	case engine.PlayerOnGoalChar:
		return "Player on goal", "This is you, standing on a goal", "you are here"
	case engine.EmptyChar:
		return "Floor", "Open floor", "yes"
	default:
		return "Unknown", "Unknown character", "no"
	}
}

// describePushes lists the directions a crate at (x,y) could be pushed,
// ignoring whether the player can reach the pushing side
func describePushes(state *engine.GameState, x, y int) string {
	var dirs []string
	for _, d := range engine.Directions {
		dx, dy := d.Delta()
		behind := boardChar(state, x-dx, y-dy)
		ahead := boardChar(state, x+dx, y+dy)
		if !standable(behind) {
			continue
		}
		if ahead == engine.EmptyChar || ahead == engine.GoalChar {
			dirs = append(dirs, d.String())
		}
	}
	if len(dirs) == 0 {
		return "Pushable: none right now"
	}
	return "Pushable: " + strings.Join(dirs, ",")
}

func standable(ch byte) bool {
	switch ch {
	case engine.EmptyChar, engine.GoalChar, engine.PlayerChar, engine.PlayerOnGoalChar:
		return true
	}
	return false
}

// boardChar returns the board character at (x,y); outside the board reads as wall
func boardChar(state *engine.GameState, x, y int) byte {
	if y < 0 || y >= len(state.Board) || x < 0 || x >= len(state.Board[y]) {
		return engine.WallChar
	}
	return state.Board[y][x]
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s | Player: (%d,%d) | Goals: %d/%d | Moves: %d | Pushes: %d\n\n",
		state.LevelName, state.Player.X, state.Player.Y,
		state.GoalsSatisfied, state.TotalCrates, state.Moves, state.Pushes)

	for _, row := range state.Board {
		b.WriteString(row)
		b.WriteString("\n")
	}

	if state.Solution != "" {
		fmt.Fprintf(&b, "\nSolution so far: %s\n", state.Solution)
	}
	if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(state.PossibleMoves, ","))
	}
	if len(state.DeadlockedCrates) > 0 {
		var cells []string
		for _, p := range state.DeadlockedCrates {
			cells = append(cells, fmt.Sprintf("(%d,%d)", p.X, p.Y))
		}
		fmt.Fprintf(&b, "⚠️ Deadlocked crates: %s (reset recommended)\n", strings.Join(cells, " "))
	}

	if state.Won {
		b.WriteString("\n🎉 SOLVED!")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatStep(s *service.StepInfo) string {
	status := "✓"
	if !s.Outcome.Changed() {
		status = "✗"
	}
	line := fmt.Sprintf("%s (%d,%d)→(%d,%d) %s", s.Dir, s.From.X, s.From.Y, s.To.X, s.To.Y, s.Outcome)
	if s.CrateTo != nil {
		line += fmt.Sprintf(" crate→(%d,%d)", s.CrateTo.X, s.CrateTo.Y)
	}
	if s.GoalsAfter != s.GoalsBefore {
		line += fmt.Sprintf(" goals %d→%d", s.GoalsBefore, s.GoalsAfter)
	}
	return line + " " + status
}

func formatAttempt(a *service.AttemptInfo) string {
	return fmt.Sprintf("attempted (%d,%d) tile=%q %s", a.X, a.Y, a.TileChar, a.TileType)
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		fmt.Fprintf(&b, "✗ Move failed: %s\n", result.Outcome)
	}

	if result.Step != nil {
		b.WriteString("Step: " + formatStep(result.Step) + "\n")
	}
	if result.AttemptedTo != nil {
		b.WriteString("Blocked: " + formatAttempt(result.AttemptedTo) + "\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}
	if result.Record != nil {
		fmt.Fprintf(&b, "🏆 Recorded solve: %d moves, %d pushes\n", result.Record.Moves, result.Record.Pushes)
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	levelName := ""
	if result.GameState != nil {
		levelName = result.GameState.LevelName
	}
	fmt.Fprintf(&b, "Session: %s • Level: %s\n", sessionID, levelName)

	fmt.Fprintf(&b, "Executed %d/%d moves (%d pushes)\n",
		result.MovesExecuted, result.RequestedMoves, result.PushesExecuted)
	if result.Truncated {
		fmt.Fprintf(&b, "Input truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}
	if result.AttemptedTo != nil {
		b.WriteString("Blocked: " + formatAttempt(result.AttemptedTo) + "\n")
	}
	fmt.Fprintf(&b, "Player: (%d,%d)→(%d,%d), goals %+d\n",
		result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y, result.GoalsDelta)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for i := range result.Steps {
			fmt.Fprintf(&b, "%d. %s\n", result.Steps[i].Idx, formatStep(&result.Steps[i]))
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			if event.Type == "move" {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}
	if result.Record != nil {
		fmt.Fprintf(&b, "\n🏆 Recorded solve: %d moves, %d pushes\n", result.Record.Moves, result.Record.Pushes)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d), total attempts across resets: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s (%d,%d)→(%d,%d) %s\n",
			move.MoveNumber, move.Action, move.Outcome,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y, status)
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore on page %d\n", history.Page+1)
	}
	return b.String()
}

func formatRecords(resp *service.RecordsResponse) string {
	if len(resp.Records) == 0 {
		return fmt.Sprintf("No solves recorded for %s yet", resp.Level)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Best solves for %s:\n\n", resp.Level)
	for i, r := range resp.Records {
		fmt.Fprintf(&b, "%d. %d moves, %d pushes (session %s, %s)\n   %s\n",
			i+1, r.Moves, r.Pushes, r.SessionID, r.SolvedAt.Format("2006-01-02"), r.Solution)
	}
	return b.String()
}
