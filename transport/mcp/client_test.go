package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/records"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

func corridorState() *engine.GameState {
	return &engine.GameState{
		LevelName:      "corridor",
		Width:          6,
		Height:         3,
		Board:          []string{"######", "# @$.#", "######"},
		Player:         engine.Position{X: 2, Y: 1},
		Crates:         []engine.Position{{X: 3, Y: 1}},
		GoalsSatisfied: 0,
		TotalCrates:    1,
		PossibleMoves:  []string{"left", "right"},
	}
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "ab12"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session zz99 not found"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/json", nil, nil)
	if err == nil || err.Error() != "session zz99 not found" {
		t.Errorf("Expected API error message, got %v", err)
	}

	err = client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error: 500") {
		t.Errorf("Expected 'API error: 500', got %v", err)
	}

	unreachable := NewClient("http://127.0.0.1:1")
	if err := unreachable.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_handleCreateSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "ab12",
			ConfigName: "corridor",
			GameState:  corridorState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{
		"config_id": "corridor",
	}))
	if err != nil {
		t.Fatalf("handleCreateSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "ab12") || !strings.Contains(text, "# @$.#") {
		t.Errorf("Expected session ID and board in result, got: %s", text)
	}
	if gotBody["config_id"] != "corridor" {
		t.Errorf("Expected config_id corridor in body, got %v", gotBody)
	}
}

func TestClient_handleMove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/move" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["direction"] != "right" {
			t.Errorf("Expected direction right, got %v", body["direction"])
		}

		state := corridorState()
		state.Board = []string{"######", "#  @*#", "######"}
		state.Player = engine.Position{X: 3, Y: 1}
		state.GoalsSatisfied = 1
		state.Won = true
		state.Moves, state.Pushes, state.Solution = 1, 1, "R"

		json.NewEncoder(w).Encode(service.MoveResult{
			Success:   true,
			Outcome:   engine.Pushed,
			GameState: state,
			Step: &service.StepInfo{
				Idx: 1, Dir: "right", Outcome: engine.Pushed,
				From: engine.Position{X: 2, Y: 1}, To: engine.Position{X: 3, Y: 1},
				Pushed: true, CrateTo: &engine.Position{X: 4, Y: 1},
				GoalsBefore: 0, GoalsAfter: 1, Victory: true,
			},
			Events: []service.GameEvent{{Type: "victory", Message: "All crates are on goals!"}},
			Record: &records.Record{Moves: 1, Pushes: 1, Solution: "R"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleMove(context.Background(), callTool("move", map[string]interface{}{
		"session_id": "ab12",
		"direction":  "right",
		"intent":     "push the crate onto the goal",
	}))
	if err != nil {
		t.Fatalf("handleMove failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"✓ Move successful", "crate→(4,1)", "goals 0→1", "victory", "🏆", "🎉 SOLVED!", "Solution so far: R"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handleMove_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session zz99: session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleMove(context.Background(), callTool("move", map[string]interface{}{
		"session_id": "zz99",
		"direction":  "up",
	}))
	if err != nil {
		t.Fatalf("Expected tool error result, got Go error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected IsError to be set")
	}
}

func TestClient_handleBulkMove(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]interface{}
		wantMoves []string
		wantError bool
	}{
		{
			name:      "moves array",
			args:      map[string]interface{}{"moves": []interface{}{"left", "right"}},
			wantMoves: []string{"left", "right"},
		},
		{
			name:      "lurd string",
			args:      map[string]interface{}{"lurd": "lrR"},
			wantMoves: []string{"left", "right", "right"},
		},
		{
			name:      "bad lurd",
			args:      map[string]interface{}{"lurd": "lx"},
			wantError: true,
		},
		{
			name:      "nothing to do",
			args:      map[string]interface{}{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Moves []string `json:"moves"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				got = body.Moves
				json.NewEncoder(w).Encode(service.BulkMoveResult{
					MovesExecuted:  len(body.Moves),
					RequestedMoves: len(body.Moves),
					Success:        true,
					GameState:      corridorState(),
				})
			}))
			defer server.Close()

			args := map[string]interface{}{"session_id": "ab12"}
			for k, v := range tt.args {
				args[k] = v
			}

			client := NewClient(server.URL)
			result, err := client.handleBulkMove(context.Background(), callTool("bulk_move", args))
			if err != nil {
				t.Fatalf("handleBulkMove failed: %v", err)
			}
			if result.IsError != tt.wantError {
				t.Fatalf("Expected IsError %v, got %v: %s", tt.wantError, result.IsError, resultText(t, result))
			}
			if tt.wantError {
				return
			}
			if strings.Join(got, ",") != strings.Join(tt.wantMoves, ",") {
				t.Errorf("Expected moves %v, got %v", tt.wantMoves, got)
			}
			if !strings.Contains(resultText(t, result), "Executed") {
				t.Errorf("Expected bulk summary, got: %s", resultText(t, result))
			}
		})
	}
}

func TestClient_handleDescribeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(corridorState())
	}))
	defer server.Close()

	client := NewClient(server.URL)

	tests := []struct {
		name    string
		x, y    float64
		want    string
		isError bool
	}{
		{"wall", 0, 0, "Type: Wall", false},
		{"player", 2, 1, "Type: Player", false},
		{"crate", 3, 1, "Pushable: right", false},
		{"goal", 4, 1, "Type: Goal", false},
		{"floor", 1, 1, "' ' (space)", false},
		{"outside", 9, 9, "outside", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleDescribeCell(context.Background(), callTool("describe_cell", map[string]interface{}{
				"session_id": "ab12",
				"x":          tt.x,
				"y":          tt.y,
			}))
			if err != nil {
				t.Fatalf("handleDescribeCell failed: %v", err)
			}
			if result.IsError != tt.isError {
				t.Fatalf("Expected IsError %v, got %v", tt.isError, result.IsError)
			}
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("Expected %q in result, got: %s", tt.want, text)
			}
		})
	}
}

func TestClient_handleLevelRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/records/corridor" || r.URL.Query().Get("limit") != "3" {
			t.Errorf("Unexpected request %s", r.URL.String())
		}
		json.NewEncoder(w).Encode(service.RecordsResponse{
			Level: "corridor",
			Records: []records.Record{
				{SessionID: "ab12", Moves: 1, Pushes: 1, Solution: "R", SolvedAt: time.Now()},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleLevelRecords(context.Background(), callTool("level_records", map[string]interface{}{
		"config_id": "corridor",
		"limit":     float64(3),
	}))
	if err != nil {
		t.Fatalf("handleLevelRecords failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "1 moves, 1 pushes") {
		t.Errorf("Expected record line, got: %s", text)
	}
}

func TestClient_handleListLevels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]service.ConfigInfo{
			{ConfigID: "classic", Name: "Classic", Width: 8, Height: 7, Crates: 2},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListLevels(context.Background(), callTool("list_levels", nil))
	if err != nil {
		t.Fatalf("handleListLevels failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "config_id: classic") || !strings.Contains(text, "Board: 8x7, Crates: 2") {
		t.Errorf("Unexpected level listing: %s", text)
	}
}

func TestFormatGameState(t *testing.T) {
	state := corridorState()
	state.DeadlockedCrates = []engine.Position{{X: 3, Y: 1}}
	state.Message = "Push the crate"

	result := formatGameState(state)

	for _, want := range []string{
		"Player: (2,1)",
		"Goals: 0/1",
		"######\n# @$.#\n######",
		"Possible moves: left,right",
		"Deadlocked crates: (3,1)",
		"Message: Push the crate",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in formatted output, got: %s", want, result)
		}
	}
	if strings.Contains(result, "SOLVED") {
		t.Error("Unsolved state should not report a solve")
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Expected placeholder, got %q", got)
	}
}

func TestFormatBulkMoveResult_Stopped(t *testing.T) {
	result := &service.BulkMoveResult{
		MovesExecuted:  1,
		RequestedMoves: 3,
		StoppedReason:  "Blocked by wall",
		StopReasonCode: "blocked_wall",
		StoppedOnMove:  2,
		Truncated:      true,
		Limit:          engine.MaxBulkMoves,
		AttemptedTo:    &service.AttemptInfo{X: 0, Y: 1, TileChar: "#", TileType: "wall"},
		GameState:      corridorState(),
	}

	text := formatBulkMoveResult("ab12", result)
	for _, want := range []string{"Executed 1/3 moves", "Stopped on move 2: Blocked by wall", "Input truncated to 200", `tile="#" wall`} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q, got: %s", want, text)
		}
	}
}

func TestFormatHistory(t *testing.T) {
	history := &service.HistoryResponse{
		Moves: []engine.MoveHistoryEntry{
			{Action: "left", Outcome: engine.BlockedByWall, Success: false, MoveNumber: 2},
			{Action: "right", Outcome: engine.Pushed, Success: true, MoveNumber: 1},
		},
		TotalMoves: 2,
		Page:       1,
		PageSize:   20,
		TotalPages: 1,
	}

	text := formatHistory(history)
	if !strings.Contains(text, "2. left blocked_wall") || !strings.Contains(text, "1. right pushed") {
		t.Errorf("Unexpected history: %s", text)
	}
}
