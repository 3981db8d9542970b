// Package mcp exposes the Sokoban REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes one or two HTTP
// requests against the API server and the JSON reply is rendered as text an
// agent can read.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board rows, goal progress, possible moves, deadlocked crates
//   - move: one step, pushing a crate when one is in the way
//   - bulk_move: a list of directions or a LURD string
//   - reset_game, move_history
//   - list_levels, level_records
//   - describe_cell: what a single board character means
//   - game_instructions: rules and notation
//
// Transport Modes:
//
// The server built by GetMCPServer can be served over stdio with
// server.ServeStdio, or behind an HTTP handler that passes each POSTed
// JSON-RPC message to HandleMessage.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
