// Package service provides the business logic layer of the Sokoban server.
//
// GameService sits between the transports (HTTP, WebSocket, MCP) and the
// game engine. It resolves sessions and levels, turns engine outcomes into
// GameEvents and per-step traces, and records every solve.
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager stores the games in progress.
// ConfigManager loads and saves level documents.
// MoveJournal receives every move attempt for the audit trail.
//
// Errors for unknown sessions and levels wrap ErrNotFound, so callers can map
// them with errors.Is regardless of which layer produced them.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithRecords(store),
//		service.WithJournal(journalWriter),
//	)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	result, err := gameService.Move(ctx, info.ID, "left", false)
//
// Move and BulkMove hold a single service-wide lock and each opens an
// OpenTelemetry span. A bulk move runs at most engine.MaxBulkMoves steps and
// stops at the first rejected move or at victory.
package service
