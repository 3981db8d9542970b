// Package engine provides the core rules of the Sokoban game.
//
// The engine package implements:
//   - Level parsing from text into a background and a foreground layer
//   - The Universe, which owns the world and applies moves and pushes
//   - Goal bookkeeping and the win condition
//   - GameEngine, which adds move counters, a move log, LURD solutions and reset
//   - Level document validation
//
// Core Types:
//
// A Level is the parsed, immutable start of a puzzle. A Universe is built
// from a Level and changes only through MovePlayer, which returns a
// MoveOutcome describing what happened. GameEngine wraps a Universe for a
// single LevelConfig and produces GameState snapshots.
//
// Usage:
//
//	u, err := engine.NewUniverseFromText("#####\n#@$.#\n#####")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := u.MovePlayer(1, 0) // engine.Pushed
//	won := u.HasWon()             // true
//
// Game Rules:
//
// The player walks on Empty and Goal tiles and never through walls. Walking
// into a crate pushes it one cell further, unless a wall, another crate or
// the edge of the level is behind it. The level is solved when every crate
// rests on a goal. Rejected moves change nothing.
package engine
