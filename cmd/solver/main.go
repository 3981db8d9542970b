// Command solver plays a level through the server's REST API: it reads the
// session's level, finds a shortest solution offline and submits it in
// bulk-move batches.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

type options struct {
	serverURL   string
	configName  string
	sessionID   string
	sessionFile string
	maxStates   int
	verbose     bool
}

func main() {
	opts := options{sessionFile: ".session"}
	flag.StringVar(&opts.serverURL, "url", "http://localhost:8080", "Game server URL")
	flag.StringVar(&opts.configName, "config", "", "Level name (server default when empty)")
	flag.StringVar(&opts.sessionID, "continue", "", "Resume an existing session by ID")
	flag.IntVar(&opts.maxStates, "max-states", 2000000, "Maximum positions to search (0 = unbounded)")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose output")
	flag.Parse()

	log.Printf("Connecting to game server at %s", opts.serverURL)
	result, err := run(NewClient(strings.TrimSuffix(opts.serverURL, "/")), opts, log.Default())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if !result.Won {
		os.Exit(1)
	}
}

// run resumes or creates a session, solves its level and plays the solution
// from a fresh reset
func run(client *Client, opts options, logger *log.Logger) (*service.BulkMoveResult, error) {
	session, err := openSession(client, opts, logger)
	if err != nil {
		return nil, err
	}
	if session.LevelConfig == nil {
		return nil, errors.New("session has no level attached")
	}

	level := session.LevelConfig
	logger.Printf("Solving %q (%s)", level.Name, session.ConfigName)
	if opts.verbose {
		for _, row := range level.Layout {
			logger.Print(row)
		}
	}

	solution, err := Solve(level, opts.maxStates)
	if err != nil {
		return nil, fmt.Errorf("solve %s: %w", session.ConfigName, err)
	}
	dirs, err := engine.ParseSolution(solution)
	if err != nil {
		return nil, err
	}
	logger.Printf("Found solution: %d moves, %d pushes", len(dirs), countPushes(solution))
	if opts.verbose {
		logger.Printf("LURD: %s", solution)
	}

	if _, err := client.Reset(); err != nil {
		return nil, err
	}

	var result *service.BulkMoveResult
	for i, batch := range chunk(dirs, engine.MaxBulkMoves) {
		result, err = client.BulkMove(batch)
		if err != nil {
			return nil, err
		}
		if opts.verbose {
			logger.Printf("Batch %d: %d/%d moves executed", i+1, result.MovesExecuted, result.RequestedMoves)
		}
		if result.StoppedReason != "" && !result.Won {
			return result, fmt.Errorf("server stopped the solution on move %d: %s", result.StoppedOnMove, result.StoppedReason)
		}
	}
	if result == nil {
		result = &service.BulkMoveResult{Won: true, GameState: session.GameState}
	}

	if result.Won {
		logger.Printf("🎉 SOLVED! Session: %s", session.ID)
		if result.Record != nil {
			logger.Printf("🏆 Recorded: %d moves, %d pushes", result.Record.Moves, result.Record.Pushes)
		}
	} else {
		logger.Printf("Solution replayed but the level is not solved. Session: %s", session.ID)
	}
	return result, nil
}

func openSession(client *Client, opts options, logger *log.Logger) (*service.SessionInfo, error) {
	id := opts.sessionID
	if id == "" && opts.sessionFile != "" && opts.configName == "" {
		if data, err := os.ReadFile(opts.sessionFile); err == nil {
			id = strings.TrimSpace(string(data))
		}
	}

	if id != "" {
		session, err := client.GetSession(id)
		if err == nil {
			logger.Printf("🔄 Resuming session: %s", session.ID)
			return session, nil
		}
		logger.Printf("⚠️  Failed to resume session (may be expired): %v", err)
	}

	session, err := client.CreateSession(opts.configName)
	if err != nil {
		return nil, err
	}
	logger.Printf("✨ Session created: %s", session.ID)
	if opts.sessionFile != "" {
		if err := os.WriteFile(opts.sessionFile, []byte(session.ID), 0644); err != nil {
			logger.Printf("Warning: Failed to save session ID: %v", err)
		}
	}
	return session, nil
}

func countPushes(lurd string) int {
	n := 0
	for _, r := range lurd {
		if r >= 'A' && r <= 'Z' {
			n++
		}
	}
	return n
}
