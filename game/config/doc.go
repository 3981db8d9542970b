// Package config loads Sokoban levels and server settings.
//
// Level documents live in a single directory as JSON or YAML files:
//
//	{
//	  "name": "corridor",
//	  "description": "One crate, one goal",
//	  "layout": ["######", "# @$.#", "######"]
//	}
//
// Every document is checked against LevelSchema and then against
// engine.ValidateLevelConfig, so a level the Manager returns always parses
// and is solvable in principle (at least one crate, no fewer goals than
// crates).
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadConfig("classic")
//	defaultLevel := manager.GetDefault()
//	levels, err := manager.ListConfigs()
//
// Server settings come from SOKOBAN_* environment variables via LoadSettings.
package config
