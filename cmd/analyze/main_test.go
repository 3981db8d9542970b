package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestAnalyzeLevel(t *testing.T) {
	tests := []struct {
		name            string
		layout          []string
		wantReachable   int
		wantFloor       int
		wantDead        int
		unreachableBox  int
		unreachableGoal int
		stuck           int
		minPushes       int
	}{
		{
			name:          "corridor",
			layout:        []string{"######", "# @$.#", "######"},
			wantReachable: 4,
			wantFloor:     4,
			wantDead:      1, // (1,1)
			minPushes:     1,
		},
		{
			name:            "walled off goal",
			layout:          []string{"#######", "#@$ #.#", "#######"},
			wantReachable:   3,
			wantFloor:       4,
			wantDead:        2, // (1,1) and (3,1)
			unreachableGoal: 1,
			minPushes:       3,
		},
		{
			name:          "crate starts in a corner",
			layout:        []string{"#####", "#$ .#", "# @ #", "#####"},
			wantReachable: 6,
			wantFloor:     6,
			wantDead:      3,
			stuck:         1,
			minPushes:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := analyzeLevel(&engine.LevelConfig{Name: tt.name, Layout: tt.layout})
			if err != nil {
				t.Fatalf("analyzeLevel failed: %v", err)
			}
			if a.Reachable != tt.wantReachable {
				t.Errorf("Expected %d reachable cells, got %d", tt.wantReachable, a.Reachable)
			}
			if a.MinPushes != tt.minPushes {
				t.Errorf("Expected a push lower bound of %d, got %d", tt.minPushes, a.MinPushes)
			}
			if a.Floor != tt.wantFloor {
				t.Errorf("Expected %d floor cells, got %d", tt.wantFloor, a.Floor)
			}
			if len(a.DeadSquares) != tt.wantDead {
				t.Errorf("Expected %d dead squares, got %v", tt.wantDead, a.DeadSquares)
			}
			if len(a.UnreachableBox) != tt.unreachableBox {
				t.Errorf("Expected %d unreachable crates, got %v", tt.unreachableBox, a.UnreachableBox)
			}
			if len(a.UnreachableGoal) != tt.unreachableGoal {
				t.Errorf("Expected %d unreachable goals, got %v", tt.unreachableGoal, a.UnreachableGoal)
			}
			if len(a.StuckAtStart) != tt.stuck {
				t.Errorf("Expected %d stuck crates, got %v", tt.stuck, a.StuckAtStart)
			}
		})
	}
}

func TestAnalyzeFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := analyzeFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := writeFile(t, dir, "bad.json", `{"name": "x", "layout": "not a list"}`)
	if _, err := analyzeFile(bad); err == nil {
		t.Error("Expected schema error")
	}

	txt := writeFile(t, dir, "notes.txt", "hello")
	if _, err := analyzeFile(txt); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestCommand_ScansDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_corridor.json", `{"name":"Corridor","layout":["######","# @$.#","######"]}`)
	writeFile(t, dir, "a_corner.yaml", "name: Corner\nlayout:\n  - \"#####\"\n  - \"#$ .#\"\n  - \"# @ #\"\n  - \"#####\"\n")
	writeFile(t, dir, "readme.md", "ignored")

	var out bytes.Buffer
	if err := newCommand(&out).Run(context.Background(), []string{"analyze", "--dir", dir}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	corner := strings.Index(text, "a_corner.yaml")
	corridor := strings.Index(text, "b_corridor.json")
	if corner < 0 || corridor < 0 || corner > corridor {
		t.Fatalf("Expected both levels in name order, got:\n%s", text)
	}
	if strings.Contains(text, "readme.md") {
		t.Error("Non-level files should be skipped")
	}
	if !strings.Contains(text, "crates start in a dead corner") {
		t.Errorf("Expected dead corner warning, got:\n%s", text)
	}
	if !strings.Contains(text, "Reachable floor: 4/4") {
		t.Errorf("Expected corridor reachability, got:\n%s", text)
	}
	if !strings.Contains(text, "Pushes needed: at least 2") {
		t.Errorf("Expected the corner push bound, got:\n%s", text)
	}
}

func TestCommand_NoLevels(t *testing.T) {
	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(), []string{"analyze", "--dir", t.TempDir()})
	if err == nil {
		t.Error("Expected error when no level files exist")
	}
}
