// Command validate checks the level files in ../levels (or the directories
// given as arguments). For each file it checks:
//   - the document against the level JSON Schema (JSON or YAML)
//   - the layout alphabet, size limits, a single player and goals >= crates
//   - that every crate and goal lies in the player's region
//   - that no crate starts wedged in a non-goal corner
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/sokoban/game/config"
	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func validateLevelFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	format, ok := config.FormatForPath(filePath)
	if !ok {
		result.fail("Unsupported file extension %q", filepath.Ext(filePath))
		return result
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	level, err := config.DecodeLevel(data, format)
	if err != nil {
		result.fail("Schema: %v", err)
		return result
	}

	if err := engine.ValidateLevelConfig(level); err != nil {
		result.fail("%v", err)
		return result
	}

	playability := validatePlayability(level)
	if !playability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, playability.Errors...)

	if result.Valid {
		parsed, _ := level.Parse()
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Name: %s", level.Name),
			fmt.Sprintf("✓ Board: %dx%d", parsed.Width, parsed.Height),
			fmt.Sprintf("✓ Crates: %d, Goals: %d", parsed.CrateCount(), parsed.GoalCount()),
		)
	}
	return result
}

// validatePlayability flood-fills from the player over every non-wall cell
// and reports crates or goals outside that region, plus crates that start on
// dead corner squares
func validatePlayability(level *engine.LevelConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	parsed, err := level.Parse()
	if err != nil {
		result.fail("Cannot check playability: %v", err)
		return result
	}
	u := engine.NewUniverse(parsed)

	region := make(map[engine.Position]bool)
	for _, p := range engine.ReachableFrom(u, u.Player().Position()) {
		region[p] = true
	}

	for _, c := range u.Crates() {
		if !region[c] {
			result.fail("Crate at (%d,%d) is walled off from the player", c.X, c.Y)
		}
	}
	goals := 0
	for y := 0; y < u.Height(); y++ {
		for x := 0; x < u.Width(); x++ {
			if u.BackgroundAt(x, y) != engine.Goal {
				continue
			}
			goals++
			if !region[engine.Position{X: x, Y: y}] {
				result.fail("Goal at (%d,%d) is walled off from the player", x, y)
			}
		}
	}
	for _, c := range engine.DeadlockedCrates(u) {
		result.fail("Crate at (%d,%d) starts in a dead corner", c.X, c.Y)
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Playability: %d crates and %d goals reachable", u.CrateCount(), goals))
	}
	return result
}

// levelFiles lists the level documents of every directory, sorted
func levelFiles(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, ok := config.FormatForPath(entry.Name()); ok {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func main() {
	dirs := os.Args[1:]
	if len(dirs) == 0 {
		dirs = []string{"../levels"}
	}

	files, err := levelFiles(dirs)
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLevelFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Printf("✅ All %d levels are valid!\n", len(files))
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
