package engine

import (
	"fmt"
	"strings"
)

// DefaultLevelName is the name of the built-in level
const DefaultLevelName = "classic"

// DefaultLevelConfig returns the built-in level used when no level files are
// available
func DefaultLevelConfig() *LevelConfig {
	return &LevelConfig{
		Name:        DefaultLevelName,
		Description: "Four crates, four goals, one awkward pillar",
		Layout: []string{
			"#########",
			"##  #   #",
			"#.$.  $ #",
			"# #  ## #",
			"# @$.$. #",
			"#########",
		},
	}
}

// Text joins the layout rows into level text
func (c *LevelConfig) Text() string {
	return strings.Join(c.Layout, "\n")
}

// Parse turns the layout into a Level. Level documents usually omit trailing
// spaces, so short rows are padded.
func (c *LevelConfig) Parse() (*Level, error) {
	return ParseLevel(c.Text(), WithPadding())
}

// ValidateLevelConfig validates a level document for correctness and playability
func ValidateLevelConfig(config *LevelConfig) error {
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if len(config.Layout) == 0 {
		return fmt.Errorf("config validation: layout is required")
	}
	if len(config.Layout) > MaxLevelHeight {
		return fmt.Errorf("config validation: layout must have at most %d rows, got %d", MaxLevelHeight, len(config.Layout))
	}
	for i, row := range config.Layout {
		if len(row) > MaxLevelWidth {
			return fmt.Errorf("config validation: row %d must have at most %d characters, got %d", i+1, MaxLevelWidth, len(row))
		}
		for j := 0; j < len(row); j++ {
			switch row[j] {
			case EmptyChar, WallChar, GoalChar, PlayerChar, CrateChar:
			case CrateOnGoalChar, PlayerOnGoalChar:
				return fmt.Errorf("config validation: '%c' at row %d, col %d: start markers on goals are not supported", row[j], i+1, j+1)
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", row[j], i+1, j+1)
			}
		}
	}

	level, err := config.Parse()
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	crates := level.CrateCount()
	if crates == 0 {
		return fmt.Errorf("config validation: layout must contain at least one crate ($)")
	}
	if goals := level.GoalCount(); goals < crates {
		return fmt.Errorf("config validation: layout has %d crates but only %d goals", crates, goals)
	}

	return nil
}
