// Command analyze prints quick, human-readable heuristics about level files:
// board size, crate and goal counts, how much of the floor the player can
// reach, and the corner squares where a pushed crate would be lost for good.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/sokoban/game/config"
	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

// Analysis summarises one level
type Analysis struct {
	Name            string
	Width, Height   int
	Crates, Goals   int
	Floor           int // non-wall cells
	Reachable       int // non-wall cells connected to the player, crates ignored
	UnreachableBox  []engine.Position
	UnreachableGoal []engine.Position
	DeadSquares     []engine.Position
	StuckAtStart    []engine.Position
	MinPushes       int // each crate's Manhattan distance to its nearest goal, summed
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "print heuristics about Sokoban level files",
		ArgsUsage: "[level files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "levels",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("SOKOBAN_LEVEL_DIR"),
			},
			&cli.IntFlag{
				Name:  "show",
				Value: 5,
				Usage: "how many positions to list per warning",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = levelFiles(cmd.String("dir"))
				if err != nil {
					return err
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no level files found")
			}

			for _, file := range files {
				fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(file))
				a, err := analyzeFile(file)
				if err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
					continue
				}
				report(out, a, int(cmd.Int("show")))
			}
			return nil
		},
	}
}

// levelFiles lists the level documents in dir in name order
func levelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read level directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := config.FormatForPath(entry.Name()); ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func analyzeFile(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	format, ok := config.FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
	level, err := config.DecodeLevel(data, format)
	if err != nil {
		return nil, err
	}
	return analyzeLevel(level)
}

func analyzeLevel(cfg *engine.LevelConfig) (*Analysis, error) {
	level, err := cfg.Parse()
	if err != nil {
		return nil, err
	}
	u := engine.NewUniverse(level)

	a := &Analysis{
		Name:   cfg.Name,
		Width:  u.Width(),
		Height: u.Height(),
		Crates: u.CrateCount(),
		Goals:  engine.CountTiles(u, engine.Goal),
		Floor:  u.Width()*u.Height() - engine.CountTiles(u, engine.Wall),
	}

	reachable := make(map[engine.Position]bool)
	for _, p := range engine.ReachableFrom(u, u.Player().Position()) {
		reachable[p] = true
	}
	a.Reachable = len(reachable)

	for _, c := range u.Crates() {
		if !reachable[c] {
			a.UnreachableBox = append(a.UnreachableBox, c)
		}
	}
	var goals []engine.Position
	for y := 0; y < u.Height(); y++ {
		for x := 0; x < u.Width(); x++ {
			p := engine.Position{X: x, Y: y}
			if u.BackgroundAt(x, y) != engine.Goal {
				continue
			}
			goals = append(goals, p)
			if !reachable[p] {
				a.UnreachableGoal = append(a.UnreachableGoal, p)
			}
		}
	}
	a.MinPushes = minPushes(u.Crates(), goals)

	// Dead squares outside the player's region never matter
	for _, p := range engine.DeadSquares(u) {
		if reachable[p] {
			a.DeadSquares = append(a.DeadSquares, p)
		}
	}
	a.StuckAtStart = engine.DeadlockedCrates(u)

	return a, nil
}

// minPushes is a lower bound on the pushes any solution needs
func minPushes(crates, goals []engine.Position) int {
	if len(goals) == 0 {
		return 0
	}
	total := 0
	for _, c := range crates {
		best := engine.ManhattanDistance(c, goals[0])
		for _, g := range goals[1:] {
			if d := engine.ManhattanDistance(c, g); d < best {
				best = d
			}
		}
		total += best
	}
	return total
}

func report(out io.Writer, a *Analysis, show int) {
	fmt.Fprintf(out, "Name: %s\n", a.Name)
	fmt.Fprintf(out, "Board: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(out, "Crates: %d, Goals: %d\n", a.Crates, a.Goals)
	fmt.Fprintf(out, "Reachable floor: %d/%d\n", a.Reachable, a.Floor)
	fmt.Fprintf(out, "Dead squares: %d\n", len(a.DeadSquares))
	fmt.Fprintf(out, "Pushes needed: at least %d\n", a.MinPushes)

	ok := true
	warn := func(label string, ps []engine.Position) {
		if len(ps) == 0 {
			return
		}
		ok = false
		fmt.Fprintf(out, "⚠️  WARNING: %d %s\n", len(ps), label)
		for i, p := range ps {
			if i >= show {
				fmt.Fprintf(out, "   ... and %d more\n", len(ps)-show)
				break
			}
			fmt.Fprintf(out, "   (%d, %d)\n", p.X, p.Y)
		}
	}
	warn("crates are walled off from the player", a.UnreachableBox)
	warn("goals are walled off from the player", a.UnreachableGoal)
	warn("crates start in a dead corner", a.StuckAtStart)

	if ok {
		fmt.Fprintln(out, "✅ Every crate and goal is reachable and no crate starts stuck")
	}
}
