package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

var (
	ErrNoSolution     = errors.New("level has no solution")
	ErrSearchExceeded = errors.New("search limit reached")
)

// node is one searched position; parent links rebuild the move string
type node struct {
	u      *engine.Universe
	parent int
	move   byte
}

// Solve breadth-first searches single steps from the start of level and
// returns a shortest solution in LURD notation. Pushes onto dead corner
// squares are never explored. maxStates bounds the number of distinct
// positions visited; zero means unbounded.
func Solve(level *engine.LevelConfig, maxStates int) (string, error) {
	parsed, err := level.Parse()
	if err != nil {
		return "", err
	}
	start := engine.NewUniverse(parsed)
	if start.HasWon() {
		return "", nil
	}

	dead := make(map[engine.Position]bool)
	for _, p := range engine.DeadSquares(start) {
		dead[p] = true
	}

	nodes := []node{{u: start, parent: -1}}
	seen := map[string]bool{stateKey(start): true}

	for i := 0; i < len(nodes); i++ {
		cur := nodes[i].u
		for _, d := range engine.Directions {
			next := cur.Clone()
			outcome := next.MovePlayer(d.Delta())
			if !outcome.Changed() {
				continue
			}
			if outcome == engine.Pushed {
				crate := next.Player().Position().Add(d.Delta())
				if dead[crate] {
					continue
				}
			}

			key := stateKey(next)
			if seen[key] {
				continue
			}
			seen[key] = true
			nodes = append(nodes, node{u: next, parent: i, move: d.Letter(outcome == engine.Pushed)})

			if next.HasWon() {
				return path(nodes, len(nodes)-1), nil
			}
			if maxStates > 0 && len(seen) >= maxStates {
				return "", fmt.Errorf("%w after %d positions", ErrSearchExceeded, len(seen))
			}
		}
	}
	return "", ErrNoSolution
}

// stateKey identifies a position by the player cell and the set of crate
// cells; crates are interchangeable
func stateKey(u *engine.Universe) string {
	crates := u.Crates()
	sort.Slice(crates, func(i, j int) bool {
		if crates[i].Y != crates[j].Y {
			return crates[i].Y < crates[j].Y
		}
		return crates[i].X < crates[j].X
	})

	var b strings.Builder
	p := u.Player().Position()
	fmt.Fprintf(&b, "%d,%d", p.X, p.Y)
	for _, c := range crates {
		fmt.Fprintf(&b, ";%d,%d", c.X, c.Y)
	}
	return b.String()
}

func path(nodes []node, i int) string {
	var moves []byte
	for ; nodes[i].parent >= 0; i = nodes[i].parent {
		moves = append(moves, nodes[i].move)
	}
	for l, r := 0, len(moves)-1; l < r; l, r = l+1, r-1 {
		moves[l], moves[r] = moves[r], moves[l]
	}
	return string(moves)
}

// chunk splits directions into API-sized batches
func chunk(dirs []engine.Direction, size int) [][]string {
	var batches [][]string
	for len(dirs) > 0 {
		n := size
		if n > len(dirs) {
			n = len(dirs)
		}
		batch := make([]string, n)
		for i, d := range dirs[:n] {
			batch[i] = d.String()
		}
		batches = append(batches, batch)
		dirs = dirs[n:]
	}
	return batches
}
