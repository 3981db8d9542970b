package engine

// RenderBoard produces a text snapshot of the world using the level alphabet
// plus '*' for a crate on a goal and '+' for the player on a goal
func RenderBoard(u *Universe) []string {
	rows := make([][]byte, u.Height())
	for y := range rows {
		row := make([]byte, u.Width())
		for x := range row {
			switch u.BackgroundAt(x, y) {
			case Wall:
				row[x] = WallChar
			case Goal:
				row[x] = GoalChar
			default:
				row[x] = EmptyChar
			}
		}
		rows[y] = row
	}

	for i := 0; i < u.ForegroundCount(); i++ {
		e := u.ForegroundAt(i)
		onGoal := u.BackgroundAt(e.X, e.Y) == Goal
		switch {
		case e.Kind == Player && onGoal:
			rows[e.Y][e.X] = PlayerOnGoalChar
		case e.Kind == Player:
			rows[e.Y][e.X] = PlayerChar
		case onGoal:
			rows[e.Y][e.X] = CrateOnGoalChar
		default:
			rows[e.Y][e.X] = CrateChar
		}
	}

	board := make([]string, len(rows))
	for i, row := range rows {
		board[i] = string(row)
	}
	return board
}

// CountTiles counts the background cells of a given kind
func CountTiles(u *Universe, tile Tile) int {
	count := 0
	for y := 0; y < u.Height(); y++ {
		for x := 0; x < u.Width(); x++ {
			if u.BackgroundAt(x, y) == tile {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// ReachableFrom returns every non-wall cell connected to start, treating
// crates as passable. The result is in breadth-first order.
func ReachableFrom(u *Universe, start Position) []Position {
	if !u.IsValid(start.X, start.Y) || u.BackgroundAt(start.X, start.Y) == Wall {
		return nil
	}

	seen := make([]bool, u.Width()*u.Height())
	seen[u.index(start.X, start.Y)] = true
	queue := []Position{start}

	for i := 0; i < len(queue); i++ {
		p := queue[i]
		for _, dir := range Directions {
			next := p.Add(dir.Delta())
			if !u.IsValid(next.X, next.Y) || u.BackgroundAt(next.X, next.Y) == Wall {
				continue
			}
			idx := u.index(next.X, next.Y)
			if seen[idx] {
				continue
			}
			seen[idx] = true
			queue = append(queue, next)
		}
	}

	return queue
}

// IsDeadSquare reports whether a crate on (x, y) can never reach a goal
// because it is wedged into a corner: a non-goal floor cell blocked on one
// vertical and one horizontal side. The grid edge counts as a wall.
func IsDeadSquare(u *Universe, x, y int) bool {
	if !u.IsValid(x, y) {
		return false
	}
	if t := u.BackgroundAt(x, y); t == Wall || t == Goal {
		return false
	}

	blocked := func(x, y int) bool {
		return !u.IsValid(x, y) || u.BackgroundAt(x, y) == Wall
	}
	vertical := blocked(x, y-1) || blocked(x, y+1)
	horizontal := blocked(x-1, y) || blocked(x+1, y)
	return vertical && horizontal
}

// DeadSquares lists every dead corner square in row-major order
func DeadSquares(u *Universe) []Position {
	var dead []Position
	for y := 0; y < u.Height(); y++ {
		for x := 0; x < u.Width(); x++ {
			if IsDeadSquare(u, x, y) {
				dead = append(dead, Position{X: x, Y: y})
			}
		}
	}
	return dead
}

// DeadlockedCrates returns the crates currently stuck on dead squares
func DeadlockedCrates(u *Universe) []Position {
	var stuck []Position
	for _, c := range u.Crates() {
		if IsDeadSquare(u, c.X, c.Y) {
			stuck = append(stuck, c)
		}
	}
	return stuck
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
