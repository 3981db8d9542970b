package engine

// MovePlayer attempts to move the player by (dx, dy), pushing a crate if one
// is in the way. Every check runs before any mutation, so a rejected move
// leaves the world exactly as it was.
func (u *Universe) MovePlayer(dx, dy int) MoveOutcome {
	if dx == 0 && dy == 0 {
		return Stayed
	}

	playerIdx := u.byID[u.player]
	player := u.foreground[playerIdx]

	newX, newY := player.X+dx, player.Y+dy
	if !u.IsValid(newX, newY) {
		return OutOfBounds
	}

	nextType := u.BackgroundAt(newX, newY)
	if nextType == Wall {
		return BlockedByWall
	}

	crateIdx, found := u.occupantAt(newX, newY)
	if !found {
		u.foreground[playerIdx].X = newX
		u.foreground[playerIdx].Y = newY
		return Moved
	}

	pushX, pushY := newX+dx, newY+dy
	if !u.IsValid(pushX, pushY) {
		return OutOfBounds
	}

	pushType := u.BackgroundAt(pushX, pushY)
	if pushType == Wall {
		return BlockedByWall
	}

	if _, blocked := u.occupantAt(pushX, pushY); blocked {
		return BlockedByCrate
	}

	if nextType == Goal {
		u.goalsSatisfied--
	}
	if pushType == Goal {
		u.goalsSatisfied++
	}

	u.foreground[crateIdx].X = pushX
	u.foreground[crateIdx].Y = pushY
	u.foreground[playerIdx].X = newX
	u.foreground[playerIdx].Y = newY

	return Pushed
}

// CanMoveTo checks whether a step by (dx, dy) would be accepted, without
// changing anything
func (u *Universe) CanMoveTo(dx, dy int) bool {
	return u.Clone().MovePlayer(dx, dy).Changed()
}
