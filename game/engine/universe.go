package engine

// Universe owns the background and foreground layers of one puzzle and is
// the only place state transitions happen. It is not safe for concurrent use;
// callers serialize access to MovePlayer.
type Universe struct {
	width          int
	height         int
	background     []Tile
	foreground     []Entity
	byID           map[EntityID]int
	player         EntityID
	goalsSatisfied int
}

// NewUniverse builds a world from a parsed level. The level is copied, so the
// same Level can seed any number of universes.
func NewUniverse(level *Level) *Universe {
	u := &Universe{
		width:      level.Width,
		height:     level.Height,
		background: append([]Tile(nil), level.Background...),
		foreground: append([]Entity(nil), level.Entities...),
		byID:       make(map[EntityID]int, len(level.Entities)),
		player:     level.PlayerID,
	}
	for i, e := range u.foreground {
		u.byID[e.ID] = i
	}
	return u
}

// NewUniverseFromText parses level text and builds a world from it
func NewUniverseFromText(text string, opts ...ParseOption) (*Universe, error) {
	level, err := ParseLevel(text, opts...)
	if err != nil {
		return nil, err
	}
	return NewUniverse(level), nil
}

func (u *Universe) Width() int  { return u.width }
func (u *Universe) Height() int { return u.height }

// IsValid reports whether (x, y) lies inside the grid
func (u *Universe) IsValid(x, y int) bool {
	return x >= 0 && x < u.width && y >= 0 && y < u.height
}

// BackgroundAt returns the tile at (x, y). Coordinates must satisfy IsValid.
func (u *Universe) BackgroundAt(x, y int) Tile {
	return u.background[u.index(x, y)]
}

// ForegroundCount returns the number of entities, player included
func (u *Universe) ForegroundCount() int {
	return len(u.foreground)
}

// ForegroundAt returns the i-th entity. i must be below ForegroundCount.
func (u *Universe) ForegroundAt(i int) Entity {
	return u.foreground[i]
}

// Entity looks an entity up by its identity
func (u *Universe) Entity(id EntityID) (Entity, bool) {
	i, ok := u.byID[id]
	if !ok {
		return Entity{}, false
	}
	return u.foreground[i], true
}

// PlayerID returns the identity of the player entity
func (u *Universe) PlayerID() EntityID {
	return u.player
}

// Player returns the player entity
func (u *Universe) Player() Entity {
	return u.foreground[u.byID[u.player]]
}

// GoalsSatisfied returns how many crates currently rest on goals
func (u *Universe) GoalsSatisfied() int {
	return u.goalsSatisfied
}

// CrateCount returns the number of crates
func (u *Universe) CrateCount() int {
	return len(u.foreground) - 1
}

// Crates returns crate positions in storage order
func (u *Universe) Crates() []Position {
	crates := make([]Position, 0, u.CrateCount())
	for _, e := range u.foreground {
		if e.Kind == Crate {
			crates = append(crates, e.Position())
		}
	}
	return crates
}

// HasWon reports whether every crate sits on a goal
func (u *Universe) HasWon() bool {
	return u.goalsSatisfied == u.ForegroundCount()-1
}

// Clone returns an independent copy of the world
func (u *Universe) Clone() *Universe {
	c := &Universe{
		width:          u.width,
		height:         u.height,
		background:     append([]Tile(nil), u.background...),
		foreground:     append([]Entity(nil), u.foreground...),
		byID:           make(map[EntityID]int, len(u.byID)),
		player:         u.player,
		goalsSatisfied: u.goalsSatisfied,
	}
	for id, i := range u.byID {
		c.byID[id] = i
	}
	return c
}

func (u *Universe) index(x, y int) int {
	return y*u.width + x
}

// occupantAt scans entities in storage order and returns the index of the
// first one standing on (x, y)
func (u *Universe) occupantAt(x, y int) (int, bool) {
	for i, e := range u.foreground {
		if e.X == x && e.Y == y {
			return i, true
		}
	}
	return 0, false
}
