package model

import (
	"math/rand"
)

const (
	KeysPerGrid         = 4
	ScrewdriversPerGrid = 4
)

var (
	Origin = Position{X: 0, Y: 0}
	Goal   = Position{X: GridSize - 1, Y: GridSize - 1}
)

// NewEmptyGrid builds the lattice with every interior door unlocked and the
// boundary doors permanently locked. It places no items.
func NewEmptyGrid() *Grid {
	g := &Grid{}
	// create
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			g.Rooms[y][x] = Room{Items: make([]Item, 0)}
		}
	}
	// seal
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			room := &g.Rooms[y][x]
			if y == 0 {
				room.Doors[South] = Door{Locked: true, Permanent: true}
			}
			if y == GridSize-1 {
				room.Doors[North] = Door{Locked: true, Permanent: true}
			}
			if x == 0 {
				room.Doors[West] = Door{Locked: true, Permanent: true}
			}
			if x == GridSize-1 {
				room.Doors[East] = Door{Locked: true, Permanent: true}
			}
		}
	}
	return g
}

// NewGrid builds the lattice and scatters keys and screwdrivers over
// non-origin rooms.
func NewGrid(rng *rand.Rand) *Grid {
	g := NewEmptyGrid()
	for i := 0; i < KeysPerGrid; i++ {
		g.PlaceItem(RandomPosition(rng), Key)
	}
	for i := 0; i < ScrewdriversPerGrid; i++ {
		g.PlaceItem(RandomPosition(rng), Screwdriver)
	}
	return g
}

// RandomPosition samples a uniformly random cell other than the origin.
func RandomPosition(rng *rand.Rand) Position {
	for {
		p := Position{X: rng.Intn(GridSize), Y: rng.Intn(GridSize)}
		if p != Origin {
			return p
		}
	}
}

func (g *Grid) Room(p Position) *Room {
	return &g.Rooms[p.Y][p.X]
}

// Neighbor returns the adjacent position in direction d, if it is on the grid.
func (g *Grid) Neighbor(p Position, d Direction) (Position, bool) {
	n := p.Step(d)
	return n, n.InBounds()
}

func (g *Grid) DoorState(p Position, d Direction) Door {
	return g.Room(p).Doors[d]
}

// SetDoor changes a door and its mirror in the neighbouring room. Permanent
// doors on either side are left untouched.
func (g *Grid) SetDoor(p Position, d Direction, locked bool) {
	door := &g.Room(p).Doors[d]
	if !door.Permanent {
		door.Locked = locked
	}
	n, ok := g.Neighbor(p, d)
	if !ok {
		return
	}
	mirror := &g.Room(n).Doors[d.Opposite()]
	if !mirror.Permanent {
		mirror.Locked = locked
	}
}

func (g *Grid) ItemsAt(p Position) []Item {
	return g.Room(p).Items
}

// TakeTopItem removes the oldest item placed in the room.
func (g *Grid) TakeTopItem(p Position) (Item, error) {
	room := g.Room(p)
	if len(room.Items) == 0 {
		return "", ErrEmptyRoom
	}
	item := room.Items[0]
	room.Items = room.Items[1:]
	return item, nil
}

func (g *Grid) PlaceItem(p Position, item Item) {
	room := g.Room(p)
	room.Items = append(room.Items, item)
}

func (g *Grid) Clone() *Grid {
	c := &Grid{}
	for y := range g.Rooms {
		for x, room := range g.Rooms[y] {
			items := make([]Item, len(room.Items))
			copy(items, room.Items)
			c.Rooms[y][x] = Room{Doors: room.Doors, Items: items}
		}
	}
	return c
}

// NewGameState deals a fresh game: the human starts at the origin, the guards
// at random non-origin cells.
func NewGameState(rng *rand.Rand) *GameState {
	return newGameState(NewGrid(rng), map[Role]Position{
		RoleHuman:  Origin,
		RoleRook:   RandomPosition(rng),
		RoleBishop: RandomPosition(rng),
	})
}

func newGameState(grid *Grid, starts map[Role]Position) *GameState {
	players := make(map[Role]*Player, len(Roles))
	for _, role := range Roles {
		p := &Player{Role: role, Position: starts[role]}
		if role.Can().Carries {
			p.Inventory = make([]Item, 0, 1)
		}
		players[role] = p
	}
	order := make([]Role, len(Roles))
	copy(order, Roles)
	return &GameState{
		Grid:      grid,
		Players:   players,
		TurnOrder: order,
	}
}

// Clone deep copies the state so it can be handed to writers while the
// session keeps mutating the original.
func (gs *GameState) Clone() *GameState {
	players := make(map[Role]*Player, len(gs.Players))
	for role, p := range gs.Players {
		cp := *p
		if p.Inventory != nil {
			cp.Inventory = append(make([]Item, 0, 1), p.Inventory...)
		}
		players[role] = &cp
	}
	order := make([]Role, len(gs.TurnOrder))
	copy(order, gs.TurnOrder)
	return &GameState{
		Grid:        gs.Grid.Clone(),
		Players:     players,
		TurnOrder:   order,
		CurrentTurn: gs.CurrentTurn,
	}
}

func (gs *GameState) PlayersAt(p Position) []*Player {
	var present []*Player
	for _, role := range gs.TurnOrder {
		if pl := gs.Players[role]; pl.Position == p {
			present = append(present, pl)
		}
	}
	return present
}
