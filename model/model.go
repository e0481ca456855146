package model

import (
	"encoding/json"
	"fmt"
)

const GridSize = 5

type Direction int

const (
	North Direction = iota
	East
	South
	West
)

var Directions = [4]Direction{North, East, South, West}

var directionNames = [4]string{"north", "east", "south", "west"}

func (d Direction) Valid() bool {
	return d >= North && d <= West
}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Delta is the coordinate step of one move; north is +y, east is +x.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("n/a:%d", int(d))
	}
	return directionNames[d]
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(directionNames[d]), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	for i, name := range directionNames {
		if name == string(b) {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", string(b))
}

type Item string

const (
	Key         Item = "key"
	Screwdriver Item = "screwdriver"
)

type Door struct {
	Locked    bool `json:"locked"`
	Permanent bool `json:"permanent"`
}

// Doors is indexed by Direction and serialized as an object keyed by
// direction name.
type Doors [4]Door

func (ds Doors) MarshalJSON() ([]byte, error) {
	m := make(map[string]Door, len(ds))
	for i, d := range ds {
		m[directionNames[i]] = d
	}
	return json.Marshal(m)
}

func (ds *Doors) UnmarshalJSON(b []byte) error {
	m := make(map[string]Door)
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for i, name := range directionNames {
		ds[i] = m[name]
	}
	return nil
}

type Room struct {
	Doors Doors  `json:"doors"`
	Items []Item `json:"items"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < GridSize && p.Y >= 0 && p.Y < GridSize
}

func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Grid rooms are addressed Rooms[y][x].
type Grid struct {
	Rooms [GridSize][GridSize]Room `json:"-"`
}

func (g *Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]Room, GridSize)
	for y := range g.Rooms {
		rows[y] = g.Rooms[y][:]
	}
	return json.Marshal(rows)
}

func (g *Grid) UnmarshalJSON(b []byte) error {
	var rows [][]Room
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	if len(rows) != GridSize {
		return fmt.Errorf("grid has %d rows", len(rows))
	}
	for y, row := range rows {
		if len(row) != GridSize {
			return fmt.Errorf("grid row %d has %d rooms", y, len(row))
		}
		copy(g.Rooms[y][:], row)
	}
	return nil
}

type Role string

const (
	// RoleHuman is the seeker.
	RoleHuman Role = "human"
	// RoleRook is the secondary guard; it walks through locked doors.
	RoleRook Role = "rook"
	// RoleBishop is the capturing guard.
	RoleBishop Role = "bishop"
)

var Roles = []Role{RoleHuman, RoleRook, RoleBishop}

// Capabilities are the per role rules the action processor consults instead
// of switching on role names.
type Capabilities struct {
	RespectsDoors bool
	Captures      bool
	Carries       bool
	Senses        bool
}

var capabilities = map[Role]Capabilities{
	RoleHuman:  {RespectsDoors: true, Carries: true},
	RoleRook:   {Senses: true},
	RoleBishop: {RespectsDoors: true, Captures: true, Senses: true},
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

func (r Role) Can() Capabilities {
	return capabilities[r]
}

func (r Role) IsGuard() bool {
	return r.Valid() && !r.Can().Carries
}

type Player struct {
	Role      Role
	Position  Position
	Inventory []Item
	Disabled  bool
}

type seekerJSON struct {
	Position  Position `json:"position"`
	Inventory []Item   `json:"inventory"`
}

type guardJSON struct {
	Position Position `json:"position"`
	Disabled bool     `json:"disabled"`
}

// MarshalJSON emits the seeker as {position, inventory} and a guard as
// {position, disabled}.
func (p *Player) MarshalJSON() ([]byte, error) {
	if p.Role.Can().Carries {
		inv := p.Inventory
		if inv == nil {
			inv = []Item{}
		}
		return json.Marshal(seekerJSON{Position: p.Position, Inventory: inv})
	}
	return json.Marshal(guardJSON{Position: p.Position, Disabled: p.Disabled})
}

// UnmarshalJSON accepts either shape. Role is not on the wire; GameState
// restores it from the player's key.
func (p *Player) UnmarshalJSON(b []byte) error {
	var v struct {
		Position  Position `json:"position"`
		Inventory []Item   `json:"inventory"`
		Disabled  bool     `json:"disabled"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Position, p.Inventory, p.Disabled = v.Position, v.Inventory, v.Disabled
	return nil
}

func (p *Player) Holds(item Item) bool {
	for _, it := range p.Inventory {
		if it == item {
			return true
		}
	}
	return false
}

type GameState struct {
	Grid        *Grid            `json:"grid"`
	Players     map[Role]*Player `json:"players"`
	TurnOrder   []Role           `json:"turnOrder"`
	CurrentTurn int              `json:"currentTurn"`
}

func (gs *GameState) UnmarshalJSON(b []byte) error {
	type plain GameState
	if err := json.Unmarshal(b, (*plain)(gs)); err != nil {
		return err
	}
	for role, p := range gs.Players {
		if !role.Valid() {
			return fmt.Errorf("unknown role %q", role)
		}
		p.Role = role
	}
	if len(gs.TurnOrder) > 0 && (gs.CurrentTurn < 0 || gs.CurrentTurn >= len(gs.TurnOrder)) {
		return fmt.Errorf("currentTurn %d out of range", gs.CurrentTurn)
	}
	return nil
}

func (gs *GameState) Current() Role {
	return gs.TurnOrder[gs.CurrentTurn]
}
