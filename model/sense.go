package model

import (
	"encoding/json"
)

type PresentPlayer struct {
	Role     Role `json:"role"`
	Disabled bool `json:"disabled"`
}

type DoorStatus string

const (
	Locked   DoorStatus = "Locked"
	Unlocked DoorStatus = "Unlocked"
)

// SensedRoom describes a neighbouring room. DoorStatus is the neighbour's own
// door facing back towards the sensing player.
type SensedRoom struct {
	DoorStatus DoorStatus      `json:"doorStatus"`
	Items      []Item          `json:"items"`
	Players    []PresentPlayer `json:"players"`
}

type CurrentRoom struct {
	Items      []Item          `json:"items"`
	Players    []PresentPlayer `json:"players"`
	HumanItems []Item          `json:"humanItems"`
}

// AutoSenseResult has one entry per direction, nil at the grid edge.
type AutoSenseResult struct {
	Neighbors [4]*SensedRoom
	Current   CurrentRoom
}

func (r AutoSenseResult) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, 5)
	for _, d := range Directions {
		m[d.String()] = r.Neighbors[d]
	}
	m["current"] = r.Current
	return json.Marshal(m)
}

type SearchResult struct {
	Items   []Item          `json:"items"`
	Doors   Doors           `json:"doors"`
	Players []PresentPlayer `json:"players"`
}

// AutoSense reports the four neighbouring rooms and the actor's own room,
// including everything the human carries.
func (gs *GameState) AutoSense(role Role) AutoSenseResult {
	pos := gs.Players[role].Position
	var res AutoSenseResult
	for _, d := range Directions {
		n, ok := gs.Grid.Neighbor(pos, d)
		if !ok {
			continue
		}
		status := Unlocked
		if gs.Grid.DoorState(n, d.Opposite()).Locked {
			status = Locked
		}
		res.Neighbors[d] = &SensedRoom{
			DoorStatus: status,
			Items:      copyItems(gs.Grid.ItemsAt(n)),
			Players:    gs.present(n),
		}
	}
	res.Current = CurrentRoom{
		Items:      copyItems(gs.Grid.ItemsAt(pos)),
		Players:    gs.present(pos),
		HumanItems: copyItems(gs.seeker().Inventory),
	}
	return res
}

// Search reports the actor's own room only.
func (gs *GameState) Search(role Role) SearchResult {
	pos := gs.Players[role].Position
	return SearchResult{
		Items:   copyItems(gs.Grid.ItemsAt(pos)),
		Doors:   gs.Grid.Room(pos).Doors,
		Players: gs.present(pos),
	}
}

func (gs *GameState) present(p Position) []PresentPlayer {
	present := make([]PresentPlayer, 0, len(gs.Players))
	for _, pl := range gs.PlayersAt(p) {
		present = append(present, PresentPlayer{Role: pl.Role, Disabled: pl.Disabled})
	}
	return present
}

func copyItems(items []Item) []Item {
	c := make([]Item, len(items))
	copy(c, items)
	return c
}
