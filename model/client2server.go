package model

import (
	"encoding/json"
)

const (
	EventJoin         = "join"
	EventPlayerAction = "playerAction"
)

// ClientMessage is one inbound frame; Data is decoded according to Event.
type ClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type PlayerAction struct {
	ActorRole Role       `json:"actorRole"`
	Verb      Verb       `json:"verb"`
	Direction *Direction `json:"direction,omitempty"`
	ItemType  Item       `json:"itemType,omitempty"`
}

// Action binds the request to the role seated for the connection. A missing
// direction is left invalid and rejected by verbs that need one.
func (pa PlayerAction) Action(actor Role) Action {
	a := Action{Actor: actor, Verb: pa.Verb, Direction: -1, Item: pa.ItemType}
	if pa.Direction != nil {
		a.Direction = *pa.Direction
	}
	return a
}
