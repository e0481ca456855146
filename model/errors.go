package model

// RuleError is a recoverable rejection reported to the originating
// connection only. A rejected request never mutates state.
type RuleError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RuleError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrRoomFull         = &RuleError{"RoomFull", "Room is full."}
	ErrActorDisabled    = &RuleError{"ActorDisabled", "You are disabled and cannot act."}
	ErrNotYourTurn      = &RuleError{"NotYourTurn", "It is not your turn."}
	ErrDoorLocked       = &RuleError{"DoorLocked", "The door is locked."}
	ErrNoKey            = &RuleError{"NoKey", "You do not have a key."}
	ErrAlreadyCarrying  = &RuleError{"AlreadyCarrying", "You are already carrying an item."}
	ErrNothingToPickUp  = &RuleError{"NothingToPickUp", "There is no such item to pick up in this room."}
	ErrNothingToDrop    = &RuleError{"NothingToDrop", "You have no such item to drop."}
	ErrUnknownVerb      = &RuleError{"UnknownVerb", "Unknown action."}
	ErrInvalidDirection = &RuleError{"InvalidDirection", "A valid direction is required."}
	ErrNoInventory      = &RuleError{"NoInventory", "Only the human can carry items."}
	ErrGameNotStarted   = &RuleError{"GameNotStarted", "Waiting for players."}
	ErrEmptyRoom        = &RuleError{"EmptyRoom", "The room is empty."}
	ErrAlreadySeated    = &RuleError{"AlreadySeated", "This connection already holds a seat in the room."}
)
