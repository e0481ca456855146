package model

const (
	EventJoined       = "joined"
	EventGameStart    = "gameStart"
	EventResync       = "bishopUpdate"
	EventGameUpdate   = "gameUpdate"
	EventSearchResult = "searchResult"
	EventAutoSense    = "autoSense"
	EventGameOver     = "gameOver"
	EventError        = "error"
)

// ServerMessage is one outbound frame.
type ServerMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type RosterEntry struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
	Role         Role   `json:"role"`
	Online       bool   `json:"online"`
}

type Joined struct {
	Roster       []RosterEntry `json:"roster"`
	DisplayName  string        `json:"displayName"`
	ConnectionID string        `json:"connectionId"`
	Role         Role          `json:"role"`
}

type GameOver struct {
	Reason    Reason     `json:"reason"`
	Message   string     `json:"message"`
	GameState *GameState `json:"gameState"`
}

func NewGameOver(t *Termination, gs *GameState) ServerMessage {
	return ServerMessage{Event: EventGameOver, Data: GameOver{
		Reason:    t.Reason,
		Message:   t.Message,
		GameState: gs,
	}}
}

func NewError(err *RuleError) ServerMessage {
	return ServerMessage{Event: EventError, Data: err}
}
