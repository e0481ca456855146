package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zucenko/square/model"
)

type ResponseCode int

const (
	ROOM_FOUND ResponseCode = iota
	ROOM_NOT_FOUND
	ROOM_UNAVAILABLE
)

func (h ResponseCode) ToHttp() int {
	switch h {
	case ROOM_FOUND:
		return http.StatusOK
	case ROOM_NOT_FOUND:
		return http.StatusNotFound
	case ROOM_UNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		panic(h)
	}
}

func (gss GameSessionState) Name() string {
	switch gss {
	case GS_WAIT:
		return "WaitingForPlayers"
	case GS_PLAY:
		return "InProgress"
	case GS_OVER:
		return "Terminated"
	default:
		return fmt.Sprintf("n/a:%d", gss)
	}
}

func (ps PlayerSessionState) Name() string {
	switch ps {
	case PS_NEW:
		return "NEW"
	case PS_PLAY:
		return "PLAY"
	case PS_OVER:
		return "OVER"
	default:
		return "N/A"
	}
}

// errSessionOver is returned to callers that raced a room's termination; they
// should fetch the room again.
var errSessionOver = errors.New("game session is over")

type GameRequest struct {
	RoomID string
	Create bool
	Reply  chan *GameSession
}

type PlayerConnectRequest struct {
	Peer        Peer
	DisplayName string
	Reply       chan JoinResult
}

type JoinResult struct {
	Role model.Role
	Err  error
}

type PlayerEvent struct {
	Peer   Peer
	Action model.PlayerAction
}

type RoomStatus struct {
	Room        string              `json:"room"`
	State       string              `json:"state"`
	Roster      []model.RosterEntry `json:"roster"`
	CurrentTurn model.Role          `json:"currentTurn,omitempty"`
}
