package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zucenko/square/model"
)

// Peer is the outbound side of one connection as seen by a room.
type Peer interface {
	ID() string
	// Deliver queues the message without blocking; false means it was dropped.
	Deliver(msg model.ServerMessage) bool
}

type GameServer struct {
	Config   Config
	Upgrader *websocket.Upgrader

	GameRequests chan GameRequest
	Removals     chan *GameSession

	// deal is only called from Loop.
	deal     func() *model.GameState
	sessions map[string]*GameSession

	// connection id -> display name
	namesMu sync.RWMutex
	names   map[string]string
}

type GameSessionState int

const (
	GS_WAIT GameSessionState = iota
	GS_PLAY
	GS_OVER
)

// Seat binds a stable display name to a role. ConnectionID changes on
// every rejoin.
type Seat struct {
	DisplayName  string
	ConnectionID string
	Role         model.Role
}

type GameSession struct {
	RoomID         string
	State          GameSessionState
	Model          *model.GameState
	Roster         []Seat
	AvailableRoles []model.Role

	server  *GameServer
	members map[string]Peer

	PlayerConnectRequests chan PlayerConnectRequest
	Events                chan PlayerEvent
	Resyncs               chan Peer
	Leaves                chan Peer
	Inspections           chan chan RoomStatus
	done                  chan struct{}
}

type PlayerSessionState int

const (
	PS_NEW PlayerSessionState = iota + 1
	PS_PLAY
	PS_OVER
)

type PlayerSession struct {
	State       PlayerSessionState
	Id          string
	Server      *GameServer
	GameSession *GameSession
	Conn        *websocket.Conn

	MessagesToSend chan model.ServerMessage
	closed         chan struct{}
	closeOnce      sync.Once

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPong    time.Time
	DebugPongs       int
}
