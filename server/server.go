package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/square/model"
)

// NewGameServer creates the room registry. deal produces the starting state
// of every new room.
func NewGameServer(cfg Config, deal func() *model.GameState) *GameServer {
	s := &GameServer{
		Config:       cfg.withDefaults(),
		GameRequests: make(chan GameRequest),
		Removals:     make(chan *GameSession),
		deal:         deal,
		sessions:     make(map[string]*GameSession),
		names:        make(map[string]string),
	}
	s.Upgrader = &websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

func (s *GameServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.Config.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range s.Config.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	log.WithField("origin", origin).Warn("websocket origin rejected")
	return false
}

// Loop owns the room map. Rooms are created lazily and removed only by
// their own session once a game is over.
func (s *GameServer) Loop(ctx context.Context) {
	log.Info("GameServer.Loop starting")
	for {
		select {
		case req := <-s.GameRequests:
			gs, found := s.sessions[req.RoomID]
			if !found && req.Create {
				log.WithField("room", req.RoomID).Info("create GameSession")
				gs = newGameSession(s, req.RoomID, s.deal())
				s.sessions[req.RoomID] = gs
				go gs.Loop(ctx)
			}
			req.Reply <- gs
		case gs := <-s.Removals:
			// a newer session may already own the id
			if s.sessions[gs.RoomID] == gs {
				delete(s.sessions, gs.RoomID)
				log.WithField("room", gs.RoomID).Info("remove GameSession")
			}
		case <-ctx.Done():
			log.Info("GameServer.Loop stopped")
			return
		}
	}
}

func (s *GameServer) request(ctx context.Context, roomID string, create bool) (*GameSession, error) {
	req := GameRequest{RoomID: roomID, Create: create, Reply: make(chan *GameSession, 1)}
	select {
	case s.GameRequests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case gs := <-req.Reply:
		return gs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *GameServer) GetOrCreate(ctx context.Context, roomID string) (*GameSession, error) {
	return s.request(ctx, roomID, true)
}

// Get returns nil when no room is registered under roomID.
func (s *GameServer) Get(ctx context.Context, roomID string) (*GameSession, error) {
	return s.request(ctx, roomID, false)
}

func (s *GameServer) remove(ctx context.Context, gs *GameSession) {
	select {
	case s.Removals <- gs:
	case <-ctx.Done():
	}
}

func (s *GameServer) BindName(connID, name string) {
	s.namesMu.Lock()
	s.names[connID] = name
	s.namesMu.Unlock()
}

func (s *GameServer) ForgetConn(connID string) {
	s.namesMu.Lock()
	delete(s.names, connID)
	s.namesMu.Unlock()
}

func (s *GameServer) NameOf(connID string) (string, bool) {
	s.namesMu.RLock()
	defer s.namesMu.RUnlock()
	name, ok := s.names[connID]
	return name, ok
}

func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied
			log.Warnf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		ps := s.newPlayerSession(uuid.NewString(), con)
		log.WithField("conn", ps.Id).Info("HandleHttpCall connection accepted")
		defer ps.close()

		go ps.LoopChannelWrite()
		ps.LoopChannelRead(r.Context())
		ps.State = PS_OVER
	}
}

func (s *GameServer) HandleRoomStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := way.Param(r.Context(), "room")
		code := ROOM_FOUND
		var status RoomStatus
		gs, err := s.Get(r.Context(), roomID)
		switch {
		case err != nil:
			code = ROOM_UNAVAILABLE
		case gs == nil:
			code = ROOM_NOT_FOUND
		default:
			status, err = gs.Status(r.Context())
			if err != nil {
				code = ROOM_NOT_FOUND
			}
		}
		if code != ROOM_FOUND {
			w.WriteHeader(code.ToHttp())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Warnf("HandleRoomStatus encode %v", err)
		}
	}
}
