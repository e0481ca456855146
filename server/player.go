package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/square/model"
)

// joinAttempts bounds retries when a join races the room's termination.
const joinAttempts = 3

func (s *GameServer) newPlayerSession(id string, conn *websocket.Conn) *PlayerSession {
	ps := &PlayerSession{
		State:          PS_NEW,
		Id:             id,
		Server:         s,
		Conn:           conn,
		MessagesToSend: make(chan model.ServerMessage, s.Config.OutboundBuffer),
		closed:         make(chan struct{}),
	}
	conn.SetPongHandler(func(string) error {
		ps.DebugLastPong = time.Now()
		ps.DebugPongs++
		return conn.SetReadDeadline(time.Now().Add(s.Config.PongWait()))
	})
	return ps
}

func (ps *PlayerSession) ID() string {
	return ps.Id
}

func (ps *PlayerSession) Deliver(msg model.ServerMessage) bool {
	select {
	case <-ps.closed:
		return false
	default:
	}
	select {
	case ps.MessagesToSend <- msg:
		return true
	default:
		log.WithField("conn", ps.Id).Warnf("dropping %s, outbound queue full", msg.Event)
		return false
	}
}

// close keeps the seat: only the identity mapping is cleared so the player
// can rejoin under the same name.
func (ps *PlayerSession) close() {
	ps.closeOnce.Do(func() {
		close(ps.closed)
		ps.Server.ForgetConn(ps.Id)
		if err := ps.Conn.Close(); err != nil {
			log.WithField("conn", ps.Id).Debugf("close %v", err)
		}
		log.WithField("conn", ps.Id).Info("connection closed")
	})
}

func (ps *PlayerSession) LoopChannelRead(ctx context.Context) {
	logger := log.WithField("conn", ps.Id)
	logger.Debug("LoopChannelRead STARTED")
	if err := ps.Conn.SetReadDeadline(time.Now().Add(ps.Server.Config.PongWait())); err != nil {
		logger.Warnf("LoopChannelRead deadline %v", err)
		return
	}
loop:
	for {
		_, r, err := ps.Conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warnf("LoopChannelRead err reading message from Conn %v", err)
			}
			break loop
		}
		ps.DebugLastMessage = time.Now()
		ps.DebugInMessages++

		cm := model.ClientMessage{}
		if err := json.NewDecoder(r).Decode(&cm); err != nil {
			logger.Warnf("cant decode %v", err)
			continue
		}
		if err := ps.handle(ctx, cm); err != nil {
			logger.Debugf("message dropped: %v", err)
		}
	}
	logger.Debug("LoopChannelRead ENDED")
}

func (ps *PlayerSession) handle(ctx context.Context, cm model.ClientMessage) error {
	switch cm.Event {
	case model.EventJoin:
		var req model.JoinRequest
		if err := json.Unmarshal(cm.Data, &req); err != nil {
			return fmt.Errorf("decode join: %w", err)
		}
		return ps.join(ctx, req)
	case model.EventPlayerAction:
		var pa model.PlayerAction
		if err := json.Unmarshal(cm.Data, &pa); err != nil {
			return fmt.Errorf("decode playerAction: %w", err)
		}
		if ps.GameSession == nil {
			return errors.New("playerAction outside a room")
		}
		err := ps.GameSession.Submit(ctx, PlayerEvent{Peer: ps, Action: pa})
		if errors.Is(err, errSessionOver) {
			ps.GameSession = nil
			ps.State = PS_NEW
		}
		return err
	default:
		return fmt.Errorf("unknown event %q", cm.Event)
	}
}

func (ps *PlayerSession) join(ctx context.Context, req model.JoinRequest) error {
	if req.RoomID == "" || req.Username == "" {
		return errors.New("join without room or username")
	}
	for i := 0; i < joinAttempts; i++ {
		gs, err := ps.Server.GetOrCreate(ctx, req.RoomID)
		if err != nil {
			return err
		}
		role, err := gs.Join(ctx, ps, req.Username)
		if errors.Is(err, errSessionOver) {
			continue
		}
		if err != nil {
			return err
		}
		if old := ps.GameSession; old != nil && old != gs {
			old.Leave(ctx, ps)
		}
		ps.GameSession = gs
		ps.State = PS_PLAY
		log.WithFields(log.Fields{"conn": ps.Id, "room": req.RoomID, "role": role}).Debug("seated")
		return nil
	}
	return fmt.Errorf("join %s: %w", req.RoomID, errSessionOver)
}

// this function only consumes. no worries about full buffer stuck
func (ps *PlayerSession) LoopChannelWrite() {
	logger := log.WithField("conn", ps.Id)
	logger.Debug("PlayerSession.LoopChannelWrite STARTED")
	ping := time.NewTicker(ps.Server.Config.PingInterval)
	defer ping.Stop()
	defer ps.close()
loop:
	for {
		select {
		case mes := <-ps.MessagesToSend:
			if err := ps.write(mes); err != nil {
				logger.Warnf("PlayerSession.LoopChannelWrite %v", err)
				break loop
			}
			ps.DebugOutMessages++
		case <-ping.C:
			deadline := time.Now().Add(ps.Server.Config.WriteTimeout)
			if err := ps.Conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logger.Debugf("PlayerSession.LoopChannelWrite ping %v", err)
				break loop
			}
		case <-ps.closed:
			break loop
		}
	}
	logger.Debug("LoopChannelWrite ENDED")
}

func (ps *PlayerSession) write(mes model.ServerMessage) error {
	if err := ps.Conn.SetWriteDeadline(time.Now().Add(ps.Server.Config.WriteTimeout)); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}
	w, err := ps.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("cant get writer: %w", err)
	}
	if err := json.NewEncoder(w).Encode(mes); err != nil {
		return fmt.Errorf("cant encode %s: %w", mes.Event, err)
	}
	return w.Close()
}
