package server

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/square/model"
)

func newGameSession(s *GameServer, roomID string, state *model.GameState) *GameSession {
	roles := make([]model.Role, len(model.Roles))
	copy(roles, model.Roles)
	return &GameSession{
		RoomID:                roomID,
		State:                 GS_WAIT,
		Model:                 state,
		Roster:                make([]Seat, 0, len(roles)),
		AvailableRoles:        roles,
		server:                s,
		members:               make(map[string]Peer),
		PlayerConnectRequests: make(chan PlayerConnectRequest),
		Events:                make(chan PlayerEvent),
		Resyncs:               make(chan Peer),
		Leaves:                make(chan Peer),
		Inspections:           make(chan chan RoomStatus),
		done:                  make(chan struct{}),
	}
}

// Loop is the only goroutine touching the session's state, so every join and
// action of a room runs to completion before the next one starts.
func (gs *GameSession) Loop(ctx context.Context) {
	logger := log.WithField("room", gs.RoomID)
	logger.Info("GameSession.Loop start")
	defer close(gs.done)
	for {
		select {
		case pcr := <-gs.PlayerConnectRequests:
			pcr.Reply <- gs.join(pcr)
		case pe := <-gs.Events:
			gs.Turn(ctx, pe)
			if gs.State == GS_OVER {
				logger.Info("GameSession.Loop game over")
				return
			}
		case peer := <-gs.Leaves:
			gs.leave(peer)
		case peer := <-gs.Resyncs:
			if gs.State == GS_PLAY {
				peer.Deliver(model.ServerMessage{Event: model.EventResync, Data: gs.Model.Clone()})
			}
		case reply := <-gs.Inspections:
			reply <- gs.status()
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once the session loop has exited.
func (gs *GameSession) Done() <-chan struct{} {
	return gs.done
}

// Join asks the session to seat the peer. It returns errSessionOver when the
// room terminated before the request was taken.
func (gs *GameSession) Join(ctx context.Context, peer Peer, displayName string) (model.Role, error) {
	req := PlayerConnectRequest{Peer: peer, DisplayName: displayName, Reply: make(chan JoinResult, 1)}
	select {
	case gs.PlayerConnectRequests <- req:
	case <-gs.done:
		return "", errSessionOver
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case res := <-req.Reply:
		return res.Role, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Submit queues an action; once accepted it always runs.
func (gs *GameSession) Submit(ctx context.Context, pe PlayerEvent) error {
	select {
	case gs.Events <- pe:
		return nil
	case <-gs.done:
		return errSessionOver
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (gs *GameSession) Status(ctx context.Context) (RoomStatus, error) {
	reply := make(chan RoomStatus, 1)
	select {
	case gs.Inspections <- reply:
	case <-gs.done:
		return RoomStatus{}, errSessionOver
	case <-ctx.Done():
		return RoomStatus{}, ctx.Err()
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return RoomStatus{}, ctx.Err()
	}
}

// Leave detaches a connection that moved to another room. The seat is kept
// for a rejoin by name.
func (gs *GameSession) Leave(ctx context.Context, peer Peer) {
	select {
	case gs.Leaves <- peer:
	case <-gs.done:
	case <-ctx.Done():
	}
}

func (gs *GameSession) leave(peer Peer) {
	delete(gs.members, peer.ID())
	if seat := gs.seatOf(peer.ID()); seat != nil {
		log.WithFields(log.Fields{"room": gs.RoomID, "conn": peer.ID(), "role": seat.Role}).Info("player left")
		seat.ConnectionID = ""
	}
}

func (gs *GameSession) resync(peer Peer) {
	select {
	case gs.Resyncs <- peer:
	case <-gs.done:
	}
}

func (gs *GameSession) join(pcr PlayerConnectRequest) JoinResult {
	peer := pcr.Peer
	logger := log.WithFields(log.Fields{"room": gs.RoomID, "conn": peer.ID(), "name": pcr.DisplayName})

	// one seat per connection
	if seat := gs.seatOf(peer.ID()); seat != nil && seat.DisplayName != pcr.DisplayName {
		logger.WithField("seated", seat.DisplayName).Debug("connection already seated")
		peer.Deliver(model.NewError(model.ErrAlreadySeated))
		return JoinResult{Err: model.ErrAlreadySeated}
	}

	for i := range gs.Roster {
		seat := &gs.Roster[i]
		if seat.DisplayName != pcr.DisplayName {
			continue
		}
		logger.WithField("role", seat.Role).Info("player rejoined")
		delete(gs.members, seat.ConnectionID)
		seat.ConnectionID = peer.ID()
		gs.members[peer.ID()] = peer
		gs.server.BindName(peer.ID(), pcr.DisplayName)
		peer.Deliver(gs.joinedMessage(*seat))
		if gs.State == GS_PLAY {
			peer.Deliver(model.ServerMessage{Event: model.EventGameUpdate, Data: gs.Model.Clone()})
		}
		return JoinResult{Role: seat.Role}
	}

	if len(gs.Roster) >= len(model.Roles) {
		logger.Debug("room is full")
		peer.Deliver(model.NewError(model.ErrRoomFull))
		return JoinResult{Err: model.ErrRoomFull}
	}

	seat := Seat{DisplayName: pcr.DisplayName, ConnectionID: peer.ID(), Role: gs.AvailableRoles[0]}
	gs.AvailableRoles = gs.AvailableRoles[1:]
	gs.Roster = append(gs.Roster, seat)
	gs.members[peer.ID()] = peer
	gs.server.BindName(peer.ID(), pcr.DisplayName)
	logger.WithField("role", seat.Role).Info("player joined")
	gs.broadcast(gs.joinedMessage(seat))

	if len(gs.Roster) == len(model.Roles) {
		gs.State = GS_PLAY
		logger.Info("game start")
		gs.broadcast(model.ServerMessage{Event: model.EventGameStart, Data: gs.Model.Clone()})
		// the last joiner's client may not be listening yet
		time.AfterFunc(gs.server.Config.ResyncDelay, func() { gs.resync(peer) })
	}
	return JoinResult{Role: seat.Role}
}

func (gs *GameSession) joinedMessage(seat Seat) model.ServerMessage {
	return model.ServerMessage{Event: model.EventJoined, Data: model.Joined{
		Roster:       gs.roster(),
		DisplayName:  seat.DisplayName,
		ConnectionID: seat.ConnectionID,
		Role:         seat.Role,
	}}
}

func (gs *GameSession) roster() []model.RosterEntry {
	entries := make([]model.RosterEntry, 0, len(gs.Roster))
	for _, seat := range gs.Roster {
		_, online := gs.server.NameOf(seat.ConnectionID)
		entries = append(entries, model.RosterEntry{
			ConnectionID: seat.ConnectionID,
			DisplayName:  seat.DisplayName,
			Role:         seat.Role,
			Online:       online,
		})
	}
	return entries
}

func (gs *GameSession) status() RoomStatus {
	st := RoomStatus{Room: gs.RoomID, State: gs.State.Name(), Roster: gs.roster()}
	if gs.State == GS_PLAY {
		st.CurrentTurn = gs.Model.Current()
	}
	return st
}

func (gs *GameSession) seatOf(connID string) *Seat {
	if connID == "" {
		return nil
	}
	for i := range gs.Roster {
		if gs.Roster[i].ConnectionID == connID {
			return &gs.Roster[i]
		}
	}
	return nil
}

// Turn runs one action against the game and delivers the outcome. The
// session is removed from the registry before the game over is announced.
func (gs *GameSession) Turn(ctx context.Context, pe PlayerEvent) {
	logger := log.WithFields(log.Fields{"room": gs.RoomID, "conn": pe.Peer.ID()})
	seat := gs.seatOf(pe.Peer.ID())
	if seat == nil {
		logger.Debug("action from unseated connection dropped")
		return
	}
	if gs.State != GS_PLAY {
		pe.Peer.Deliver(model.NewError(model.ErrGameNotStarted))
		return
	}
	if pe.Action.ActorRole != "" && pe.Action.ActorRole != seat.Role {
		logger.Warnf("claimed role %s, seated as %s", pe.Action.ActorRole, seat.Role)
	}
	logger = logger.WithFields(log.Fields{"role": seat.Role, "verb": pe.Action.Verb})

	res, err := gs.Model.Apply(pe.Action.Action(seat.Role))
	if err != nil {
		var re *model.RuleError
		if errors.As(err, &re) {
			logger.Debugf("rejected %s", re.Code)
			pe.Peer.Deliver(model.NewError(re))
		}
		return
	}

	switch {
	case res.Sense != nil:
		pe.Peer.Deliver(model.ServerMessage{Event: model.EventAutoSense, Data: res.Sense})
		return
	case res.ShowMap:
		pe.Peer.Deliver(model.ServerMessage{Event: model.EventGameUpdate, Data: gs.Model.Clone()})
		return
	case res.Search != nil:
		pe.Peer.Deliver(model.ServerMessage{Event: model.EventSearchResult, Data: res.Search})
	}

	if res.Over != nil {
		logger.WithField("reason", res.Over.Reason).Info("game over")
		gs.State = GS_OVER
		gs.server.remove(ctx, gs)
		gs.broadcast(model.NewGameOver(res.Over, gs.Model.Clone()))
		return
	}
	gs.broadcast(model.ServerMessage{Event: model.EventGameUpdate, Data: gs.Model.Clone()})
}

func (gs *GameSession) broadcast(msg model.ServerMessage) {
	for _, p := range gs.members {
		if !p.Deliver(msg) {
			log.WithFields(log.Fields{"room": gs.RoomID, "conn": p.ID()}).Debugf("%s not delivered", msg.Event)
		}
	}
}
