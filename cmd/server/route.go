package main

import (
	"net/http"

	"github.com/matryer/way"
)

const (
	URI_WS     = "/play"
	URI_HEALTH = "/health"
	URI_ROOM   = "/rooms/:room"
)

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_WS, s.GameServer.HandleHttpCall())
	s.router.HandleFunc("GET", URI_HEALTH, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.HandleFunc("GET", URI_ROOM, s.GameServer.HandleRoomStatus())
}
