package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/square/model"
	"github.com/zucenko/square/server"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalln(err)
	}
	if err := cfg.SetupLogging(); err != nil {
		log.Fatalln(err)
	}

	deal, err := dealer(cfg)
	if err != nil {
		log.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := Server{GameServer: server.NewGameServer(cfg, deal)}
	go s.GameServer.Loop(ctx)
	s.routes()

	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: s.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warnf("shutdown %v", err)
		}
	}()

	log.Printf("listening on port %s", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalln(err)
	}
}

// dealer picks the fixed layout when one is configured and random boards
// otherwise. The returned func is only called from the registry loop.
func dealer(cfg server.Config) (func() *model.GameState, error) {
	if cfg.LayoutFile != "" {
		layout, err := server.Load(cfg.LayoutFile)
		if err != nil {
			return nil, err
		}
		log.Infof("using layout %s", cfg.LayoutFile)
		return layout.NewGameState, nil
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() *model.GameState {
		return model.NewGameState(rng)
	}, nil
}
