package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/olivier-w/snapkit/internal/engine"
)

// Server upgrades HTTP requests to telemetry websocket clients.
type Server struct {
	logger     *slog.Logger
	hub        *Hub
	snapshot   func() engine.State
	maxClients int
}

type ServerConfig struct {
	Hub HubConfig
	// MaxClients rejects connections beyond this count. Zero is unlimited.
	MaxClients int
}

// NewServer builds the hub and handler. snapshot supplies the state sent
// to each client on connect. Start the hub with Hub().Run.
func NewServer(logger *slog.Logger, snapshot func() engine.State, cfg ServerConfig) *Server {
	return &Server{
		logger:     logger,
		hub:        NewHub(logger, cfg.Hub),
		snapshot:   snapshot,
		maxClients: cfg.MaxClients,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Register installs the websocket handler on mux at path.
func (s *Server) Register(mux *http.ServeMux, path string) {
	if mux == nil {
		return
	}
	mux.HandleFunc(path, s.handleWS)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.maxClients > 0 && s.hub.Len() >= s.maxClients {
		http.Error(w, "too many telemetry clients", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("telemetry upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn, r.RemoteAddr, s.logger)

	// The init frame is queued before registration so it precedes any
	// broadcast the client receives.
	if s.snapshot != nil {
		now := time.Now().UTC()
		msg, err := json.Marshal(envelope{Type: TypeInit, Ts: &now, Data: s.snapshot()})
		if err == nil {
			client.send <- msg
		}
	}
	s.hub.register <- client

	// Pumps outlive the request; the hub and conn errors end them.
	go client.writePump(context.Background())
	go client.readPump(context.Background())
}

// ListenAndServe serves telemetry on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.Register(mux, "/ws")

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("telemetry listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
