package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arian-lol/msg-mirror/internal/api"
	"github.com/arian-lol/msg-mirror/internal/infra/channel"
	"github.com/arian-lol/msg-mirror/internal/service"
)

const shutdownTimeout = 10 * time.Second

// MirrorServer ties the relay, the live channel hub and the HTTP API together
type MirrorServer struct {
	relay     *service.RelayService
	hub       *channel.Hub
	apiServer *api.Server

	// Sinks attached on start, e.g. the Feishu mirror
	sinks []channel.Sink
}

// NewMirrorServer creates a new mirror server. sinks are attached to the hub
// when the server starts.
func NewMirrorServer(
	relay *service.RelayService,
	hub *channel.Hub,
	apiServer *api.Server,
	sinks ...channel.Sink,
) *MirrorServer {
	return &MirrorServer{
		relay:     relay,
		hub:       hub,
		apiServer: apiServer,
		sinks:     sinks,
	}
}

// Start brings the relay up, attaches the static sinks and serves the API.
// It blocks until the API server stops.
func (s *MirrorServer) Start(ctx context.Context) error {
	if err := s.relay.Start(ctx); err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}

	// Attaching the first sink flushes whatever was buffered before start
	for _, sink := range s.sinks {
		s.hub.Attach(sink)
	}

	err := s.apiServer.Start()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the API down, stops the relay and closes every sink
func (s *MirrorServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.apiServer.Stop(ctx); err != nil {
		fmt.Printf("[Server] API shutdown error: %v\n", err)
	}
	s.relay.Stop(ctx)
	s.hub.Close()
	fmt.Println("[Server] Stopped")
}
