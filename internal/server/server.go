package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	config   *ServerConfig
	registry *Registry
	clock    quartz.Clock
	logger   *log.Logger
	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu          sync.Mutex
	connections map[*Connection]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the server configuration.
func WithConfig(cfg *ServerConfig) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithClock sets the clock for pings, timestamps and idle eviction.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// NewServer creates a new WebSocket server
func NewServer(logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		config:      DefaultServerConfig(),
		clock:       quartz.NewReal(),
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Browser clients may be served from anywhere.
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	idle, err := s.config.IdleTimeout()
	if err != nil {
		s.logger.Warn("Ignoring idle timeout", "error", err)
	}
	regOpts := []RegistryOption{
		WithRegistryClock(s.clock),
		WithIdleTimeout(idle),
	}
	if s.config.Rooms.Seed != 0 {
		regOpts = append(regOpts, WithSeed(s.config.Rooms.Seed))
	}
	s.registry = NewRegistry(logger, regOpts...)
	s.httpSrv = &http.Server{Handler: s.Handler()}
	return s
}

// Registry returns the room registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	if dir := s.config.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	return mux
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.GetServerAddress())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and runs the idle sweeper. Cancelling ctx
// shuts everything down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.registry.RunSweeper(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown stops accepting connections, closes open ones and stops every
// room.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	err := s.httpSrv.Shutdown(ctx)

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()

	s.registry.Close()
	return err
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(ws, s.registry, s.config.Limits, s.clock, s.logger)
	s.mu.Lock()
	s.connections[conn] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	conn.Start()

	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.registry.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"rooms": rooms}); err != nil {
		s.logger.Debug("Failed to write room list", "error", err)
	}
}
