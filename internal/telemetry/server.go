package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/jitterball/internal/core/events/bus"
	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/scene"
)

// Config holds telemetry server configuration
type Config struct {
	ListenAddr       string
	SnapshotInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:       "127.0.0.1:8787",
		SnapshotInterval: 100 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("%w: snapshot interval %v", ErrInvalidConfig, c.SnapshotInterval)
	}
	return nil
}

// SnapshotSource is the part of the scene the stream reads.
type SnapshotSource interface {
	Snapshot() []scene.State
}

// Server exposes the running demo over HTTP: a websocket stream of scene
// snapshots and nudges on /ws, Prometheus metrics on /metrics and a liveness
// probe on /healthz.
type Server struct {
	config  Config
	source  SnapshotSource
	events  bus.EventBus
	metrics http.Handler
	logger  log.Log

	hub        *hub
	httpServer *http.Server
	listener   net.Listener
	sub        bus.Subscription

	running     atomic.Bool
	stopChan    chan struct{}
	workerGroup sync.WaitGroup
}

// NewServer wires the server. events and metrics may be nil: the stream then
// carries snapshots only and /metrics answers 404.
func NewServer(config Config, source SnapshotSource, events bus.EventBus, metrics http.Handler, logger log.Log) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: nil snapshot source", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("component", "telemetry"))
	return &Server{
		config:  config,
		source:  source,
		events:  events,
		metrics: metrics,
		logger:  logger,
		hub:     newHub(logger),
	}, nil
}

// Handler returns the HTTP routes without binding a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// Start binds the listener, subscribes to nudges and begins broadcasting
// snapshots. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = ln
	s.stopChan = make(chan struct{})
	s.hub = newHub(s.logger)

	if s.events != nil {
		sub, err := s.events.Subscribe(perturb.EventNudge, s.onNudge)
		if err != nil {
			_ = ln.Close()
			s.running.Store(false)
			return fmt.Errorf("subscribe to nudges: %w", err)
		}
		s.sub = sub
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.workerGroup.Add(2)
	go func() {
		defer s.workerGroup.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()
	go s.snapshotWorker(ctx)

	s.logger.Info("Telemetry server started",
		log.String("addr", ln.Addr().String()),
		log.Duration("snapshot_interval", s.config.SnapshotInterval))
	return nil
}

// Stop shuts the HTTP server down, disconnects viewers and waits for the
// background workers.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	close(s.stopChan)
	if s.events != nil && s.sub != nil {
		_ = s.events.Unsubscribe(s.sub)
		s.sub = nil
	}
	s.hub.close()

	err := s.httpServer.Shutdown(ctx)
	s.workerGroup.Wait()

	s.logger.Info("Telemetry server stopped")
	if err != nil {
		return fmt.Errorf("shutdown telemetry server: %w", err)
	}
	return nil
}

// Addr is the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) IsRunning() bool {
	return s.running.Load()
}

func (s *Server) snapshotWorker(ctx context.Context) {
	defer s.workerGroup.Done()

	ticker := time.NewTicker(s.config.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.hub.broadcast(snapshotFrame(s.source.Snapshot()))
		}
	}
}

func (s *Server) onNudge(e bus.Event) error {
	n, ok := e.Data().(perturb.Nudge)
	if !ok {
		return fmt.Errorf("unexpected nudge payload %T", e.Data())
	}
	s.hub.broadcast(nudgeFrame(n))
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
