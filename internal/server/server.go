// Package server exposes the vehicle's path over HTTP and websockets: factories
// answer on their service routes, segments can be listed, sampled and removed,
// and clients can stream a segment's reference or the path's change events.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/zeusync/autopilot/internal/config"
	"github.com/zeusync/autopilot/internal/core/events/bus"
	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory/factory"
	"github.com/zeusync/autopilot/internal/core/trajectory/manager"
)

type Server struct {
	config    config.Config
	logger    log.Log
	path      *manager.Manager
	factories *factory.Registry
	events    bus.EventBus
	handler   http.Handler

	httpServer *http.Server
	listener   net.Listener
	baseCtx    context.Context
	cancel     context.CancelFunc
	serveErr   chan error
	streams    sync.WaitGroup // active websocket streams

	running atomic.Bool
	closed  atomic.Bool
}

func New(cfg config.Config, logger log.Log, path *manager.Manager, factories *factory.Registry, events bus.EventBus) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger.With(log.String("component", "server")),
		path:      path,
		factories: factories,
		events:    events,
		serveErr:  make(chan error, 1),
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	s.handler = NewTokenAuthMiddleware(cfg.Auth.Token, s.logger).Wrap(s.routes())
	return s
}

// Handler returns the authenticated route tree, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Server.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return s.baseCtx },
	}

	go func() {
		err := s.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		} else {
			err = nil
		}
		s.serveErr <- err
	}()

	s.logger.Info("Server listening",
		log.String("addr", listener.Addr().String()),
		log.String("prefix", s.config.Vehicle.Prefix()),
		log.Any("factories", s.factories.Names()))
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Wait blocks until the server stops serving and returns the serve error, if any.
func (s *Server) Wait() error {
	err := <-s.serveErr
	s.serveErr <- err
	return err
}

// Stop cancels open streams and shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.closed.Store(true)

	s.logger.Info("Stopping server")

	// Hijacked websocket connections are not covered by Shutdown.
	s.cancel()
	err := s.httpServer.Shutdown(ctx)
	s.streams.Wait()

	s.logger.Info("Server stopped")
	return err
}
