// File: internal/status/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package status serves sink counters and probes over HTTP on the loopback
// interface.
package status

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/momentics/printsink/api"
	"github.com/momentics/printsink/internal/logging"
)

// Server exposes GET /healthz and GET /stats.
type Server struct {
	ctrl   api.Control
	log    *slog.Logger
	engine *gin.Engine

	mu   sync.Mutex
	srv  *http.Server
	addr string
}

// NewServer builds the router; nothing listens until Start.
func NewServer(ctrl api.Control, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{ctrl: ctrl, log: log, engine: gin.New()}
	s.engine.Use(gin.Recovery())
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/stats", s.stats)
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens on 127.0.0.1:port (0 picks a free port) and serves in the
// background.
func (s *Server) Start(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return api.ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return errors.Wrap(err, "status listen")
	}

	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("status server failed", "err", err)
		}
	}(s.srv)

	s.log.Info("status endpoint listening", "addr", s.addr)
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return errors.Wrap(srv.Shutdown(ctx), "status shutdown")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Stats())
}
