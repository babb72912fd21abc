// Package server hosts the local endpoint clients attach to: a WebSocket
// route that registers each connection as a multiplexer port, plus a
// health route for ops tooling.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mktdesk/streammux/internal/config"
	"github.com/mktdesk/streammux/internal/mux"
	"github.com/mktdesk/streammux/internal/version"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local endpoint; tabs connect from file:// and extension origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the local HTTP/WebSocket front of the multiplexer.
type Server struct {
	cfg    config.ServerConfig
	mux    *mux.Mux
	logger *slog.Logger
	engine *gin.Engine
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, m *mux.Mux, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		mux:    m,
		logger: logger,
		engine: engine,
	}

	engine.GET("/healthz", s.handleHealth)
	engine.GET(cfg.WSPath, s.handleWS)

	return s
}

// Handler exposes the route tree; used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "ws_path", s.cfg.WSPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	st := s.mux.Status()
	c.JSON(http.StatusOK, gin.H{
		"isConnected":       st.IsConnected,
		"reconnectAttempts": st.ReconnectAttempts,
		"activePorts":       st.ActivePorts,
		"version":           version.Version,
	})
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	cl := newClient(uuid.NewString(), conn, s.cfg.SendBuffer, s.logger)
	s.mux.Attach(cl)

	go cl.writePump()
	cl.readPump(s.mux)
}
