// Package api exposes the session driver over HTTP and websockets:
// creating sessions, polling their state, answering the mid-flight
// prompts the workflow raises, and streaming step events live.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/dataq/pkg/config"
	"github.com/codeready-toolchain/dataq/pkg/driver"
)

// HTTPServer bundles the gin engine, the websocket hub, and the
// http.Server it listens on.
type HTTPServer struct {
	engine     *gin.Engine
	wsHub      *WSHub
	httpServer *http.Server
}

// NewHTTPServer builds the router and binds every handler; it does not
// start listening until Run is called.
func NewHTTPServer(cfg config.APIConfig, manager *driver.Manager, drv *driver.Driver) *HTTPServer {
	wsHub := NewWSHub(cfg.AllowedWSOrigins)
	srv := NewServer(manager, drv, wsHub)

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", srv.Health)
	engine.POST("/sessions", srv.CreateSession)
	engine.GET("/sessions", srv.ListSessions)
	engine.GET("/sessions/:id", srv.GetSession)
	engine.POST("/sessions/:id/input", srv.SubmitInput)
	engine.POST("/sessions/:id/cancel", srv.CancelSession)
	engine.GET("/sessions/:id/stream", srv.StreamSession)

	return &HTTPServer{
		engine: engine,
		wsHub:  wsHub,
		httpServer: &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: engine,
		},
	}
}

// Run starts the websocket hub and the HTTP listener; it blocks until
// the server stops (normally via Shutdown from another goroutine).
func (s *HTTPServer) Run() error {
	go s.wsHub.Run()

	slog.Info("api: listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP listener.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
