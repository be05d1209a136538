package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/dataq/pkg/driver"
)

// Server is the HTTP + websocket front-end for the session driver. It
// owns no workflow logic; it only turns driver.Manager/driver.Driver
// into a request/response and streaming surface.
type Server struct {
	manager *driver.Manager
	drv     *driver.Driver
	wsHub   *WSHub

	mu     sync.Mutex
	inputs map[string]*driver.AsyncInput
}

// NewServer wires a Server around an existing session manager, driver,
// and websocket hub. Callers must run wsHub.Run in a goroutine.
func NewServer(manager *driver.Manager, drv *driver.Driver, wsHub *WSHub) *Server {
	return &Server{
		manager: manager,
		drv:     drv,
		wsHub:   wsHub,
		inputs:  make(map[string]*driver.AsyncInput),
	}
}

// CreateSessionRequest is the request body for POST /sessions.
type CreateSessionRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
}

// CreateSession handles POST /sessions: it creates a session and starts
// its workflow run in the background, streaming step events to any
// websocket clients subscribed via GET /sessions/:id/stream.
func (s *Server) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := s.manager.New(req.ProjectID)
	input := driver.NewAsyncInput()

	s.mu.Lock()
	s.inputs[sess.ID()] = input
	s.mu.Unlock()

	s.wsHub.Broadcast("session.created", sess.ID(), sess.Snapshot())
	go s.run(sess, input)

	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) run(sess *driver.Session, input *driver.AsyncInput) {
	ctx := context.Background()
	events := make(chan driver.StepEvent, 16)

	go func() {
		for ev := range events {
			s.wsHub.Broadcast("workflow.step", ev.SessionID, ev.State)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case p := <-input.Prompts():
				s.wsHub.Broadcast("input.requested", sess.ID(), p)
			case <-done:
				return
			}
		}
	}()

	if _, err := s.drv.RunStreaming(ctx, sess, input, events); err != nil {
		slog.Warn("api: session run failed", "session_id", sess.ID(), "error", err)
		s.wsHub.Broadcast("session.error", sess.ID(), gin.H{"error": err.Error()})
	}

	s.wsHub.Broadcast("session.done", sess.ID(), sess.Snapshot())

	s.mu.Lock()
	delete(s.inputs, sess.ID())
	s.mu.Unlock()
}

// GetSession handles GET /sessions/:id.
func (s *Server) GetSession(c *gin.Context) {
	sess, err := s.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, s.manager.List())
}

// SubmitInputRequest is the request body for POST /sessions/:id/input.
// Answer is either a dataset index (as a string) or the free-form task
// text, depending on which prompt the driver is currently blocked on.
type SubmitInputRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// SubmitInput handles POST /sessions/:id/input, answering whichever of
// select_dataset/get_task the session's workflow is currently awaiting.
func (s *Server) SubmitInput(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	input, ok := s.inputs[id]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not awaiting input"})
		return
	}

	var req SubmitInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := input.Submit(ctx, req.Answer); err != nil {
		c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// CancelSession handles POST /sessions/:id/cancel.
func (s *Server) CancelSession(c *gin.Context) {
	if err := s.manager.Cancel(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelling"})
}

// StreamSession handles GET /sessions/:id/stream, upgrading to a
// websocket that receives every workflow.step/session.* event for all
// sessions; the client filters by session_id.
func (s *Server) StreamSession(c *gin.Context) {
	if _, err := s.manager.Get(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	s.wsHub.HandleWS(c.Writer, c.Request)
}

// Health handles GET /health.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
