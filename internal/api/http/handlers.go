package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foliokit/folioterm/internal/content"
	"github.com/foliokit/folioterm/internal/domain/session"
	"github.com/foliokit/folioterm/internal/terminal"
	"github.com/foliokit/folioterm/internal/terminal/render"
)

// Version reported by the root endpoint.
const Version = "0.3.0"

// Handlers contains all HTTP handlers.
type Handlers struct {
	sessions *session.Manager
	snapshot *content.Snapshot
}

// NewHandlers creates the handler set.
func NewHandlers(sessions *session.Manager, snapshot *content.Snapshot) *Handlers {
	return &Handlers{sessions: sessions, snapshot: snapshot}
}

// Root handles the liveness check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "folioterm",
		"version": Version,
	})
}

// Health reports session counts and tree size.
func (h *Handlers) Health(c *gin.Context) {
	total, open := h.sessions.Count()
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"sessions": gin.H{
			"total": total,
			"open":  open,
		},
		"vfs_nodes": h.sessions.Tree().Len(),
	})
}

// GetContent serves the full content snapshot the terminal was built from.
func (h *Handlers) GetContent(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot)
}

type openRequest struct {
	SessionID string `json:"session_id"`
}

// OpenSession creates a session, or reopens an existing one when the
// request names it.
func (h *Handlers) OpenSession(c *gin.Context) {
	var req openRequest
	// The body is optional: an empty request means a brand-new session.
	_ = c.ShouldBindJSON(&req)

	s, err := h.sessions.Open(req.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": s.ID.String(),
		"cwd":        s.Cwd(),
	})
}

// CloseSession transitions a session to CLOSED; its history survives.
func (h *Handlers) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": true})
}

type executeRequest struct {
	Line string `json:"line" binding:"required"`
}

// Execute runs one command line against a session and returns the resulting
// output log.
func (h *Handlers) Execute(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if !s.IsOpen() {
		c.JSON(http.StatusConflict, gin.H{"error": "session is closed"})
		return
	}

	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "line is required"})
		return
	}

	s.Execute(req.Line)
	c.JSON(http.StatusOK, gin.H{
		"cwd":   s.Cwd(),
		"lines": viewLines(s.Lines()),
	})
}

// GetOutput returns the session's output log with scroll state.
func (h *Handlers) GetOutput(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	r := s.Renderer()
	c.JSON(http.StatusOK, gin.H{
		"lines":       viewLines(s.Lines()),
		"scroll_top":  r.ScrollTop(),
		"auto_scroll": r.AutoScroll(),
	})
}

// lineView is the wire form of one output line, segments and sanitized HTML
// included so the display surface needs no parsing of its own.
type lineView struct {
	terminal.OutputLine
	Segments []render.Segment `json:"segments"`
	HTML     string           `json:"html"`
}

func viewLines(lines []terminal.OutputLine) []lineView {
	out := make([]lineView, len(lines))
	for i, line := range lines {
		out[i] = lineView{
			OutputLine: line,
			Segments:   render.Linkify(line.Content),
			HTML:       render.HTML(line),
		}
	}
	return out
}
