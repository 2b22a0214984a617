package ws

import (
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/foliokit/folioterm/internal/domain/session"
	"github.com/foliokit/folioterm/internal/infrastructure/logging"
	"github.com/foliokit/folioterm/internal/infrastructure/monitoring"
	"github.com/foliokit/folioterm/internal/terminal"
	"github.com/foliokit/folioterm/internal/terminal/input"
	"github.com/foliokit/folioterm/internal/terminal/render"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer
	},
}

// Message is one client request frame.
type Message struct {
	Type      string `json:"type"`
	Line      string `json:"line,omitempty"`
	Text      string `json:"text,omitempty"`
	Direction string `json:"direction,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Handler manages WebSocket connections, one terminal session each.
type Handler struct {
	sessions *session.Manager
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a WebSocket handler.
func NewHandler(sessions *session.Manager, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{sessions: sessions, logger: logger, metrics: metrics}
}

// conn wraps a websocket connection with a write lock. Output events fire
// from the reader goroutine and from the completion debounce timer, so
// writes must be serialized.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// HandleConnection upgrades the request and drives one session until the
// client disconnects. A session_id query parameter reopens an existing
// session; otherwise a fresh one is created.
func (h *Handler) HandleConnection(c *gin.Context) {
	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer wsConn.Close()

	connID := uuid.NewString()
	h.metrics.WSConnections.Inc()
	h.logger.Info("websocket connected", zap.String("conn_id", connID))
	defer func() {
		h.metrics.WSConnections.Dec()
		h.logger.Info("websocket disconnected", zap.String("conn_id", connID))
	}()

	cn := &conn{ws: wsConn}

	s, err := h.sessions.Open(c.Query("session_id"))
	if err != nil {
		cn.send(gin.H{"type": "error", "message": err.Error()})
		return
	}
	// The session stays in the manager after disconnect so the same client
	// can reopen it with its history intact.
	defer s.Close()

	unsubscribe := s.Subscribe(func(ev session.Event) {
		cn.send(gin.H{
			"type":  "lines",
			"lines": viewLines(ev.Lines),
			"clear": ev.Clear,
		})
	})
	defer unsubscribe()

	cn.send(gin.H{
		"type":       "welcome",
		"session_id": s.ID.String(),
		"cwd":        s.Cwd(),
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error",
					zap.String("session_id", s.ID.String()),
					zap.Error(err))
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			cn.send(gin.H{"type": "error", "message": "malformed message"})
			continue
		}
		h.metrics.RecordWSMessage(msg.Type)

		switch msg.Type {
		case "submit":
			s.Execute(msg.Line)
			cn.send(gin.H{"type": "buffer", "text": s.Buffer(), "cwd": s.Cwd()})
		case "input":
			s.SetBuffer(msg.Text)
		case "history":
			if msg.Direction == "down" {
				s.NavigateHistory(input.Down)
			} else {
				s.NavigateHistory(input.Up)
			}
			cn.send(gin.H{"type": "buffer", "text": s.Buffer()})
		case "tab":
			s.TabComplete()
			cn.send(gin.H{"type": "buffer", "text": s.Buffer()})
		case "scroll":
			s.HandleScroll(msg.Offset)
		case "ping":
			cn.send(gin.H{"type": "pong"})
		default:
			cn.send(gin.H{"type": "error", "message": "unknown message type"})
		}
	}
}

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
