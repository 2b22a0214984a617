package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliokit/folioterm/internal/content"
	"github.com/foliokit/folioterm/internal/domain/session"
	"github.com/foliokit/folioterm/internal/infrastructure/logging"
	"github.com/foliokit/folioterm/internal/infrastructure/monitoring"
)

const (
	waitFor = time.Second
	tick    = 10 * time.Millisecond
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snap := content.Default()
	metrics := monitoring.NewMetricsWith(prometheus.NewRegistry())
	sessions := session.NewManager(snap, logging.NewNop(), metrics, session.Options{
		HistoryLimit: 100,
	})

	router := gin.New()
	router.GET("/stream", NewHandler(sessions, logging.NewNop(), metrics).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &frame))
	return frame
}

func send(t *testing.T, conn *websocket.Conn, msg Message) {
	t.Helper()
	data, err := sonic.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestConnectionWelcome(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")

	welcome := readFrame(t, conn)
	assert.Equal(t, "welcome", welcome["type"])
	assert.True(t, strings.HasPrefix(welcome["session_id"].(string), "sess_"))
	assert.Equal(t, "/", welcome["cwd"])
}

func TestSubmitPushesLines(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readFrame(t, conn) // welcome

	send(t, conn, Message{Type: "submit", Line: "pwd"})

	lines := readFrame(t, conn)
	assert.Equal(t, "lines", lines["type"])
	pushed := lines["lines"].([]interface{})
	require.Len(t, pushed, 2)
	echo := pushed[0].(map[string]interface{})
	assert.Equal(t, "command", echo["kind"])
	assert.Equal(t, "pwd", echo["content"])
	out := pushed[1].(map[string]interface{})
	assert.Equal(t, "/", out["content"])

	buffer := readFrame(t, conn)
	assert.Equal(t, "buffer", buffer["type"])
	assert.Equal(t, "", buffer["text"])
}

func TestSubmitChangesDirectory(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readFrame(t, conn) // welcome

	send(t, conn, Message{Type: "submit", Line: "cd projects"})
	readFrame(t, conn) // lines
	buffer := readFrame(t, conn)
	assert.Equal(t, "/projects", buffer["cwd"])
}

func TestHistoryNavigation(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readFrame(t, conn) // welcome

	send(t, conn, Message{Type: "submit", Line: "pwd"})
	readFrame(t, conn) // lines
	readFrame(t, conn) // buffer

	send(t, conn, Message{Type: "history", Direction: "up"})
	buffer := readFrame(t, conn)
	assert.Equal(t, "buffer", buffer["type"])
	assert.Equal(t, "pwd", buffer["text"])

	send(t, conn, Message{Type: "history", Direction: "down"})
	buffer = readFrame(t, conn)
	assert.Equal(t, "", buffer["text"])
}

func TestTabCompletion(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readFrame(t, conn) // welcome

	send(t, conn, Message{Type: "input", Text: "cd pro"})
	send(t, conn, Message{Type: "tab"})
	buffer := readFrame(t, conn)
	assert.Equal(t, "buffer", buffer["type"])
	assert.Equal(t, "cd projects/", buffer["text"])
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readFrame(t, conn) // welcome

	send(t, conn, Message{Type: "ping"})
	assert.Equal(t, "pong", readFrame(t, conn)["type"])
}

func TestUnknownMessageType(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readFrame(t, conn) // welcome

	send(t, conn, Message{Type: "frobnicate"})
	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "unknown message type", frame["message"])
}

func TestMalformedMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readFrame(t, conn) // welcome

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame["type"])
}

func TestReconnectKeepsHistory(t *testing.T) {
	srv, sessions := newTestServer(t)
	conn := dial(t, srv, "")
	welcome := readFrame(t, conn)
	sid := welcome["session_id"].(string)

	send(t, conn, Message{Type: "submit", Line: "whoami"})
	readFrame(t, conn) // lines
	readFrame(t, conn) // buffer
	conn.Close()

	// The session closes on disconnect but stays in the manager.
	require.Eventually(t, func() bool {
		s, ok := sessions.Get(sid)
		return ok && !s.IsOpen()
	}, waitFor, tick)

	conn2 := dial(t, srv, "?session_id="+sid)
	welcome2 := readFrame(t, conn2)
	assert.Equal(t, sid, welcome2["session_id"])

	s, ok := sessions.Get(sid)
	require.True(t, ok)
	assert.Equal(t, []string{"whoami"}, s.History())
}

func TestUnknownSessionID(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "?session_id=sess_missing")

	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame["type"])
}
