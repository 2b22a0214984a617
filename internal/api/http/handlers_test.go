package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliokit/folioterm/internal/content"
	"github.com/foliokit/folioterm/internal/domain/session"
	"github.com/foliokit/folioterm/internal/infrastructure/logging"
	"github.com/foliokit/folioterm/internal/infrastructure/monitoring"
)

func newTestRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snap := content.Default()
	metrics := monitoring.NewMetricsWith(prometheus.NewRegistry())
	sessions := session.NewManager(snap, logging.NewNop(), metrics, session.Options{
		HistoryLimit: 100,
	})

	h := NewHandlers(sessions, snap)
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/content", h.GetContent)
	router.POST("/sessions", h.OpenSession)
	router.DELETE("/sessions/:id", h.CloseSession)
	router.POST("/sessions/:id/execute", h.Execute)
	router.GET("/sessions/:id/output", h.GetOutput)
	return router, sessions
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestRoot(t *testing.T) {
	router, _ := newTestRouter(t)
	w, resp := doJSON(t, router, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", resp["status"])
	assert.Equal(t, "folioterm", resp["service"])
}

func TestHealth(t *testing.T) {
	router, sessions := newTestRouter(t)
	_, err := sessions.Open("")
	require.NoError(t, err)

	w, resp := doJSON(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])

	counts := resp["sessions"].(map[string]interface{})
	assert.Equal(t, float64(1), counts["total"])
	assert.Equal(t, float64(1), counts["open"])
	assert.Greater(t, resp["vfs_nodes"].(float64), float64(0))
}

func TestGetContent(t *testing.T) {
	router, _ := newTestRouter(t)
	w, resp := doJSON(t, router, http.MethodGet, "/content", "")

	assert.Equal(t, http.StatusOK, w.Code)
	sections := resp["sections"].([]interface{})
	assert.NotEmpty(t, sections)
}

func TestOpenSession(t *testing.T) {
	router, _ := newTestRouter(t)
	w, resp := doJSON(t, router, http.MethodPost, "/sessions", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(resp["session_id"].(string), "sess_"))
	assert.Equal(t, "/", resp["cwd"])
}

func TestReopenSession(t *testing.T) {
	router, _ := newTestRouter(t)
	_, opened := doJSON(t, router, http.MethodPost, "/sessions", "")
	sid := opened["session_id"].(string)

	w, resp := doJSON(t, router, http.MethodPost, "/sessions", `{"session_id":"`+sid+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sid, resp["session_id"])
}

func TestOpenSessionUnknownID(t *testing.T) {
	router, _ := newTestRouter(t)
	w, _ := doJSON(t, router, http.MethodPost, "/sessions", `{"session_id":"sess_nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecute(t *testing.T) {
	router, _ := newTestRouter(t)
	_, opened := doJSON(t, router, http.MethodPost, "/sessions", "")
	sid := opened["session_id"].(string)

	w, resp := doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/execute", `{"line":"cd projects"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/projects", resp["cwd"])

	lines := resp["lines"].([]interface{})
	require.NotEmpty(t, lines)
	first := lines[0].(map[string]interface{})
	assert.Equal(t, "command", first["kind"])
	assert.Equal(t, "cd projects", first["content"])
}

func TestExecuteLinkifiesOutput(t *testing.T) {
	router, _ := newTestRouter(t)
	_, opened := doJSON(t, router, http.MethodPost, "/sessions", "")
	sid := opened["session_id"].(string)

	_, resp := doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/execute", `{"line":"cat contact/links.txt"}`)

	var linked bool
	for _, raw := range resp["lines"].([]interface{}) {
		line := raw.(map[string]interface{})
		for _, seg := range line["segments"].([]interface{}) {
			if seg.(map[string]interface{})["link"] == true {
				linked = true
			}
		}
		assert.NotEmpty(t, line["html"])
	}
	assert.True(t, linked)
}

func TestExecuteValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	_, opened := doJSON(t, router, http.MethodPost, "/sessions", "")
	sid := opened["session_id"].(string)

	w, _ := doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/execute", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/sessions/sess_missing/execute", `{"line":"ls"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecuteClosedSession(t *testing.T) {
	router, _ := newTestRouter(t)
	_, opened := doJSON(t, router, http.MethodPost, "/sessions", "")
	sid := opened["session_id"].(string)

	w, _ := doJSON(t, router, http.MethodDelete, "/sessions/"+sid, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/execute", `{"line":"ls"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCloseSessionNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	w, _ := doJSON(t, router, http.MethodDelete, "/sessions/sess_missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOutput(t *testing.T) {
	router, _ := newTestRouter(t)
	_, opened := doJSON(t, router, http.MethodPost, "/sessions", "")
	sid := opened["session_id"].(string)

	doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/execute", `{"line":"pwd"}`)

	w, resp := doJSON(t, router, http.MethodGet, "/sessions/"+sid+"/output", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["auto_scroll"])
	lines := resp["lines"].([]interface{})
	require.Len(t, lines, 2)
	second := lines[1].(map[string]interface{})
	assert.Equal(t, "/", second["content"])
}
