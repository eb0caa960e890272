package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-lensui/ui/cmd/demo/app"
	"github.com/elizafairlady/go-lensui/ui/lazy"
	"github.com/elizafairlady/go-lensui/ui/metrics"
)

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *metrics.Collector) {
	t.Helper()
	if cfg.Items == nil {
		cfg.Items = lazy.Of([]string{"alpha", "beta", "gamma"})
	}
	m := metrics.NewCollector("demo")
	ts := httptest.NewServer(New(cfg, nil, m).Handler())
	t.Cleanup(ts.Close)
	return ts, m
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func send(t *testing.T, conn *websocket.Conn, line string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(line)))
}

func TestStaticRoutes(t *testing.T) {
	ts, _ := newTestServer(t, Config{})

	code, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `new WebSocket(`)

	code, body = get(t, ts.URL+"/snapshot")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Nicolette")

	code, _ = get(t, ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSnapshotUsesInitialState(t *testing.T) {
	st := app.DefaultState()
	st["user"] = "Juliet"
	ts, _ := newTestServer(t, Config{Initial: st})
	_, body := get(t, ts.URL+"/snapshot")
	assert.Contains(t, body, "Juliet")
	assert.NotContains(t, body, "Nicolette")
}

func TestSnapshotTree(t *testing.T) {
	ts, _ := newTestServer(t, Config{})
	code, body := get(t, ts.URL+"/snapshot?format=tree")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body, "elem 0 div\n"), body)
	assert.Contains(t, body, "on 0.3 click=footer-click\n")
}

func TestSessionOverWebsocket(t *testing.T) {
	ts, _ := newTestServer(t, Config{Width: 800, Height: 600})
	conn := dial(t, ts)

	assert.Contains(t, readFrame(t, conn), "<button>Footer</button>")

	// Malformed lines are skipped.
	send(t, conn, "path=0")
	send(t, conn, "click path=0.3")
	assert.Contains(t, readFrame(t, conn), `id="riscos"`)

	send(t, conn, "event footer-click")
	assert.NotContains(t, readFrame(t, conn), `id="riscos"`)

	send(t, conn, "click path=0.1")
	frame := readFrame(t, conn)
	assert.Contains(t, frame, ">1. alpha<")
	assert.Contains(t, frame, ">3. gamma<")
}

func TestSessionsAreIndependent(t *testing.T) {
	ts, _ := newTestServer(t, Config{})
	a, b := dial(t, ts), dial(t, ts)
	readFrame(t, a)
	readFrame(t, b)

	send(t, a, "click path=0.3")
	assert.Contains(t, readFrame(t, a), `id="riscos"`)

	send(t, b, "click path=0.0.1")
	frame := readFrame(t, b)
	assert.NotContains(t, frame, `id="riscos"`)
	assert.Contains(t, frame, `value="Nicolette"`)
}

func TestRateLimitDropsInputs(t *testing.T) {
	ts, _ := newTestServer(t, Config{EventRate: 0.001, EventBurst: 1})
	conn := dial(t, ts)
	readFrame(t, conn)

	send(t, conn, "click path=0.3")
	send(t, conn, "click path=0.3")
	send(t, conn, "click path=0.3")
	assert.Contains(t, readFrame(t, conn), `id="riscos"`)

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return strings.Contains(string(body), "demo_session_inputs_dropped_total 2")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestMetricsRoute(t *testing.T) {
	ts, _ := newTestServer(t, Config{})
	conn := dial(t, ts)
	readFrame(t, conn)

	code, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "demo_session_active 1")
	assert.Contains(t, body, `demo_loop_events_total{reason="init",result="kernel"} 1`)
}
