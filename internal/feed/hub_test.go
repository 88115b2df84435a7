package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inara-impact/internal/domain"
	"inara-impact/internal/observability"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Subscribers() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastsToSubscribers(t *testing.T) {
	hub := NewHub(nil, observability.NewMetrics("feed_test"), nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitForSubscribers(t, hub, 2)

	hub.Publish(&domain.SimulationRecord{ID: "sim-1", ProjectID: "p", TechnologyID: "t",
		SimulationResult: domain.SimulationResult{ConfidencePct: 70}})

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, "simulation", ev.Type)
		require.NotNil(t, ev.Simulation)
		assert.Equal(t, "sim-1", ev.Simulation.ID)
		assert.Equal(t, 70, ev.Simulation.ConfidencePct)
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dial(t, srv)
	waitForSubscribers(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForSubscribers(t, hub, 0)
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	metrics := observability.NewMetrics("feed_drop_test")
	hub := NewHub(&HubConfig{SendBuffer: 1}, metrics, nil)

	// A subscriber whose writer never drains its queue
	stuck := &client{remote: "stuck", send: make(chan []byte, 1)}
	hub.register(stuck)

	hub.Publish(&domain.SimulationRecord{ID: "sim-1"})
	assert.Equal(t, 1, hub.Subscribers())

	hub.Publish(&domain.SimulationRecord{ID: "sim-2"})
	assert.Equal(t, 0, hub.Subscribers())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FeedDropped))

	// Queued message is still delivered, then the queue is closed
	msg, ok := <-stuck.send
	require.True(t, ok)
	assert.Contains(t, string(msg), "sim-1")
	_, ok = <-stuck.send
	assert.False(t, ok)
}

func TestHub_CloseRejectsPublish(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	c := &client{remote: "c", send: make(chan []byte, 4)}
	require.True(t, hub.register(c))

	hub.Close()
	hub.Publish(&domain.SimulationRecord{ID: "late"})

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Zero(t, hub.Subscribers())
}

func TestHub_RegisterAfterCloseIsRefused(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	hub.Close()

	c := &client{remote: "late", send: make(chan []byte, 1)}
	assert.False(t, hub.register(c))
	assert.Zero(t, hub.Subscribers())
}

func TestHub_ServeWSAfterCloseUnavailable(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()
	hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Zero(t, hub.Subscribers())
}
