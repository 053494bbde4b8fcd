package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluemoon/internal/events"
)

func startServer(t *testing.T, hub *Hub, origins []string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	admin := router.Group("/api", func(c *gin.Context) {
		c.Set("user_id", int64(1))
		c.Set("role", "ADMIN")
		c.Next()
	})
	NewHandler(hub, origins).RegisterRoutes(admin)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/ledger"
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestLedgerFeedDeliversEvents(t *testing.T) {
	hub := NewHub(nil)
	url := startServer(t, hub, nil)

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()
	waitFor(t, func() bool { return hub.Count() == 2 })

	hub.Publish(events.New(events.PaymentRecorded, map[string]any{"fee_id": 7, "amount": 40000}))

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, events.PaymentRecorded, got.Type)
		assert.Equal(t, float64(7), got.Data["fee_id"])
	}
}

func TestLedgerFeedUnregistersOnClose(t *testing.T) {
	hub := NewHub(nil)
	url := startServer(t, hub, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	waitFor(t, func() bool { return hub.Count() == 1 })

	require.NoError(t, conn.Close())
	waitFor(t, func() bool { return hub.Count() == 0 })
}

func TestLedgerFeedRejectsForeignOrigin(t *testing.T) {
	hub := NewHub(nil)
	url := startServer(t, hub, []string{"http://localhost:5000"})

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"http://localhost:5000"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestPublishDropsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)
	s := &subscriber{userID: 2, send: make(chan []byte, 1)}
	hub.register(s)

	hub.Publish(events.New(events.FeeDeleted, nil))
	assert.Equal(t, 1, hub.Count())

	// The buffer is full and nobody drains it.
	hub.Publish(events.New(events.FeeDeleted, nil))
	assert.Equal(t, 0, hub.Count())

	_, open := <-s.send
	assert.True(t, open)
	_, open = <-s.send
	assert.False(t, open)
}
