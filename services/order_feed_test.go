package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"jmb-server/models"
)

func dialFeed(t *testing.T, feed *OrderFeed) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = feed.Serve(w, r)
	}))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestOrderFeed_DeliversEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := NewOrderFeed(zap.NewNop())
	conn, cleanup := dialFeed(t, feed)
	defer cleanup()

	require.Eventually(t, func() bool { return feed.Clients() == 1 }, time.Second, 10*time.Millisecond)

	order := models.Order{ID: uuid.New(), CustomerName: "Thabo", Status: models.OrderStatusPending}
	feed.Publish(EventOrderCreated, order)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event FeedEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventOrderCreated, event.Type)
	assert.Equal(t, order.ID, event.Order.ID)
	assert.Equal(t, "Thabo", event.Order.CustomerName)

	feed.Close()
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	require.Eventually(t, func() bool { return feed.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestOrderFeed_ClientDisconnectUnregisters(t *testing.T) {
	feed := NewOrderFeed(zap.NewNop())
	conn, cleanup := dialFeed(t, feed)
	defer cleanup()

	require.Eventually(t, func() bool { return feed.Clients() == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return feed.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestOrderFeed_DropsSlowClients(t *testing.T) {
	feed := NewOrderFeed(zap.NewNop())
	slow := &feedClient{send: make(chan []byte)}
	require.True(t, feed.add(slow))

	feed.Publish(EventOrderUpdated, models.Order{ID: uuid.New()})

	assert.Zero(t, feed.Clients())
	_, open := <-slow.send
	assert.False(t, open)
}

func TestOrderFeed_RejectsAfterClose(t *testing.T) {
	feed := NewOrderFeed(zap.NewNop())
	feed.Close()
	assert.False(t, feed.add(&feedClient{send: make(chan []byte, 1)}))
}
