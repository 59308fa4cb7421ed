package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"jmb-server/models"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
	feedBuffer     = 16
)

// Feed event types.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// FeedEvent is the message pushed to admin websocket clients.
type FeedEvent struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients authenticate with a bearer token, not cookies.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *feedClient) close() {
	c.once.Do(func() { close(c.send) })
}

// OrderFeed fans order events out to connected admin dashboards.
type OrderFeed struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
	closed  bool
	logger  *zap.Logger
}

func NewOrderFeed(logger *zap.Logger) *OrderFeed {
	return &OrderFeed{
		clients: make(map[*feedClient]struct{}),
		logger:  logger,
	}
}

// Serve upgrades the request and blocks until the client disconnects or the
// feed is closed.
func (f *OrderFeed) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &feedClient{conn: conn, send: make(chan []byte, feedBuffer)}
	if !f.add(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(feedWriteWait))
		return conn.Close()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.writePump(client)
	}()
	f.readPump(client)
	f.remove(client)
	<-done
	return nil
}

// Publish sends an event to every client. Clients whose buffer is full are
// disconnected.
func (f *OrderFeed) Publish(eventType string, order models.Order) {
	data, err := json.Marshal(FeedEvent{Type: eventType, Order: order})
	if err != nil {
		f.logger.Error("Failed to marshal feed event", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for client := range f.clients {
		select {
		case client.send <- data:
		default:
			f.logger.Warn("Dropping slow order feed client")
			delete(f.clients, client)
			client.close()
		}
	}
}

// Clients returns the number of connected clients.
func (f *OrderFeed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client and rejects new ones.
func (f *OrderFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for client := range f.clients {
		delete(f.clients, client)
		client.close()
	}
}

func (f *OrderFeed) add(c *feedClient) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	return true
}

func (f *OrderFeed) remove(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, c)
	c.close()
}

// readPump discards inbound messages and keeps the read deadline alive.
func (f *OrderFeed) readPump(c *feedClient) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *OrderFeed) writePump(c *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
